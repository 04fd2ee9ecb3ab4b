package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC)

func activeSet(keys ...string) map[string]bool {
	m := make(map[string]bool)
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// keys returns the day keys for [from, to] inclusive.
func keys(t *testing.T, from, to string) []string {
	t.Helper()
	start, err := time.Parse("2006-01-02", from)
	require.NoError(t, err)
	end, err := time.Parse("2006-01-02", to)
	require.NoError(t, err)

	var out []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, DayKey(d))
	}
	return out
}

func TestDayKey(t *testing.T) {
	assert.Equal(t, "2024-05-10", DayKey(testNow))

	// Keys are always UTC: 02:00 at +05:00 is still the previous UTC day.
	plus5 := time.FixedZone("plus5", 5*3600)
	assert.Equal(t, "2024-05-09", DayKey(time.Date(2024, 5, 10, 2, 0, 0, 0, plus5)))

	assert.Equal(t, "2024-02-29", DayKey(time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)))
}

func TestBuildWindowShape(t *testing.T) {
	nows := []time.Time{
		testNow,
		time.Date(2024, 3, 1, 0, 0, 1, 0, time.UTC),   // crosses leap day
		time.Date(2023, 1, 15, 12, 0, 0, 0, time.UTC), // crosses year boundary
		time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC),
	}

	for _, now := range nows {
		w := Build(nil, now)

		require.Len(t, w.Days, WindowDays)
		assert.Equal(t, DayKey(now), w.Days[WindowDays-1].Key)

		for i := 1; i < WindowDays; i++ {
			prev, err := time.Parse("2006-01-02", w.Days[i-1].Key)
			require.NoError(t, err)
			assert.Equal(t, DayKey(prev.AddDate(0, 0, 1)), w.Days[i].Key,
				"keys must increase by exactly one day at index %d", i)
		}
	}
}

func TestBuildSegments(t *testing.T) {
	tests := []struct {
		name          string
		active        []string
		trailing      Segment
		gap           Segment
		previous      Segment
		currentStreak int
	}{
		{
			name:          "entirely inactive",
			active:        nil,
			trailing:      Segment{},
			gap:           Segment{},
			previous:      Segment{},
			currentStreak: 0,
		},
		{
			name:          "entirely active",
			active:        keys(t, "2024-04-11", "2024-05-10"),
			trailing:      Segment{Start: 0, End: 29, Len: 30},
			gap:           Segment{},
			previous:      Segment{},
			currentStreak: 30,
		},
		{
			name: "two runs with a gap",
			active: append(
				keys(t, "2024-05-01", "2024-05-05"),
				keys(t, "2024-05-08", "2024-05-10")...,
			),
			trailing:      Segment{Start: 27, End: 29, Len: 3},
			gap:           Segment{Start: 25, End: 26, Len: 2},
			previous:      Segment{Start: 20, End: 24, Len: 5},
			currentStreak: 3,
		},
		{
			name:          "today not logged yet",
			active:        keys(t, "2024-05-05", "2024-05-09"),
			trailing:      Segment{Start: 24, End: 28, Len: 5},
			gap:           Segment{Start: 0, End: 23, Len: 24},
			previous:      Segment{},
			currentStreak: 5,
		},
		{
			name:          "streak broken two days ago",
			active:        keys(t, "2024-05-01", "2024-05-08"),
			trailing:      Segment{Start: 20, End: 27, Len: 8},
			gap:           Segment{Start: 0, End: 19, Len: 20},
			previous:      Segment{},
			currentStreak: 0,
		},
		{
			name:          "single isolated active day",
			active:        []string{"2024-05-01"},
			trailing:      Segment{Start: 20, End: 20, Len: 1},
			gap:           Segment{Start: 0, End: 19, Len: 20},
			previous:      Segment{},
			currentStreak: 0,
		},
		{
			name: "stale gap still detected",
			active: append(
				keys(t, "2024-04-15", "2024-04-20"),
				keys(t, "2024-04-23", "2024-04-25")...,
			),
			trailing:      Segment{Start: 12, End: 14, Len: 3},
			gap:           Segment{Start: 10, End: 11, Len: 2},
			previous:      Segment{Start: 4, End: 9, Len: 6},
			currentStreak: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Build(activeSet(tt.active...), testNow)

			assert.Equal(t, tt.trailing, w.Trailing, "trailing")
			assert.Equal(t, tt.gap, w.Gap, "gap")
			assert.Equal(t, tt.previous, w.Previous, "previous")
			assert.Equal(t, tt.currentStreak, w.CurrentStreak, "current streak")
		})
	}
}

func TestSegmentsNeverOverlap(t *testing.T) {
	// A spread of activity patterns; the three segments must always be
	// disjoint and ordered trailing > gap > previous.
	patterns := [][]string{
		nil,
		keys(t, "2024-04-11", "2024-05-10"),
		{"2024-05-10"},
		{"2024-04-11"},
		{"2024-05-01", "2024-05-03", "2024-05-05", "2024-05-07", "2024-05-09"},
		append(keys(t, "2024-04-20", "2024-04-28"), keys(t, "2024-05-02", "2024-05-10")...),
		append(keys(t, "2024-04-11", "2024-04-15"), "2024-05-06"),
	}

	for _, p := range patterns {
		w := Build(activeSet(p...), testNow)

		if w.Gap.Len > 0 {
			require.Greater(t, w.Trailing.Len, 0, "a gap requires an active run after it")
			assert.Less(t, w.Gap.End, w.Trailing.Start)
		}
		if w.Previous.Len > 0 {
			require.Greater(t, w.Gap.Len, 0, "a previous run requires a gap after it")
			assert.Less(t, w.Previous.End, w.Gap.Start)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	active := activeSet(append(
		keys(t, "2024-05-01", "2024-05-05"),
		keys(t, "2024-05-08", "2024-05-10")...,
	)...)

	first := Build(active, testNow)
	second := Build(active, testNow)

	assert.Equal(t, first, second)
}

func TestBuildIgnoresKeysOutsideWindow(t *testing.T) {
	active := activeSet("2024-01-01", "2024-04-10", "2024-05-10")

	w := Build(active, testNow)

	assert.Equal(t, Segment{Start: 29, End: 29, Len: 1}, w.Trailing)
	assert.Equal(t, 1, w.CurrentStreak)
}
