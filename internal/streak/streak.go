package streak

import "time"

// WindowDays is the size of the rolling activity window every streak
// computation operates over.
const WindowDays = 30

type Day struct {
	Key    string `json:"key"`
	Active bool   `json:"active"`
}

// Segment is an inclusive index range into a Window. A zero Segment
// (Len == 0) means the segment is empty.
type Segment struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Len   int `json:"len"`
}

// Window is the computed 30-day activity window for one user, oldest day
// first. Trailing is the most recent active run, Gap the inactive run
// separating it from the active run before it (Previous). Days after the
// trailing run that have no activity yet belong to no segment: a gap only
// exists between two active runs.
type Window struct {
	Days          []Day   `json:"days"`
	CurrentStreak int     `json:"current_streak"`
	Trailing      Segment `json:"trailing"`
	Gap           Segment `json:"gap"`
	Previous      Segment `json:"previous"`
}

// DayKey formats t as a UTC calendar date key (YYYY-MM-DD). Day boundaries
// are UTC midnight everywhere in this service, never user-local.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Build computes the window [now-29 .. now] from the set of active day keys
// and partitions it in a single backward scan. Pure, no I/O; keys outside
// the window are ignored.
func Build(activeDays map[string]bool, now time.Time) Window {
	start := now.UTC().AddDate(0, 0, -(WindowDays - 1))

	days := make([]Day, WindowDays)
	for i := 0; i < WindowDays; i++ {
		key := DayKey(start.AddDate(0, 0, i))
		days[i] = Day{Key: key, Active: activeDays[key]}
	}

	w := Window{Days: days}

	// Days the user simply has not logged yet, counting back from today,
	// are not a gap: nothing active follows them.
	i := WindowDays - 1
	for i >= 0 && !days[i].Active {
		i--
	}

	trailingEnd := i
	for i >= 0 && days[i].Active {
		i--
	}
	w.Trailing = segment(i+1, trailingEnd)

	gapEnd := i
	for i >= 0 && !days[i].Active {
		i--
	}
	w.Gap = segment(i+1, gapEnd)

	prevEnd := i
	for i >= 0 && days[i].Active {
		i--
	}
	w.Previous = segment(i+1, prevEnd)

	w.CurrentStreak = currentStreak(days)

	return w
}

// currentStreak counts consecutive active days ending today. A missing entry
// for today alone does not break the run: the streak stays alive until UTC
// midnight, so counting falls back to the run ending yesterday. Two or more
// missed days mean the streak is gone.
func currentStreak(days []Day) int {
	i := len(days) - 1
	if !days[i].Active {
		i--
	}
	n := 0
	for i >= 0 && days[i].Active {
		n++
		i--
	}
	return n
}

func segment(start, end int) Segment {
	if end < start {
		return Segment{}
	}
	return Segment{Start: start, End: end, Len: end - start + 1}
}
