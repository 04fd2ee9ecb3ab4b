package activity

import (
	"time"

	"github.com/google/uuid"
)

// Record is one row of the activity ledger: did the user do anything on the
// given UTC day. Rows are created on first activity and flipped by streak
// restores; this subsystem never deletes them.
type Record struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Day       string    `json:"day" db:"day"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CalendarDay struct {
	Date    time.Time `json:"date" db:"date"`
	Active  bool      `json:"active" db:"active"`
	IsToday bool      `json:"is_today"`
}

type CalendarResponse struct {
	Year  int            `json:"year"`
	Month int            `json:"month"`
	Days  []*CalendarDay `json:"days"`
}

type LogResponse struct {
	Logged bool   `json:"logged"`
	Day    string `json:"day"`
}

// StatusResponse keeps the same shape for authenticated and anonymous
// callers so clients never branch on payload structure.
type StatusResponse struct {
	Streak           int      `json:"streak"`
	AtRisk           bool     `json:"atRisk"`
	HasActivityToday bool     `json:"hasActivityToday"`
	HoursUntilLoss   *float64 `json:"hoursUntilLoss"`
	StreakValue      *string  `json:"streakValue"`
}

type RestoreResponse struct {
	Restored         bool `json:"restored"`
	MissedDays       int  `json:"missedDays"`
	Cost             int  `json:"cost"`
	NewStreak        int  `json:"newStreak"`
	PrevStreakLen    int  `json:"prevStreakLen"`
	CurrentStreakLen int  `json:"currentStreakLen"`
}
