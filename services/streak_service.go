package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"carcloutAPI/internal/streak"
	"carcloutAPI/internal/types/activity"
)

const (
	defaultRestoreCreditsPerDay = 10
	restoreWindowDays           = 7
	streakValueThreshold        = 7
	streakValueLabel            = "2x XP"
)

var (
	ErrNothingToRestore     = errors.New("nothing to restore")
	ErrRestoreWindowElapsed = errors.New("restore window elapsed")
	ErrNoLongerNeeded       = errors.New("no longer needed")
)

// ActivityStore is the slice of the activity ledger the streak workflows
// need. *ActivityService is the production implementation.
type ActivityStore interface {
	FindUserID(ctx context.Context, clerkID string) (uuid.UUID, error)
	ActiveDays(ctx context.Context, userID uuid.UUID, start, end time.Time) (map[string]bool, error)
	MarkDayActive(ctx context.Context, userID uuid.UUID, day string) error
}

// CreditLedger charges a user's balance. *CreditService is the production
// implementation; it must return ErrInsufficientCredits when the balance
// cannot cover the amount.
type CreditLedger interface {
	Reserve(ctx context.Context, userID uuid.UUID, amount int, reason string) error
}

type Broadcaster interface {
	Publish(ctx context.Context, event string)
}

// StreakService computes streak status and runs the paid restore workflow.
type StreakService struct {
	store      ActivityStore
	credits    CreditLedger
	broadcast  Broadcaster
	costPerDay int
	now        func() time.Time
}

func NewStreakService(store ActivityStore, credits CreditLedger, broadcast Broadcaster) *StreakService {
	costPerDay := defaultRestoreCreditsPerDay
	if v := os.Getenv("STREAK_RESTORE_CREDITS_PER_DAY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			costPerDay = n
		}
	}

	return &StreakService{
		store:      store,
		credits:    credits,
		broadcast:  broadcast,
		costPerDay: costPerDay,
		now:        time.Now,
	}
}

// GetStatus is read only and safe to poll. A user is at risk the whole day
// once they hold a streak and have not acted yet; hoursUntilLoss is wall
// clock time to the next UTC midnight, computed per request.
func (s *StreakService) GetStatus(ctx context.Context, clerkID string) (*activity.StatusResponse, error) {
	userID, err := s.store.FindUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	w, err := s.loadWindow(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	resp := &activity.StatusResponse{
		Streak:           w.CurrentStreak,
		HasActivityToday: w.Days[streak.WindowDays-1].Active,
	}
	resp.AtRisk = resp.Streak > 0 && !resp.HasActivityToday

	if resp.AtRisk {
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
		hours := math.Round(midnight.Sub(now).Hours()*10) / 10
		resp.HoursUntilLoss = &hours
	}

	if resp.Streak >= streakValueThreshold {
		v := streakValueLabel
		resp.StreakValue = &v
	}

	return resp, nil
}

// Restore charges credits for the missed days and backfills them, merging the
// previous run and the trailing run into one streak. The charge happens
// strictly before any activity write: a failed charge leaves activity_days
// untouched. Charge and backfill are separate subsystems with no shared
// transaction, so a crash between them leaves a paid, partially filled gap.
func (s *StreakService) Restore(ctx context.Context, clerkID string) (*activity.RestoreResponse, error) {
	userID, err := s.store.FindUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	w, err := s.loadWindow(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	if w.Gap.Len == 0 || w.Previous.Len == 0 {
		return nil, ErrNothingToRestore
	}

	daysSinceGapEnd := (streak.WindowDays - 1) - w.Gap.End
	if daysSinceGapEnd > restoreWindowDays {
		return nil, ErrRestoreWindowElapsed
	}

	if w.Trailing.Len >= w.Previous.Len {
		return nil, ErrNoLongerNeeded
	}

	cost := w.Gap.Len * s.costPerDay
	reason := fmt.Sprintf("streak_restore:%dd", w.Gap.Len)
	if err := s.credits.Reserve(ctx, userID, cost, reason); err != nil {
		return nil, err
	}

	for i := w.Gap.Start; i <= w.Gap.End; i++ {
		if err := s.store.MarkDayActive(ctx, userID, w.Days[i].Key); err != nil {
			return nil, fmt.Errorf("failed to backfill day %s: %w", w.Days[i].Key, err)
		}
	}

	// Recompute from the ledger rather than summing segment lengths, so
	// concurrent writes cannot drift the reported streak.
	updated, err := s.loadWindow(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	if s.broadcast != nil {
		s.broadcast.Publish(ctx, "streak-restored")
	}

	return &activity.RestoreResponse{
		Restored:         true,
		MissedDays:       w.Gap.Len,
		Cost:             cost,
		NewStreak:        updated.Trailing.Len,
		PrevStreakLen:    w.Previous.Len,
		CurrentStreakLen: w.Trailing.Len,
	}, nil
}

func (s *StreakService) loadWindow(ctx context.Context, userID uuid.UUID, now time.Time) (streak.Window, error) {
	start := now.AddDate(0, 0, -(streak.WindowDays - 1))
	days, err := s.store.ActiveDays(ctx, userID, start, now)
	if err != nil {
		return streak.Window{}, fmt.Errorf("failed to load activity window: %w", err)
	}
	return streak.Build(days, now), nil
}
