package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carcloutAPI/internal/streak"
	"carcloutAPI/internal/types/activity"
)

// ActivityService owns the activity_days ledger: one row per (user, UTC day),
// upserted on first activity and by streak restores.
type ActivityService struct {
	db *pgxpool.Pool
}

func NewActivityService(db *pgxpool.Pool) *ActivityService {
	return &ActivityService{db: db}
}

func (s *ActivityService) FindUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrUserNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return userID, nil
}

// ActiveDays returns the active flag per day key for [start, end] inclusive.
// Days with no row are simply absent from the map.
func (s *ActivityService) ActiveDays(ctx context.Context, userID uuid.UUID, start, end time.Time) (map[string]bool, error) {
	query := `
	SELECT day, active
	FROM activity_days
	WHERE user_id = $1
		AND day >= $2
		AND day <= $3
	ORDER BY day
	`

	rows, err := s.db.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activity days: %w", err)
	}
	defer rows.Close()

	days := make(map[string]bool)
	for rows.Next() {
		var day time.Time
		var active bool
		if err := rows.Scan(&day, &active); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		days[streak.DayKey(day)] = active
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return days, nil
}

// MarkDayActive upserts a single ledger day to active. Safe to retry per day.
func (s *ActivityService) MarkDayActive(ctx context.Context, userID uuid.UUID, day string) error {
	query := `
        INSERT INTO activity_days (user_id, day, active, created_at, updated_at)
        VALUES ($1, $2, TRUE, NOW(), NOW())
        ON CONFLICT (user_id, day)
        DO UPDATE SET
            active = TRUE,
            updated_at = NOW()
    `

	_, err := s.db.Exec(ctx, query, userID, day)
	if err != nil {
		return fmt.Errorf("failed to mark day active: %w", err)
	}

	return nil
}

// LogToday records a qualifying action for the caller's current UTC day.
func (s *ActivityService) LogToday(ctx context.Context, clerkID string) (*activity.LogResponse, error) {
	userID, err := s.FindUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	day := streak.DayKey(time.Now())
	if err := s.MarkDayActive(ctx, userID, day); err != nil {
		return nil, err
	}

	return &activity.LogResponse{Logged: true, Day: day}, nil
}

func (s *ActivityService) GetCalendar(ctx context.Context, clerkID string, year int, month int) (*activity.CalendarResponse, error) {
	userID, err := s.FindUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	startDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 1, -1)

	dayMap, err := s.ActiveDays(ctx, userID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	var days []*activity.CalendarDay
	today := streak.DayKey(time.Now())

	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		key := streak.DayKey(d)
		days = append(days, &activity.CalendarDay{
			Date:    d,
			Active:  dayMap[key],
			IsToday: key == today,
		})
	}

	return &activity.CalendarResponse{
		Year:  year,
		Month: month,
		Days:  days,
	}, nil
}
