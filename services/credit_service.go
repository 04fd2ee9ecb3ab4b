package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInsufficientCredits = errors.New("insufficient credits")

// CreditService charges against the users.credits balance and writes an
// audit row per charge into credit_transactions.
type CreditService struct {
	db *pgxpool.Pool
}

func NewCreditService(db *pgxpool.Pool) *CreditService {
	return &CreditService{db: db}
}

// Reserve deducts amount from the user's balance, tagged with reason. The
// balance check and deduction run in one transaction; callers get
// ErrInsufficientCredits when the balance cannot cover the amount.
func (s *CreditService) Reserve(ctx context.Context, userID uuid.UUID, amount int, reason string) error {
	if amount <= 0 {
		return fmt.Errorf("invalid charge amount: %d", amount)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var credits int
	err = tx.QueryRow(ctx, `SELECT credits FROM users WHERE id = $1`, userID).Scan(&credits)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user balance: %w", err)
	}

	if credits < amount {
		return ErrInsufficientCredits
	}

	newBalance := credits - amount
	_, err = tx.Exec(ctx, `UPDATE users SET credits = $1, updated_at = NOW() WHERE id = $2`, newBalance, userID)
	if err != nil {
		return fmt.Errorf("failed to deduct credits: %w", err)
	}

	insertQuery := `
		INSERT INTO credit_transactions (id, user_id, amount, balance_after, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.Exec(ctx, insertQuery, uuid.New(), userID, -amount, newBalance, reason, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record credit transaction: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
