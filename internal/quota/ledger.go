// Package quota tracks and gates per-user metered usage.
package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/quickai/server/internal/domain"
)

// FreeUsageLimit is the number of completed requests a free-plan user gets
// before further requests are denied.
const FreeUsageLimit = 10

// CheckQuota gates a request before any provider spend. Premium users are
// never metered.
func CheckQuota(plan domain.Plan, freeUsage int) error {
	if plan.Metered() && freeUsage >= FreeUsageLimit {
		return domain.ErrLimitExceeded
	}
	return nil
}

// DB is the subset of pgxpool.Pool the ledger needs.
type DB interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

// Ledger persists per-user usage counters in Postgres. It is the only
// writer of metering state.
type Ledger struct {
	db DB
}

func NewLedger(db DB) *Ledger {
	return &Ledger{db: db}
}

// Usage returns the user's current free-usage counter. Users without a
// counter row count as zero.
func (l *Ledger) Usage(ctx context.Context, userID string) (int, error) {
	var n int
	err := l.db.QueryRow(ctx, `SELECT free_usage FROM usage_counters WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("quota: read usage: %w", err)
	}
	return n, nil
}

// Record increments the counter by exactly one for metered plans and is a
// no-op for premium. The quota check and this increment are not one
// transaction: concurrent requests from the same user can overshoot the
// limit by a small margin, which is accepted.
func (l *Ledger) Record(ctx context.Context, userID string, plan domain.Plan) error {
	if !plan.Metered() {
		return nil
	}
	_, err := l.db.Exec(ctx, `
INSERT INTO usage_counters (user_id, free_usage, updated_at)
VALUES ($1, 1, NOW())
ON CONFLICT (user_id) DO UPDATE
SET free_usage = usage_counters.free_usage + 1,
    updated_at = NOW();
`, userID)
	if err != nil {
		return fmt.Errorf("quota: record usage: %w", err)
	}
	return nil
}
