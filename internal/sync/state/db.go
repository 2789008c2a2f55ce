package state

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mydv/vrsync/internal/db/sqlc"
)

type dbStateService struct {
	pool *pgxpool.Pool
}

// NewDBStateService creates a StateService backed by the sweep_status table
func NewDBStateService(pool *pgxpool.Pool) (StateService, error) {
	if pool == nil {
		return nil, fmt.Errorf("database pool is required")
	}
	return &dbStateService{pool: pool}, nil
}

func (d *dbStateService) ListSweepStatuses(ctx context.Context) (map[string]*SweepStatus, error) {
	rows, err := sqlc.New(d.pool).ListSweepStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sweep statuses: %w", err)
	}

	result := make(map[string]*SweepStatus, len(rows))
	for _, row := range rows {
		result[row.Scope] = dbRowToStatus(sqlc.GetSweepStatusRow(row))
	}
	return result, nil
}

func (d *dbStateService) GetSweepStatus(ctx context.Context, scope string) (*SweepStatus, error) {
	row, err := sqlc.New(d.pool).GetSweepStatus(ctx, scope)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStatusNotFound
		}
		return nil, fmt.Errorf("failed to get sweep status: %w", err)
	}
	return dbRowToStatus(row), nil
}

func (d *dbStateService) UpdateStatusAtomically(
	ctx context.Context,
	scope string,
	fn func(*SweepStatus) bool,
) (bool, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	queries := sqlc.New(d.pool).WithTx(tx)

	// the placeholder row gives FOR UPDATE something to lock on first use
	if err := queries.InitSweepStatus(ctx, scope); err != nil {
		return false, fmt.Errorf("failed to initialize sweep status: %w", err)
	}
	row, err := queries.GetSweepStatusForUpdate(ctx, scope)
	if err != nil {
		return false, fmt.Errorf("failed to lock sweep status: %w", err)
	}

	status := dbRowToStatus(sqlc.GetSweepStatusRow(row))

	if !fn(status) {
		return false, tx.Commit(ctx)
	}

	var message *string
	if status.Message != "" {
		message = &status.Message
	}
	err = queries.UpsertSweepStatus(ctx, sqlc.UpsertSweepStatusParams{
		Scope:         scope,
		Phase:         string(status.Phase),
		Message:       message,
		LastAttempt:   status.LastAttempt,
		LastSweepTime: status.LastSweepTime,
		AttemptCount:  toInt32(status.AttemptCount),
		Candidates:    toInt32(status.Candidates),
		Processed:     toInt32(status.Processed),
		Updated:       toInt32(status.Updated),
		Errors:        toInt32(status.Errors),
	})
	if err != nil {
		return false, fmt.Errorf("failed to store sweep status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit sweep status: %w", err)
	}
	return true, nil
}

// dbRowToStatus converts a sweep_status row to a SweepStatus
func dbRowToStatus(row sqlc.GetSweepStatusRow) *SweepStatus {
	s := &SweepStatus{
		Phase:         SweepPhase(row.Phase),
		LastAttempt:   row.LastAttempt,
		LastSweepTime: row.LastSweepTime,
		AttemptCount:  int(row.AttemptCount),
		Candidates:    int(row.Candidates),
		Processed:     int(row.Processed),
		Updated:       int(row.Updated),
		Errors:        int(row.Errors),
	}
	if row.Message != nil {
		s.Message = *row.Message
	}
	return s
}

func toInt32(n int) int32 {
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(n) // #nosec G115 -- bounded above
}
