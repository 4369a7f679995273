package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mask-drawing/internal/core/domain"
	"mask-drawing/internal/core/port"
	"time"

	"github.com/lib/pq"
)

type sqlTraceRepository struct {
	db SQLQuerier
}

// NewSqlTraceRepository creates sqlTraceRepository that implements port.TraceRepository
func NewSqlTraceRepository(db SQLQuerier) port.TraceRepository {
	return &sqlTraceRepository{
		db: db,
	}
}

// Record upserts the last key seen for role
func (s *sqlTraceRepository) Record(ctx context.Context, role domain.AssetRole, key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", domain.ErrInvalidInputData)
	}

	query := `
		INSERT INTO upload_trace (role, storage_key, recorded_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (role) DO UPDATE
		SET storage_key = EXCLUDED.storage_key, recorded_at = EXCLUDED.recorded_at`

	_, err := s.db.ExecContext(ctx, query, string(role), key)
	if err != nil {
		var pqErr *pq.Error
		// 23514 check_violation: role outside the allowed set
		if errors.As(err, &pqErr) && pqErr.Code == "23514" {
			return fmt.Errorf("role %s : %w", role, domain.ErrInvalidInputData)
		}
		return fmt.Errorf("error recording trace: %w", err)
	}
	return nil
}

// FindByRole finds the trace of role
func (s *sqlTraceRepository) FindByRole(ctx context.Context, role domain.AssetRole) (*domain.TraceEntry, error) {
	query := `SELECT role, storage_key, recorded_at FROM upload_trace WHERE role = $1`

	var traceDB dbTrace
	err := s.db.QueryRowContext(ctx, query, string(role)).Scan(
		&traceDB.Role,
		&traceDB.StorageKey,
		&traceDB.RecordedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTraceNotFound, role)
		}
		return nil, err
	}

	return traceDB.ToDomain(), nil
}

// List returns every trace sorted by role
func (s *sqlTraceRepository) List(ctx context.Context) ([]domain.TraceEntry, error) {
	query := `SELECT role, storage_key, recorded_at FROM upload_trace ORDER BY role ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying traces: %w", err)
	}
	defer rows.Close()

	traces := make([]domain.TraceEntry, 0, 2)
	for rows.Next() {
		var traceDB dbTrace
		if err := rows.Scan(&traceDB.Role, &traceDB.StorageKey, &traceDB.RecordedAt); err != nil {
			return nil, fmt.Errorf("error scanning trace: %w", err)
		}
		traces = append(traces, *traceDB.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating traces: %w", err)
	}

	return traces, nil
}

// dbTrace represents an upload_trace row
type dbTrace struct {
	Role       string    `db:"role"`
	StorageKey string    `db:"storage_key"`
	RecordedAt time.Time `db:"recorded_at"`
}

// ToDomain converts to domain.TraceEntry
func (t *dbTrace) ToDomain() *domain.TraceEntry {
	return &domain.TraceEntry{
		Role:       domain.AssetRole(t.Role),
		Key:        t.StorageKey,
		RecordedAt: t.RecordedAt.UTC(),
	}
}
