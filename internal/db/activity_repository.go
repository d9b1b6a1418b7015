package db

import (
	"context"
	"errors"
	"time"

	"feeconsole-service/internal/activity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityRepository is the Postgres-backed activity.Log.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

func (r *ActivityRepository) Append(ctx context.Context, entry activity.Entry) (activity.Entry, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Datetime.IsZero() {
		entry.Datetime = time.Now()
	}

	query := `INSERT INTO activity_log (id, datetime, integration, activity, status, details)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.Datetime, entry.Integration, entry.Activity, entry.Status, entry.Details)
	if err != nil {
		return activity.Entry{}, err
	}
	return entry, nil
}

func (r *ActivityRepository) Entries(ctx context.Context) ([]activity.Entry, error) {
	query := `SELECT id, datetime, integration, activity, status, details
	          FROM activity_log ORDER BY datetime DESC, id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []activity.Entry
	for rows.Next() {
		var entry activity.Entry
		if err := rows.Scan(&entry.ID, &entry.Datetime, &entry.Integration,
			&entry.Activity, &entry.Status, &entry.Details); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *ActivityRepository) Resolve(ctx context.Context, id uuid.UUID, status, details string) error {
	var current string
	err := r.pool.QueryRow(ctx, `SELECT status FROM activity_log WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return activity.ErrEntryNotFound
	}
	if err != nil {
		return err
	}
	if current != activity.StatusPending {
		return activity.ErrNotPending
	}

	query := `UPDATE activity_log SET status = $2,
	          details = CASE WHEN $3 = '' THEN details ELSE $3 END
	          WHERE id = $1 AND status = $4`
	_, err = r.pool.Exec(ctx, query, id, status, details, activity.StatusPending)
	return err
}
