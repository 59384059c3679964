package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// Repository provides PostgreSQL backed persistence for audit events.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends one event to the trail.
func (r *Repository) Insert(ctx context.Context, event Event) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_events (action, scope, subject, actor_id, payload) VALUES ($1, $2, $3, $4, $5)`,
		event.Action, event.Scope, event.Subject, event.ActorID, event.Payload)
	return err
}

// DeleteOlderThan removes events created before the cutoff and reports how
// many were deleted.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM audit_events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListRecent returns a page of events, newest first, optionally filtered by
// scope. The count and page queries run concurrently.
func (r *Repository) ListRecent(ctx context.Context, scope string, limit, offset int) ([]Event, int, error) {
	var (
		total  int
		events []Event
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM audit_events WHERE ($1 = '' OR scope = $1)`, scope).Scan(&total)
	})
	g.Go(func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, action, scope, subject, actor_id, payload, created_at
			 FROM audit_events WHERE ($1 = '' OR scope = $1)
			 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
			scope, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var e Event
			if err := rows.Scan(&e.ID, &e.Action, &e.Scope, &e.Subject, &e.ActorID, &e.Payload, &e.CreatedAt); err != nil {
				return err
			}
			events = append(events, e)
		}
		return rows.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
