package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/quickai/server/internal/domain"
)

// DB is the subset of pgxpool.Pool the repositories need.
type DB interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

// CreationRepositoryPG persists Creation rows in PostgreSQL.
type CreationRepositoryPG struct {
	db DB
}

func NewCreationRepository(db DB) *CreationRepositoryPG {
	return &CreationRepositoryPG{db: db}
}

// Append inserts one completed creation and returns its assigned id. The
// write is all-or-nothing; any failure surfaces as a storage error and no
// row exists.
func (r *CreationRepositoryPG) Append(ctx context.Context, c *domain.Creation) (string, error) {
	row := r.db.QueryRow(ctx, `
INSERT INTO creations (id, user_id, kind, prompt, content, publish, likes, created_at)
VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, '{}', NOW())
RETURNING id, created_at;
`, c.UserID, c.Kind, c.Prompt, c.Content, c.Publish)

	if err := row.Scan(&c.ID, &c.CreatedAt); err != nil {
		return "", fmt.Errorf("append creation: %v: %w", err, domain.ErrStorage)
	}
	return c.ID, nil
}

// ListByUser returns the user's creations, newest first.
func (r *CreationRepositoryPG) ListByUser(ctx context.Context, userID string) ([]domain.Creation, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, user_id, kind, prompt, content, publish, likes, created_at
FROM creations
WHERE user_id = $1
ORDER BY created_at DESC;
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list creations: %v: %w", err, domain.ErrStorage)
	}
	defer rows.Close()
	return scanCreations(rows)
}

// ListPublished returns all publicly visible creations, newest first.
func (r *CreationRepositoryPG) ListPublished(ctx context.Context) ([]domain.Creation, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, user_id, kind, prompt, content, publish, likes, created_at
FROM creations
WHERE publish = TRUE
ORDER BY created_at DESC;
`)
	if err != nil {
		return nil, fmt.Errorf("list published creations: %v: %w", err, domain.ErrStorage)
	}
	defer rows.Close()
	return scanCreations(rows)
}

// ToggleLike adds or removes the user's like on a creation and reports
// whether the creation is liked afterwards.
func (r *CreationRepositoryPG) ToggleLike(ctx context.Context, creationID, userID string) (bool, error) {
	row := r.db.QueryRow(ctx, `
UPDATE creations
SET likes = CASE
  WHEN $2 = ANY(likes) THEN array_remove(likes, $2)
  ELSE array_append(likes, $2)
END
WHERE id = $1
RETURNING $2 = ANY(likes);
`, creationID, userID)

	var liked bool
	if err := row.Scan(&liked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("toggle like: %v: %w", err, domain.ErrStorage)
	}
	return liked, nil
}

func scanCreations(rows pgx.Rows) ([]domain.Creation, error) {
	var out []domain.Creation
	for rows.Next() {
		var c domain.Creation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Kind, &c.Prompt, &c.Content, &c.Publish, &c.Likes, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan creation: %v: %w", err, domain.ErrStorage)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate creations: %v: %w", err, domain.ErrStorage)
	}
	return out, nil
}
