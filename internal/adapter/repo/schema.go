package repo

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS creations (
    id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id     TEXT        NOT NULL,
    kind        TEXT        NOT NULL,
    prompt      TEXT        NOT NULL DEFAULT '',
    content     TEXT        NOT NULL,
    publish     BOOLEAN     NOT NULL DEFAULT FALSE,
    likes       TEXT[]      NOT NULL DEFAULT '{}',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_creations_user_id ON creations (user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_creations_publish ON creations (publish) WHERE publish = TRUE;

CREATE TABLE IF NOT EXISTS usage_counters (
    user_id     TEXT PRIMARY KEY,
    free_usage  INT         NOT NULL DEFAULT 0,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// EnsureSchema creates the tables the service needs if they do not exist.
func EnsureSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
