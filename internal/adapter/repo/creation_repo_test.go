package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/quickai/server/internal/domain"
)

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

type stubDB struct {
	row      stubRow
	rowArgs  []any
	queryErr error
}

func (s *stubDB) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (s *stubDB) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	s.rowArgs = args
	return s.row
}

func (s *stubDB) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, s.queryErr
}

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	now := time.Now()
	db := &stubDB{row: stubRow{scan: func(dest ...any) error {
		*(dest[0].(*string)) = "creation-1"
		*(dest[1].(*time.Time)) = now
		return nil
	}}}
	repo := NewCreationRepository(db)

	c := &domain.Creation{UserID: "user-1", Kind: domain.KindBlogTitle, Prompt: "AI trends", Content: "Top 5 AI Trends"}
	id, err := repo.Append(context.Background(), c)
	if err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	if id != "creation-1" || c.ID != "creation-1" {
		t.Fatalf("id = %q, c.ID = %q", id, c.ID)
	}
	if !c.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt = %v", c.CreatedAt)
	}
	if len(db.rowArgs) != 5 {
		t.Fatalf("insert args = %d, want 5", len(db.rowArgs))
	}
}

func TestAppendWrapsFailureAsStorageError(t *testing.T) {
	db := &stubDB{row: stubRow{scan: func(dest ...any) error {
		return errors.New("connection reset")
	}}}
	repo := NewCreationRepository(db)

	_, err := repo.Append(context.Background(), &domain.Creation{UserID: "user-1", Kind: domain.KindArticle})
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("err = %v, want ErrStorage", err)
	}
}

func TestToggleLikeReportsState(t *testing.T) {
	db := &stubDB{row: stubRow{scan: func(dest ...any) error {
		*(dest[0].(*bool)) = true
		return nil
	}}}
	repo := NewCreationRepository(db)

	liked, err := repo.ToggleLike(context.Background(), "creation-1", "user-2")
	if err != nil {
		t.Fatalf("ToggleLike returned error: %v", err)
	}
	if !liked {
		t.Fatal("liked = false, want true")
	}
}

func TestToggleLikeMissingRowIsNotFound(t *testing.T) {
	repo := NewCreationRepository(&stubDB{})
	_, err := repo.ToggleLike(context.Background(), "missing", "user-2")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListByUserWrapsQueryError(t *testing.T) {
	repo := NewCreationRepository(&stubDB{queryErr: errors.New("boom")})
	if _, err := repo.ListByUser(context.Background(), "user-1"); !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("err = %v, want ErrStorage", err)
	}
}
