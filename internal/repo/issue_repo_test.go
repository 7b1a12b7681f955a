package repo

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jess-lam/joby-interview/internal/config"
	"github.com/jess-lam/joby-interview/internal/db"
	dom "github.com/jess-lam/joby-interview/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// newPGRepo connects to TEST_DATABASE_URL, applies migrations and empties the
// issues table. The test is skipped when the variable is unset.
func newPGRepo(t *testing.T) (*PGIssueRepo, *pgxpool.Pool) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	if err := db.Migrate(dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, config.DBConfig{URL: dsn, MaxConns: 4})
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)
	if _, err := pool.Exec(ctx, `TRUNCATE issues`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return NewPGIssueRepo(pool), pool
}

func TestPGIssueRepo_CRUD(t *testing.T) {
	r, _ := newPGRepo(t)
	ctx := context.Background()

	created, err := r.Insert(ctx, dom.NewIssue{Title: "Bug", Description: "Steps", Status: dom.StatusOpen})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if created.ID <= 0 || created.CreatedAt == 0 || created.UpdatedAt < created.CreatedAt {
		t.Fatalf("unexpected row %+v", created)
	}

	got, err := r.FindByID(ctx, created.ID)
	if err != nil || got != created {
		t.Fatalf("FindByID = %+v, %v; want %+v", got, err, created)
	}

	closed := dom.StatusClosed
	updated, err := r.Update(ctx, created.ID, dom.IssuePatch{Status: &closed})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != dom.StatusClosed || updated.Title != "Bug" || updated.Description != "Steps" {
		t.Fatalf("patch touched other fields: %+v", updated)
	}
	if updated.CreatedAt != created.CreatedAt || updated.UpdatedAt < created.UpdatedAt {
		t.Fatalf("timestamps created=%d/%d updated=%d/%d",
			created.CreatedAt, created.UpdatedAt, updated.CreatedAt, updated.UpdatedAt)
	}

	if err := r.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := r.FindByID(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("FindByID after delete err = %v, want ErrNotFound", err)
	}
	if err := r.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete err = %v, want ErrNotFound", err)
	}
	title := "x"
	if _, err := r.Update(ctx, created.ID, dom.IssuePatch{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update after delete err = %v, want ErrNotFound", err)
	}

	next, err := r.Insert(ctx, dom.NewIssue{Title: "Next", Description: "d"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if next.ID <= created.ID {
		t.Fatalf("id %d reused or went backwards (previous %d)", next.ID, created.ID)
	}
}

func TestPGIssueRepo_ListPage(t *testing.T) {
	r, pool := newPGRepo(t)
	ctx := context.Background()

	// Fixed created_at values; rows 3 and 4 share a timestamp to exercise the id tie-break.
	stamps := []int64{100, 200, 300, 300, 500}
	statuses := []string{"open", "closed", "open", "open", "closed"}
	for i, ts := range stamps {
		_, err := pool.Exec(ctx,
			`INSERT INTO issues (title, description, status, created_at, updated_at)
			 VALUES ($1, 'd', $2::issue_status, $3, $3)`,
			"issue", statuses[i], ts)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	items, total, err := r.ListPage(ctx, dom.ListQuery{Order: dom.SortDesc, Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 5 || len(items) != 2 {
		t.Fatalf("total=%d len=%d", total, len(items))
	}
	if items[0].CreatedAt != 500 || items[1].CreatedAt != 300 {
		t.Fatalf("desc order wrong: %+v", items)
	}

	items, _, err = r.ListPage(ctx, dom.ListQuery{Order: dom.SortAsc, Limit: 10})
	if err != nil {
		t.Fatalf("ListPage asc: %v", err)
	}
	for i := 1; i < len(items); i++ {
		prev, cur := items[i-1], items[i]
		if cur.CreatedAt < prev.CreatedAt || (cur.CreatedAt == prev.CreatedAt && cur.ID < prev.ID) {
			t.Fatalf("asc order broken at %d: %+v", i, items)
		}
	}

	open := dom.StatusOpen
	items, total, err = r.ListPage(ctx, dom.ListQuery{Status: &open, Limit: 10})
	if err != nil {
		t.Fatalf("ListPage filter: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("open total=%d len=%d", total, len(items))
	}
	for _, it := range items {
		if it.Status != dom.StatusOpen {
			t.Fatalf("filter leaked %+v", it)
		}
	}

	items, total, err = r.ListPage(ctx, dom.ListQuery{Limit: 10, Offset: 40})
	if err != nil {
		t.Fatalf("ListPage past end: %v", err)
	}
	if total != 5 || len(items) != 0 {
		t.Fatalf("past end total=%d len=%d", total, len(items))
	}
}

func TestPGIssueRepo_ConstraintViolation(t *testing.T) {
	r, _ := newPGRepo(t)
	ctx := context.Background()

	_, err := r.Insert(ctx, dom.NewIssue{Title: "   ", Description: "d"})
	if !errors.Is(err, ErrConstraint) {
		t.Fatalf("blank title err = %v, want ErrConstraint", err)
	}

	created, err := r.Insert(ctx, dom.NewIssue{Title: "ok", Description: "d"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	blank := ""
	if _, err := r.Update(ctx, created.ID, dom.IssuePatch{Description: &blank}); !errors.Is(err, ErrConstraint) {
		t.Fatalf("blank description err = %v, want ErrConstraint", err)
	}
}

func TestPGIssueRepo_Ping(t *testing.T) {
	r, _ := newPGRepo(t)
	if err := r.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
