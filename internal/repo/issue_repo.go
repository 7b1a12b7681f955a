package repo

import (
	"context"
	"errors"
	"fmt"

	dom "github.com/jess-lam/joby-interview/internal/domain"
	"github.com/jess-lam/joby-interview/internal/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound   = errors.New("issue not found")
	ErrConstraint = errors.New("integrity constraint violation")
)

type IssueRepo interface {
	FindByID(ctx context.Context, id int64) (dom.Issue, error)
	ListPage(ctx context.Context, q dom.ListQuery) ([]dom.Issue, int64, error)
	Insert(ctx context.Context, in dom.NewIssue) (dom.Issue, error)
	Update(ctx context.Context, id int64, patch dom.IssuePatch) (dom.Issue, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGIssueRepo struct {
	db *pgxpool.Pool
}

func NewPGIssueRepo(db *pgxpool.Pool) *PGIssueRepo {
	return &PGIssueRepo{db: db}
}

const issueColumns = `id, title, description, status::text, created_at, updated_at`

func (r *PGIssueRepo) FindByID(ctx context.Context, id int64) (dom.Issue, error) {
	t, err := findIssue(ctx, r.db, id)
	return t, classify("find issue", err)
}

// ListPage counts and fetches within one read-only snapshot so total and
// items agree even under concurrent writes.
func (r *PGIssueRepo) ListPage(ctx context.Context, q dom.ListQuery) ([]dom.Issue, int64, error) {
	var (
		items []dom.Issue
		total int64
	)
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err := pgx.BeginTxFunc(ctx, r.db, opts, func(tx pgx.Tx) error {
		var err error
		total, err = countIssues(ctx, tx, q.Status)
		if err != nil {
			return err
		}
		if q.Offset >= total {
			return nil
		}
		items, err = selectIssues(ctx, tx, q)
		return err
	})
	if err != nil {
		return nil, 0, classify("list issues", err)
	}
	return items, total, nil
}

func (r *PGIssueRepo) Insert(ctx context.Context, in dom.NewIssue) (dom.Issue, error) {
	var out dom.Issue
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		out, err = insertIssue(ctx, tx, in)
		return err
	})
	return out, classify("insert issue", err)
}

// Update applies the non-nil fields of patch. The updated_at trigger stamps the row.
func (r *PGIssueRepo) Update(ctx context.Context, id int64, patch dom.IssuePatch) (dom.Issue, error) {
	var out dom.Issue
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		out, err = updateIssue(ctx, tx, id, patch)
		return err
	})
	return out, classify("update issue", err)
}

func (r *PGIssueRepo) Delete(ctx context.Context, id int64) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return deleteIssue(ctx, tx, id)
	})
	return classify("delete issue", err)
}

func (r *PGIssueRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func findIssue(ctx context.Context, q querier, id int64) (dom.Issue, error) {
	return scanIssue(q.QueryRow(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = $1`, id))
}

func countIssues(ctx context.Context, q querier, status *dom.Status) (int64, error) {
	where, args := statusFilter(status)
	var total int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM issues`+where, args...).Scan(&total)
	return total, err
}

func selectIssues(ctx context.Context, q querier, lq dom.ListQuery) ([]dom.Issue, error) {
	where, args := statusFilter(lq.Status)
	order := "created_at DESC, id DESC"
	if lq.Order == dom.SortAsc {
		order = "created_at ASC, id ASC"
	}
	args = append(args, lq.Limit, lq.Offset)
	query := fmt.Sprintf(`SELECT %s FROM issues%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		issueColumns, where, order, len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]dom.Issue, 0, lq.Limit)
	for rows.Next() {
		t, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func insertIssue(ctx context.Context, q querier, in dom.NewIssue) (dom.Issue, error) {
	query := `
		INSERT INTO issues (title, description, status)
		VALUES ($1, $2, $3::issue_status)
		RETURNING ` + issueColumns
	return scanIssue(q.QueryRow(ctx, query, in.Title, in.Description, dom.FormatStatus(in.Status)))
}

func updateIssue(ctx context.Context, q querier, id int64, patch dom.IssuePatch) (dom.Issue, error) {
	var status *string
	if patch.Status != nil {
		s := dom.FormatStatus(*patch.Status)
		status = &s
	}
	query := `
		UPDATE issues SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			status = COALESCE($4::issue_status, status)
		WHERE id = $1
		RETURNING ` + issueColumns
	return scanIssue(q.QueryRow(ctx, query, id, patch.Title, patch.Description, status))
}

func deleteIssue(ctx context.Context, q querier, id int64) error {
	tag, err := q.Exec(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func statusFilter(status *dom.Status) (string, []any) {
	if status == nil {
		return "", nil
	}
	return ` WHERE status = $1::issue_status`, []any{dom.FormatStatus(*status)}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssue(row rowScanner) (dom.Issue, error) {
	var (
		t      dom.Issue
		status string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return dom.Issue{}, err
	}
	st, err := dom.ParseStatus(status)
	if err != nil {
		return dom.Issue{}, err
	}
	t.Status = st
	return t, nil
}

func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case utils.IsPGIntegrityViolation(err):
		return fmt.Errorf("%s: %w: %w", op, ErrConstraint, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
