package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	dom "github.com/jess-lam/joby-interview/internal/domain"
	"github.com/jess-lam/joby-interview/internal/repo"
)

// PerPage is the fixed list page size.
const PerPage = 20

var (
	ErrNotFound            = errors.New("not found")
	ErrIntegrity           = errors.New("integrity constraint violation")
	ErrInvalidStatusFilter = errors.New("status_filter must be 'open' or 'closed'")
	ErrInvalidPage         = errors.New("page must be greater than or equal to 1")
)

// ListParams are the raw list query parameters.
type ListParams struct {
	StatusFilter string
	Sort         string
	Page         int
}

type IssueService struct {
	repo repo.IssueRepo
}

func NewIssueService(r repo.IssueRepo) *IssueService {
	return &IssueService{repo: r}
}

func (s *IssueService) List(ctx context.Context, p ListParams) (dom.IssuePage, error) {
	if p.Page < 1 {
		return dom.IssuePage{}, ErrInvalidPage
	}
	var status *dom.Status
	if p.StatusFilter != "" {
		st, err := dom.ParseStatus(p.StatusFilter)
		if err != nil {
			return dom.IssuePage{}, ErrInvalidStatusFilter
		}
		status = &st
	}

	items, total, err := s.repo.ListPage(ctx, dom.ListQuery{
		Status: status,
		Order:  dom.ParseSortOrder(p.Sort),
		Limit:  PerPage,
		Offset: Offset(p.Page, PerPage),
	})
	if err != nil {
		return dom.IssuePage{}, err
	}
	if items == nil {
		items = []dom.Issue{}
	}
	return dom.IssuePage{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		PerPage:    PerPage,
		TotalPages: TotalPages(total, PerPage),
	}, nil
}

func (s *IssueService) GetByID(ctx context.Context, id int64) (dom.Issue, error) {
	t, err := s.repo.FindByID(ctx, id)
	return t, translate(err)
}

func (s *IssueService) Create(ctx context.Context, in dom.NewIssue) (dom.Issue, error) {
	t, err := s.repo.Insert(ctx, in)
	return t, translate(err)
}

// Update applies patch. An empty patch writes nothing and leaves updated_at alone.
func (s *IssueService) Update(ctx context.Context, id int64, patch dom.IssuePatch) (dom.Issue, error) {
	if patch.Empty() {
		return s.GetByID(ctx, id)
	}
	t, err := s.repo.Update(ctx, id, patch)
	return t, translate(err)
}

func (s *IssueService) Delete(ctx context.Context, id int64) error {
	return translate(s.repo.Delete(ctx, id))
}

// Ping checks that the backing store is reachable.
func (s *IssueService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// Offset returns the number of rows to skip for a 1-based page. Pages far past
// the end saturate instead of overflowing.
func Offset(page, perPage int) int64 {
	if page < 1 || perPage < 1 {
		return 0
	}
	n := int64(page - 1)
	if n > math.MaxInt64/int64(perPage) {
		return math.MaxInt64
	}
	return n * int64(perPage)
}

// TotalPages is 1 for an empty result, otherwise ceil(total/perPage).
func TotalPages(total int64, perPage int) int64 {
	if total <= 0 {
		return 1
	}
	pp := int64(perPage)
	return (total + pp - 1) / pp
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repo.ErrConstraint):
		return fmt.Errorf("%w: %w", ErrIntegrity, err)
	default:
		return err
	}
}
