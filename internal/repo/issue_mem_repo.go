package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	dom "github.com/jess-lam/joby-interview/internal/domain"
)

// MemIssueRepo keeps issues in process memory. It mirrors the Postgres
// semantics: ids are never reused and updated_at is stamped on every write.
type MemIssueRepo struct {
	mu     sync.RWMutex
	issues map[int64]dom.Issue
	lastID int64
	now    func() time.Time
}

func NewMemIssueRepo() *MemIssueRepo {
	return &MemIssueRepo{
		issues: make(map[int64]dom.Issue),
		now:    time.Now,
	}
}

// SetClock replaces the time source used for created_at/updated_at.
func (r *MemIssueRepo) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *MemIssueRepo) FindByID(ctx context.Context, id int64) (dom.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.issues[id]
	if !ok {
		return dom.Issue{}, ErrNotFound
	}
	return t, nil
}

func (r *MemIssueRepo) ListPage(ctx context.Context, q dom.ListQuery) ([]dom.Issue, int64, error) {
	r.mu.RLock()
	matched := make([]dom.Issue, 0, len(r.issues))
	for _, t := range r.issues {
		if q.Status != nil && t.Status != *q.Status {
			continue
		}
		matched = append(matched, t)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if q.Order == dom.SortAsc {
			if a.CreatedAt != b.CreatedAt {
				return a.CreatedAt < b.CreatedAt
			}
			return a.ID < b.ID
		}
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt > b.CreatedAt
		}
		return a.ID > b.ID
	})

	total := int64(len(matched))
	if q.Offset >= total {
		return []dom.Issue{}, total, nil
	}
	end := q.Offset + int64(q.Limit)
	if end > total {
		end = total
	}
	return matched[q.Offset:end], total, nil
}

func (r *MemIssueRepo) Insert(ctx context.Context, in dom.NewIssue) (dom.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastID++
	ts := r.now().Unix()
	t := dom.Issue{
		ID:          r.lastID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	r.issues[t.ID] = t
	return t, nil
}

func (r *MemIssueRepo) Update(ctx context.Context, id int64, patch dom.IssuePatch) (dom.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.issues[id]
	if !ok {
		return dom.Issue{}, ErrNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	t.UpdatedAt = max(r.now().Unix(), t.CreatedAt)
	r.issues[id] = t
	return t, nil
}

func (r *MemIssueRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.issues[id]; !ok {
		return ErrNotFound
	}
	delete(r.issues, id)
	return nil
}

func (r *MemIssueRepo) Ping(ctx context.Context) error { return nil }
