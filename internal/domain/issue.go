package domain

import "fmt"

// Domain entity. Independent of gin, Postgres and the wire format.
type Issue struct {
	ID          int64
	Title       string
	Description string
	Status      Status

	// Unix seconds.
	CreatedAt int64
	UpdatedAt int64
}

// NewIssue is a validated, normalized create request.
type NewIssue struct {
	Title       string
	Description string
	Status      Status
}

// IssuePatch holds only the fields a partial update should overwrite.
type IssuePatch struct {
	Title       *string
	Description *string
	Status      *Status
}

// Empty reports whether the patch changes nothing.
func (p IssuePatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil
}

type Status uint8

const (
	StatusOpen Status = iota
	StatusClosed
)

// ParseStatus is case-sensitive: only "open" and "closed" are accepted.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "open":
		return StatusOpen, nil
	case "closed":
		return StatusClosed, nil
	}
	return StatusOpen, fmt.Errorf("invalid status %q", s)
}

func FormatStatus(s Status) string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

type SortOrder uint8

const (
	SortDesc SortOrder = iota
	SortAsc
)

// ParseSortOrder returns SortAsc only for "asc"; anything else sorts newest first.
func ParseSortOrder(s string) SortOrder {
	if s == "asc" {
		return SortAsc
	}
	return SortDesc
}

func FormatSortOrder(o SortOrder) string {
	if o == SortAsc {
		return "asc"
	}
	return "desc"
}

// ListQuery selects one page of issues.
type ListQuery struct {
	Status *Status
	Order  SortOrder
	Limit  int
	Offset int64
}

// IssuePage is one page of a list result plus pagination metadata.
type IssuePage struct {
	Items      []Issue
	Total      int64
	Page       int
	PerPage    int
	TotalPages int64
}
