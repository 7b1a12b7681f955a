package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/jess-lam/joby-interview/internal/domain"
	"github.com/jess-lam/joby-interview/internal/dto"
)

func ptr(s string) *string { return &s }

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *validation.Error, got %T: %v", err, err)
	}
	out := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestCreate_TrimsAndDefaultsStatus(t *testing.T) {
	got, err := Create(dto.CreateIssueRequest{
		Title:       ptr("  Broken build \n"),
		Description: ptr("\tCI fails on main  "),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.Title != "Broken build" {
		t.Fatalf("title=%q", got.Title)
	}
	if got.Description != "CI fails on main" {
		t.Fatalf("description=%q", got.Description)
	}
	if got.Status != domain.StatusOpen {
		t.Fatalf("status=%v want open", got.Status)
	}
}

func TestCreate_ExplicitClosed(t *testing.T) {
	got, err := Create(dto.CreateIssueRequest{
		Title:       ptr("t"),
		Description: ptr("d"),
		Status:      ptr("closed"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.Status != domain.StatusClosed {
		t.Fatalf("status=%v want closed", got.Status)
	}
}

func TestCreate_Errors(t *testing.T) {
	cases := []struct {
		name   string
		req    dto.CreateIssueRequest
		fields map[string]string
	}{
		{
			name:   "missing everything",
			req:    dto.CreateIssueRequest{},
			fields: map[string]string{"title": "field required", "description": "field required"},
		},
		{
			name:   "blank title",
			req:    dto.CreateIssueRequest{Title: ptr("   "), Description: ptr("d")},
			fields: map[string]string{"title": "field cannot be blank"},
		},
		{
			name:   "title too long",
			req:    dto.CreateIssueRequest{Title: ptr(strings.Repeat("a", MaxTitleLen+1)), Description: ptr("d")},
			fields: map[string]string{"title": "must be at most 200 characters"},
		},
		{
			name:   "description too long",
			req:    dto.CreateIssueRequest{Title: ptr("t"), Description: ptr(strings.Repeat("b", MaxDescriptionLen+1))},
			fields: map[string]string{"description": "must be at most 5000 characters"},
		},
		{
			name:   "bad status",
			req:    dto.CreateIssueRequest{Title: ptr("t"), Description: ptr("d"), Status: ptr("Open")},
			fields: map[string]string{"status": "must be one of: open, closed"},
		},
		{
			name: "every field wrong",
			req: dto.CreateIssueRequest{
				Title:       ptr(""),
				Description: ptr(" \t "),
				Status:      ptr("pending"),
			},
			fields: map[string]string{
				"title":       "field cannot be blank",
				"description": "field cannot be blank",
				"status":      "must be one of: open, closed",
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Create(tc.req)
			got := fieldsOf(t, err)
			if len(got) != len(tc.fields) {
				t.Fatalf("fields=%v want %v", got, tc.fields)
			}
			for f, msg := range tc.fields {
				if got[f] != msg {
					t.Fatalf("field %s: got %q want %q", f, got[f], msg)
				}
			}
		})
	}
}

func TestCreate_LengthCountsCharacters(t *testing.T) {
	// 200 multi-byte runes is within bounds even though it exceeds 200 bytes.
	title := strings.Repeat("é", MaxTitleLen)
	if _, err := Create(dto.CreateIssueRequest{Title: ptr(title), Description: ptr("d")}); err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func TestCreate_TrimBeforeLengthCheck(t *testing.T) {
	title := "  " + strings.Repeat("a", MaxTitleLen) + "  "
	got, err := Create(dto.CreateIssueRequest{Title: ptr(title), Description: ptr("d")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(got.Title) != MaxTitleLen {
		t.Fatalf("title len=%d", len(got.Title))
	}
}

func TestUpdate_OnlySuppliedFields(t *testing.T) {
	patch, err := Update(dto.UpdateIssueRequest{Title: ptr("  New title ")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if patch.Title == nil || *patch.Title != "New title" {
		t.Fatalf("title=%v", patch.Title)
	}
	if patch.Description != nil || patch.Status != nil {
		t.Fatalf("unexpected fields in patch: %+v", patch)
	}
}

func TestUpdate_Empty(t *testing.T) {
	patch, err := Update(dto.UpdateIssueRequest{})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !patch.Empty() {
		t.Fatalf("patch should be empty: %+v", patch)
	}
}

func TestUpdate_Status(t *testing.T) {
	patch, err := Update(dto.UpdateIssueRequest{Status: ptr("closed")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if patch.Status == nil || *patch.Status != domain.StatusClosed {
		t.Fatalf("status=%v", patch.Status)
	}
}

func TestUpdate_SameRulesAsCreate(t *testing.T) {
	_, err := Update(dto.UpdateIssueRequest{
		Title:       ptr(" "),
		Description: ptr(strings.Repeat("x", MaxDescriptionLen+1)),
		Status:      ptr("reopened"),
	})
	got := fieldsOf(t, err)
	if len(got) != 3 {
		t.Fatalf("fields=%v", got)
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Fields: []FieldError{{Field: "title", Message: "field required"}, {Field: "status", Message: "bad"}}}
	want := "validation failed: title: field required; status: bad"
	if err.Error() != want {
		t.Fatalf("got %q want %q", err.Error(), want)
	}
}
