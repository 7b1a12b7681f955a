// Package validation normalizes and checks issue input before it reaches storage.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jess-lam/joby-interview/internal/domain"
	"github.com/jess-lam/joby-interview/internal/dto"
)

const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 5000
)

var (
	titleRule       = fmt.Sprintf("required,max=%d", MaxTitleLen)
	descriptionRule = fmt.Sprintf("required,max=%d", MaxDescriptionLen)
	statusRule      = "oneof=open closed"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldError describes one violated field.
type FieldError struct {
	Field   string
	Message string
}

// Error lists every field that failed validation.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type checker struct {
	errs []FieldError
}

func (c *checker) add(field, msg string) {
	c.errs = append(c.errs, FieldError{Field: field, Message: msg})
}

func (c *checker) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &Error{Fields: c.errs}
}

// text trims v and checks it against rule. Returns the trimmed value.
func (c *checker) text(field string, v string, rule string) string {
	v = strings.TrimSpace(v)
	if err := validate.Var(v, rule); err != nil {
		c.add(field, message(err))
	}
	return v
}

func (c *checker) status(v string) domain.Status {
	if err := validate.Var(v, statusRule); err != nil {
		c.add("status", message(err))
		return domain.StatusOpen
	}
	st, err := domain.ParseStatus(v)
	if err != nil {
		c.add("status", err.Error())
	}
	return st
}

// Create validates a create request. A missing or null status defaults to open.
func Create(req dto.CreateIssueRequest) (domain.NewIssue, error) {
	var c checker
	out := domain.NewIssue{Status: domain.StatusOpen}

	if req.Title == nil {
		c.add("title", "field required")
	} else {
		out.Title = c.text("title", *req.Title, titleRule)
	}
	if req.Description == nil {
		c.add("description", "field required")
	} else {
		out.Description = c.text("description", *req.Description, descriptionRule)
	}
	if req.Status != nil {
		out.Status = c.status(*req.Status)
	}

	if err := c.err(); err != nil {
		return domain.NewIssue{}, err
	}
	return out, nil
}

// Update validates a partial update. Only non-nil fields end up in the patch.
func Update(req dto.UpdateIssueRequest) (domain.IssuePatch, error) {
	var c checker
	var patch domain.IssuePatch

	if req.Title != nil {
		v := c.text("title", *req.Title, titleRule)
		patch.Title = &v
	}
	if req.Description != nil {
		v := c.text("description", *req.Description, descriptionRule)
		patch.Description = &v
	}
	if req.Status != nil {
		st := c.status(*req.Status)
		patch.Status = &st
	}

	if err := c.err(); err != nil {
		return domain.IssuePatch{}, err
	}
	return patch, nil
}

func message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return "field cannot be blank"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return "failed on " + fe.Tag()
}
