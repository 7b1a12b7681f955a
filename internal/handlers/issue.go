package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	dom "github.com/jess-lam/joby-interview/internal/domain"
	"github.com/jess-lam/joby-interview/internal/dto"
	"github.com/jess-lam/joby-interview/internal/middleware"
	"github.com/jess-lam/joby-interview/internal/service"
	"github.com/jess-lam/joby-interview/internal/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type IssueHandler struct {
	svc *service.IssueService
	log *zap.Logger
}

func NewIssueHandler(svc *service.IssueService, log *zap.Logger) *IssueHandler {
	return &IssueHandler{svc: svc, log: log}
}

// List godoc
// @Summary      List issues
// @Description  One page of 20 issues, optionally filtered by status, sorted by creation time.
// @Tags         issues
// @Produce      json
// @Param        status_filter  query     string  false  "Filter by status"  Enums(open, closed)
// @Param        sort           query     string  false  "Sort by created_at"  Enums(asc, desc)  default(desc)
// @Param        page           query     int     false  "Page number (starts at 1)"  minimum(1)  default(1)
// @Success      200  {object}  dto.ListIssuesResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /issues [get]
func (h *IssueHandler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error:   "invalid query parameters",
			Details: []dto.FieldError{{Field: "page", Message: "must be an integer"}},
		})
		return
	}

	res, err := h.svc.List(c.Request.Context(), service.ListParams{
		StatusFilter: c.Query("status_filter"),
		Sort:         c.DefaultQuery("sort", "desc"),
		Page:         page,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatusFilter):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, service.ErrInvalidPage):
			c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
				Error:   "invalid query parameters",
				Details: []dto.FieldError{{Field: "page", Message: "must be greater than or equal to 1"}},
			})
		default:
			h.internalError(c, "list issues", err)
		}
		return
	}
	c.JSON(http.StatusOK, pageToResponse(res))
}

// GetByID godoc
// @Summary      Get an issue by ID
// @Tags         issues
// @Produce      json
// @Param        id   path      int  true  "Issue ID"
// @Success      200  {object}  dto.IssueResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /issues/{id} [get]
func (h *IssueHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "fetch", id, err)
		return
	}
	c.JSON(http.StatusOK, issueToResponse(t))
}

// Create godoc
// @Summary      Create an issue
// @Tags         issues
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateIssueRequest  true  "Issue body"
// @Success      201   {object}  dto.IssueResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /issues [post]
func (h *IssueHandler) Create(c *gin.Context) {
	var req dto.CreateIssueRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := validation.Create(req)
	if err != nil {
		h.writeError(c, "create", 0, err)
		return
	}
	t, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, "create", 0, err)
		return
	}
	c.JSON(http.StatusCreated, issueToResponse(t))
}

// Update godoc
// @Summary      Partially update an issue
// @Description  Only supplied, non-null fields are changed.
// @Tags         issues
// @Accept       json
// @Produce      json
// @Param        id    path      int  true  "Issue ID"
// @Param        body  body      dto.UpdateIssueRequest  true  "Partial update"
// @Success      200   {object}  dto.IssueResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /issues/{id} [patch]
func (h *IssueHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateIssueRequest
	if !bindJSON(c, &req) {
		return
	}
	patch, err := validation.Update(req)
	if err != nil {
		h.writeError(c, "update", id, err)
		return
	}
	t, err := h.svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.writeError(c, "update", id, err)
		return
	}
	c.JSON(http.StatusOK, issueToResponse(t))
}

// Delete godoc
// @Summary      Delete an issue
// @Tags         issues
// @Param        id   path  int  true  "Issue ID"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /issues/{id} [delete]
func (h *IssueHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, "delete", id, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeError maps a validation or service error to a response. op is the
// verb used in client-facing messages ("create", "update", ...).
func (h *IssueHandler) writeError(c *gin.Context, op string, id int64, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		details := make([]dto.FieldError, len(verr.Fields))
		for i, f := range verr.Fields {
			details[i] = dto.FieldError{Field: f.Field, Message: f.Message}
		}
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: "validation failed", Details: details})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: fmt.Sprintf("Issue with id %d not found", id)})
	case errors.Is(err, service.ErrIntegrity):
		h.log.Warn("integrity violation",
			zap.String("request_id", middleware.RequestIDFromContext(c)),
			zap.String("op", op),
			zap.Int64("issue_id", id),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: fmt.Sprintf("Failed to %s issue due to data integrity constraint violation", op),
		})
	default:
		h.internalError(c, op+" issue", err)
	}
}

func (h *IssueHandler) internalError(c *gin.Context, op string, err error) {
	h.log.Error("storage error",
		zap.String("request_id", middleware.RequestIDFromContext(c)),
		zap.String("op", op),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "An unexpected database error occurred"})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error:   "invalid request body",
			Details: []dto.FieldError{{Field: "body", Message: bodyErrorMessage(err)}},
		})
		return false
	}
	return true
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func issueToResponse(t dom.Issue) dto.IssueResponse {
	return dto.IssueResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      dom.FormatStatus(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func pageToResponse(p dom.IssuePage) dto.ListIssuesResponse {
	items := make([]dto.IssueResponse, len(p.Items))
	for i := range p.Items {
		items[i] = issueToResponse(p.Items[i])
	}
	return dto.ListIssuesResponse{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: p.TotalPages,
	}
}

func bodyErrorMessage(err error) string {
	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)
	switch {
	case errors.Is(err, io.EOF):
		return "request body is required"
	case errors.As(err, &typeErr):
		return fmt.Sprintf("field %q must be a %s", typeErr.Field, typeErr.Type.String())
	case errors.As(err, &syntaxErr):
		return "malformed JSON"
	}
	return err.Error()
}
