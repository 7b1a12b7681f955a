package dto

// Pointer fields distinguish "absent or null" from a supplied value.
type CreateIssueRequest struct {
	Title       *string `json:"title" example:"Login button unresponsive"`
	Description *string `json:"description" example:"Clicking login on Safari does nothing"`
	Status      *string `json:"status" enums:"open,closed" example:"open"` // optional, default "open"
}

// UpdateIssueRequest is a partial update: nil fields are left untouched.
type UpdateIssueRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status" enums:"open,closed"`
}

type IssueResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status" enums:"open,closed"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

type ListIssuesResponse struct {
	Items      []IssueResponse `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
	TotalPages int64           `json:"total_pages"`
}

type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
