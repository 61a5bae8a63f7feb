package dto

import "time"

// UpdateTaskRequest represents the request body for PATCH /tasks/:id.
// Omitted fields are left untouched; an empty team_id detaches the team.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Status      *string    `json:"status,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	TeamID      *string    `json:"team_id,omitempty"`
	AssigneeIDs *[]string  `json:"assignee_ids,omitempty"`
}

// ReviewTaskRequest represents the request body for POST /tasks/:id/review.
type ReviewTaskRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// ReportQuery represents the query parameters shared by report endpoints.
type ReportQuery struct {
	From   string // ?from=2024-01-01
	To     string // ?to=2024-01-31
	Filter string // ?filter=anna or ?resource=seed; "all" disables filtering
	Page   int    // ?page=0
	Size   int    // ?size=20
}
