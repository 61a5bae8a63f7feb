package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/farmops/internal/domain"
	"github.com/mtlprog/farmops/internal/report"
)

// PageResponse wraps one page of a report.
type PageResponse[T any] struct {
	Content       []T `json:"content"`
	PageIndex     int `json:"page_index"`
	PageSize      int `json:"page_size"`
	TotalElements int `json:"total_elements"`
	TotalPages    int `json:"total_pages"`
}

// EfficiencyCounts holds the outcome figures shared by every efficiency row.
type EfficiencyCounts struct {
	AcceptedCount   int     `json:"accepted_count"`
	TerminatedCount int     `json:"terminated_count"`
	FailedCount     int     `json:"failed_count"`
	TasksCount      int     `json:"tasks_count"`
	EfficiencyRate  float64 `json:"efficiency_rate"`
}

// WorkerEfficiency represents one row of the workers report.
type WorkerEfficiency struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	HiredAt   *time.Time `json:"hired_at"`
	TeamCount int        `json:"team_count"`
	EfficiencyCounts
}

// LeaderEfficiency represents one row of the leaders report.
type LeaderEfficiency struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	HiredAt        *time.Time `json:"hired_at"`
	TeamsCount     int        `json:"teams_count"`
	EmployeesCount int        `json:"employees_count"`
	EfficiencyCounts
}

// TeamEfficiency represents one row of the teams report.
type TeamEfficiency struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LeaderName   string `json:"leader_name"`
	MembersCount int    `json:"members_count"`
	EfficiencyCounts
}

// ResourceUsage represents one row of the resource usage report.
// Quantities are serialized as decimal strings.
type ResourceUsage struct {
	ResourceID           string          `json:"resource_id"`
	ResourceName         string          `json:"resource_name"`
	ResourceType         string          `json:"resource_type"`
	Gained               decimal.Decimal `json:"gained" swaggertype:"string"`
	Consumed             decimal.Decimal `json:"consumed" swaggertype:"string"`
	Net                  decimal.Decimal `json:"net" swaggertype:"string"`
	TasksCount           int             `json:"tasks_count"`
	AverageUsage         decimal.Decimal `json:"average_usage" swaggertype:"string"`
	LastUsedAt           time.Time       `json:"last_used_at"`
	PreviousNet          decimal.Decimal `json:"previous_net" swaggertype:"string"`
	PreviousAverageUsage decimal.Decimal `json:"previous_average_usage" swaggertype:"string"`
}

// TaskResponse represents a task after a mutation.
type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	TeamID      *string    `json:"team_id"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	AssigneeIDs []string   `json:"assignee_ids"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskEventResponse represents a single event response (for review).
type TaskEventResponse struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Type      string    `json:"type"`
	OldStatus *string   `json:"old_status"`
	NewStatus *string   `json:"new_status"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPageResponse converts a report page, mapping each row with convert.
func ToPageResponse[T, R any](page report.Page[T], convert func(T) R) PageResponse[R] {
	content := make([]R, len(page.Content))
	for i, item := range page.Content {
		content[i] = convert(item)
	}
	return PageResponse[R]{
		Content:       content,
		PageIndex:     page.PageIndex,
		PageSize:      page.PageSize,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
	}
}

func toEfficiencyCounts(s report.EfficiencySummary) EfficiencyCounts {
	return EfficiencyCounts{
		AcceptedCount:   s.AcceptedCount,
		TerminatedCount: s.TerminatedCount,
		FailedCount:     s.FailedCount,
		TasksCount:      s.TasksCount,
		EfficiencyRate:  s.EfficiencyRate,
	}
}

// ToWorkerEfficiency converts a worker summary.
func ToWorkerEfficiency(s report.EfficiencySummary) WorkerEfficiency {
	return WorkerEfficiency{
		ID:               s.SubjectID,
		Name:             s.Name,
		Status:           s.Status,
		HiredAt:          s.HiredAt,
		TeamCount:        s.TeamCount,
		EfficiencyCounts: toEfficiencyCounts(s),
	}
}

// ToLeaderEfficiency converts a leader summary.
func ToLeaderEfficiency(s report.EfficiencySummary) LeaderEfficiency {
	return LeaderEfficiency{
		ID:               s.SubjectID,
		Name:             s.Name,
		Status:           s.Status,
		HiredAt:          s.HiredAt,
		TeamsCount:       s.TeamsCount,
		EmployeesCount:   s.EmployeesCount,
		EfficiencyCounts: toEfficiencyCounts(s),
	}
}

// ToTeamEfficiency converts a team summary.
func ToTeamEfficiency(s report.EfficiencySummary) TeamEfficiency {
	return TeamEfficiency{
		ID:               s.SubjectID,
		Name:             s.Name,
		LeaderName:       s.LeaderName,
		MembersCount:     s.MembersCount,
		EfficiencyCounts: toEfficiencyCounts(s),
	}
}

// ToResourceUsage converts a resource usage summary.
func ToResourceUsage(s report.ResourceUsageSummary) ResourceUsage {
	return ResourceUsage{
		ResourceID:           s.ResourceID,
		ResourceName:         s.ResourceName,
		ResourceType:         s.ResourceType,
		Gained:               s.Gained,
		Consumed:             s.Consumed,
		Net:                  s.Net,
		TasksCount:           s.TasksCount,
		AverageUsage:         s.AverageUsage,
		LastUsedAt:           s.LastUsedAt,
		PreviousNet:          s.PreviousNet,
		PreviousAverageUsage: s.PreviousAverageUsage,
	}
}

// ToTaskResponse converts domain.Task to TaskResponse.
func ToTaskResponse(task *domain.Task) TaskResponse {
	assignees := task.AssigneeIDs
	if assignees == nil {
		assignees = []string{}
	}
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		TeamID:      task.TeamID,
		Status:      string(task.Status),
		StartDate:   task.StartDate,
		EndDate:     task.EndDate,
		AssigneeIDs: assignees,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTaskEventResponse converts domain.TaskEvent to TaskEventResponse.
func ToTaskEventResponse(event *domain.TaskEvent) TaskEventResponse {
	var oldStatus, newStatus *string
	if event.OldStatus != nil {
		s := string(*event.OldStatus)
		oldStatus = &s
	}
	if event.NewStatus != nil {
		s := string(*event.NewStatus)
		newStatus = &s
	}

	return TaskEventResponse{
		ID:        event.ID,
		TaskID:    event.TaskID,
		Type:      string(event.Type),
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Comment:   event.Comment,
		CreatedAt: event.CreatedAt,
	}
}

// ToTaskPatch converts an update request into a domain patch.
func (r UpdateTaskRequest) ToTaskPatch() domain.TaskPatch {
	patch := domain.TaskPatch{
		Title:       r.Title,
		EndDate:     r.EndDate,
		TeamID:      r.TeamID,
		AssigneeIDs: r.AssigneeIDs,
	}
	if r.Status != nil {
		status := domain.TaskStatus(*r.Status)
		patch.Status = &status
	}
	return patch
}
