package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/mtlprog/farmops/internal/domain"
	"github.com/mtlprog/farmops/internal/handler/dto"
)

// handleUpdateTask applies a partial update to a task.
// @Summary Update a task
// @Description Partially updates a task. Efficiency of affected workers, leaders and teams is recalculated.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.UpdateTaskRequest true "Fields to change"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /tasks/{id} [patch]
func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.TeamID != nil && *req.TeamID != "" {
		if _, err := uuid.Parse(*req.TeamID); err != nil {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "team_id must be a valid UUID")
			return
		}
	}
	if req.AssigneeIDs != nil {
		for _, id := range *req.AssigneeIDs {
			if _, err := uuid.Parse(id); err != nil {
				respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "assignee_ids must contain valid UUIDs")
				return
			}
		}
	}

	task, err := h.taskService.UpdateTask(ctx, taskID, req.ToTaskPatch())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// handleDeleteTask deletes a task.
// @Summary Delete a task
// @Description Deletes a task. Efficiency of its former assignees, team and leader is recalculated.
// @Tags tasks
// @Param id path string true "Task ID"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /tasks/{id} [delete]
func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(ctx, taskID); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleReviewTask sets the review outcome of a task.
// @Summary Review a task
// @Description Sets ACCEPTED, TERMINATED or FAILED on a task that is DONE or IN_PROGRESS
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.ReviewTaskRequest true "Review outcome"
// @Success 200 {object} dto.TaskEventResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /tasks/{id}/review [post]
func (h *Handler) handleReviewTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	var req dto.ReviewTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	event, err := h.taskService.ReviewTask(ctx, taskID, domain.TaskStatus(req.Status), req.Comment)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskEventResponse(event))
}
