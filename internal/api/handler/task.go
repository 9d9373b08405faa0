package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/daap14/teamboard/internal/api/middleware"
	"github.com/daap14/teamboard/internal/api/response"
	"github.com/daap14/teamboard/internal/task"
)

// TaskService is the subset of task.Service the handler needs.
type TaskService interface {
	Create(ctx context.Context, t *task.Task, actorID uuid.UUID) error
	List(ctx context.Context, filter task.ListFilter) (*task.ListResult, error)
	Update(ctx context.Context, id uuid.UUID, fields task.UpdateFields, actorID uuid.UUID) (*task.Task, error)
	Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error
}

type createTaskRequest struct {
	Title       string  `json:"title" validate:"required,nonblank,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Status      string  `json:"status" validate:"omitempty,task_status"`
	ProjectID   string  `json:"projectId" validate:"required,uuid"`
}

type updateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,nonblank,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Status      *string `json:"status" validate:"omitempty,task_status"`
}

// TaskHandler handles task endpoints.
type TaskHandler struct {
	svc TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := actor(w, r, requestID)
	if !ok {
		return
	}

	var req createTaskRequest
	if !decodeAndValidate(w, r, &req, requestID) {
		return
	}

	status := task.Status(req.Status)
	if status == "" {
		status = task.StatusTodo
	}

	t := &task.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		ProjectID:   uuid.MustParse(req.ProjectID),
	}

	if err := h.svc.Create(r.Context(), t, identity.UserID); err != nil {
		if errors.Is(err, task.ErrProjectNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
			return
		}
		response.Internal(w, err, "Failed to create task", requestID)
		return
	}

	response.Success(w, http.StatusCreated, t, requestID)
}

// ListByProject handles GET /tasks/project/{projectId}?page=&q=.
func (h *TaskHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	projectID, ok := uuidParam(w, r, "projectId", requestID)
	if !ok {
		return
	}

	filter := task.ListFilter{
		ProjectID: projectID,
		Query:     strings.TrimSpace(r.URL.Query().Get("q")),
	}
	if v := r.URL.Query().Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			response.Err(w, http.StatusBadRequest, "INVALID_PARAM", "page must be a positive integer", requestID)
			return
		}
		if page > task.MaxPage {
			response.Err(w, http.StatusBadRequest, "INVALID_PARAM", fmt.Sprintf("page must not exceed %d", task.MaxPage), requestID)
			return
		}
		filter.Page = page
	}

	result, err := h.svc.List(r.Context(), filter)
	if err != nil {
		response.Internal(w, err, "Failed to list tasks", requestID, "project_id", projectID)
		return
	}

	response.SuccessList(w, http.StatusOK, result.Tasks, result.Total, result.Page, result.Limit, requestID)
}

// Update handles PATCH /tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := actor(w, r, requestID)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", requestID)
	if !ok {
		return
	}

	var req updateTaskRequest
	if !decodeAndValidate(w, r, &req, requestID) {
		return
	}

	fields := task.UpdateFields{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		s := task.Status(*req.Status)
		fields.Status = &s
	}

	t, err := h.svc.Update(r.Context(), id, fields, identity.UserID)
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Task not found", requestID)
			return
		}
		response.Internal(w, err, "Failed to update task", requestID, "task_id", id)
		return
	}

	response.Success(w, http.StatusOK, t, requestID)
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := actor(w, r, requestID)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", requestID)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id, identity.UserID); err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Task not found", requestID)
			return
		}
		response.Internal(w, err, "Failed to delete task", requestID, "task_id", id)
		return
	}

	response.NoContent(w)
}
