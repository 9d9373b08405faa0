package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/daap14/teamboard/internal/api/middleware"
	"github.com/daap14/teamboard/internal/api/response"
	"github.com/daap14/teamboard/internal/authz"
	"github.com/daap14/teamboard/internal/project"
)

// ProjectAuthorizer decides whether an actor may mutate a project.
type ProjectAuthorizer interface {
	CanMutateProject(ctx context.Context, p *project.Project, actorID uuid.UUID) error
}

type projectNameRequest struct {
	Name string `json:"name" validate:"required,nonblank,max=255"`
}

type projectResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TeamID    string `json:"teamId"`
	OwnerID   string `json:"ownerId"`
	TaskCount int    `json:"taskCount"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toProjectResponse(p *project.Project) projectResponse {
	return projectResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		TeamID:    p.TeamID.String(),
		OwnerID:   p.OwnerID.String(),
		TaskCount: p.TaskCount,
		CreatedAt: formatTime(p.CreatedAt),
		UpdatedAt: formatTime(p.UpdatedAt),
	}
}

// ProjectHandler handles project endpoints.
type ProjectHandler struct {
	repo  project.Repository
	authz ProjectAuthorizer
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(repo project.Repository, authorizer ProjectAuthorizer) *ProjectHandler {
	return &ProjectHandler{repo: repo, authz: authorizer}
}

// List handles GET /teams/{teamId}/projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teamID, ok := uuidParam(w, r, middleware.TeamIDParam, requestID)
	if !ok {
		return
	}

	projects, err := h.repo.ListByTeam(r.Context(), teamID)
	if err != nil {
		response.Internal(w, err, "Failed to list projects", requestID, "team_id", teamID)
		return
	}

	items := make([]projectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, toProjectResponse(&projects[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), 1, len(items), requestID)
}

// Create handles POST /teams/{teamId}/projects. Any team member may create.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := actor(w, r, requestID)
	if !ok {
		return
	}
	teamID, ok := uuidParam(w, r, middleware.TeamIDParam, requestID)
	if !ok {
		return
	}

	var req projectNameRequest
	if !decodeAndValidate(w, r, &req, requestID) {
		return
	}

	p := &project.Project{Name: req.Name, TeamID: teamID, OwnerID: identity.UserID}
	if err := h.repo.Create(r.Context(), p); err != nil {
		response.Internal(w, err, "Failed to create project", requestID, "team_id", teamID)
		return
	}

	response.Success(w, http.StatusCreated, toProjectResponse(p), requestID)
}

// Update handles PATCH /projects/{id}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	p, ok := h.authorizedProject(w, r, requestID)
	if !ok {
		return
	}

	var req projectNameRequest
	if !decodeAndValidate(w, r, &req, requestID) {
		return
	}

	updated, err := h.repo.Rename(r.Context(), p.ID, req.Name)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
			return
		}
		response.Internal(w, err, "Failed to update project", requestID, "project_id", p.ID)
		return
	}

	response.Success(w, http.StatusOK, toProjectResponse(updated), requestID)
}

// Delete handles DELETE /projects/{id}.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	p, ok := h.authorizedProject(w, r, requestID)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), p.ID); err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
			return
		}
		response.Internal(w, err, "Failed to delete project", requestID, "project_id", p.ID)
		return
	}

	response.NoContent(w)
}

// authorizedProject loads {id} and checks the caller may mutate it.
func (h *ProjectHandler) authorizedProject(w http.ResponseWriter, r *http.Request, requestID string) (*project.Project, bool) {
	identity, ok := actor(w, r, requestID)
	if !ok {
		return nil, false
	}
	id, ok := uuidParam(w, r, "id", requestID)
	if !ok {
		return nil, false
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
			return nil, false
		}
		response.Internal(w, err, "Failed to get project", requestID, "project_id", id)
		return nil, false
	}

	if err := h.authz.CanMutateProject(r.Context(), p, identity.UserID); err != nil {
		if errors.Is(err, authz.ErrForbidden) {
			response.Err(w, http.StatusForbidden, "FORBIDDEN", "Not allowed to modify this project", requestID)
			return nil, false
		}
		response.Internal(w, err, "Failed to authorize project change", requestID, "project_id", id)
		return nil, false
	}

	return p, true
}
