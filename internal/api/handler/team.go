package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/daap14/teamboard/internal/api/middleware"
	"github.com/daap14/teamboard/internal/api/response"
	"github.com/daap14/teamboard/internal/authz"
	"github.com/daap14/teamboard/internal/membership"
	"github.com/daap14/teamboard/internal/project"
	"github.com/daap14/teamboard/internal/team"
)

type createTeamRequest struct {
	Name        string  `json:"name" validate:"required,nonblank,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Avatar      *string `json:"avatar" validate:"omitempty,url"`
}

type updateTeamRequest struct {
	Name        *string `json:"name" validate:"omitempty,nonblank,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Avatar      *string `json:"avatar" validate:"omitempty,url"`
}

type teamResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Avatar      *string `json:"avatar"`
	OwnerID     string  `json:"ownerId"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toTeamResponse(t *team.Team) teamResponse {
	return teamResponse{
		ID:          t.ID.String(),
		Name:        t.Name,
		Description: t.Description,
		Avatar:      t.Avatar,
		OwnerID:     t.OwnerID.String(),
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
	}
}

type teamDetailResponse struct {
	teamResponse
	Members  []memberResponse  `json:"members"`
	Projects []projectResponse `json:"projects"`
}

// TeamHandler handles team endpoints.
type TeamHandler struct {
	repo     team.Repository
	members  membership.Store
	projects project.Repository
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(repo team.Repository, members membership.Store, projects project.Repository) *TeamHandler {
	return &TeamHandler{repo: repo, members: members, projects: projects}
}

// Create handles POST /teams. The creator becomes the team's OWNER.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := actor(w, r, requestID)
	if !ok {
		return
	}

	var req createTeamRequest
	if !decodeAndValidate(w, r, &req, requestID) {
		return
	}

	t := &team.Team{
		Name:        req.Name,
		Description: req.Description,
		Avatar:      req.Avatar,
		OwnerID:     identity.UserID,
	}

	if err := h.repo.Create(r.Context(), t); err != nil {
		response.Internal(w, err, "Failed to create team", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toTeamResponse(t), requestID)
}

// List handles GET /teams, returning the caller's teams.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := actor(w, r, requestID)
	if !ok {
		return
	}

	teams, err := h.repo.ListForUser(r.Context(), identity.UserID)
	if err != nil {
		response.Internal(w, err, "Failed to list teams", requestID)
		return
	}

	items := make([]teamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, toTeamResponse(&teams[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), 1, len(items), requestID)
}

// Get handles GET /teams/{teamId}. Members and projects are embedded.
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teamID, ok := uuidParam(w, r, middleware.TeamIDParam, requestID)
	if !ok {
		return
	}

	t, err := h.repo.GetByID(r.Context(), teamID)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
			return
		}
		response.Internal(w, err, "Failed to get team", requestID, "team_id", teamID)
		return
	}

	var (
		members  []membership.Member
		projects []project.Project
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		members, err = h.members.ListByTeam(ctx, teamID)
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = h.projects.ListByTeam(ctx, teamID)
		return err
	})
	if err := g.Wait(); err != nil {
		response.Internal(w, err, "Failed to get team", requestID, "team_id", teamID)
		return
	}

	detail := teamDetailResponse{
		teamResponse: toTeamResponse(t),
		Members:      make([]memberResponse, 0, len(members)),
		Projects:     make([]projectResponse, 0, len(projects)),
	}
	for i := range members {
		detail.Members = append(detail.Members, toMemberResponse(&members[i]))
	}
	for i := range projects {
		detail.Projects = append(detail.Projects, toProjectResponse(&projects[i]))
	}

	response.Success(w, http.StatusOK, detail, requestID)
}

// Update handles PATCH /teams/{teamId}. Only the recorded owner may update.
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := actor(w, r, requestID)
	if !ok {
		return
	}
	teamID, ok := uuidParam(w, r, middleware.TeamIDParam, requestID)
	if !ok {
		return
	}

	var req updateTeamRequest
	if !decodeAndValidate(w, r, &req, requestID) {
		return
	}

	if !h.authorizeOwner(w, r, teamID, identity.UserID, requestID) {
		return
	}

	updated, err := h.repo.Update(r.Context(), teamID, team.UpdateFields{
		Name:        req.Name,
		Description: req.Description,
		Avatar:      req.Avatar,
	})
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
			return
		}
		response.Internal(w, err, "Failed to update team", requestID, "team_id", teamID)
		return
	}

	response.Success(w, http.StatusOK, toTeamResponse(updated), requestID)
}

// Delete handles DELETE /teams/{teamId}. Only the recorded owner may delete.
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := actor(w, r, requestID)
	if !ok {
		return
	}
	teamID, ok := uuidParam(w, r, middleware.TeamIDParam, requestID)
	if !ok {
		return
	}

	if !h.authorizeOwner(w, r, teamID, identity.UserID, requestID) {
		return
	}

	if err := h.repo.Delete(r.Context(), teamID); err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
			return
		}
		response.Internal(w, err, "Failed to delete team", requestID, "team_id", teamID)
		return
	}

	response.NoContent(w)
}

func (h *TeamHandler) authorizeOwner(w http.ResponseWriter, r *http.Request, teamID, actorID uuid.UUID, requestID string) bool {
	t, err := h.repo.GetByID(r.Context(), teamID)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
			return false
		}
		response.Internal(w, err, "Failed to get team", requestID, "team_id", teamID)
		return false
	}

	if err := authz.CanMutateTeam(t, actorID); err != nil {
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "Only the team owner can modify this team", requestID)
		return false
	}
	return true
}
