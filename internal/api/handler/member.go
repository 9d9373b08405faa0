package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/daap14/teamboard/internal/api/middleware"
	"github.com/daap14/teamboard/internal/api/response"
	"github.com/daap14/teamboard/internal/authz"
	"github.com/daap14/teamboard/internal/membership"
	"github.com/daap14/teamboard/internal/user"
)

type addMemberRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
	Role   string `json:"role" validate:"omitempty,assignable_role"`
}

type updateMemberRoleRequest struct {
	Role string `json:"role" validate:"required,assignable_role"`
}

type userSummaryResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Avatar *string `json:"avatar"`
}

type memberResponse struct {
	ID       string               `json:"id"`
	TeamID   string               `json:"teamId"`
	UserID   string               `json:"userId"`
	Role     string               `json:"role"`
	JoinedAt string               `json:"joinedAt"`
	User     *userSummaryResponse `json:"user,omitempty"`
}

func toMemberResponse(m *membership.Member) memberResponse {
	resp := memberResponse{
		ID:       m.ID.String(),
		TeamID:   m.TeamID.String(),
		UserID:   m.UserID.String(),
		Role:     string(m.Role),
		JoinedAt: formatTime(m.JoinedAt),
	}
	if m.User != nil {
		resp.User = &userSummaryResponse{
			ID:     m.User.ID.String(),
			Name:   m.User.Name,
			Email:  m.User.Email,
			Avatar: m.User.Avatar,
		}
	}
	return resp
}

// MemberHandler handles team membership endpoints.
type MemberHandler struct {
	members membership.Store
	users   user.Repository
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(members membership.Store, users user.Repository) *MemberHandler {
	return &MemberHandler{members: members, users: users}
}

// List handles GET /teams/{teamId}/members.
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teamID, ok := uuidParam(w, r, middleware.TeamIDParam, requestID)
	if !ok {
		return
	}

	members, err := h.members.ListByTeam(r.Context(), teamID)
	if err != nil {
		response.Internal(w, err, "Failed to list members", requestID, "team_id", teamID)
		return
	}

	items := make([]memberResponse, 0, len(members))
	for i := range members {
		items = append(items, toMemberResponse(&members[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), 1, len(items), requestID)
}

// Add handles POST /teams/{teamId}/members for an existing user.
func (h *MemberHandler) Add(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teamID, ok := uuidParam(w, r, middleware.TeamIDParam, requestID)
	if !ok {
		return
	}

	var req addMemberRequest
	if !decodeAndValidate(w, r, &req, requestID) {
		return
	}

	userID := uuid.MustParse(req.UserID)
	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		response.Internal(w, err, "Failed to add member", requestID, "team_id", teamID)
		return
	}

	role := membership.Role(req.Role)
	if role == "" {
		role = membership.RoleMember
	}

	m := &membership.Member{TeamID: teamID, UserID: u.ID, Role: role}
	if err := h.members.Insert(r.Context(), m); err != nil {
		if errors.Is(err, membership.ErrAlreadyMember) {
			response.Err(w, http.StatusConflict, "ALREADY_MEMBER", "User is already a member of this team", requestID)
			return
		}
		response.Internal(w, err, "Failed to add member", requestID, "team_id", teamID)
		return
	}
	m.User = &user.Summary{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}

	response.Success(w, http.StatusCreated, toMemberResponse(m), requestID)
}

// UpdateRole handles PATCH /teams/{teamId}/members/{memberId}.
func (h *MemberHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teamID, ok := uuidParam(w, r, middleware.TeamIDParam, requestID)
	if !ok {
		return
	}
	memberID, ok := uuidParam(w, r, "memberId", requestID)
	if !ok {
		return
	}

	var req updateMemberRoleRequest
	if !decodeAndValidate(w, r, &req, requestID) {
		return
	}

	target, ok := h.loadMember(w, r, teamID, memberID, requestID)
	if !ok {
		return
	}

	if err := authz.CheckRoleChange(target); err != nil {
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "Owner role cannot be changed", requestID)
		return
	}

	updated, err := h.members.UpdateRole(r.Context(), teamID, memberID, membership.Role(req.Role))
	if err != nil {
		if errors.Is(err, membership.ErrMemberNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Member not found", requestID)
			return
		}
		response.Internal(w, err, "Failed to update member role", requestID, "member_id", memberID)
		return
	}

	response.Success(w, http.StatusOK, toMemberResponse(updated), requestID)
}

// Remove handles DELETE /teams/{teamId}/members/{memberId}.
func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := actor(w, r, requestID)
	if !ok {
		return
	}
	teamID, ok := uuidParam(w, r, middleware.TeamIDParam, requestID)
	if !ok {
		return
	}
	memberID, ok := uuidParam(w, r, "memberId", requestID)
	if !ok {
		return
	}

	target, ok := h.loadMember(w, r, teamID, memberID, requestID)
	if !ok {
		return
	}

	if err := authz.CheckRemoval(target, identity.UserID); err != nil {
		switch {
		case errors.Is(err, authz.ErrSelfRemoval):
			response.Err(w, http.StatusBadRequest, "SELF_REMOVAL", "You cannot remove yourself", requestID)
		default:
			response.Err(w, http.StatusForbidden, "FORBIDDEN", "Owner cannot be removed", requestID)
		}
		return
	}

	if err := h.members.Delete(r.Context(), teamID, memberID); err != nil {
		if errors.Is(err, membership.ErrMemberNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Member not found", requestID)
			return
		}
		response.Internal(w, err, "Failed to remove member", requestID, "member_id", memberID)
		return
	}

	response.NoContent(w)
}

func (h *MemberHandler) loadMember(w http.ResponseWriter, r *http.Request, teamID, memberID uuid.UUID, requestID string) (*membership.Member, bool) {
	m, err := h.members.GetByID(r.Context(), teamID, memberID)
	if err != nil {
		if errors.Is(err, membership.ErrMemberNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Member not found", requestID)
			return nil, false
		}
		response.Internal(w, err, "Failed to load member", requestID, "member_id", memberID)
		return nil, false
	}
	return m, true
}
