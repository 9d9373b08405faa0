package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/daap14/teamboard/internal/api/middleware"
	"github.com/daap14/teamboard/internal/api/response"
	"github.com/daap14/teamboard/internal/invitation"
	"github.com/daap14/teamboard/internal/membership"
)

// InvitationManager is the subset of invitation.Manager the handler needs.
type InvitationManager interface {
	Send(ctx context.Context, in invitation.SendInput) (*invitation.Invitation, error)
	Accept(ctx context.Context, token string, userID uuid.UUID) (*membership.Member, error)
	Cancel(ctx context.Context, teamID uuid.UUID, token string) (*invitation.Invitation, error)
	List(ctx context.Context, teamID uuid.UUID) ([]invitation.Invitation, error)
}

type sendInvitationRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Role  string `json:"role" validate:"omitempty,assignable_role"`
}

type invitationResponse struct {
	ID        string `json:"id"`
	TeamID    string `json:"teamId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Token     string `json:"token"`
	Status    string `json:"status"`
	InvitedBy string `json:"invitedBy"`
	ExpiresAt string `json:"expiresAt"`
	CreatedAt string `json:"createdAt"`
}

func toInvitationResponse(inv *invitation.Invitation) invitationResponse {
	return invitationResponse{
		ID:        inv.ID.String(),
		TeamID:    inv.TeamID.String(),
		Email:     inv.Email,
		Role:      string(inv.Role),
		Token:     inv.Token,
		Status:    string(inv.Status),
		InvitedBy: inv.InvitedBy.String(),
		ExpiresAt: formatTime(inv.ExpiresAt),
		CreatedAt: formatTime(inv.CreatedAt),
	}
}

// InvitationHandler handles invitation endpoints.
type InvitationHandler struct {
	mgr InvitationManager
}

// NewInvitationHandler creates a new InvitationHandler.
func NewInvitationHandler(mgr InvitationManager) *InvitationHandler {
	return &InvitationHandler{mgr: mgr}
}

// List handles GET /teams/{teamId}/invitations.
func (h *InvitationHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teamID, ok := uuidParam(w, r, middleware.TeamIDParam, requestID)
	if !ok {
		return
	}

	invitations, err := h.mgr.List(r.Context(), teamID)
	if err != nil {
		response.Internal(w, err, "Failed to list invitations", requestID, "team_id", teamID)
		return
	}

	items := make([]invitationResponse, 0, len(invitations))
	for i := range invitations {
		items = append(items, toInvitationResponse(&invitations[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), 1, len(items), requestID)
}

// Send handles POST /teams/{teamId}/invitations.
func (h *InvitationHandler) Send(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := actor(w, r, requestID)
	if !ok {
		return
	}
	teamID, ok := uuidParam(w, r, middleware.TeamIDParam, requestID)
	if !ok {
		return
	}

	var req sendInvitationRequest
	if !decodeAndValidate(w, r, &req, requestID) {
		return
	}

	inv, err := h.mgr.Send(r.Context(), invitation.SendInput{
		TeamID:    teamID,
		Email:     req.Email,
		Role:      membership.Role(req.Role),
		InvitedBy: identity.UserID,
	})
	if err != nil {
		switch {
		case errors.Is(err, invitation.ErrAlreadyMember):
			response.Err(w, http.StatusConflict, "ALREADY_MEMBER", "User is already a member of this team", requestID)
		case errors.Is(err, invitation.ErrInvitationExists):
			response.Err(w, http.StatusConflict, "INVITATION_EXISTS", "An active invitation already exists for this email", requestID)
		default:
			response.Internal(w, err, "Failed to send invitation", requestID, "team_id", teamID)
		}
		return
	}

	response.Success(w, http.StatusCreated, toInvitationResponse(inv), requestID)
}

// Cancel handles DELETE /teams/{teamId}/invitations/{token}.
func (h *InvitationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teamID, ok := uuidParam(w, r, middleware.TeamIDParam, requestID)
	if !ok {
		return
	}
	token := chi.URLParam(r, "token")

	inv, err := h.mgr.Cancel(r.Context(), teamID, token)
	if err != nil {
		if errors.Is(err, invitation.ErrInvitationNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Invitation not found", requestID)
			return
		}
		response.Internal(w, err, "Failed to cancel invitation", requestID, "team_id", teamID)
		return
	}

	response.Success(w, http.StatusOK, toInvitationResponse(inv), requestID)
}

// Accept handles POST /invitations/accept/{token} for the authenticated user.
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := actor(w, r, requestID)
	if !ok {
		return
	}
	token := chi.URLParam(r, "token")

	member, err := h.mgr.Accept(r.Context(), token, identity.UserID)
	if err != nil {
		var notPending *invitation.NotPendingError
		switch {
		case errors.Is(err, invitation.ErrInvitationNotFound):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Invitation not found", requestID)
		case errors.Is(err, invitation.ErrInvitationExpired):
			response.Err(w, http.StatusGone, "INVITATION_EXPIRED", "Invitation has expired", requestID)
		case errors.As(err, &notPending):
			response.Err(w, http.StatusConflict, "INVITATION_NOT_PENDING", "Invitation already "+strings.ToLower(string(notPending.Status)), requestID)
		case errors.Is(err, invitation.ErrAlreadyMember):
			response.Err(w, http.StatusConflict, "ALREADY_MEMBER", "You are already a member of this team", requestID)
		default:
			response.Internal(w, err, "Failed to accept invitation", requestID)
		}
		return
	}

	response.Success(w, http.StatusOK, toMemberResponse(member), requestID)
}
