package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/daap14/teamboard/internal/api/response"
	"github.com/daap14/teamboard/internal/authz"
	"github.com/daap14/teamboard/internal/membership"
)

// TeamIDParam is the route parameter the role gate reads the team from.
const TeamIDParam = "teamId"

// RoleLookup resolves a user's role in a team.
type RoleLookup interface {
	Lookup(ctx context.Context, teamID, userID uuid.UUID) (membership.Role, error)
}

// RequireTeamRole returns middleware that admits only identities whose role
// in the {teamId} team is on the policy's allow-list. It must run after Auth.
func RequireTeamRole(members RoleLookup, policy authz.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			identity := GetIdentity(r.Context())
			if identity == nil {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", requestID)
				return
			}

			teamID, err := uuid.Parse(chi.URLParam(r, TeamIDParam))
			if err != nil {
				response.Err(w, http.StatusBadRequest, "INVALID_ID", "teamId must be a valid UUID", requestID)
				return
			}

			role, err := members.Lookup(r.Context(), teamID, identity.UserID)
			if err != nil {
				if errors.Is(err, membership.ErrNotMember) {
					response.Err(w, http.StatusForbidden, "FORBIDDEN", "Forbidden: not a team member", requestID)
					return
				}
				slog.Error("failed to resolve team role", "error", err, "team_id", teamID, "requestId", requestID)
				response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve team role", requestID)
				return
			}

			if !policy.Permits(role) {
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "Forbidden: insufficient role", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
