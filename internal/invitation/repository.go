package invitation

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/daap14/teamboard/internal/membership"
)

// ErrInvitationNotFound is returned when no invitation matches.
var ErrInvitationNotFound = errors.New("invitation not found")

// ErrInvitationExists is returned when a PENDING invitation already exists
// for the same team and email.
var ErrInvitationExists = errors.New("an active invitation already exists for this email")

// ErrInvitationExpired is returned when a pending invitation is accepted past
// its expiry. The invitation has been moved to EXPIRED.
var ErrInvitationExpired = errors.New("invitation expired")

// ErrAlreadyMember is returned when the invitee already belongs to the team.
var ErrAlreadyMember = membership.ErrAlreadyMember

// NotPendingError reports an attempt to accept an invitation that is already
// in a terminal state.
type NotPendingError struct {
	Status Status
}

func (e *NotPendingError) Error() string {
	return "invitation already " + strings.ToLower(string(e.Status))
}

// Repository provides persistence for team invitations.
type Repository interface {
	// Create inserts a PENDING invitation. Returns ErrInvitationExists when
	// the pending (team, email) index rejects it.
	Create(ctx context.Context, inv *Invitation) error
	GetByToken(ctx context.Context, token string) (*Invitation, error)
	// FindPending returns the PENDING invitation for (team, email), if any.
	FindPending(ctx context.Context, teamID uuid.UUID, email string) (*Invitation, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]Invitation, error)
	// SetStatusIfPending transitions a PENDING invitation. It returns
	// *NotPendingError when the stored status is already terminal.
	SetStatusIfPending(ctx context.Context, id uuid.UUID, status Status) error
	// Accept inserts the membership and marks the invitation ACCEPTED in one
	// transaction. Returns membership.ErrAlreadyMember or *NotPendingError
	// without writing anything.
	Accept(ctx context.Context, inv *Invitation, userID uuid.UUID) (*membership.Member, error)
	// CancelByToken sets CANCELLED regardless of the current status.
	CancelByToken(ctx context.Context, teamID uuid.UUID, token string) (*Invitation, error)
}
