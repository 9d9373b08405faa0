package invitation

import (
	"time"

	"github.com/google/uuid"

	"github.com/daap14/teamboard/internal/membership"
)

// Status is the lifecycle state of an invitation. PENDING is the only
// non-terminal state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusExpired   Status = "EXPIRED"
	StatusCancelled Status = "CANCELLED"
)

// Terminal reports whether no further transition is valid from s.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// Invitation represents a row in the team_invitations table.
type Invitation struct {
	ID        uuid.UUID
	TeamID    uuid.UUID
	Email     string
	Role      membership.Role
	Token     string
	Status    Status
	InvitedBy uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
