package membership

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotMember is returned by Lookup when the user has no role in the team.
var ErrNotMember = errors.New("not a team member")

// ErrMemberNotFound is returned when a membership row is not found by id.
var ErrMemberNotFound = errors.New("member not found")

// ErrAlreadyMember is returned when (team, user) already has a membership row.
var ErrAlreadyMember = errors.New("user is already a member of this team")

// Store is the authoritative (team, user) -> role mapping.
type Store interface {
	// Lookup returns the user's role in the team, or ErrNotMember.
	Lookup(ctx context.Context, teamID, userID uuid.UUID) (Role, error)
	// Insert creates a membership row; ErrAlreadyMember on a duplicate (team, user).
	Insert(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, teamID, memberID uuid.UUID) (*Member, error)
	UpdateRole(ctx context.Context, teamID, memberID uuid.UUID, role Role) (*Member, error)
	Delete(ctx context.Context, teamID, memberID uuid.UUID) error
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]Member, error)
}
