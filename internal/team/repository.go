package team

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrTeamNotFound is returned when a team record is not found.
var ErrTeamNotFound = errors.New("team not found")

// Repository provides CRUD operations on the teams table.
type Repository interface {
	// Create inserts the team and the owner's OWNER membership atomically.
	Create(ctx context.Context, team *Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*Team, error)
	// ListForUser returns the teams the user holds any membership in.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]Team, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Team, error)
	// Delete removes the team; memberships, projects and invitations cascade.
	Delete(ctx context.Context, id uuid.UUID) error
}
