package team

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a row in the teams table.
type Team struct {
	ID          uuid.UUID
	Name        string
	Description *string
	Avatar      *string
	OwnerID     uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UpdateFields holds user-updatable fields on a team.
// Nil fields are not updated.
type UpdateFields struct {
	Name        *string
	Description *string
	Avatar      *string
}
