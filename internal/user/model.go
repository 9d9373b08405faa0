package user

import (
	"time"

	"github.com/google/uuid"
)

// DefaultRole is the coarse global role assigned at registration. Team
// permissions never consult it.
const DefaultRole = "USER"

// User represents a row in the users table.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Avatar       *string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary is the public projection of a user embedded in other resources.
type Summary struct {
	ID     uuid.UUID
	Name   string
	Email  string
	Avatar *string
}
