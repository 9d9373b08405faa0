package project

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrProjectNotFound is returned when a project record is not found.
var ErrProjectNotFound = errors.New("project not found")

// Project represents a row in the projects table.
type Project struct {
	ID        uuid.UUID
	Name      string
	TeamID    uuid.UUID
	OwnerID   uuid.UUID
	TaskCount int // populated by ListByTeam only
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides CRUD operations on the projects table.
type Repository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]Project, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (*Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
