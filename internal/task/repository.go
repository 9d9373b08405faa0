package task

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrTaskNotFound is returned when a task record is not found.
var ErrTaskNotFound = errors.New("task not found")

// ErrProjectNotFound is returned when a task references a missing project.
var ErrProjectNotFound = errors.New("project not found")

// Repository persists tasks. Every mutation also appends an activity log row
// attributed to actorID in the same transaction.
type Repository interface {
	Create(ctx context.Context, t *Task, actorID uuid.UUID) error
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields, actorID uuid.UUID) (*Task, error)
	Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*Task, error)
}
