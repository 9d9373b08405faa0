package task

import (
	"context"

	"github.com/google/uuid"

	"github.com/daap14/teamboard/internal/realtime"
)

// Realtime event names emitted after a task mutation commits.
const (
	EventCreated = "task:created"
	EventUpdated = "task:updated"
	EventDeleted = "task:deleted"
)

// DeletedPayload is the event body for EventDeleted.
type DeletedPayload struct {
	ID uuid.UUID `json:"id"`
}

// Service wraps the task repository and publishes realtime events.
type Service struct {
	repo   Repository
	events realtime.Broadcaster
}

// NewService creates a new task Service.
func NewService(repo Repository, events realtime.Broadcaster) *Service {
	return &Service{repo: repo, events: events}
}

// Create persists a new task created by actorID.
func (s *Service) Create(ctx context.Context, t *Task, actorID uuid.UUID) error {
	t.CreatedByID = actorID
	if err := s.repo.Create(ctx, t, actorID); err != nil {
		return err
	}
	s.events.Publish(EventCreated, t)
	return nil
}

// List returns a page of a project's tasks.
func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	return s.repo.List(ctx, filter)
}

// Update applies fields to the task.
func (s *Service) Update(ctx context.Context, id uuid.UUID, fields UpdateFields, actorID uuid.UUID) (*Task, error) {
	t, err := s.repo.Update(ctx, id, fields, actorID)
	if err != nil {
		return nil, err
	}
	s.events.Publish(EventUpdated, t)
	return t, nil
}

// Delete removes the task.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	if _, err := s.repo.Delete(ctx, id, actorID); err != nil {
		return err
	}
	s.events.Publish(EventDeleted, DeletedPayload{ID: id})
	return nil
}
