package task

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Status is the kanban column a task sits in.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Valid reports whether s is a known task status.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task represents a row in the tasks table.
type Task struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      Status    `json:"status"`
	ProjectID   uuid.UUID `json:"projectId"`
	CreatedByID uuid.UUID `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UpdateFields holds updatable task fields. Nil fields are not updated.
type UpdateFields struct {
	Title       *string
	Description *string
	Status      *Status
}

// DefaultPageSize is the number of tasks per listing page.
const DefaultPageSize = 10

// MaxPage bounds the page number so the row offset stays within int32.
const MaxPage = math.MaxInt32 / DefaultPageSize

// ListFilter holds filters and pagination for listing a project's tasks.
type ListFilter struct {
	ProjectID uuid.UUID
	Query     string // case-insensitive title substring
	Page      int    // default 1
	Limit     int    // default 10
}

// ListResult holds the result of a paginated list query.
type ListResult struct {
	Tasks []Task
	Total int
	Page  int
	Limit int
}

// Activity is an append-only audit entry written alongside task mutations.
type Activity struct {
	ID        uuid.UUID
	Action    string
	UserID    uuid.UUID
	ProjectID uuid.UUID
	CreatedAt time.Time
}
