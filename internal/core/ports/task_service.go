package ports

import (
	"context"
	"time"

	"github.com/taskboard/taskboard-api/internal/core/domain"
)

// CreateTaskInput carries the caller-supplied fields for a new task.
// Status and Priority default to "todo" and "medium" when empty.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
}

// UpdateTaskInput is the partial-update DTO. Only non-nil fields are
// applied; the owner id is not part of the patch surface at all.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	DueDate      *time.Time
	ClearDueDate bool
	// Revision, when set, makes the update conditional on the caller's
	// last-seen revision.
	Revision *int64
}

// TaskService is the authorization and mutation engine: every operation is
// scoped to the authenticated owner id resolved by the session middleware.
type TaskService interface {
	List(ctx context.Context, ownerID string) ([]*domain.Task, error)
	Create(ctx context.Context, ownerID string, in CreateTaskInput) (*domain.Task, error)
	Get(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	Update(ctx context.Context, ownerID, taskID string, in UpdateTaskInput) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, taskID string) error
}
