package ports

import (
	"context"
	"time"

	"github.com/taskboard/taskboard-api/internal/core/domain"
)

// TaskPatch is the allow-list of fields an update may touch. Nil fields are
// left untouched; DueDate distinguishes "clear" (set, pointing at nil time)
// from "keep" via the Clear flag. ExpectedRevision, when set, makes the
// update conditional and a mismatch yields domain.ErrRevisionMismatch.
type TaskPatch struct {
	Title            *string
	Description      *string
	Status           *domain.TaskStatus
	Priority         *domain.TaskPriority
	DueDate          *time.Time
	ClearDueDate     bool
	ExpectedRevision *int64
}

// Empty reports whether the patch changes nothing. ExpectedRevision is not
// a change; callers holding a revision-only patch check it against the
// current task instead of issuing a write.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.DueDate == nil && !p.ClearDueDate
}

// TaskRepository defines persistence for tasks. Every single-task operation
// filters by both task id and owner id in one store query, so a foreign
// task is indistinguishable from a missing one (domain.ErrTaskNotFound).
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// ListByOwner returns the owner's tasks ordered newest-created-first.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Task, error)
	FindByID(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	// Update applies the patch atomically and returns the updated task.
	Update(ctx context.Context, ownerID, taskID string, patch TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, taskID string) error
}
