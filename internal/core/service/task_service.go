package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/taskboard/taskboard-api/internal/core/domain"
	"github.com/taskboard/taskboard-api/internal/core/ports"
)

// TaskService enforces ownership scoping and field validation for every
// task operation. Identity resolution happens upstream in the session
// middleware; this layer trusts only the ownerID it is handed.
type TaskService struct {
	repo ports.TaskRepository
	log  zerolog.Logger
}

func NewTaskService(repo ports.TaskRepository, log zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, log: log}
}

// List returns the owner's tasks, newest-created-first.
func (s *TaskService) List(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Create persists a new task for the owner. Status defaults to todo and
// priority to medium when omitted; both are validated when supplied.
func (s *TaskService) Create(ctx context.Context, ownerID string, in ports.CreateTaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.Validation("title is required")
	}

	status := domain.StatusTodo
	if in.Status != "" {
		status = domain.TaskStatus(in.Status)
		if !status.Valid() {
			return nil, domain.Validation("status must be one of: todo, in-progress, completed")
		}
	}

	priority := domain.PriorityMedium
	if in.Priority != "" {
		priority = domain.TaskPriority(in.Priority)
		if !priority.Valid() {
			return nil, domain.Validation("priority must be one of: low, medium, high")
		}
	}

	created, err := s.repo.Create(ctx, &domain.Task{
		OwnerID:     ownerID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		Priority:    priority,
		DueDate:     in.DueDate,
	})
	if err != nil {
		s.log.Error().Err(err).Str("owner_id", ownerID).Msg("failed to create task")
		return nil, err
	}

	return created, nil
}

// Get fetches a single task scoped to the owner.
func (s *TaskService) Get(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	return s.repo.FindByID(ctx, ownerID, taskID)
}

// Update applies a partial patch. Only the allow-listed fields ever reach
// the store; an out-of-enumeration status or priority is rejected rather
// than silently stored.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID string, in ports.UpdateTaskInput) (*domain.Task, error) {
	patch := ports.TaskPatch{
		DueDate:          in.DueDate,
		ClearDueDate:     in.ClearDueDate,
		ExpectedRevision: in.Revision,
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, domain.Validation("title is required")
		}
		patch.Title = &title
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		patch.Description = &desc
	}
	if in.Status != nil {
		status := domain.TaskStatus(*in.Status)
		if !status.Valid() {
			return nil, domain.Validation("status must be one of: todo, in-progress, completed")
		}
		patch.Status = &status
	}
	if in.Priority != nil {
		priority := domain.TaskPriority(*in.Priority)
		if !priority.Valid() {
			return nil, domain.Validation("priority must be one of: low, medium, high")
		}
		patch.Priority = &priority
	}

	if patch.Empty() {
		// Nothing to change: report current state, still owner-scoped. A
		// supplied revision is still honoured so a bare revision check never
		// passes silently against a stale task.
		task, err := s.repo.FindByID(ctx, ownerID, taskID)
		if err != nil {
			return nil, err
		}
		if in.Revision != nil && task.Revision != *in.Revision {
			return nil, domain.ErrRevisionMismatch
		}
		return task, nil
	}

	updated, err := s.repo.Update(ctx, ownerID, taskID, patch)
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes the task. A foreign or missing id is the same not-found.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) error {
	return s.repo.Delete(ctx, ownerID, taskID)
}
