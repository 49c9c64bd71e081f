package handler

import (
	"time"

	"github.com/taskboard/taskboard-api/internal/core/domain"
	"github.com/taskboard/taskboard-api/internal/core/ports"
)

var dueDateLayouts = []string{time.RFC3339, "2006-01-02"}

// parseDueDate accepts an RFC 3339 timestamp or a bare date.
func parseDueDate(s string) (*time.Time, error) {
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			utc := t.UTC()
			return &utc, nil
		}
	}
	return nil, domain.Validation("dueDate must be an RFC 3339 timestamp or a date (YYYY-MM-DD)")
}

func toCreateInput(req createTaskRequest) (ports.CreateTaskInput, error) {
	in := ports.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}
	if req.DueDate != "" {
		due, err := parseDueDate(req.DueDate)
		if err != nil {
			return ports.CreateTaskInput{}, err
		}
		in.DueDate = due
	}
	return in, nil
}

func toUpdateInput(req updateTaskRequest) (ports.UpdateTaskInput, error) {
	in := ports.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Revision:    req.Revision,
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			in.ClearDueDate = true
		} else {
			due, err := parseDueDate(*req.DueDate)
			if err != nil {
				return ports.UpdateTaskInput{}, err
			}
			in.DueDate = due
		}
	}
	return in, nil
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		Revision:    t.Revision,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskListResponse(tasks []*domain.Task) []taskResponse {
	out := make([]taskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = toTaskResponse(t)
	}
	return out
}
