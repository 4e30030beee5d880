package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/allmight/taskapp/internal/model"
)

// taskUpdatableFields are the only task fields a PATCH may set
var taskUpdatableFields = map[string]bool{
	"description": true,
	"completed":   true,
}

// TaskRepository defines the interface for task storage
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	GetOwned(ctx context.Context, id, ownerID string) (*model.Task, error)
	ListByOwner(ctx context.Context, ownerID string, opts model.TaskListOptions) ([]*model.Task, error)
	UpdateOwned(ctx context.Context, id, ownerID string, updates map[string]interface{}) (*model.Task, error)
	DeleteOwned(ctx context.Context, id, ownerID string) (*model.Task, error)
	DeleteByOwner(ctx context.Context, ownerID string) error
}

// SortColumnResolver reports whether a sort field is recognized
type SortColumnResolver func(field string) (string, bool)

// TaskService handles task operations. Every operation is scoped to the
// requesting user; tasks owned by others are indistinguishable from tasks
// that do not exist.
type TaskService struct {
	taskRepo    TaskRepository
	resolveSort SortColumnResolver
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo TaskRepository, resolveSort SortColumnResolver) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		resolveSort: resolveSort,
	}
}

// Create creates a task owned by ownerID
func (s *TaskService) Create(ctx context.Context, ownerID, description string, completed bool) (*model.Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}

	task := &model.Task{
		Description: description,
		Completed:   completed,
		Owner:       ownerID,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Get retrieves a single task owned by ownerID
func (s *TaskService) Get(ctx context.Context, id, ownerID string) (*model.Task, error) {
	task, err := s.taskRepo.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// ListQuery carries the raw list parameters as they arrived on the request
type ListQuery struct {
	Completed string
	SortedBy  string
	Limit     string
	Skip      string
}

// List returns the user's tasks. Filter, pagination and sort parameters
// that fail to parse are treated as absent rather than rejected, except
// for a sort naming an unknown field.
func (s *TaskService) List(ctx context.Context, ownerID string, query ListQuery) ([]*model.Task, error) {
	opts := model.TaskListOptions{}

	if query.Completed != "" {
		if completed, err := strconv.ParseBool(query.Completed); err == nil {
			opts.Completed = &completed
		}
	}

	if query.Limit != "" {
		if limit, err := strconv.Atoi(query.Limit); err == nil && limit >= 0 {
			opts.Limit = &limit
		}
	}
	if query.Skip != "" {
		if skip, err := strconv.Atoi(query.Skip); err == nil && skip >= 0 {
			opts.Skip = &skip
		}
	}

	if query.SortedBy != "" {
		field, direction, ok := parseSort(query.SortedBy)
		if ok {
			if _, known := s.resolveSort(field); !known {
				return nil, ErrInvalidSortField
			}
			opts.SortField = field
			opts.SortDirection = direction
		}
	}

	return s.taskRepo.ListByOwner(ctx, ownerID, opts)
}

// parseSort splits a "field:direction" sort expression. A missing or
// unrecognized direction defaults to ascending.
func parseSort(sortedBy string) (string, model.SortDirection, bool) {
	field, dir, found := strings.Cut(sortedBy, ":")
	field = strings.TrimSpace(field)
	if field == "" {
		return "", model.SortAsc, false
	}
	if found && strings.EqualFold(strings.TrimSpace(dir), "desc") {
		return field, model.SortDesc, true
	}
	return field, model.SortAsc, true
}

// Update applies a partial update to a task owned by ownerID. Unknown
// fields reject the whole update before anything is written; an empty
// update reads the task back unchanged.
func (s *TaskService) Update(ctx context.Context, id, ownerID string, updates map[string]json.RawMessage) (*model.Task, error) {
	if len(updates) == 0 {
		return s.Get(ctx, id, ownerID)
	}
	for field := range updates {
		if !taskUpdatableFields[field] {
			return nil, ErrInvalidUpdateField
		}
	}

	values := make(map[string]interface{}, len(updates))
	if raw, ok := updates["description"]; ok {
		var description string
		if err := json.Unmarshal(raw, &description); err != nil {
			return nil, ErrDescriptionRequired
		}
		description = strings.TrimSpace(description)
		if description == "" {
			return nil, ErrDescriptionRequired
		}
		values["description"] = description
	}
	if raw, ok := updates["completed"]; ok {
		var completed bool
		if err := json.Unmarshal(raw, &completed); err != nil {
			return nil, ErrInvalidFieldValue
		}
		values["completed"] = completed
	}

	task, err := s.taskRepo.UpdateOwned(ctx, id, ownerID, values)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// Delete removes a task owned by ownerID and returns the deleted task
func (s *TaskService) Delete(ctx context.Context, id, ownerID string) (*model.Task, error) {
	task, err := s.taskRepo.DeleteOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}
