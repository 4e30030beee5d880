package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/allmight/taskapp/internal/database"
	"github.com/allmight/taskapp/internal/model"
)

// TaskRepository handles task data access.
//
// Every read and mutation below is scoped to an owner inside a single query:
// the (id, owner) predicate is never split into a fetch followed by an
// ownership check, so a foreign-owned task and a nonexistent one are
// indistinguishable to callers.
type TaskRepository struct {
	db database.Database
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db database.Database) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create creates a new task owned by ownerID
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	query := `
		CREATE task CONTENT {
			description: $description,
			completed: $completed,
			owner: type::record($owner),
			created_on: time::now(),
			updated_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"description": task.Description,
		"completed":   task.Completed,
		"owner":       task.Owner,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	if data, ok := unwrapOne(result); ok {
		task.ID = convertSurrealID(data["id"])
		task.CreatedOn = getTime(data, "created_on")
		task.UpdatedOn = getTime(data, "updated_on")
		return nil
	}
	return errors.New("no result returned")
}

// GetOwned retrieves a task by id, visible only to its owner.
// Returns nil, nil when the task does not exist or belongs to someone else.
func (r *TaskRepository) GetOwned(ctx context.Context, id, ownerID string) (*model.Task, error) {
	query := `SELECT * FROM type::record($id) WHERE owner = type::record($owner)`
	vars := map[string]interface{}{
		"id":    id,
		"owner": ownerID,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	task, ok := parseTaskResult(result)
	if !ok {
		return nil, nil
	}
	return task, nil
}

// sortColumns maps API sort field names onto stored column names. Anything
// outside this map is not sortable.
var sortColumns = map[string]string{
	"createdAt":   "created_on",
	"updatedAt":   "updated_on",
	"description": "description",
	"completed":   "completed",
}

// SortColumn resolves an API-level sort field name; ok is false for unknown fields
func SortColumn(field string) (string, bool) {
	col, ok := sortColumns[field]
	return col, ok
}

// ListByOwner lists tasks owned by ownerID, applying the optional completed
// filter, sort, limit and skip. Sort fields must come from sortColumns; the
// column name is interpolated because SurrealDB does not parameterize ORDER BY.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string, opts model.TaskListOptions) ([]*model.Task, error) {
	query := `SELECT * FROM task WHERE owner = type::record($owner)`
	vars := map[string]interface{}{"owner": ownerID}

	if opts.Completed != nil {
		query += ` AND completed = $completed`
		vars["completed"] = *opts.Completed
	}

	if opts.SortField != "" {
		col, ok := sortColumns[opts.SortField]
		if !ok {
			return nil, fmt.Errorf("%w: unsortable field %q", database.ErrQuery, opts.SortField)
		}
		query += ` ORDER BY ` + col
		if opts.SortDirection == model.SortDesc {
			query += ` DESC`
		} else {
			query += ` ASC`
		}
	}

	if opts.Limit != nil {
		query += ` LIMIT $limit`
		vars["limit"] = *opts.Limit
	}
	if opts.Skip != nil {
		query += ` START $skip`
		vars["skip"] = *opts.Skip
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	records, ok := extractQueryResults(result)
	if !ok {
		return []*model.Task{}, nil
	}

	tasks := make([]*model.Task, 0, len(records))
	for _, record := range records {
		if task, ok := parseTaskResult(record); ok {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

// UpdateOwned applies the given field updates to a task, scoped to its owner.
// Returns nil, nil when the task does not exist or belongs to someone else.
// Callers are responsible for restricting updates to mutable fields.
func (r *TaskRepository) UpdateOwned(ctx context.Context, id, ownerID string, updates map[string]interface{}) (*model.Task, error) {
	query := `UPDATE type::record($id) SET updated_on = time::now()`
	vars := map[string]interface{}{
		"id":    id,
		"owner": ownerID,
	}

	for _, field := range []string{"description", "completed"} {
		if value, ok := updates[field]; ok {
			query += fmt.Sprintf(`, %s = $%s`, field, field)
			vars[field] = value
		}
	}
	query += ` WHERE owner = type::record($owner)`

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	task, ok := parseTaskResult(result)
	if !ok {
		return nil, nil
	}
	return task, nil
}

// DeleteOwned deletes a task scoped to its owner and returns the deleted
// record, or nil, nil when nothing matched. RETURN BEFORE makes the
// fetch-and-delete a single atomic document operation.
func (r *TaskRepository) DeleteOwned(ctx context.Context, id, ownerID string) (*model.Task, error) {
	query := `DELETE type::record($id) WHERE owner = type::record($owner) RETURN BEFORE`
	vars := map[string]interface{}{
		"id":    id,
		"owner": ownerID,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	task, ok := parseTaskResult(result)
	if !ok {
		return nil, nil
	}
	return task, nil
}

// DeleteByOwner deletes every task owned by ownerID (account deletion cascade)
func (r *TaskRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	query := `DELETE task WHERE owner = type::record($owner)`
	vars := map[string]interface{}{"owner": ownerID}

	return r.db.Execute(ctx, query, vars)
}

// parseTaskResult maps a SurrealDB record payload onto a model.Task
func parseTaskResult(result interface{}) (*model.Task, bool) {
	data, ok := unwrapOne(result)
	if !ok {
		return nil, false
	}

	task := &model.Task{
		ID:          convertSurrealID(data["id"]),
		Description: getString(data, "description"),
		Completed:   getBool(data, "completed"),
		Owner:       convertSurrealID(data["owner"]),
		CreatedOn:   getTime(data, "created_on"),
		UpdatedOn:   getTime(data, "updated_on"),
	}
	return task, true
}
