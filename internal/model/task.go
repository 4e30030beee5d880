package model

import "time"

// Task represents a task record owned by exactly one user.
// Owner is set at creation time and never changes.
type Task struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Owner       string    `json:"owner"`
	CreatedOn   time.Time `json:"created_on"`
	UpdatedOn   time.Time `json:"updated_on"`
}

// SortDirection is the direction of a task list sort
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// TaskListOptions narrows and orders a task listing. All fields are optional;
// the zero value lists every task owned by the caller in store order.
type TaskListOptions struct {
	// Completed filters on the completed flag when non-nil
	Completed *bool

	// SortField is the API-level field name to sort by (e.g. "createdAt")
	SortField string

	// SortDirection is asc unless set to desc
	SortDirection SortDirection

	// Limit caps the number of results when non-nil
	Limit *int

	// Skip offsets into the result set when non-nil
	Skip *int
}
