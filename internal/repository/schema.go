package repository

import (
	"context"
	"fmt"

	"github.com/allmight/taskapp/internal/database"
)

// EnsureIndexes defines the indexes the repositories rely on. The unique
// email index is what actually enforces one account per address; the
// application-level lookup before insert only produces the friendlier
// error message. Safe to run on every startup.
func EnsureIndexes(ctx context.Context, db database.Database) error {
	statements := []string{
		`DEFINE INDEX IF NOT EXISTS unique_user_email ON TABLE user COLUMNS email UNIQUE`,
		`DEFINE INDEX IF NOT EXISTS task_owner ON TABLE task COLUMNS owner`,
	}

	for _, stmt := range statements {
		if err := db.Execute(ctx, stmt, nil); err != nil {
			return fmt.Errorf("defining index: %w", err)
		}
	}
	return nil
}
