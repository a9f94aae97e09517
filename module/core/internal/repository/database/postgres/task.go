package postgres

import (
	"context"
	"database/sql"

	"github.com/nandanugg/regionwatch/module/core/domain"
	"github.com/nandanugg/regionwatch/module/core/internal/repository/database"
)

var _ database.TaskRepository = (*TaskRepo)(nil)

type TaskRepo struct {
	db *sql.DB
}

func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

func (r *TaskRepo) List(ctx context.Context) ([]domain.RegisteredTask, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT task_name, task_type, registered_at FROM registered_tasks ORDER BY task_name`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.RegisteredTask
	for rows.Next() {
		var t domain.RegisteredTask
		if err := rows.Scan(&t.TaskName, &t.TaskType, &t.RegisteredAt); err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

func (r *TaskRepo) Upsert(ctx context.Context, task domain.RegisteredTask) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO registered_tasks (task_name, task_type, registered_at) VALUES ($1, $2, $3)
		 ON CONFLICT (task_name) DO UPDATE SET task_type = EXCLUDED.task_type, registered_at = EXCLUDED.registered_at`,
		task.TaskName, task.TaskType, task.RegisteredAt,
	)
	return err
}

func (r *TaskRepo) Delete(ctx context.Context, taskName string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM registered_tasks WHERE task_name = $1`,
		taskName,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
