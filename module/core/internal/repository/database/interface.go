package database

import (
	"context"

	"github.com/nandanugg/regionwatch/module/core/domain"
)

type TaskRepository interface {
	List(ctx context.Context) ([]domain.RegisteredTask, error)
	Upsert(ctx context.Context, task domain.RegisteredTask) error
	// Delete reports whether a registration existed.
	Delete(ctx context.Context, taskName string) (bool, error)
}

// PermissionRepository stores the user's answer per permission kind. Kinds
// never answered read as undetermined.
type PermissionRepository interface {
	Get(ctx context.Context, kind domain.PermissionKind) (domain.PermissionStatus, error)
	Set(ctx context.Context, kind domain.PermissionKind, status domain.PermissionStatus) error
}
