package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nandanugg/regionwatch/module/core/domain"
	"github.com/nandanugg/regionwatch/module/core/internal/repository/database"
)

var _ database.PermissionRepository = (*PermissionRepo)(nil)

type PermissionRepo struct {
	db *sql.DB
}

func NewPermissionRepo(db *sql.DB) *PermissionRepo {
	return &PermissionRepo{db: db}
}

func (r *PermissionRepo) Get(ctx context.Context, kind domain.PermissionKind) (domain.PermissionStatus, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT status FROM permissions WHERE kind = $1`,
		string(kind),
	)

	var status string
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PermissionUndetermined, nil
		}
		return "", err
	}
	return domain.PermissionStatus(status), nil
}

func (r *PermissionRepo) Set(ctx context.Context, kind domain.PermissionKind, status domain.PermissionStatus) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO permissions (kind, status, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (kind) DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()`,
		string(kind), string(status),
	)
	return err
}
