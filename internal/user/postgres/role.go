package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/user"
	"github.com/jmoiron/sqlx"
)

// RoleRepository reads the role catalogue with plain SQL.
type RoleRepository struct {
	db *sqlx.DB
}

func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) List(ctx context.Context) ([]user.Role, error) {
	roles := []user.Role{}
	if err := r.db.SelectContext(ctx, &roles, "SELECT id, name FROM roles ORDER BY id"); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*user.Role, error) {
	var role user.Role
	query := r.db.Rebind("SELECT id, name FROM roles WHERE id = ?")
	if err := r.db.GetContext(ctx, &role, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*user.Role, error) {
	var role user.Role
	query := r.db.Rebind("SELECT id, name FROM roles WHERE LOWER(name) = LOWER(?)")
	if err := r.db.GetContext(ctx, &role, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}
