package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/leave-management/internal"
	coreuser "github.com/frahmantamala/leave-management/internal/core/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type principalRow struct {
	ID       int64
	Email    string
	RoleName string
}

// GetPrincipalByEmail loads the identity fields the request pipeline needs.
func (r *Repository) GetPrincipalByEmail(ctx context.Context, email string) (*internal.User, error) {
	var row principalRow
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id AS id, users.email AS email, roles.name AS role_name").
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("users.email = ?", email).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	return &internal.User{
		ID:    row.ID,
		Email: row.Email,
		Role:  coreuser.ParseRole(row.RoleName),
	}, nil
}
