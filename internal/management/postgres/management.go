package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/leave-management/internal"
	managementDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/management"
	"github.com/frahmantamala/leave-management/internal/management"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the mapping. The unique (manager_id, staff_id) index turns
// a concurrent duplicate into ErrAlreadyAssigned.
func (r *Repository) Create(ctx context.Context, m *management.Mapping) error {
	model := management.ToDataModel(m)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return internal.ErrAlreadyAssigned
		}
		return err
	}
	m.ID = model.ID
	m.CreatedAt = model.CreatedAt
	return nil
}

func (r *Repository) Exists(ctx context.Context, managerID, staffID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&managementDatamodel.UserManagement{}).
		Where("manager_id = ? AND staff_id = ?", managerID, staffID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) List(ctx context.Context, managerID *int64) ([]*management.Mapping, error) {
	query := r.db.WithContext(ctx).Order("id ASC")
	if managerID != nil {
		query = query.Where("manager_id = ?", *managerID)
	}

	var rows []managementDatamodel.UserManagement
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	mappings := make([]*management.Mapping, len(rows))
	for i := range rows {
		mappings[i] = management.FromDataModel(&rows[i])
	}
	return mappings, nil
}
