package postgres

import (
	"context"
	"errors"

	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	leaveTypeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leavetype"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	"gorm.io/gorm"
)

type LeaveTypeRepository struct {
	db *gorm.DB
}

func NewLeaveTypeRepository(db *gorm.DB) leavetype.RepositoryAPI {
	return &LeaveTypeRepository{db: db}
}

func (r *LeaveTypeRepository) GetAll(ctx context.Context) ([]*leaveTypeDatamodel.LeaveType, error) {
	var types []*leaveTypeDatamodel.LeaveType
	err := r.db.WithContext(ctx).Order("name ASC").Find(&types).Error
	return types, err
}

func (r *LeaveTypeRepository) GetByName(ctx context.Context, name string) (*leaveTypeDatamodel.LeaveType, error) {
	var t leaveTypeDatamodel.LeaveType
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *LeaveTypeRepository) GetByID(ctx context.Context, id int64) (*leaveTypeDatamodel.LeaveType, error) {
	var t leaveTypeDatamodel.LeaveType
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *LeaveTypeRepository) Create(ctx context.Context, t *leaveTypeDatamodel.LeaveType) error {
	return nameConflict(r.db.WithContext(ctx).Create(t).Error)
}

func (r *LeaveTypeRepository) Update(ctx context.Context, t *leaveTypeDatamodel.LeaveType) error {
	return nameConflict(r.db.WithContext(ctx).Save(t).Error)
}

// nameConflict turns a unique-name violation from a concurrent writer into
// the same conflict the service reports after its own lookup.
func nameConflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return leavetype.ErrNameTaken
	}
	return err
}

func (r *LeaveTypeRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&leaveTypeDatamodel.LeaveType{}, id).Error
}

func (r *LeaveTypeRepository) CountRequestsUsing(ctx context.Context, name string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&leaveDatamodel.LeaveRequest{}).
		Where("leave_type = ?", name).
		Count(&count).Error
	return count, err
}
