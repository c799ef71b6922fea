package leavetype

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	leaveTypeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leavetype"
)

// RepositoryAPI returns (nil, nil) from the lookups when nothing matches.
type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*leaveTypeDatamodel.LeaveType, error)
	GetByID(ctx context.Context, id int64) (*leaveTypeDatamodel.LeaveType, error)
	GetByName(ctx context.Context, name string) (*leaveTypeDatamodel.LeaveType, error)
	Create(ctx context.Context, t *leaveTypeDatamodel.LeaveType) error
	Update(ctx context.Context, t *leaveTypeDatamodel.LeaveType) error
	Delete(ctx context.Context, id int64) error
	CountRequestsUsing(ctx context.Context, name string) (int64, error)
}

var (
	ErrNameTaken = internal.NewConflictError("A leave type with this name already exists", internal.ErrCodeConflict)
	errInUse     = internal.NewConflictError("Leave type is used by existing leave requests", internal.ErrCodeLeaveTypeInUse)
)

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) fail(ctx context.Context, msg string, err error) error {
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr
	}
	s.logger.ErrorContext(ctx, msg, "error", err)
	return internal.NewInternalError(err)
}

func (s *Service) GetAll(ctx context.Context) ([]*LeaveType, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, s.fail(ctx, "failed to get leave types", err)
	}

	types := make([]*LeaveType, 0, len(rows))
	for _, row := range rows {
		types = append(types, FromDataModel(row))
	}
	return types, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*LeaveType, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "failed to get leave type", err)
	}
	if row == nil {
		return nil, internal.ErrLeaveTypeNotFound
	}
	return FromDataModel(row), nil
}

// Policy returns the named leave type, or the built-in annual leave policy
// when the catalogue has no such entry.
func (s *Service) Policy(ctx context.Context, name string) (*LeaveType, error) {
	row, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, s.fail(ctx, "failed to get leave policy", err)
	}
	if row == nil {
		s.logger.InfoContext(ctx, "leave type not configured, using defaults", "name", name)
		return Fallback(), nil
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto *CreateLeaveTypeDTO) (*LeaveType, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByName(ctx, dto.Name)
	if err != nil {
		return nil, s.fail(ctx, "failed to check leave type name", err)
	}
	if existing != nil {
		return nil, ErrNameTaken
	}

	balance, rollover := DefaultBalance, DefaultMaxRollover
	if dto.DefaultBalance != nil {
		balance = *dto.DefaultBalance
	}
	if dto.MaxRollover != nil {
		rollover = *dto.MaxRollover
	}

	t := NewLeaveType(dto.Name, dto.Description, balance, rollover)
	row := ToDataModel(t)
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, s.fail(ctx, "failed to create leave type", err)
	}

	s.logger.InfoContext(ctx, "leave type created", "id", row.ID, "name", row.Name)
	return FromDataModel(row), nil
}

// Update renames only when no leave request still carries the old name.
func (s *Service) Update(ctx context.Context, id int64, dto *UpdateLeaveTypeDTO) (*LeaveType, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil && *dto.Name != t.Name {
		other, err := s.repo.GetByName(ctx, *dto.Name)
		if err != nil {
			return nil, s.fail(ctx, "failed to check leave type name", err)
		}
		if other != nil {
			return nil, ErrNameTaken
		}
		if err := s.ensureUnused(ctx, t.Name); err != nil {
			return nil, err
		}
		t.Name = *dto.Name
	}
	if dto.Description != nil {
		t.Description = *dto.Description
	}
	if dto.DefaultBalance != nil {
		t.DefaultBalance = *dto.DefaultBalance
	}
	if dto.MaxRollover != nil {
		t.MaxRollover = *dto.MaxRollover
	}
	t.UpdatedAt = time.Now()

	row := ToDataModel(t)
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, s.fail(ctx, "failed to update leave type", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ensureUnused(ctx, t.Name); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail(ctx, "failed to delete leave type", err)
	}

	s.logger.InfoContext(ctx, "leave type deleted", "id", id, "name", t.Name)
	return nil
}

func (s *Service) ensureUnused(ctx context.Context, name string) error {
	n, err := s.repo.CountRequestsUsing(ctx, name)
	if err != nil {
		return s.fail(ctx, "failed to count leave requests for type", err)
	}
	if n > 0 {
		return errInUse
	}
	return nil
}
