package management

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/user"
)

type Repository interface {
	Create(ctx context.Context, m *Mapping) error
	Exists(ctx context.Context, managerID, staffID int64) (bool, error)
	List(ctx context.Context, managerID *int64) ([]*Mapping, error)
}

// UserFinder is the slice of the user service the mapping rules need.
type UserFinder interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

var errStaffOrManagerNotFound = internal.NewNotFoundError("Staff or manager user not found", internal.ErrCodeUserNotFound)

type Service struct {
	repo   Repository
	users  UserFinder
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, users UserFinder, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) internalError(ctx context.Context, msg string, err error) error {
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr
	}
	s.logger.ErrorContext(ctx, msg, "error", err)
	return internal.NewInternalError(err)
}

// Assign maps a staff member to a manager.
func (s *Service) Assign(ctx context.Context, dto *AssignDTO) (*AssignmentResponse, error) {
	start, end, err := dto.Period(s.now())
	if err != nil {
		return nil, err
	}

	for _, id := range []int64{dto.StaffID, dto.ManagerID} {
		if _, err := s.users.GetByID(ctx, id); err != nil {
			if errors.Is(err, internal.ErrUserNotFound) {
				return nil, errStaffOrManagerNotFound
			}
			return nil, s.internalError(ctx, "failed to look up user for assignment", err)
		}
	}

	exists, err := s.repo.Exists(ctx, dto.ManagerID, dto.StaffID)
	if err != nil {
		return nil, s.internalError(ctx, "failed to check existing assignment", err)
	}
	if exists {
		return nil, internal.ErrAlreadyAssigned
	}

	m := &Mapping{
		ManagerID: dto.ManagerID,
		StaffID:   dto.StaffID,
		StartDate: start,
		EndDate:   end,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, s.internalError(ctx, "failed to create assignment", err)
	}

	actor := int64(0)
	if principal, ok := internal.UserFromContext(ctx); ok {
		actor = principal.ID
	}
	s.logger.InfoContext(ctx, "manager assigned to staff",
		"manager_id", m.ManagerID,
		"staff_id", m.StaffID,
		"assigned_by", actor)

	return &AssignmentResponse{
		ID:        m.ID,
		StaffID:   m.StaffID,
		ManagerID: m.ManagerID,
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
	}, nil
}

// ListMappings returns every mapping, or only those of managerID when given.
func (s *Service) ListMappings(ctx context.Context, managerID *int64) ([]*Mapping, error) {
	mappings, err := s.repo.List(ctx, managerID)
	if err != nil {
		return nil, s.internalError(ctx, "failed to list assignments", err)
	}
	return mappings, nil
}

// StaffIDs returns the staff currently managed by managerID.
func (s *Service) StaffIDs(ctx context.Context, managerID int64) ([]int64, error) {
	mappings, err := s.repo.List(ctx, &managerID)
	if err != nil {
		return nil, s.internalError(ctx, "failed to list staff", err)
	}

	now := s.now()
	ids := make([]int64, 0, len(mappings))
	for _, m := range mappings {
		if m.ActiveAt(now) {
			ids = append(ids, m.StaffID)
		}
	}
	return ids, nil
}

// Manages reports whether managerID currently manages staffID.
func (s *Service) Manages(ctx context.Context, managerID, staffID int64) (bool, error) {
	ids, err := s.StaffIDs(ctx, managerID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == staffID {
			return true, nil
		}
	}
	return false, nil
}
