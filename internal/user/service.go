package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/leave-management/internal"
	"golang.org/x/crypto/bcrypt"
)

const defaultAnnualLeaveBalance = 25

type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filter ListFilter) ([]*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	UpdateBalance(ctx context.Context, id int64, balance int) error
}

type RoleRepository interface {
	List(ctx context.Context) ([]Role, error)
	GetByID(ctx context.Context, id int64) (*Role, error)
	GetByName(ctx context.Context, name string) (*Role, error)
}

type Service struct {
	repo           Repository
	roles          RoleRepository
	logger         *slog.Logger
	bcryptCost     int
	defaultBalance int
}

type Option func(*Service)

func WithBCryptCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

func WithDefaultBalance(balance int) Option {
	return func(s *Service) {
		if balance >= 0 {
			s.defaultBalance = balance
		}
	}
}

func NewService(repo Repository, roles RoleRepository, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:           repo,
		roles:          roles,
		logger:         logger,
		bcryptCost:     bcrypt.DefaultCost,
		defaultBalance: defaultAnnualLeaveBalance,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// internalError logs err and hides it unless it already is an AppError.
func (s *Service) internalError(ctx context.Context, msg string, err error, args ...any) error {
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr
	}
	s.logger.ErrorContext(ctx, msg, append(args, "error", err)...)
	return internal.NewInternalError(err)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.internalError(ctx, "failed to get user", err, "user_id", id)
	}
	return u, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, internal.NewValidationFieldError("email", "email is required", internal.ErrCodeMissingField)
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, s.internalError(ctx, "failed to get user by email", err)
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*User, error) {
	if filter.Role != "" {
		filter.Role = strings.ToLower(strings.TrimSpace(filter.Role))
	}
	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, s.internalError(ctx, "failed to list users", err)
	}
	return users, nil
}

func (s *Service) Create(ctx context.Context, dto *CreateUserDTO) (*User, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, dto.Email); err == nil {
		return nil, internal.ErrEmailInUse
	} else if !errors.Is(err, internal.ErrUserNotFound) {
		return nil, s.internalError(ctx, "failed to check email", err)
	}

	role, err := s.roles.GetByName(ctx, dto.Role)
	if err != nil {
		return nil, s.internalError(ctx, "failed to resolve role", err, "role", dto.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, s.internalError(ctx, "failed to hash password", err)
	}

	balance := s.defaultBalance
	if dto.AnnualLeaveBalance != nil {
		balance = *dto.AnnualLeaveBalance
	}

	u := &User{
		Email:              dto.Email,
		FirstName:          dto.FirstName,
		LastName:           dto.LastName,
		Department:         dto.Department,
		RoleID:             role.ID,
		AnnualLeaveBalance: balance,
		PasswordHash:       string(hash),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, s.internalError(ctx, "failed to create user", err)
	}

	created, err := s.repo.GetByID(ctx, u.ID)
	if err != nil {
		return nil, s.internalError(ctx, "failed to reload user", err, "user_id", u.ID)
	}

	s.logger.InfoContext(ctx, "user created", "user_id", created.ID, "role", created.Role.String())
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto *UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.internalError(ctx, "failed to get user", err, "user_id", id)
	}

	if dto.FirstName != nil {
		u.FirstName = strings.TrimSpace(*dto.FirstName)
	}
	if dto.LastName != nil {
		u.LastName = strings.TrimSpace(*dto.LastName)
	}
	if dto.Department != nil {
		u.Department = dto.Department
	}
	if dto.Role != nil {
		role, err := s.roles.GetByName(ctx, strings.ToLower(strings.TrimSpace(*dto.Role)))
		if err != nil {
			return nil, s.internalError(ctx, "failed to resolve role", err, "role", *dto.Role)
		}
		u.RoleID = role.ID
	}
	if dto.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*dto.Password), s.bcryptCost)
		if err != nil {
			return nil, s.internalError(ctx, "failed to hash password", err)
		}
		u.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, s.internalError(ctx, "failed to update user", err, "user_id", id)
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.internalError(ctx, "failed to reload user", err, "user_id", id)
	}
	return updated, nil
}

// SetBalance overwrites a user's annual leave balance.
func (s *Service) SetBalance(ctx context.Context, id int64, balance int) error {
	if balance < 0 {
		return internal.NewValidationError("Annual leave balance cannot be negative", internal.ErrCodeInvalidValue)
	}
	if err := s.repo.UpdateBalance(ctx, id, balance); err != nil {
		return s.internalError(ctx, "failed to update balance", err, "user_id", id)
	}
	return nil
}

func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, s.internalError(ctx, "failed to list roles", err)
	}
	return roles, nil
}

func (s *Service) GetRole(ctx context.Context, id int64) (*Role, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, s.internalError(ctx, "failed to get role", err, "role_id", id)
	}
	return role, nil
}
