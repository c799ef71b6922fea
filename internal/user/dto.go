package user

import (
	"strings"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
)

const MinPasswordLength = 10

var roleNames = []string{"admin", "manager", "staff"}

type CreateUserDTO struct {
	Email              string  `json:"email"`
	Password           string  `json:"password"`
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	Department         *string `json:"department,omitempty"`
	Role               string  `json:"role"`
	AnnualLeaveBalance *int    `json:"annual_leave_balance,omitempty"`
}

func (dto *CreateUserDTO) Normalize() {
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	dto.FirstName = strings.TrimSpace(dto.FirstName)
	dto.LastName = strings.TrimSpace(dto.LastName)
	dto.Role = strings.ToLower(strings.TrimSpace(dto.Role))
}

func (dto *CreateUserDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", dto.Email).Required().Email().MaxLength(255)
	v.Field("password", dto.Password).Required().MinLength(MinPasswordLength).MaxLength(72)
	v.Field("first_name", dto.FirstName).Required().MaxLength(100)
	v.Field("last_name", dto.LastName).Required().MaxLength(100)
	v.Field("department", dto.Department).MaxLength(100)
	v.Field("role", dto.Role).Required().OneOf(roleNames...)
	v.Field("annual_leave_balance", dto.AnnualLeaveBalance).MinInt(0, internal.ErrCodeInvalidValue)

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// UpdateUserDTO changes only the fields that are present.
type UpdateUserDTO struct {
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Department *string `json:"department,omitempty"`
	Role       *string `json:"role,omitempty"`
	Password   *string `json:"password,omitempty"`
}

func (dto *UpdateUserDTO) Validate() error {
	v := validation.NewValidator()
	if dto.FirstName != nil {
		v.Field("first_name", dto.FirstName).Required().MaxLength(100)
	}
	if dto.LastName != nil {
		v.Field("last_name", dto.LastName).Required().MaxLength(100)
	}
	v.Field("department", dto.Department).MaxLength(100)
	if dto.Role != nil {
		v.Field("role", dto.Role).Required().OneOf(roleNames...)
	}
	if dto.Password != nil {
		v.Field("password", dto.Password).MinLength(MinPasswordLength).MaxLength(72)
	}

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type ListFilter struct {
	Role   string
	Limit  int
	Offset int
}
