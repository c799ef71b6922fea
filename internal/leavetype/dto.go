package leavetype

import (
	"strings"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
)

type CreateLeaveTypeDTO struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	DefaultBalance *int   `json:"default_balance,omitempty"`
	MaxRollover    *int   `json:"max_rollover,omitempty"`
}

func (dto *CreateLeaveTypeDTO) Validate() error {
	dto.Name = strings.TrimSpace(dto.Name)

	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(100)
	v.Field("description", dto.Description).MaxLength(500)
	v.Field("default_balance", dto.DefaultBalance).MinInt(0, internal.ErrCodeInvalidValue).MaxInt(366, internal.ErrCodeInvalidValue)
	v.Field("max_rollover", dto.MaxRollover).MinInt(0, internal.ErrCodeInvalidValue).MaxInt(366, internal.ErrCodeInvalidValue)

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type UpdateLeaveTypeDTO struct {
	Name           *string `json:"name,omitempty"`
	Description    *string `json:"description,omitempty"`
	DefaultBalance *int    `json:"default_balance,omitempty"`
	MaxRollover    *int    `json:"max_rollover,omitempty"`
}

func (dto *UpdateLeaveTypeDTO) Validate() error {
	v := validation.NewValidator()
	if dto.Name != nil {
		trimmed := strings.TrimSpace(*dto.Name)
		dto.Name = &trimmed
		v.Field("name", dto.Name).Required().MaxLength(100)
	}
	v.Field("description", dto.Description).MaxLength(500)
	v.Field("default_balance", dto.DefaultBalance).MinInt(0, internal.ErrCodeInvalidValue).MaxInt(366, internal.ErrCodeInvalidValue)
	v.Field("max_rollover", dto.MaxRollover).MinInt(0, internal.ErrCodeInvalidValue).MaxInt(366, internal.ErrCodeInvalidValue)

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
