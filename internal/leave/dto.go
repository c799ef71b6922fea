package leave

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
)

const DefaultRejectionReason = "Rejected by reviewer"

type CreateLeaveRequestDTO struct {
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	LeaveType *string `json:"leave_type,omitempty"`
	Reason    *string `json:"reason,omitempty"`
}

func (dto *CreateLeaveRequestDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("start_date", dto.StartDate).Required().Date()
	v.Field("end_date", dto.EndDate).Required().Date()
	v.Field("leave_type", dto.LeaveType).MaxLength(100)
	v.Field("reason", dto.Reason).MaxLength(500)

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Period parses the dates of an already validated DTO. The end date must be
// strictly after the start date.
func (dto *CreateLeaveRequestDTO) Period() (time.Time, time.Time, error) {
	start, err := validation.ParseDate(dto.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, internal.NewValidationFieldError("start_date", "start_date must be a valid date (YYYY-MM-DD)", internal.ErrCodeInvalidDate)
	}
	end, err := validation.ParseDate(dto.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, internal.NewValidationFieldError("end_date", "end_date must be a valid date (YYYY-MM-DD)", internal.ErrCodeInvalidDate)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, internal.NewValidationError(
			fmt.Sprintf("End date of %s is before the start date of %s", strings.TrimSpace(dto.EndDate), strings.TrimSpace(dto.StartDate)),
			internal.ErrCodeInvalidDateRange,
		)
	}
	return start, end, nil
}

func (dto *CreateLeaveRequestDTO) leaveType() string {
	if dto.LeaveType == nil {
		return ""
	}
	return *dto.LeaveType
}

type RejectDTO struct {
	Reason *string `json:"reason,omitempty"`
}

func (dto *RejectDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("reason", dto.Reason).MaxLength(500)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// ReasonOrDefault returns the trimmed reason, or the default when blank.
func (dto *RejectDTO) ReasonOrDefault() string {
	if dto == nil || dto.Reason == nil || strings.TrimSpace(*dto.Reason) == "" {
		return DefaultRejectionReason
	}
	return strings.TrimSpace(*dto.Reason)
}

// UpdateBalanceDTO keeps the raw JSON value so that strings, fractions and
// nulls can be reported as invalid numbers rather than decode failures.
type UpdateBalanceDTO struct {
	AnnualLeaveBalance interface{} `json:"annual_leave_balance"`
}

var (
	errBalanceNotNumber = internal.NewValidationError("Annual leave balance must be a valid number", internal.ErrCodeInvalidValue)
	errBalanceNegative  = internal.NewValidationError("Annual leave balance cannot be negative", internal.ErrCodeInvalidValue)
)

// Value returns the balance as a non-negative whole number.
func (dto *UpdateBalanceDTO) Value() (int, error) {
	var f float64
	switch v := dto.AnnualLeaveBalance.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, errBalanceNotNumber
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, errBalanceNotNumber
		}
		f = parsed
	default:
		return 0, errBalanceNotNumber
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, errBalanceNotNumber
	}
	if f < 0 {
		return 0, errBalanceNegative
	}
	return int(f), nil
}

// ListFilter narrows a scoped listing. UserID narrows within the scope.
type ListFilter struct {
	Status *Status
	UserID *int64
}

// Query is what the repository understands. A nil UserIDs means every user;
// an empty, non-nil slice matches nobody.
type Query struct {
	UserIDs []int64
	Status  *Status
}

// ListResult carries the requests and an optional human message for empty
// scoped listings.
type ListResult struct {
	Requests []*LeaveRequestResponse
	Message  string
}

// CreatedLeaveRequest is the create response: the stored request plus the
// balance that would remain once it is approved.
type CreatedLeaveRequest struct {
	*LeaveRequestResponse
	RemainingBalance int `json:"remaining_balance"`
}

type BalanceResponse struct {
	UserID             int64  `json:"user_id"`
	Email              string `json:"email"`
	Name               string `json:"name"`
	AnnualLeaveBalance int    `json:"annual_leave_balance"`
}

// BalanceChange is one user's result of a yearly rollover.
type BalanceChange struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Previous int    `json:"previous"`
	Current  int    `json:"current"`
}
