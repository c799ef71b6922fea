package management

import (
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
)

type AssignDTO struct {
	StaffID   int64   `json:"staff_id"`
	ManagerID int64   `json:"manager_id"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
}

// AssignmentResponse is returned by a successful assignment.
type AssignmentResponse struct {
	ID        int64      `json:"id"`
	StaffID   int64      `json:"staff_id"`
	ManagerID int64      `json:"manager_id"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// Period validates the ids and resolves the mapping period. A missing start
// date means now.
func (dto *AssignDTO) Period(now time.Time) (time.Time, *time.Time, error) {
	if dto.StaffID <= 0 || dto.ManagerID <= 0 {
		return time.Time{}, nil, internal.NewValidationError("Both staffId and managerId are required", internal.ErrCodeMissingField)
	}

	start := now
	if dto.StartDate != nil && *dto.StartDate != "" {
		parsed, err := validation.ParseDate(*dto.StartDate)
		if err != nil {
			return time.Time{}, nil, internal.NewValidationError("Invalid start date, expected YYYY-MM-DD", internal.ErrCodeInvalidDate)
		}
		start = parsed
	}

	var end *time.Time
	if dto.EndDate != nil && *dto.EndDate != "" {
		parsed, err := validation.ParseDate(*dto.EndDate)
		if err != nil {
			return time.Time{}, nil, internal.NewValidationError("Invalid end date, expected YYYY-MM-DD", internal.ErrCodeInvalidDate)
		}
		if parsed.Before(start) {
			return time.Time{}, nil, internal.NewValidationError("End date cannot be before the start date", internal.ErrCodeInvalidDateRange)
		}
		end = &parsed
	}

	return start, end, nil
}
