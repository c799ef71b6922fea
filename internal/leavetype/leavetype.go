package leavetype

import (
	"time"

	leaveTypeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leavetype"
)

const (
	AnnualLeave        = "Annual Leave"
	DefaultBalance     = 25
	DefaultMaxRollover = 5
)

type LeaveType struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	DefaultBalance int       `json:"default_balance"`
	MaxRollover    int       `json:"max_rollover"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewLeaveType(name, description string, defaultBalance, maxRollover int) *LeaveType {
	now := time.Now()
	return &LeaveType{
		Name:           name,
		Description:    description,
		DefaultBalance: defaultBalance,
		MaxRollover:    maxRollover,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Fallback is the annual leave policy used when the catalogue has no entry.
func Fallback() *LeaveType {
	return &LeaveType{
		Name:           AnnualLeave,
		DefaultBalance: DefaultBalance,
		MaxRollover:    DefaultMaxRollover,
	}
}

// RolloverBalance is the balance a user starts the next year with: the
// default allowance plus unused days, capped at MaxRollover.
func (t *LeaveType) RolloverBalance(current int) int {
	carried := current
	if carried > t.MaxRollover {
		carried = t.MaxRollover
	}
	if carried < 0 {
		carried = 0
	}
	return t.DefaultBalance + carried
}

func ToDataModel(t *LeaveType) *leaveTypeDatamodel.LeaveType {
	return &leaveTypeDatamodel.LeaveType{
		ID:             t.ID,
		Name:           t.Name,
		Description:    t.Description,
		DefaultBalance: t.DefaultBalance,
		MaxRollover:    t.MaxRollover,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func FromDataModel(t *leaveTypeDatamodel.LeaveType) *LeaveType {
	return &LeaveType{
		ID:             t.ID,
		Name:           t.Name,
		Description:    t.Description,
		DefaultBalance: t.DefaultBalance,
		MaxRollover:    t.MaxRollover,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}
