package management

import (
	"time"

	managementDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/management"
)

// Mapping records that ManagerID manages StaffID from StartDate until the
// optional EndDate.
type Mapping struct {
	ID        int64      `json:"id"`
	ManagerID int64      `json:"manager_id"`
	StaffID   int64      `json:"staff_id"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ActiveAt reports whether the mapping is in force at t. Both bounds are
// inclusive calendar days, so the whole of the end date counts.
func (m *Mapping) ActiveAt(t time.Time) bool {
	if m.StartDate.After(t) {
		return false
	}
	return m.EndDate == nil || t.Before(m.EndDate.AddDate(0, 0, 1))
}

func ToDataModel(m *Mapping) *managementDatamodel.UserManagement {
	return &managementDatamodel.UserManagement{
		ID:        m.ID,
		ManagerID: m.ManagerID,
		StaffID:   m.StaffID,
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		CreatedAt: m.CreatedAt,
	}
}

func FromDataModel(m *managementDatamodel.UserManagement) *Mapping {
	return &Mapping{
		ID:        m.ID,
		ManagerID: m.ManagerID,
		StaffID:   m.StaffID,
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		CreatedAt: m.CreatedAt,
	}
}
