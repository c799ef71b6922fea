package management

import "time"

// UserManagement pairs a manager with one of their staff.
type UserManagement struct {
	ID        int64      `gorm:"primaryKey"`
	ManagerID int64      `gorm:"column:manager_id;not null;uniqueIndex:idx_manager_staff"`
	StaffID   int64      `gorm:"column:staff_id;not null;uniqueIndex:idx_manager_staff"`
	StartDate time.Time  `gorm:"column:start_date;not null"`
	EndDate   *time.Time `gorm:"column:end_date"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (UserManagement) TableName() string {
	return "user_management"
}
