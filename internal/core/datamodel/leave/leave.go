package leave

import (
	"time"

	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
)

type LeaveRequest struct {
	ID        int64              `gorm:"primaryKey"`
	UserID    int64              `gorm:"column:user_id;not null;index"`
	User      userDatamodel.User `gorm:"foreignKey:UserID"`
	LeaveType string             `gorm:"column:leave_type;size:100;not null;default:'Annual Leave'"`
	StartDate time.Time          `gorm:"column:start_date;type:date;not null"`
	EndDate   time.Time          `gorm:"column:end_date;type:date;not null"`
	Status    string             `gorm:"column:status;size:20;not null;default:'Pending';index"`
	Reason    *string            `gorm:"column:reason"`
	// Set when a reviewer approves or rejects the request.
	ReviewedBy      *int64     `gorm:"column:reviewed_by"`
	ReviewedAt      *time.Time `gorm:"column:reviewed_at"`
	RejectionReason *string    `gorm:"column:rejection_reason"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}
