package leavetype

import "time"

type LeaveType struct {
	ID             int64     `gorm:"primaryKey"`
	Name           string    `gorm:"column:name;size:100;uniqueIndex;not null"`
	Description    string    `gorm:"column:description"`
	DefaultBalance int       `gorm:"column:default_balance;not null"`
	MaxRollover    int       `gorm:"column:max_rollover;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (LeaveType) TableName() string {
	return "leave_types"
}
