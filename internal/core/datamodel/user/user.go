package user

import "time"

type Role struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"column:name;size:50;uniqueIndex;not null"`
}

func (Role) TableName() string {
	return "roles"
}

type User struct {
	ID                 int64     `gorm:"primaryKey"`
	Email              string    `gorm:"column:email;size:255;uniqueIndex;not null"`
	PasswordHash       string    `gorm:"column:password_hash;not null"`
	RoleID             int64     `gorm:"column:role_id;not null"`
	Role               Role      `gorm:"foreignKey:RoleID"`
	FirstName          string    `gorm:"column:first_name;size:100;not null"`
	LastName           string    `gorm:"column:last_name;size:100;not null"`
	Department         *string   `gorm:"column:department;size:100"`
	AnnualLeaveBalance int       `gorm:"column:annual_leave_balance;not null"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
