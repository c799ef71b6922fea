package user

import (
	"strings"
	"time"

	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
	coreuser "github.com/frahmantamala/leave-management/internal/core/user"
)

type User struct {
	ID                 int64         `json:"id"`
	Email              string        `json:"email"`
	FirstName          string        `json:"first_name"`
	LastName           string        `json:"last_name"`
	Department         *string       `json:"department,omitempty"`
	RoleID             int64         `json:"role_id"`
	Role               coreuser.Role `json:"role"`
	AnnualLeaveBalance int           `json:"annual_leave_balance"`
	PasswordHash       string        `json:"-"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

type Role struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:                 u.ID,
		Email:              u.Email,
		PasswordHash:       u.PasswordHash,
		RoleID:             u.RoleID,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Department:         u.Department,
		AnnualLeaveBalance: u.AnnualLeaveBalance,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

// FromDataModel expects Role to be preloaded; otherwise the role is unknown.
func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:                 u.ID,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Department:         u.Department,
		RoleID:             u.RoleID,
		Role:               coreuser.ParseRole(u.Role.Name),
		AnnualLeaveBalance: u.AnnualLeaveBalance,
		PasswordHash:       u.PasswordHash,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}
