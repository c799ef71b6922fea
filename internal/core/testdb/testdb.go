// Package testdb opens throwaway SQLite databases carrying the application
// schema for repository and handler tests.
package testdb

import (
	"fmt"
	"time"

	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	leaveTypeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leavetype"
	managementDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/management"
	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Role ids as inserted by Open.
const (
	AdminRoleID   int64 = 1
	ManagerRoleID int64 = 2
	StaffRoleID   int64 = 3
)

// Open returns an isolated in-memory database with every table migrated and
// the three roles inserted.
func Open() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=UTC", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&userDatamodel.Role{},
		&userDatamodel.User{},
		&managementDatamodel.UserManagement{},
		&leaveTypeDatamodel.LeaveType{},
		&leaveDatamodel.LeaveRequest{},
	); err != nil {
		return nil, err
	}

	roles := []userDatamodel.Role{
		{ID: AdminRoleID, Name: "admin"},
		{ID: ManagerRoleID, Name: "manager"},
		{ID: StaffRoleID, Name: "staff"},
	}
	if err := db.Create(&roles).Error; err != nil {
		return nil, err
	}
	return db, nil
}

// CreateUser inserts a user with the given role and balance. The password
// is "password1234".
func CreateUser(db *gorm.DB, email string, roleID int64, balance int) (*userDatamodel.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password1234"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	u := &userDatamodel.User{
		Email:              email,
		PasswordHash:       string(hash),
		RoleID:             roleID,
		FirstName:          "Test",
		LastName:           "User",
		AnnualLeaveBalance: balance,
	}
	if err := db.Omit("Role").Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// SQLX wraps the same connection pool for repositories written on sqlx.
func SQLX(db *gorm.DB) (*sqlx.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(sqlDB, "sqlite3"), nil
}
