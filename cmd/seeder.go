package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/leave-management/internal"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	leaveTypeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leavetype"
	managementDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/management"
	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	leaveTypePostgres "github.com/frahmantamala/leave-management/internal/leavetype/postgres"
	"github.com/frahmantamala/leave-management/internal/management"
	managementPostgres "github.com/frahmantamala/leave-management/internal/management/postgres"
	"github.com/frahmantamala/leave-management/internal/user"
	userPostgres "github.com/frahmantamala/leave-management/internal/user/postgres"
	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "password1234"

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed users of every role, a manager-staff mapping and the leave type catalogue for development.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(".")
		if err != nil {
			return err
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		gormDB, err := initGorm(db)
		if err != nil {
			return err
		}

		return newSeeder(gormDB, db, logger.LoggerWrapper()).Run(cmd.Context(), clearData)
	},
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")

	rootCmd.AddCommand(seedCmd)
}

type seedUser struct {
	email      string
	firstName  string
	lastName   string
	department string
	role       string
	balance    int
}

var seedUsers = []seedUser{
	{"admin@company.com", "Alice", "Admin", "People Ops", "admin", 25},
	{"manager@company.com", "Mark", "Manager", "Engineering", "manager", 25},
	{"staff@company.com", "Sam", "Staff", "Engineering", "staff", 25},
	{"staff2@company.com", "Sara", "Staff", "Engineering", "staff", 20},
}

var seedLeaveTypes = []leavetype.CreateLeaveTypeDTO{
	{Name: leavetype.AnnualLeave, Description: "Paid annual leave", DefaultBalance: intPtr(25), MaxRollover: intPtr(5)},
	{Name: "Sick Leave", Description: "Leave for illness", DefaultBalance: intPtr(10), MaxRollover: intPtr(0)},
	{Name: "Unpaid Leave", Description: "Leave without pay", DefaultBalance: intPtr(0), MaxRollover: intPtr(0)},
}

func intPtr(v int) *int { return &v }

type seeder struct {
	db         *gorm.DB
	users      *user.Service
	management *management.Service
	leaveTypes *leavetype.Service
	logger     *slog.Logger
}

func newSeeder(db *gorm.DB, sqlDB *sqlx.DB, lg *slog.Logger) *seeder {
	users := user.NewService(userPostgres.NewUserRepository(db), userPostgres.NewRoleRepository(sqlDB), lg,
		user.WithBCryptCost(bcrypt.DefaultCost))
	return &seeder{
		db:         db,
		users:      users,
		management: management.NewService(managementPostgres.NewRepository(db), users, lg),
		leaveTypes: leavetype.NewService(leaveTypePostgres.NewLeaveTypeRepository(db), lg),
		logger:     lg,
	}
}

// Run inserts whatever is missing. Existing rows are left untouched unless
// clear is set, in which case everything but the roles is removed first.
func (s *seeder) Run(ctx context.Context, clear bool) error {
	if clear {
		if err := s.clear(ctx); err != nil {
			return err
		}
	}

	ids := make(map[string]int64, len(seedUsers))
	for _, su := range seedUsers {
		id, err := s.ensureUser(ctx, su)
		if err != nil {
			return err
		}
		ids[su.email] = id
	}

	for _, staff := range []string{"staff@company.com", "staff2@company.com"} {
		_, err := s.management.Assign(ctx, &management.AssignDTO{StaffID: ids[staff], ManagerID: ids["manager@company.com"]})
		if err != nil && !errors.Is(err, internal.ErrAlreadyAssigned) {
			return fmt.Errorf("assign %s: %w", staff, err)
		}
	}

	for i := range seedLeaveTypes {
		dto := seedLeaveTypes[i]
		if _, err := s.leaveTypes.Create(ctx, &dto); err != nil && !isConflict(err) {
			return fmt.Errorf("create leave type %s: %w", dto.Name, err)
		}
	}

	s.logger.InfoContext(ctx, "seed complete", "users", len(seedUsers), "leave_types", len(seedLeaveTypes))
	return nil
}

func (s *seeder) ensureUser(ctx context.Context, su seedUser) (int64, error) {
	department := su.department
	balance := su.balance
	created, err := s.users.Create(ctx, &user.CreateUserDTO{
		Email:              su.email,
		Password:           SeedPassword,
		FirstName:          su.firstName,
		LastName:           su.lastName,
		Department:         &department,
		Role:               su.role,
		AnnualLeaveBalance: &balance,
	})
	if err == nil {
		s.logger.InfoContext(ctx, "seeded user", "email", su.email, "role", su.role)
		return created.ID, nil
	}
	if !errors.Is(err, internal.ErrEmailInUse) {
		return 0, fmt.Errorf("create user %s: %w", su.email, err)
	}

	existing, err := s.users.GetByEmail(ctx, su.email)
	if err != nil {
		return 0, fmt.Errorf("load user %s: %w", su.email, err)
	}
	return existing.ID, nil
}

func (s *seeder) clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []interface{}{
			&leaveDatamodel.LeaveRequest{},
			&managementDatamodel.UserManagement{},
			&leaveTypeDatamodel.LeaveType{},
			&userDatamodel.User{},
		} {
			if err := all.Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		s.logger.InfoContext(ctx, "cleared seed data")
		return nil
	})
}

func isConflict(err error) bool {
	appErr, ok := internal.IsAppError(err)
	return ok && appErr.Type == internal.ErrorTypeConflict
}
