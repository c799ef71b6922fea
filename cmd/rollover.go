package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/leave"
	leavePostgres "github.com/frahmantamala/leave-management/internal/leave/postgres"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	leaveTypePostgres "github.com/frahmantamala/leave-management/internal/leavetype/postgres"
	"github.com/frahmantamala/leave-management/internal/management"
	managementPostgres "github.com/frahmantamala/leave-management/internal/management/postgres"
	"github.com/frahmantamala/leave-management/internal/user"
	userPostgres "github.com/frahmantamala/leave-management/internal/user/postgres"
	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/spf13/cobra"
)

var rolloverDryRun bool

var rolloverCmd = &cobra.Command{
	Use:   "rollover",
	Short: "Roll annual leave balances over into the new leave year",
	Long: `Reset every user's annual leave balance to the Annual Leave allowance plus
the unused days the policy allows to carry over.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRollover()
	},
}

func init() {
	rolloverCmd.Flags().BoolVar(&rolloverDryRun, "dry-run", false, "Print the resulting balances without writing them")

	rootCmd.AddCommand(rolloverCmd)
}

func runRollover() error {
	cfg, err := loadConfig(".")
	if err != nil {
		return err
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	gormDB, err := initGorm(db)
	if err != nil {
		return err
	}

	bus := events.NewEventBus(lg)
	leave.NewAuditHandler(lg).RegisterEventHandlers(bus)

	users := user.NewService(userPostgres.NewUserRepository(gormDB), userPostgres.NewRoleRepository(db), lg)
	svc := leave.NewService(
		leavePostgres.NewRepository(gormDB),
		users,
		management.NewService(managementPostgres.NewRepository(gormDB), users, lg),
		leavetype.NewService(leaveTypePostgres.NewLeaveTypeRepository(gormDB), lg),
		bus,
		lg,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	changes, err := svc.RolloverBalances(ctx, rolloverDryRun)
	if err != nil {
		return err
	}

	for _, c := range changes {
		fmt.Fprintf(os.Stdout, "%-40s %3d -> %3d\n", c.Email, c.Previous, c.Current)
	}

	if !bus.Drain(30 * time.Second) {
		lg.Warn("audit handlers did not finish before exit")
	}
	lg.Info("rollover finished", "users", len(changes), "dry_run", rolloverDryRun)
	return nil
}
