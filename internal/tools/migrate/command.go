package migrate

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/bookshelf-labs/bookshelf-api/internal/database"
	"github.com/bookshelf-labs/bookshelf-api/internal/tools/common"
	"github.com/bookshelf-labs/bookshelf-api/internal/tools/ui"
)

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tooling",
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")

	cmd.AddCommand(
		newUpCommand(opts),
		newStatusCommand(opts),
		newPlanCommand(opts),
	)
	return cmd
}

func newUpCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "migrate up", Up)
		},
	}
}

func newStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report which managed tables exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "migrate status", Status)
		},
	}
}

func newPlanCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show migration plan (dry-run)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "migrate plan", Plan)
		},
	}
}

func Up(ctx context.Context, db *gorm.DB) ([]string, error) {
	pending := database.PendingTables(db)
	if err := database.Migrate(db.WithContext(ctx)); err != nil {
		return nil, err
	}
	details := []string{"schema migration applied"}
	if len(pending) == 0 {
		return append(details, "no new tables created"), nil
	}
	return append(details, "created tables: "+strings.Join(pending, ", ")), nil
}

func Status(ctx context.Context, db *gorm.DB) ([]string, error) {
	if err := ping(ctx, db); err != nil {
		return nil, err
	}
	pending := database.PendingTables(db)
	details := []string{"database reachable", fmt.Sprintf("managed tables: %d", len(database.Models()))}
	if len(pending) == 0 {
		return append(details, "migrations: up to date"), nil
	}
	return append(details, "pending tables: "+strings.Join(pending, ", ")), nil
}

func Plan(ctx context.Context, db *gorm.DB) ([]string, error) {
	if err := ping(ctx, db); err != nil {
		return nil, err
	}
	pending := database.PendingTables(db)
	details := []string{"would apply AutoMigrate for users, authors, books"}
	if len(pending) > 0 {
		details = append(details, "would create: "+strings.Join(pending, ", "))
	} else {
		details = append(details, "would only reconcile columns and indexes")
	}
	return append(details, "no mutation executed in plan mode"), nil
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	return nil
}

func execute(opts *options, title string, step func(context.Context, *gorm.DB) ([]string, error)) error {
	fn := common.Instrument("migrate", title, func(ctx context.Context) ([]string, error) {
		_, db, err := common.LoadConfigDB(opts.envFile)
		if err != nil {
			return nil, err
		}
		defer common.CloseDB(db)
		return step(ctx, db)
	})

	var (
		details []string
		err     error
	)
	if opts.ci {
		ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
		details, err = fn(ctx)
		cancel()
		common.PrintCIResult(err == nil, title, details, err)
	} else {
		details, err = ui.RunWithTimeout(title, opts.timeout, fn)
	}
	if err != nil {
		os.Exit(3)
	}
	return nil
}
