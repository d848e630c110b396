package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/bookshelf-labs/bookshelf-api/internal/database"
	"github.com/bookshelf-labs/bookshelf-api/internal/security"
	"github.com/bookshelf-labs/bookshelf-api/internal/tools/common"
	"github.com/bookshelf-labs/bookshelf-api/internal/tools/ui"
)

type options struct {
	envFile string
	timeout time.Duration
	migrate bool
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Sample data tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", time.Minute, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	apply := newApplyCommand(opts)
	apply.Flags().BoolVar(&opts.migrate, "migrate", true, "apply schema migrations before seeding")
	cmd.AddCommand(apply, newDryRunCommand(opts))
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Insert the sample user and catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed apply", func(ctx context.Context) ([]string, error) {
				cfg, db, err := common.LoadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				defer common.CloseDB(db)

				hasher, err := security.NewPasswordHasher(cfg.BcryptCost)
				if err != nil {
					return nil, err
				}
				return Apply(ctx, db, hasher, opts.migrate)
			})
			return finish(opts, "seed apply", details, err)
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what seeding would do",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed dry-run", func(ctx context.Context) ([]string, error) {
				return database.SeedPlan(), nil
			})
			return finish(opts, "seed dry-run", details, err)
		},
	}
}

// Apply seeds db and returns a summary of what was inserted.
func Apply(ctx context.Context, db *gorm.DB, hasher database.Hasher, migrate bool) ([]string, error) {
	var details []string
	if migrate {
		if err := database.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		details = append(details, "schema migration applied")
	}
	report, err := database.Seed(ctx, db, hasher)
	if err != nil {
		return details, err
	}
	if report.Noop {
		return append(details, "sample data already present, nothing inserted"), nil
	}
	return append(details,
		fmt.Sprintf("created users=%d", report.CreatedUsers),
		fmt.Sprintf("created authors=%d", report.CreatedAuthors),
		fmt.Sprintf("created books=%d", report.CreatedBooks),
		fmt.Sprintf("sign in with %s / %s", database.SeedUserEmail, database.SeedUserEmail),
	), nil
}

func run(opts *options, title string, fn common.Action) ([]string, error) {
	fn = common.Instrument("seed", title, fn)
	if opts.ci {
		ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
		defer cancel()
		return fn(ctx)
	}
	return ui.RunWithTimeout(title, opts.timeout, fn)
}

func finish(opts *options, title string, details []string, err error) error {
	if opts.ci {
		common.PrintCIResult(err == nil, title, details, err)
	}
	if err != nil {
		os.Exit(3)
	}
	return nil
}
