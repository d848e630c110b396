package loadgen

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/bookshelf-labs/bookshelf-api/internal/database"
	"github.com/bookshelf-labs/bookshelf-api/internal/tools/common"
	"github.com/bookshelf-labs/bookshelf-api/internal/tools/ui"
)

type options struct {
	baseURL     string
	profile     string
	email       string
	password    string
	duration    time.Duration
	rps         int
	concurrency int
	seed        int64
	ci          bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "loadgen", Short: "Generate catalog traffic against a running API"}
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "http://localhost:3000", "API base URL")
	cmd.PersistentFlags().StringVar(&opts.profile, "profile", "catalog", "traffic profile: catalog|mixed|auth|error-heavy")
	cmd.PersistentFlags().StringVar(&opts.email, "email", database.SeedUserEmail, "sign-in email")
	cmd.PersistentFlags().StringVar(&opts.password, "password", database.SeedUserEmail, "sign-in password")
	cmd.PersistentFlags().DurationVar(&opts.duration, "duration", 15*time.Second, "traffic duration")
	cmd.PersistentFlags().IntVar(&opts.rps, "rps", 20, "requests per second")
	cmd.PersistentFlags().IntVar(&opts.concurrency, "concurrency", 6, "concurrent workers")
	cmd.PersistentFlags().Int64Var(&opts.seed, "seed", 42, "random seed")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newRunCommand(opts))
	return cmd
}

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run load generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "loadgen run", func(ctx context.Context) ([]string, error) {
				res, err := Run(ctx, Config{
					BaseURL:     opts.baseURL,
					Profile:     opts.profile,
					Email:       opts.email,
					Password:    opts.password,
					Duration:    opts.duration,
					RPS:         opts.rps,
					Concurrency: opts.concurrency,
					Seed:        opts.seed,
				})
				if err != nil {
					return nil, err
				}
				return Summary(res), nil
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "loadgen run", details, err)
			}
			if err != nil {
				os.Exit(4)
			}
			return nil
		},
	}
}

// Summary renders a run result as detail lines, scenarios sorted by name.
func Summary(res Result) []string {
	details := []string{
		fmt.Sprintf("total_requests=%d", res.TotalRequests),
		fmt.Sprintf("failures=%d", res.Failures),
		fmt.Sprintf("status_2xx=%d", res.Status2xx),
		fmt.Sprintf("status_4xx=%d", res.Status4xx),
		fmt.Sprintf("status_5xx=%d", res.Status5xx),
		fmt.Sprintf("latency p50=%s p90=%s p99=%s max=%s",
			res.Latency.P50.Round(time.Microsecond),
			res.Latency.P90.Round(time.Microsecond),
			res.Latency.P99.Round(time.Microsecond),
			res.Latency.Max.Round(time.Microsecond)),
	}
	names := make([]string, 0, len(res.ByScenario))
	for name := range res.ByScenario {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		details = append(details, fmt.Sprintf("scenario %s=%d", name, res.ByScenario[name]))
	}
	return details
}

func run(opts *options, title string, fn common.Action) ([]string, error) {
	fn = common.Instrument("loadgen", title, fn)
	timeout := opts.duration + 15*time.Second
	if opts.ci {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return fn(ctx)
	}
	return ui.RunWithTimeout(title, timeout, fn)
}
