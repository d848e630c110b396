package common

import (
	"context"
	"time"

	"github.com/bookshelf-labs/bookshelf-api/internal/observability"
)

// Action is the unit of work a tool command runs, returning human readable details.
type Action func(context.Context) ([]string, error)

// Instrument records run count and duration for a tool command.
func Instrument(tool, command string, fn Action) Action {
	return func(ctx context.Context) ([]string, error) {
		start := time.Now()
		details, err := fn(ctx)
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		observability.RecordToolCommandRun(ctx, tool, command, outcome)
		observability.RecordToolCommandDuration(ctx, tool, command, outcome, time.Since(start))
		return details, err
	}
}
