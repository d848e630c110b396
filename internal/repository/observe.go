package repository

import (
	"context"
	"errors"

	"github.com/bookshelf-labs/bookshelf-api/internal/observability"
)

func recordOutcome(ctx context.Context, repo, op string, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrAuthorNotFound),
		errors.Is(err, ErrBookNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrUserAlreadyExists), errors.Is(err, ErrAuthorHasBooks):
		outcome = "conflict"
	default:
		outcome = "error"
	}
	observability.RecordRepositoryOperation(ctx, repo, op, outcome)
}
