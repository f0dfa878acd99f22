package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dariast03/reparo-sys-sub001/internal/repository"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
)

const DefaultMaxRetries = 3

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isRetryable(err error) bool {
	if errors.Is(err, ErrConcurrencyConflict) {
		return true
	}
	switch pgCode(err) {
	case pgSerializationFailure, pgDeadlockDetected:
		return true
	case pgUniqueViolation:
		// a concurrent insert won; the retry re-reads and takes the update path
		return true
	}
	return false
}

// withRetry runs fn until it succeeds, fails with a non-retryable error or
// the attempt budget is spent. Unclassified errors come back wrapped in
// ErrStorageFailure.
func withRetry(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 15 * time.Millisecond
	eb.MaxInterval = 250 * time.Millisecond
	eb.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(attempts-1)), ctx)

	var last error
	err := backoff.Retry(func() error {
		last = fn()
		if last != nil && !isRetryable(last) {
			return backoff.Permanent(last)
		}
		return last
	}, b)

	switch {
	case err == nil:
		return nil
	case !isRetryable(last):
		return classify(last)
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %w", ErrStorageFailure, ctx.Err())
	case pgCode(last) == pgUniqueViolation:
		return classify(last)
	}
	return fmt.Errorf("%w: retries exhausted: %w", ErrStorageFailure, last)
}

func classify(err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	switch pgCode(err) {
	case pgCheckViolation:
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case pgUniqueViolation:
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}

// runTx wraps one repository transaction in withRetry.
func runTx(ctx context.Context, repo *repository.Repository, attempts int, fn func(tx *repository.Repository) error) error {
	return withRetry(ctx, attempts, func() error {
		return repo.WithTx(ctx, fn)
	})
}
