package ledger

import (
	"context" // Cancellation of the retry loop
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"strings" // SQLite busy detection
	"time"    // Backoff intervals

	"github.com/cenkalti/backoff/v4" // Retry policy
	"github.com/go-sql-driver/mysql" // MySQL error codes
	"github.com/sirupsen/logrus"     // Logrus for structured logging
)

const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// isConflict reports whether err is a transient write conflict worth retrying.
func isConflict(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDeadlock || myErr.Number == mysqlLockWaitTimeout
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}

// retryPolicy allows s.maxAttempts calls in total, stopping early when ctx is done.
func (s *Service) retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.backoff
	b.MaxInterval = 10 * s.backoff
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.maxAttempts-1)), ctx)
}

// withRetry runs fn until it succeeds, fails with a non-conflict error, or the
// attempt budget runs out.
func (s *Service) withRetry(ctx context.Context, op string, fn func() error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := fn()
		if err != nil && !isConflict(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		s.log.WithFields(logrus.Fields{
			"op":      op,
			"attempt": attempt,
			"wait_ms": next.Milliseconds(),
			"error":   err.Error(),
		}).Warn("Write conflict, retrying")
	}

	err := backoff.RetryNotify(operation, s.retryPolicy(ctx), notify)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return newPersistenceError(op, err)
	case isConflict(err):
		return newPersistenceError(op, fmt.Errorf("gave up after %d attempts: %w", attempt, err))
	default:
		return err
	}
}
