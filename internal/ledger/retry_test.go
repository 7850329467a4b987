package ledger

import (
	"budget_tracker/internal/domain"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// conflictingStore fails the first n balance-changing writes with a deadlock.
type conflictingStore struct {
	*GormStore
	failures int
	calls    int
	err      error
}

func (s *conflictingStore) InsertTransaction(ctx context.Context, t *domain.Transaction) (decimal.Decimal, error) {
	s.calls++
	if s.calls <= s.failures {
		return decimal.Zero, s.err
	}
	return s.GormStore.InsertTransaction(ctx, t)
}

func deadlock() error {
	return fmt.Errorf("update balance: %w", &mysql.MySQLError{Number: mysqlDeadlock, Message: "Deadlock found when trying to get lock"})
}

func TestIsConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "mysql deadlock", err: deadlock(), want: true},
		{name: "mysql lock wait timeout", err: &mysql.MySQLError{Number: mysqlLockWaitTimeout}, want: true},
		{name: "mysql duplicate key", err: &mysql.MySQLError{Number: 1062}, want: false},
		{name: "sqlite busy", err: errors.New("database is locked (5) (SQLITE_BUSY)"), want: true},
		{name: "not found", err: ErrNotFound, want: false},
		{name: "generic", err: errors.New("connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isConflict(tt.err))
		})
	}
}

func TestApplyTransaction_RetriesOnConflict(t *testing.T) {
	db := setupTestDB(t)
	store := &conflictingStore{GormStore: NewGormStore(db), failures: 2, err: deadlock()}
	svc := NewService(store, WithMaxAttempts(3), WithBackoff(0))
	ctx := context.Background()

	u, err := svc.Login(ctx, "Retry", "retry@example.com")
	require.NoError(t, err)

	_, balance, err := svc.ApplyTransaction(ctx, u.ID, payload(domain.Income, "25"))
	require.NoError(t, err)
	assertBalance(t, "25", balance)
	assert.Equal(t, 3, store.calls)
	assertConsistent(t, svc, u.ID)
}

func TestApplyTransaction_RetryExhausted(t *testing.T) {
	db := setupTestDB(t)
	store := &conflictingStore{GormStore: NewGormStore(db), failures: 10, err: deadlock()}
	svc := NewService(store, WithMaxAttempts(3), WithBackoff(0))
	ctx := context.Background()

	u, err := svc.Login(ctx, "Retry", "exhausted@example.com")
	require.NoError(t, err)

	_, _, err = svc.ApplyTransaction(ctx, u.ID, payload(domain.Income, "25"))
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "apply transaction", pe.Op)
	assert.Equal(t, 3, store.calls)

	var myErr *mysql.MySQLError
	assert.ErrorAs(t, err, &myErr)

	stored, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.IsZero())
}

func TestApplyTransaction_NonConflictErrorIsNotRetried(t *testing.T) {
	db := setupTestDB(t)
	store := &conflictingStore{GormStore: NewGormStore(db), failures: 1, err: errors.New("disk full")}
	svc := NewService(store, WithMaxAttempts(5), WithBackoff(0))
	ctx := context.Background()

	u, err := svc.Login(ctx, "Once", "once@example.com")
	require.NoError(t, err)

	_, _, err = svc.ApplyTransaction(ctx, u.ID, payload(domain.Expense, "1"))
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, store.calls)
}

func TestWithRetry_StopsOnCancelledContext(t *testing.T) {
	svc := NewService(nil, WithMaxAttempts(5))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := svc.withRetry(ctx, "op", func() error {
		calls++
		return deadlock()
	})
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_LogsEachRetry(t *testing.T) {
	log, hook := test.NewNullLogger()
	svc := NewService(nil, WithLogger(log), WithMaxAttempts(3), WithBackoff(0))

	calls := 0
	err := svc.withRetry(context.Background(), "op", func() error {
		calls++
		if calls < 3 {
			return deadlock()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	for i, e := range entries {
		assert.Equal(t, logrus.WarnLevel, e.Level)
		assert.Equal(t, "Write conflict, retrying", e.Message)
		assert.Equal(t, i+1, e.Data["attempt"])
	}
}
