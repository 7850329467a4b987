package ledger

import (
	"budget_tracker/internal/domain" // Importing domain models
	"context"                        // Request-scoped cancellation
	"errors"                         // Error inspection
	"fmt"                            // Error wrapping
	"strconv"                        // Cache field names
	"strings"                        // Email normalization
	"time"                           // Durations

	"github.com/shopspring/decimal"  // Exact decimal arithmetic
	"github.com/sirupsen/logrus"     // Logrus for structured logging
	"golang.org/x/sync/singleflight" // Collapse concurrent cache misses
)

const (
	// RecentLimit is the size of the short "latest transactions" listing.
	RecentLimit = 10

	defaultMaxAttempts = 3
	defaultBackoff     = 20 * time.Millisecond
)

// ErrInvalidTransaction is returned when a payload slips past request validation.
var ErrInvalidTransaction = errors.New("invalid transaction")

// NewTransaction is the validated payload for ApplyTransaction.
type NewTransaction struct {
	Type     domain.TransactionType
	Amount   decimal.Decimal
	Category string
	Detail   string
	Name     string
	Date     time.Time // zero means "now"
}

// Reconciliation compares the stored balance with the one derived from the rows.
type Reconciliation struct {
	Stored     decimal.Decimal `json:"stored"`
	Computed   decimal.Decimal `json:"computed"`
	Consistent bool            `json:"consistent"`
}

// Service keeps each user's balance in lockstep with their transactions.
type Service struct {
	store       Store
	cache       Cache // nil disables caching
	log         logrus.FieldLogger
	maxAttempts int
	backoff     time.Duration
	group       singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables the read cache.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithLogger sets the logger used for operation and failure logs.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.log = l }
}

// WithMaxAttempts bounds how many times a conflicting write is attempted.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithBackoff sets the base delay between conflicting write attempts.
func WithBackoff(d time.Duration) Option {
	return func(s *Service) { s.backoff = d }
}

// NewService creates a ledger Service backed by store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		log:         logrus.StandardLogger(),
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login finds the user with the given email, creating it on first login.
func (s *Service) Login(ctx context.Context, name, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, s.fail("login", logrus.Fields{"email": email}, err)
	}
	if u != nil {
		return u, nil
	}

	u = &domain.User{Name: strings.TrimSpace(name), Email: email, Balance: decimal.Zero}
	if err := s.store.CreateUser(ctx, u); err != nil {
		// Another login for the same email may have won the unique index race.
		if existing, findErr := s.store.FindUserByEmail(ctx, email); findErr == nil && existing != nil {
			return existing, nil
		}
		return nil, s.fail("create user", logrus.Fields{"email": email}, err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id": u.ID,
		"email":   u.Email,
	}).Info("User created")
	return u, nil
}

// GetUser returns the caller's profile including the current balance.
func (s *Service) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if s.cache != nil {
		if u, found, err := s.cache.GetUser(ctx, userID); err != nil {
			s.log.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Warn("Cache read failed")
		} else if found {
			return u, nil
		}
	}

	// The shared load outlives any single caller going away.
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do("user:"+userID, func() (any, error) {
		u, err := s.store.GetUser(shared, userID)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.SetUser(shared, u); err != nil {
				s.log.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Warn("Cache write failed")
			}
		}
		return u, nil
	})
	if err != nil {
		return nil, s.fail("get user", logrus.Fields{"user_id": userID}, err)
	}
	return v.(*domain.User), nil
}

// ListTransactions returns the caller's transactions, newest first. limit <= 0 returns the full history.
func (s *Service) ListTransactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	if limit < 0 {
		limit = 0
	}
	if s.cache != nil {
		if txs, found, err := s.cache.GetTransactions(ctx, userID, limit); err != nil {
			s.log.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Warn("Cache read failed")
		} else if found {
			return txs, nil
		}
	}

	shared := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do("txs:"+userID+":"+strconv.Itoa(limit), func() (any, error) {
		txs, err := s.store.ListTransactions(shared, userID, limit)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.SetTransactions(shared, userID, limit, txs); err != nil {
				s.log.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Warn("Cache write failed")
			}
		}
		return txs, nil
	})
	if err != nil {
		return nil, s.fail("list transactions", logrus.Fields{"user_id": userID}, err)
	}
	return v.([]domain.Transaction), nil
}

// ApplyTransaction records a new transaction for userID and moves the balance by its delta.
func (s *Service) ApplyTransaction(ctx context.Context, userID string, in NewTransaction) (*domain.Transaction, decimal.Decimal, error) {
	if !in.Type.Valid() || !domain.ValidAmount(in.Amount) {
		return nil, decimal.Zero, ErrInvalidTransaction
	}

	t := &domain.Transaction{
		UserID:   userID,
		Type:     in.Type,
		Amount:   in.Amount,
		Category: in.Category,
		Detail:   in.Detail,
		Name:     in.Name,
		Date:     in.Date.UTC(),
	}

	var balance decimal.Decimal
	err := s.withRetry(ctx, "apply transaction", func() error {
		b, err := s.store.InsertTransaction(ctx, t)
		balance = b
		return err
	})
	fields := logrus.Fields{
		"user_id": userID,
		"amount":  in.Amount.String(),
		"type":    string(in.Type),
	}
	if err != nil {
		return nil, decimal.Zero, s.fail("apply transaction", fields, err)
	}

	s.invalidate(ctx, userID)
	fields["transaction_id"] = t.ID
	fields["balance"] = balance.String()
	s.log.WithFields(fields).Info("Transaction applied")
	return t, balance, nil
}

// ReverseTransaction deletes one of userID's transactions and undoes its effect on the balance.
func (s *Service) ReverseTransaction(ctx context.Context, userID, transactionID string) (decimal.Decimal, error) {
	var (
		removed *domain.Transaction
		balance decimal.Decimal
	)
	err := s.withRetry(ctx, "reverse transaction", func() error {
		t, b, err := s.store.DeleteTransaction(ctx, userID, transactionID)
		removed, balance = t, b
		return err
	})
	fields := logrus.Fields{
		"user_id":        userID,
		"transaction_id": transactionID,
	}
	if err != nil {
		return decimal.Zero, s.fail("reverse transaction", fields, err)
	}

	s.invalidate(ctx, userID)
	fields["amount"] = removed.Amount.String()
	fields["type"] = string(removed.Type)
	fields["balance"] = balance.String()
	s.log.WithFields(fields).Info("Transaction reversed")
	return balance, nil
}

// ResetLedger deletes all of userID's transactions and sets the balance to zero.
func (s *Service) ResetLedger(ctx context.Context, userID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.withRetry(ctx, "reset ledger", func() error {
		b, err := s.store.ClearTransactions(ctx, userID)
		balance = b
		return err
	})
	if err != nil {
		return decimal.Zero, s.fail("reset ledger", logrus.Fields{"user_id": userID}, err)
	}
	if !balance.IsZero() {
		return decimal.Zero, s.fail("reset ledger", logrus.Fields{"user_id": userID},
			fmt.Errorf("balance is %s after reset", balance))
	}

	s.invalidate(ctx, userID)
	s.log.WithFields(logrus.Fields{"user_id": userID}).Info("Ledger reset")
	return decimal.Zero, nil
}

// Reconcile recomputes the balance from the user's rows and compares it with the stored one.
func (s *Service) Reconcile(ctx context.Context, userID string) (*Reconciliation, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, s.fail("reconcile", logrus.Fields{"user_id": userID}, err)
	}
	sum, err := s.store.SumTransactions(ctx, userID)
	if err != nil {
		return nil, s.fail("reconcile", logrus.Fields{"user_id": userID}, err)
	}

	r := &Reconciliation{Stored: u.Balance, Computed: sum, Consistent: u.Balance.Equal(sum)}
	if !r.Consistent {
		s.log.WithFields(logrus.Fields{
			"user_id":  userID,
			"stored":   r.Stored.String(),
			"computed": r.Computed.String(),
		}).Error("Balance drift detected")
	}
	return r, nil
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Warn("Cache invalidation failed")
	}
}

// fail passes NotFound/Forbidden through, wraps everything else in a PersistenceError and logs it.
func (s *Service) fail(op string, fields logrus.Fields, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
		return err
	}
	var pe *PersistenceError
	if !errors.As(err, &pe) {
		pe = newPersistenceError(op, err)
	}
	s.log.WithFields(fields).WithField("error", pe.Error()).Error(op + " failed")
	return pe
}
