package ledger

import (
	"budget_tracker/internal/domain" // Importing domain models
	"context"                        // Request-scoped cancellation
	"errors"                         // Error inspection
	"fmt"                            // Error wrapping

	"github.com/shopspring/decimal" // Exact decimal arithmetic
	"gorm.io/gorm"                  // GORM ORM library
)

// Store is the persistence boundary of the ledger. Every method that changes a
// balance does so in the same all-or-nothing unit as the matching row change.
type Store interface {
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error) // nil, nil on miss
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	ListTransactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error)
	InsertTransaction(ctx context.Context, t *domain.Transaction) (decimal.Decimal, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) (*domain.Transaction, decimal.Decimal, error)
	ClearTransactions(ctx context.Context, userID string) (decimal.Decimal, error)
	SumTransactions(ctx context.Context, userID string) (decimal.Decimal, error)
}

// GormStore implements Store on top of GORM (MySQL in production, SQLite locally).
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// FindUserByEmail looks a user up by their unique email.
func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).Take(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a new user.
func (s *GormStore) CreateUser(ctx context.Context, u *domain.User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser loads a user by id.
func (s *GormStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// ListTransactions returns the user's transactions, newest first. limit <= 0 means no cap.
func (s *GormStore) ListTransactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	query := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date desc").
		Order("created_at desc").
		Order("id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var txs []domain.Transaction
	if err := query.Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	return txs, nil
}

// InsertTransaction stores t and applies its delta to the owner's balance atomically.
func (s *GormStore) InsertTransaction(ctx context.Context, t *domain.Transaction) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := adjustBalance(tx, t.UserID, t.Delta()); err != nil {
			return err
		}
		b, err := readBalance(tx, t.UserID)
		if err != nil {
			return err
		}
		if err := tx.Create(t).Error; err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		balance = b
		return nil
	})
	return balance, err
}

// DeleteTransaction removes one of the user's transactions and reverses its delta atomically.
func (s *GormStore) DeleteTransaction(ctx context.Context, userID, transactionID string) (*domain.Transaction, decimal.Decimal, error) {
	var (
		removed domain.Transaction
		balance decimal.Decimal
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", transactionID).Take(&removed).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load transaction: %w", err)
		}
		if removed.UserID != userID {
			return ErrForbidden
		}

		// The owner filter doubles as a guard against a concurrent delete of the same row.
		res := tx.Where("id = ? AND user_id = ?", transactionID, userID).Delete(&domain.Transaction{})
		if res.Error != nil {
			return fmt.Errorf("delete transaction: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		if err := adjustBalance(tx, userID, removed.Delta().Neg()); err != nil {
			return err
		}
		b, err := readBalance(tx, userID)
		if err != nil {
			return err
		}
		balance = b
		return nil
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	return &removed, balance, nil
}

// ClearTransactions deletes every transaction of the user and zeroes the balance atomically.
func (s *GormStore) ClearTransactions(ctx context.Context, userID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Zeroing first takes the user row lock, which orders reset against apply and reverse.
		if err := tx.Model(&domain.User{}).Where("id = ?", userID).Update("balance", decimal.Zero).Error; err != nil {
			return fmt.Errorf("reset balance: %w", err)
		}
		b, err := readBalance(tx, userID)
		if err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&domain.Transaction{}).Error; err != nil {
			return fmt.Errorf("delete transactions: %w", err)
		}
		balance = b
		return nil
	})
	return balance, err
}

// SumTransactions recomputes the signed total of the user's transactions.
func (s *GormStore) SumTransactions(ctx context.Context, userID string) (decimal.Decimal, error) {
	var rows []struct {
		Type   domain.TransactionType
		Amount decimal.Decimal
	}
	if err := s.db.WithContext(ctx).Model(&domain.Transaction{}).
		Select("type", "amount").
		Where("user_id = ?", userID).
		Find(&rows).Error; err != nil {
		return decimal.Zero, fmt.Errorf("sum transactions: %w", err)
	}

	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.Type.Delta(r.Amount.Round(2)))
	}
	return sum, nil
}

// adjustBalance adds delta to the stored balance in a single UPDATE statement.
func adjustBalance(tx *gorm.DB, userID string, delta decimal.Decimal) error {
	err := tx.Model(&domain.User{}).
		Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + CAST(? AS DECIMAL(20,2))", delta.String())).Error
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return nil
}

func readBalance(tx *gorm.DB, userID string) (decimal.Decimal, error) {
	var u domain.User
	if err := tx.Select("balance").Where("id = ?", userID).Take(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("read balance: %w", err)
	}
	return u.Balance, nil
}
