package domain

import (
	"database/sql/driver" // Valuer/Scanner interfaces
	"fmt"                 // Error formatting
	"time"                // Timestamps

	"github.com/google/uuid"        // UUID generation
	"github.com/shopspring/decimal" // Exact decimal arithmetic
	"gorm.io/gorm"                  // GORM ORM library
)

// TransactionType is the direction of a transaction: INCOME or EXPENSE
type TransactionType string

const (
	Income  TransactionType = "INCOME"  // Money coming in
	Expense TransactionType = "EXPENSE" // Money going out
)

// MaxAmount is the largest amount a single transaction may carry. Twelve integer
// digits keep cents exact on SQLite, which stores decimal columns as floats.
var MaxAmount = decimal.New(99999999999999, -2)

// ValidAmount reports whether amount is positive, in whole cents and at most MaxAmount
func ValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Round(2)) && amount.LessThanOrEqual(MaxAmount)
}

// ParseTransactionType converts a raw string into a TransactionType
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid transaction type %q", s)
	}
	return t, nil
}

// Valid reports whether t is one of the two known types
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Delta returns the signed contribution of amount to a balance
func (t TransactionType) Delta(amount decimal.Decimal) decimal.Decimal {
	if t == Expense {
		return amount.Neg()
	}
	return amount
}

// Value implements driver.Valuer
func (t TransactionType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid transaction type %q", string(t))
	}
	return string(t), nil
}

// Scan implements sql.Scanner and rejects unknown values read from the store
func (t *TransactionType) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into TransactionType", src)
	}
	parsed, err := ParseTransactionType(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Transaction Model
type Transaction struct {
	ID        string          `gorm:"type:char(36);primaryKey" json:"id"`                     // UUID primary key
	UserID    string          `gorm:"type:char(36);index;not null" json:"userId"`             // Owning user
	Type      TransactionType `gorm:"type:varchar(16);not null" json:"type"`                  // INCOME or EXPENSE
	Amount    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`              // Always positive
	Category  string          `gorm:"not null" json:"category"`                               // Free-text category
	Detail    string          `gorm:"not null" json:"detail"`                                 // Free-text detail
	Name      string          `gorm:"not null" json:"name"`                                   // Short label
	Date      time.Time       `gorm:"index;not null" json:"date"`                             // Ordering timestamp
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"createdAt"`                        // Insertion time
	User      *User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // Owner relation
}

// BeforeCreate assigns an ID and a default date
func (t *Transaction) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Date.IsZero() {
		t.Date = time.Now().UTC()
	}
	return nil
}

// AfterFind normalizes the amount to cents
func (t *Transaction) AfterFind(*gorm.DB) error {
	t.Amount = t.Amount.Round(2)
	return nil
}

// Delta is the signed amount this transaction contributes to the owner's balance
func (t Transaction) Delta() decimal.Decimal {
	return t.Type.Delta(t.Amount)
}
