package domain

import (
	"time" // Timestamps

	"github.com/google/uuid"        // UUID generation
	"github.com/shopspring/decimal" // Exact decimal arithmetic
	"gorm.io/gorm"                  // GORM ORM library
)

// User Model
type User struct {
	ID        string          `gorm:"type:char(36);primaryKey" json:"id"`                   // UUID primary key
	Name      string          `gorm:"not null" json:"name"`                                 // Display name
	Email     string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`  // Unique lookup key
	Balance   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"balance"` // Running total of transactions
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"createdAt"`                      // Creation time
}

// BeforeCreate assigns an ID to new users
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// AfterFind normalizes the balance to cents, since SQLite hands decimals back as floats
func (u *User) AfterFind(*gorm.DB) error {
	u.Balance = u.Balance.Round(2)
	return nil
}
