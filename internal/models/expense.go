package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	BankAccountID uint            `gorm:"index;not null" json:"bank_account_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Category      string          `gorm:"size:50;not null" json:"category"`
	Date          string          `gorm:"size:10;not null" json:"date"` // YYYY-MM-DD
	Hour          string          `gorm:"size:8;not null" json:"hour"`  // HH:MM[:SS]
	Description   string          `gorm:"type:text" json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
