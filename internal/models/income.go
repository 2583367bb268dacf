package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Income struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	BankAccountID uint            `gorm:"index;not null" json:"bank_account_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Source        string          `gorm:"size:100;not null" json:"source"`
	Date          string          `gorm:"size:10;not null" json:"date"` // YYYY-MM-DD
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
