package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts and balances go out as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// BankAccount.Balance is a cached aggregate: the sum of its incomes minus the
// sum of its expenses. Only the ledger writes it.
type BankAccount struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"index;not null" json:"user_id"`
	BankName      string          `gorm:"size:100;not null" json:"bank_name"`
	AccountNumber string          `gorm:"size:34;not null" json:"account_number"`
	RoutingNumber string          `gorm:"size:34;not null" json:"routing_number"`
	AccountType   string          `gorm:"size:30;not null" json:"account_type"` // checking, savings, ...
	Alias         *string         `gorm:"size:100" json:"alias"`
	Balance       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"balance"`
	Incomes       []Income        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Expenses      []Expense       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (BankAccount) TableName() string {
	return "bank_accounts"
}
