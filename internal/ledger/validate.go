package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finance-ledger-go/internal/apperr"
)

// AmountPlaces is the fixed number of fractional digits for every amount.
const AmountPlaces = 2

var (
	// MaxAmount is the exclusive upper bound of one amount, numeric(12,2).
	MaxAmount  = decimal.New(1, 10)
	// MaxBalance is the exclusive bound of a balance magnitude, numeric(14,2).
	MaxBalance = decimal.New(1, 12)
)

const (
	DateLayout        = "2006-01-02"
	hourLayout        = "15:04"
	hourLayoutSeconds = "15:04:05"
)

// CheckAmount accepts strictly positive values below MaxAmount with at most
// two decimals.
func CheckAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return apperr.Validation("amount", "amount must be greater than zero")
	}
	if d.GreaterThanOrEqual(MaxAmount) {
		return apperr.Validation("amount", "amount must be less than %s", MaxAmount.String())
	}
	if !d.Equal(d.Round(AmountPlaces)) {
		return apperr.Validation("amount", "amount must have at most %d decimal places", AmountPlaces)
	}
	return nil
}

func CheckDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return apperr.Validation("date", "date is required")
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return apperr.Validation("date", "date must be formatted YYYY-MM-DD")
	}
	return nil
}

func CheckHour(s string) error {
	if strings.TrimSpace(s) == "" {
		return apperr.Validation("hour", "hour is required")
	}
	if _, err := time.Parse(hourLayout, s); err == nil {
		return nil
	}
	if _, err := time.Parse(hourLayoutSeconds, s); err == nil {
		return nil
	}
	return apperr.Validation("hour", "hour must be formatted HH:MM")
}

func CheckRequired(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return apperr.Validation(field, "%s is required", field)
	}
	return nil
}
