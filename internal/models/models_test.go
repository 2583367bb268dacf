package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserJSONOmitsPassword(t *testing.T) {
	raw, err := json.Marshal(User{ID: 1, Name: "Ada", Email: "ada@example.com", PasswordHash: "$2a$10$secret"})
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "secret")
}

func TestAmountsAreJSONNumbers(t *testing.T) {
	raw, err := json.Marshal(Expense{Amount: decimal.RequireFromString("12.50")})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"amount":12.5`)

	raw, err = json.Marshal(BankAccount{Balance: decimal.RequireFromString("-990.00")})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"balance":-990`)
	assert.NotContains(t, string(raw), "incomes")
}
