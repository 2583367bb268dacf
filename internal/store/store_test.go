package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"finance-ledger-go/internal/apperr"
	"finance-ledger-go/internal/database/dbtest"
	"finance-ledger-go/internal/models"
	"finance-ledger-go/internal/store"
)

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *store.Store
	user  *models.User
}

func (suite *StoreTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = store.New(dbtest.Open(suite.T()))

	suite.user = &models.User{Name: "Ada", Email: "ada@example.com", Age: 36, PasswordHash: "x"}
	require.NoError(suite.T(), suite.store.CreateUser(suite.ctx, suite.user))
}

func (suite *StoreTestSuite) newAccount(userID uint) *models.BankAccount {
	a := &models.BankAccount{
		UserID:        userID,
		BankName:      "First Bank",
		AccountNumber: "000123",
		RoutingNumber: "110000000",
		AccountType:   "checking",
	}
	require.NoError(suite.T(), suite.store.CreateAccount(suite.ctx, a))
	return a
}

func (suite *StoreTestSuite) TestCreateAccountStartsAtZero() {
	a := suite.newAccount(suite.user.ID)

	got, err := suite.store.GetAccount(suite.ctx, a.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "0.00", got.Balance.StringFixed(2))
	assert.Equal(suite.T(), "First Bank", got.BankName)
}

func (suite *StoreTestSuite) TestGetMissingIsNotFound() {
	_, err := suite.store.GetAccount(suite.ctx, 999)
	assert.True(suite.T(), errors.Is(err, apperr.ErrNotFound))

	_, err = suite.store.GetIncome(suite.ctx, 999)
	assert.True(suite.T(), errors.Is(err, apperr.ErrNotFound))

	_, err = suite.store.GetExpense(suite.ctx, 999)
	assert.True(suite.T(), errors.Is(err, apperr.ErrNotFound))
}

func (suite *StoreTestSuite) TestLockAccountsReportsMissing() {
	a := suite.newAccount(suite.user.ID)

	err := suite.store.Tx(suite.ctx, func(tx *store.Store) error {
		locked, err := tx.LockAccounts(suite.ctx, a.ID, a.ID)
		require.NoError(suite.T(), err)
		assert.Len(suite.T(), locked, 1)

		_, err = tx.LockAccounts(suite.ctx, a.ID, 4242)
		return err
	})
	require.Error(suite.T(), err)
	assert.True(suite.T(), errors.Is(err, apperr.ErrNotFound))
	assert.Contains(suite.T(), err.Error(), "4242")
}

func (suite *StoreTestSuite) TestTxRollsBack() {
	a := suite.newAccount(suite.user.ID)

	boom := errors.New("boom")
	err := suite.store.Tx(suite.ctx, func(tx *store.Store) error {
		require.NoError(suite.T(), tx.SetBalance(suite.ctx, a.ID, decimal.RequireFromString("12.34")))
		require.NoError(suite.T(), tx.CreateIncome(suite.ctx, &models.Income{
			BankAccountID: a.ID, Amount: decimal.RequireFromString("12.34"), Source: "gift", Date: "2024-01-01",
		}))
		return boom
	})
	assert.ErrorIs(suite.T(), err, boom)

	got, err := suite.store.GetAccount(suite.ctx, a.ID)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), got.Balance.IsZero())

	incomes, err := suite.store.ListIncomesByAccount(suite.ctx, a.ID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), incomes)
}

func (suite *StoreTestSuite) TestUpdateAccountRejectsBalance() {
	a := suite.newAccount(suite.user.ID)

	err := suite.store.UpdateAccount(suite.ctx, a.ID, map[string]any{"balance": decimal.NewFromInt(5)})
	assert.True(suite.T(), errors.Is(err, apperr.ErrValidation))

	require.NoError(suite.T(), suite.store.UpdateAccount(suite.ctx, a.ID, map[string]any{"bank_name": "Second Bank"}))
	got, err := suite.store.GetAccount(suite.ctx, a.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Second Bank", got.BankName)
}

func (suite *StoreTestSuite) TestDeleteIncomeTwiceIsNotFound() {
	a := suite.newAccount(suite.user.ID)
	in := &models.Income{BankAccountID: a.ID, Amount: decimal.NewFromInt(10), Source: "salary", Date: "2024-02-01"}
	require.NoError(suite.T(), suite.store.CreateIncome(suite.ctx, in))

	require.NoError(suite.T(), suite.store.DeleteIncome(suite.ctx, in.ID))
	err := suite.store.DeleteIncome(suite.ctx, in.ID)
	assert.True(suite.T(), errors.Is(err, apperr.ErrNotFound))
}

func (suite *StoreTestSuite) TestDeleteAccountCascades() {
	a := suite.newAccount(suite.user.ID)
	keep := suite.newAccount(suite.user.ID)

	in := &models.Income{BankAccountID: a.ID, Amount: decimal.NewFromInt(10), Source: "salary", Date: "2024-02-01"}
	ex := &models.Expense{BankAccountID: a.ID, Amount: decimal.NewFromInt(3), Category: "food", Date: "2024-02-02", Hour: "12:00"}
	other := &models.Income{BankAccountID: keep.ID, Amount: decimal.NewFromInt(1), Source: "interest", Date: "2024-02-03"}
	require.NoError(suite.T(), suite.store.CreateIncome(suite.ctx, in))
	require.NoError(suite.T(), suite.store.CreateExpense(suite.ctx, ex))
	require.NoError(suite.T(), suite.store.CreateIncome(suite.ctx, other))

	err := suite.store.Tx(suite.ctx, func(tx *store.Store) error {
		return tx.DeleteAccount(suite.ctx, a.ID)
	})
	require.NoError(suite.T(), err)

	_, err = suite.store.GetIncome(suite.ctx, in.ID)
	assert.True(suite.T(), errors.Is(err, apperr.ErrNotFound))
	_, err = suite.store.GetExpense(suite.ctx, ex.ID)
	assert.True(suite.T(), errors.Is(err, apperr.ErrNotFound))
	_, err = suite.store.GetIncome(suite.ctx, other.ID)
	assert.NoError(suite.T(), err)
}

func (suite *StoreTestSuite) TestDeleteUserCascades() {
	a := suite.newAccount(suite.user.ID)
	in := &models.Income{BankAccountID: a.ID, Amount: decimal.NewFromInt(10), Source: "salary", Date: "2024-02-01"}
	require.NoError(suite.T(), suite.store.CreateIncome(suite.ctx, in))

	err := suite.store.Tx(suite.ctx, func(tx *store.Store) error {
		return tx.DeleteUser(suite.ctx, suite.user.ID)
	})
	require.NoError(suite.T(), err)

	_, err = suite.store.GetUser(suite.ctx, suite.user.ID)
	assert.True(suite.T(), errors.Is(err, apperr.ErrNotFound))
	_, err = suite.store.GetAccount(suite.ctx, a.ID)
	assert.True(suite.T(), errors.Is(err, apperr.ErrNotFound))
	_, err = suite.store.GetIncome(suite.ctx, in.ID)
	assert.True(suite.T(), errors.Is(err, apperr.ErrNotFound))
}

func (suite *StoreTestSuite) TestListByUserJoins() {
	mine := suite.newAccount(suite.user.ID)
	stranger := &models.User{Name: "Bob", Email: "bob@example.com", Age: 40, PasswordHash: "x"}
	require.NoError(suite.T(), suite.store.CreateUser(suite.ctx, stranger))
	theirs := suite.newAccount(stranger.ID)

	require.NoError(suite.T(), suite.store.CreateIncome(suite.ctx, &models.Income{BankAccountID: mine.ID, Amount: decimal.NewFromInt(1), Source: "a", Date: "2024-01-01"}))
	require.NoError(suite.T(), suite.store.CreateIncome(suite.ctx, &models.Income{BankAccountID: theirs.ID, Amount: decimal.NewFromInt(2), Source: "b", Date: "2024-01-01"}))
	require.NoError(suite.T(), suite.store.CreateExpense(suite.ctx, &models.Expense{BankAccountID: theirs.ID, Amount: decimal.NewFromInt(2), Category: "c", Date: "2024-01-01", Hour: "09:00"}))

	incomes, err := suite.store.ListIncomesByUser(suite.ctx, suite.user.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), incomes, 1)
	assert.Equal(suite.T(), "a", incomes[0].Source)

	expenses, err := suite.store.ListExpensesByUser(suite.ctx, stranger.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), expenses, 1)
	assert.Equal(suite.T(), "c", expenses[0].Category)
}

func (suite *StoreTestSuite) TestListExpensesPaginates() {
	a := suite.newAccount(suite.user.ID)
	for i := 1; i <= 5; i++ {
		require.NoError(suite.T(), suite.store.CreateExpense(suite.ctx, &models.Expense{
			BankAccountID: a.ID, Amount: decimal.NewFromInt(int64(i)), Category: "misc", Date: "2024-03-01", Hour: "10:00",
		}))
	}

	page, total, err := suite.store.ListExpenses(suite.ctx, store.Page{Offset: 2, Limit: 2})
	require.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 5, total)
	require.Len(suite.T(), page, 2)
	assert.Equal(suite.T(), "3", page[0].Amount.String())
	assert.Equal(suite.T(), "4", page[1].Amount.String())
}

func (suite *StoreTestSuite) TestSumsAreExact() {
	a := suite.newAccount(suite.user.ID)
	for i := 0; i < 10; i++ {
		require.NoError(suite.T(), suite.store.CreateIncome(suite.ctx, &models.Income{
			BankAccountID: a.ID, Amount: decimal.RequireFromString("0.10"), Source: "dimes", Date: "2024-01-01",
		}))
	}
	require.NoError(suite.T(), suite.store.CreateExpense(suite.ctx, &models.Expense{
		BankAccountID: a.ID, Amount: decimal.RequireFromString("0.30"), Category: "gum", Date: "2024-01-01", Hour: "08:00",
	}))

	incomes, err := suite.store.SumIncomes(suite.ctx, a.ID)
	require.NoError(suite.T(), err)
	expenses, err := suite.store.SumExpenses(suite.ctx, a.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "1.00", incomes.StringFixed(2))
	assert.Equal(suite.T(), "0.70", incomes.Sub(expenses).StringFixed(2))
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
