package store

import (
	"context"

	"github.com/shopspring/decimal"

	"finance-ledger-go/internal/apperr"
	"finance-ledger-go/internal/models"
)

func (s *Store) CreateExpense(ctx context.Context, e *models.Expense) error {
	return apperr.FromStore(s.conn(ctx).Create(e).Error, "expense")
}

func (s *Store) GetExpense(ctx context.Context, id uint) (*models.Expense, error) {
	var e models.Expense
	if err := s.conn(ctx).First(&e, id).Error; err != nil {
		return nil, apperr.FromStore(err, "expense")
	}
	return &e, nil
}

// ListExpenses returns one page of all expenses and the total count.
func (s *Store) ListExpenses(ctx context.Context, p Page) ([]models.Expense, int64, error) {
	var total int64
	if err := s.conn(ctx).Model(&models.Expense{}).Count(&total).Error; err != nil {
		return nil, 0, apperr.FromStore(err, "expense")
	}
	var expenses []models.Expense
	if err := s.conn(ctx).Order("id").Offset(p.Offset).Limit(p.Limit).Find(&expenses).Error; err != nil {
		return nil, 0, apperr.FromStore(err, "expense")
	}
	return expenses, total, nil
}

func (s *Store) ListExpensesByAccount(ctx context.Context, accountID uint) ([]models.Expense, error) {
	var expenses []models.Expense
	err := s.conn(ctx).Where("bank_account_id = ?", accountID).Order("date desc, hour desc, id desc").Find(&expenses).Error
	if err != nil {
		return nil, apperr.FromStore(err, "expense")
	}
	return expenses, nil
}

// ListExpensesByUser joins through bank_accounts.
func (s *Store) ListExpensesByUser(ctx context.Context, userID uint) ([]models.Expense, error) {
	var expenses []models.Expense
	err := s.conn(ctx).
		Joins("JOIN bank_accounts ON bank_accounts.id = expenses.bank_account_id").
		Where("bank_accounts.user_id = ?", userID).
		Order("expenses.date desc, expenses.hour desc, expenses.id desc").
		Find(&expenses).Error
	if err != nil {
		return nil, apperr.FromStore(err, "expense")
	}
	return expenses, nil
}

func (s *Store) UpdateExpense(ctx context.Context, id uint, fields map[string]any) error {
	res := s.conn(ctx).Model(&models.Expense{ID: id}).Updates(fields)
	if res.Error != nil {
		return apperr.FromStore(res.Error, "expense")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("expense %d not found", id)
	}
	return nil
}

// DeleteExpense fails with NotFound when nothing was deleted.
func (s *Store) DeleteExpense(ctx context.Context, id uint) error {
	res := s.conn(ctx).Delete(&models.Expense{}, id)
	if res.Error != nil {
		return apperr.FromStore(res.Error, "expense")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("expense %d not found", id)
	}
	return nil
}

// SumExpenses adds the account's expense amounts in decimal arithmetic.
func (s *Store) SumExpenses(ctx context.Context, accountID uint) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := s.conn(ctx).Model(&models.Expense{}).Where("bank_account_id = ?", accountID).Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Zero, apperr.FromStore(err, "expense")
	}
	return decimal.Sum(decimal.Zero, amounts...), nil
}
