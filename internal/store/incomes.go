package store

import (
	"context"

	"github.com/shopspring/decimal"

	"finance-ledger-go/internal/apperr"
	"finance-ledger-go/internal/models"
)

func (s *Store) CreateIncome(ctx context.Context, in *models.Income) error {
	return apperr.FromStore(s.conn(ctx).Create(in).Error, "income")
}

func (s *Store) GetIncome(ctx context.Context, id uint) (*models.Income, error) {
	var in models.Income
	if err := s.conn(ctx).First(&in, id).Error; err != nil {
		return nil, apperr.FromStore(err, "income")
	}
	return &in, nil
}

func (s *Store) ListIncomesByAccount(ctx context.Context, accountID uint) ([]models.Income, error) {
	var incomes []models.Income
	err := s.conn(ctx).Where("bank_account_id = ?", accountID).Order("date desc, id desc").Find(&incomes).Error
	if err != nil {
		return nil, apperr.FromStore(err, "income")
	}
	return incomes, nil
}

// ListIncomesByUser joins through bank_accounts.
func (s *Store) ListIncomesByUser(ctx context.Context, userID uint) ([]models.Income, error) {
	var incomes []models.Income
	err := s.conn(ctx).
		Joins("JOIN bank_accounts ON bank_accounts.id = incomes.bank_account_id").
		Where("bank_accounts.user_id = ?", userID).
		Order("incomes.date desc, incomes.id desc").
		Find(&incomes).Error
	if err != nil {
		return nil, apperr.FromStore(err, "income")
	}
	return incomes, nil
}

func (s *Store) UpdateIncome(ctx context.Context, id uint, fields map[string]any) error {
	res := s.conn(ctx).Model(&models.Income{ID: id}).Updates(fields)
	if res.Error != nil {
		return apperr.FromStore(res.Error, "income")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("income %d not found", id)
	}
	return nil
}

// DeleteIncome fails with NotFound when nothing was deleted.
func (s *Store) DeleteIncome(ctx context.Context, id uint) error {
	res := s.conn(ctx).Delete(&models.Income{}, id)
	if res.Error != nil {
		return apperr.FromStore(res.Error, "income")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("income %d not found", id)
	}
	return nil
}

// SumIncomes adds the account's income amounts in decimal arithmetic.
func (s *Store) SumIncomes(ctx context.Context, accountID uint) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := s.conn(ctx).Model(&models.Income{}).Where("bank_account_id = ?", accountID).Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Zero, apperr.FromStore(err, "income")
	}
	return decimal.Sum(decimal.Zero, amounts...), nil
}
