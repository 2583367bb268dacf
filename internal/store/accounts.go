package store

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"

	"finance-ledger-go/internal/apperr"
	"finance-ledger-go/internal/models"
)

func (s *Store) CreateAccount(ctx context.Context, a *models.BankAccount) error {
	return apperr.FromStore(s.conn(ctx).Create(a).Error, "bank account")
}

func (s *Store) GetAccount(ctx context.Context, id uint) (*models.BankAccount, error) {
	var a models.BankAccount
	if err := s.conn(ctx).First(&a, id).Error; err != nil {
		return nil, apperr.FromStore(err, "bank account")
	}
	return &a, nil
}

func (s *Store) ListAccountsByUser(ctx context.Context, userID uint) ([]models.BankAccount, error) {
	var accounts []models.BankAccount
	if err := s.conn(ctx).Where("user_id = ?", userID).Order("id").Find(&accounts).Error; err != nil {
		return nil, apperr.FromStore(err, "bank account")
	}
	return accounts, nil
}

// ListAccountIDs returns every account id in ascending order.
func (s *Store) ListAccountIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := s.conn(ctx).Model(&models.BankAccount{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, apperr.FromStore(err, "bank account")
	}
	return ids, nil
}

// LockAccounts selects the accounts FOR UPDATE in ascending id order, which
// is the only order any caller may lock accounts in. Must run inside Tx.
// Fails with NotFound naming the first missing id.
func (s *Store) LockAccounts(ctx context.Context, ids ...uint) (map[uint]*models.BankAccount, error) {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	q := s.conn(ctx)
	// sqlite has no row locks; its single connection already serializes writers.
	if s.db.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var accounts []models.BankAccount
	err := q.Where("id IN ?", ids).Order("id").Find(&accounts).Error
	if err != nil {
		return nil, apperr.FromStore(err, "bank account")
	}

	locked := make(map[uint]*models.BankAccount, len(accounts))
	for i := range accounts {
		locked[accounts[i].ID] = &accounts[i]
	}
	for _, id := range ids {
		if _, ok := locked[id]; !ok {
			return nil, apperr.NotFound("bank account %d not found", id)
		}
	}
	return locked, nil
}

// UpdateAccount writes the given columns only. Balance is not accepted here;
// use SetBalance under a lock.
func (s *Store) UpdateAccount(ctx context.Context, id uint, fields map[string]any) error {
	if _, ok := fields["balance"]; ok {
		return apperr.Validation("balance", "balance is maintained by the ledger")
	}
	res := s.conn(ctx).Model(&models.BankAccount{ID: id}).Updates(fields)
	if res.Error != nil {
		return apperr.FromStore(res.Error, "bank account")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("bank account %d not found", id)
	}
	return nil
}

// SetBalance overwrites the cached balance. Callers hold the account lock.
func (s *Store) SetBalance(ctx context.Context, id uint, balance decimal.Decimal) error {
	res := s.conn(ctx).Model(&models.BankAccount{ID: id}).Update("balance", balance)
	if res.Error != nil {
		return apperr.FromStore(res.Error, "bank account")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("bank account %d not found", id)
	}
	return nil
}

// DeleteAccount removes the account and its whole subtree without touching
// any balance. Must run inside Tx.
func (s *Store) DeleteAccount(ctx context.Context, id uint) error {
	if _, err := s.LockAccounts(ctx, id); err != nil {
		return err
	}
	if err := s.deleteChildren(ctx, []uint{id}); err != nil {
		return err
	}
	res := s.conn(ctx).Delete(&models.BankAccount{}, id)
	if res.Error != nil {
		return apperr.FromStore(res.Error, "bank account")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("bank account %d not found", id)
	}
	return nil
}

func (s *Store) deleteChildren(ctx context.Context, accountIDs []uint) error {
	if err := s.conn(ctx).Where("bank_account_id IN ?", accountIDs).Delete(&models.Income{}).Error; err != nil {
		return apperr.FromStore(err, "income")
	}
	if err := s.conn(ctx).Where("bank_account_id IN ?", accountIDs).Delete(&models.Expense{}).Error; err != nil {
		return apperr.FromStore(err, "expense")
	}
	return nil
}
