package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"finance-ledger-go/internal/apperr"
	"finance-ledger-go/internal/models"
	"finance-ledger-go/internal/store"
)

type IncomeInput struct {
	BankAccountID uint
	Amount        decimal.Decimal
	Source        string
	Date          string
	Notes         string
}

func (in IncomeInput) Validate() error {
	if in.BankAccountID == 0 {
		return apperr.Validation("bank_account_id", "bank_account_id is required")
	}
	if err := CheckAmount(in.Amount); err != nil {
		return err
	}
	if err := CheckRequired("source", in.Source); err != nil {
		return err
	}
	return CheckDate(in.Date)
}

type ExpenseInput struct {
	BankAccountID uint
	Amount        decimal.Decimal
	Category      string
	Date          string
	Hour          string
	Description   string
}

func (in ExpenseInput) Validate() error {
	if in.BankAccountID == 0 {
		return apperr.Validation("bank_account_id", "bank_account_id is required")
	}
	if err := CheckAmount(in.Amount); err != nil {
		return err
	}
	if err := CheckRequired("category", in.Category); err != nil {
		return err
	}
	if err := CheckDate(in.Date); err != nil {
		return err
	}
	return CheckHour(in.Hour)
}

// IncomePatch lists the mutable income fields; nil means unchanged.
type IncomePatch struct {
	BankAccountID *uint
	Amount        *decimal.Decimal
	Source        *string
	Date          *string
	Notes         *string
}

func (p IncomePatch) Validate() error {
	if p.BankAccountID != nil && *p.BankAccountID == 0 {
		return apperr.Validation("bank_account_id", "bank_account_id is required")
	}
	if p.Amount != nil {
		if err := CheckAmount(*p.Amount); err != nil {
			return err
		}
	}
	if p.Source != nil {
		if err := CheckRequired("source", *p.Source); err != nil {
			return err
		}
	}
	if p.Date != nil {
		return CheckDate(*p.Date)
	}
	return nil
}

func (p IncomePatch) change() change {
	fields := map[string]any{}
	if p.BankAccountID != nil {
		fields["bank_account_id"] = *p.BankAccountID
	}
	if p.Amount != nil {
		fields["amount"] = *p.Amount
	}
	if p.Source != nil {
		fields["source"] = *p.Source
	}
	if p.Date != nil {
		fields["date"] = *p.Date
	}
	if p.Notes != nil {
		fields["notes"] = *p.Notes
	}
	return change{account: p.BankAccountID, amount: p.Amount, fields: fields}
}

// ExpensePatch lists the mutable expense fields; nil means unchanged.
type ExpensePatch struct {
	BankAccountID *uint
	Amount        *decimal.Decimal
	Category      *string
	Date          *string
	Hour          *string
	Description   *string
}

func (p ExpensePatch) Validate() error {
	if p.BankAccountID != nil && *p.BankAccountID == 0 {
		return apperr.Validation("bank_account_id", "bank_account_id is required")
	}
	if p.Amount != nil {
		if err := CheckAmount(*p.Amount); err != nil {
			return err
		}
	}
	if p.Category != nil {
		if err := CheckRequired("category", *p.Category); err != nil {
			return err
		}
	}
	if p.Date != nil {
		if err := CheckDate(*p.Date); err != nil {
			return err
		}
	}
	if p.Hour != nil {
		return CheckHour(*p.Hour)
	}
	return nil
}

func (p ExpensePatch) change() change {
	fields := map[string]any{}
	if p.BankAccountID != nil {
		fields["bank_account_id"] = *p.BankAccountID
	}
	if p.Amount != nil {
		fields["amount"] = *p.Amount
	}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	if p.Date != nil {
		fields["date"] = *p.Date
	}
	if p.Hour != nil {
		fields["hour"] = *p.Hour
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	return change{account: p.BankAccountID, amount: p.Amount, fields: fields}
}

// RecordIncome inserts the income and credits its account in one unit.
func (e *Engine) RecordIncome(ctx context.Context, in IncomeInput) (*models.Income, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	income := &models.Income{
		BankAccountID: in.BankAccountID,
		Amount:        in.Amount,
		Source:        in.Source,
		Date:          in.Date,
		Notes:         in.Notes,
	}
	err := e.atomically(ctx, []uint{in.BankAccountID}, func(ctx context.Context, tx *store.Store, accounts map[uint]*models.BankAccount) error {
		if err := tx.CreateIncome(ctx, income); err != nil {
			return err
		}
		return e.post(ctx, tx, accounts, map[uint]decimal.Decimal{in.BankAccountID: incomeBook.effect(income.Amount)})
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("income recorded", "income_id", income.ID, "bank_account_id", income.BankAccountID, "amount", income.Amount.StringFixed(AmountPlaces))
	return income, nil
}

// RecordExpense inserts the expense and debits its account in one unit. The
// balance may go negative; there is no overdraft check.
func (e *Engine) RecordExpense(ctx context.Context, in ExpenseInput) (*models.Expense, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	expense := &models.Expense{
		BankAccountID: in.BankAccountID,
		Amount:        in.Amount,
		Category:      in.Category,
		Date:          in.Date,
		Hour:          in.Hour,
		Description:   in.Description,
	}
	err := e.atomically(ctx, []uint{in.BankAccountID}, func(ctx context.Context, tx *store.Store, accounts map[uint]*models.BankAccount) error {
		if err := tx.CreateExpense(ctx, expense); err != nil {
			return err
		}
		return e.post(ctx, tx, accounts, map[uint]decimal.Decimal{in.BankAccountID: expenseBook.effect(expense.Amount)})
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("expense recorded", "expense_id", expense.ID, "bank_account_id", expense.BankAccountID, "amount", expense.Amount.StringFixed(AmountPlaces))
	return expense, nil
}

// ReviseIncome applies p and moves the balance by the difference between the
// old and new contribution, across accounts if bank_account_id changes.
func (e *Engine) ReviseIncome(ctx context.Context, id uint, p IncomePatch) (*models.Income, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var out *models.Income
	err := e.revise(ctx, incomeBook, id, p.change(), func(ctx context.Context, tx *store.Store) error {
		var err error
		out, err = tx.GetIncome(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) ReviseExpense(ctx context.Context, id uint, p ExpensePatch) (*models.Expense, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var out *models.Expense
	err := e.revise(ctx, expenseBook, id, p.change(), func(ctx context.Context, tx *store.Store) error {
		var err error
		out, err = tx.GetExpense(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveIncome deletes the income and debits its amount back. Removing an
// income that no longer exists is a NotFound error, not a no-op.
func (e *Engine) RemoveIncome(ctx context.Context, id uint) error {
	if err := e.remove(ctx, incomeBook, id); err != nil {
		return err
	}
	e.log.Info("income removed", "income_id", id)
	return nil
}

// RemoveExpense deletes the expense and credits its amount back. Removing an
// expense that no longer exists is a NotFound error, not a no-op.
func (e *Engine) RemoveExpense(ctx context.Context, id uint) error {
	if err := e.remove(ctx, expenseBook, id); err != nil {
		return err
	}
	e.log.Info("expense removed", "expense_id", id)
	return nil
}

// DeleteAccount removes the account and every transaction under it. No
// balance is unwound since the account itself goes away.
func (e *Engine) DeleteAccount(ctx context.Context, id uint) error {
	err := e.atomically(ctx, []uint{id}, func(ctx context.Context, tx *store.Store, _ map[uint]*models.BankAccount) error {
		return tx.DeleteAccount(ctx, id)
	})
	if err != nil {
		return err
	}
	e.log.Info("bank account deleted", "bank_account_id", id)
	return nil
}

// DeleteUser removes the user and the whole subtree below it.
func (e *Engine) DeleteUser(ctx context.Context, id uint) error {
	readCtx, cancel := e.withTimeout(ctx)
	accounts, err := e.store.ListAccountsByUser(readCtx, id)
	cancel()
	if err != nil {
		return err
	}
	ids := make([]uint, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
	}

	ctx, cancel = e.withTimeout(ctx)
	defer cancel()
	unlock, err := e.locks.lock(ctx, ids...)
	if err != nil {
		return apperr.Retry(err, "bank account busy")
	}
	defer unlock()

	err = e.store.Tx(ctx, func(tx *store.Store) error {
		return tx.DeleteUser(ctx, id)
	})
	if err != nil {
		return apperr.FromStore(err, "user")
	}
	e.log.Info("user deleted", "user_id", id, "bank_accounts", len(ids))
	return nil
}
