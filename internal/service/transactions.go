package service

import (
	"context"
	"log/slog"

	"finance-ledger-go/internal/apperr"
	"finance-ledger-go/internal/ledger"
	"finance-ledger-go/internal/models"
	"finance-ledger-go/internal/store"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

func requiredErr(field string) error {
	return apperr.Validation(field, "%s is required", field)
}

// TransactionService fronts the ledger for incomes and expenses. Writes go
// through the engine; reads go straight to the store.
type TransactionService struct {
	store  *store.Store
	ledger *ledger.Engine
	log    *slog.Logger
}

func NewTransactionService(st *store.Store, lg *ledger.Engine, log *slog.Logger) *TransactionService {
	return &TransactionService{store: st, ledger: lg, log: log}
}

func (s *TransactionService) CreateIncome(ctx context.Context, in ledger.IncomeInput) (*models.Income, error) {
	return s.ledger.RecordIncome(ctx, in)
}

func (s *TransactionService) GetIncome(ctx context.Context, id uint) (*models.Income, error) {
	return s.store.GetIncome(ctx, id)
}

func (s *TransactionService) ListIncomesByAccount(ctx context.Context, accountID uint) ([]models.Income, error) {
	if _, err := s.store.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.store.ListIncomesByAccount(ctx, accountID)
}

func (s *TransactionService) UpdateIncome(ctx context.Context, id uint, p ledger.IncomePatch) (*models.Income, error) {
	return s.ledger.ReviseIncome(ctx, id, p)
}

func (s *TransactionService) DeleteIncome(ctx context.Context, id uint) error {
	return s.ledger.RemoveIncome(ctx, id)
}

func (s *TransactionService) CreateExpense(ctx context.Context, in ledger.ExpenseInput) (*models.Expense, error) {
	return s.ledger.RecordExpense(ctx, in)
}

func (s *TransactionService) GetExpense(ctx context.Context, id uint) (*models.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

type ExpensePage struct {
	Expenses []models.Expense `json:"expenses"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PerPage  int              `json:"per_page"`
}

// ListExpenses pages through every expense by id. Zero page or perPage
// selects the default; perPage is capped at MaxPerPage.
func (s *TransactionService) ListExpenses(ctx context.Context, page, perPage int) (*ExpensePage, error) {
	if page < 0 {
		return nil, apperr.Validation("page", "page must be positive")
	}
	if perPage < 0 {
		return nil, apperr.Validation("per_page", "per_page must be positive")
	}
	if page == 0 {
		page = 1
	}
	if perPage == 0 {
		perPage = DefaultPerPage
	}
	perPage = min(perPage, MaxPerPage)

	expenses, total, err := s.store.ListExpenses(ctx, store.Page{Offset: (page - 1) * perPage, Limit: perPage})
	if err != nil {
		return nil, err
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	return &ExpensePage{Expenses: expenses, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *TransactionService) ListExpensesByUser(ctx context.Context, userID uint) ([]models.Expense, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListExpensesByUser(ctx, userID)
}

func (s *TransactionService) UpdateExpense(ctx context.Context, id uint, p ledger.ExpensePatch) (*models.Expense, error) {
	return s.ledger.ReviseExpense(ctx, id, p)
}

func (s *TransactionService) DeleteExpense(ctx context.Context, id uint) error {
	return s.ledger.RemoveExpense(ctx, id)
}
