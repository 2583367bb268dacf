package service

import (
	"context"
	"log/slog"
	"strings"

	"finance-ledger-go/internal/ledger"
	"finance-ledger-go/internal/models"
	"finance-ledger-go/internal/store"
)

type AccountService struct {
	store  *store.Store
	ledger *ledger.Engine
	log    *slog.Logger
}

func NewAccountService(st *store.Store, lg *ledger.Engine, log *slog.Logger) *AccountService {
	return &AccountService{store: st, ledger: lg, log: log}
}

// NewAccount has no balance field: every account opens at 0.00.
type NewAccount struct {
	UserID        uint
	BankName      string
	AccountNumber string
	RoutingNumber string
	AccountType   string
	Alias         *string
}

func (in NewAccount) Validate() error {
	if in.UserID == 0 {
		return requiredErr("user_id")
	}
	for _, f := range []struct{ name, value string }{
		{"bank_name", in.BankName},
		{"account_number", in.AccountNumber},
		{"routing_number", in.RoutingNumber},
		{"account_type", in.AccountType},
	} {
		if err := ledger.CheckRequired(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// AccountPatch lists the mutable account fields; nil means unchanged. An
// empty alias clears it.
type AccountPatch struct {
	BankName      *string
	AccountNumber *string
	RoutingNumber *string
	AccountType   *string
	Alias         *string
}

func (p AccountPatch) fields() (map[string]any, error) {
	fields := map[string]any{}
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"bank_name", p.BankName},
		{"account_number", p.AccountNumber},
		{"routing_number", p.RoutingNumber},
		{"account_type", p.AccountType},
	} {
		if f.value == nil {
			continue
		}
		if err := ledger.CheckRequired(f.name, *f.value); err != nil {
			return nil, err
		}
		fields[f.name] = strings.TrimSpace(*f.value)
	}
	if p.Alias != nil {
		fields["alias"] = optional(*p.Alias)
	}
	return fields, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *AccountService) Create(ctx context.Context, in NewAccount) (*models.BankAccount, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetUser(ctx, in.UserID); err != nil {
		return nil, err
	}
	a := &models.BankAccount{
		UserID:        in.UserID,
		BankName:      strings.TrimSpace(in.BankName),
		AccountNumber: strings.TrimSpace(in.AccountNumber),
		RoutingNumber: strings.TrimSpace(in.RoutingNumber),
		AccountType:   strings.TrimSpace(in.AccountType),
	}
	if in.Alias != nil {
		a.Alias = optional(*in.Alias)
	}
	if err := s.store.CreateAccount(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info("bank account created", "bank_account_id", a.ID, "user_id", a.UserID)
	return a, nil
}

func (s *AccountService) ListByUser(ctx context.Context, userID uint) ([]models.BankAccount, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListAccountsByUser(ctx, userID)
}

func (s *AccountService) Get(ctx context.Context, id uint) (*models.BankAccount, error) {
	return s.store.GetAccount(ctx, id)
}

// Update changes descriptive fields only. The balance is never touched.
func (s *AccountService) Update(ctx context.Context, id uint, p AccountPatch) (*models.BankAccount, error) {
	fields, err := p.fields()
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := s.store.UpdateAccount(ctx, id, fields); err != nil {
			return nil, err
		}
		s.log.Info("bank account updated", "bank_account_id", id)
	}
	return s.store.GetAccount(ctx, id)
}

// Delete removes the account with all of its incomes and expenses.
func (s *AccountService) Delete(ctx context.Context, id uint) error {
	return s.ledger.DeleteAccount(ctx, id)
}

// ListIncomesByUser returns the incomes of every account the user owns.
func (s *AccountService) ListIncomesByUser(ctx context.Context, userID uint) ([]models.Income, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListIncomesByUser(ctx, userID)
}

func (s *AccountService) Reconcile(ctx context.Context, id uint, repair bool) (ledger.Drift, error) {
	return s.ledger.ReconcileAccount(ctx, id, repair)
}
