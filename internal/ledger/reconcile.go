package ledger

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"finance-ledger-go/internal/apperr"
	"finance-ledger-go/internal/models"
	"finance-ledger-go/internal/store"
)

// Drift compares an account's cached balance against the balance recomputed
// from its transactions.
type Drift struct {
	BankAccountID uint            `json:"bank_account_id"`
	Cached        decimal.Decimal `json:"cached"`
	Computed      decimal.Decimal `json:"computed"`
	Repaired      bool            `json:"repaired"`
}

func (d Drift) Consistent() bool {
	return d.Cached.Equal(d.Computed)
}

const reconcileWorkers = 4

// ReconcileAccount recomputes the balance under the account lock. With
// repair set, a drifted cache is overwritten with the computed value.
func (e *Engine) ReconcileAccount(ctx context.Context, id uint, repair bool) (Drift, error) {
	var d Drift
	err := e.atomically(ctx, []uint{id}, func(ctx context.Context, tx *store.Store, accounts map[uint]*models.BankAccount) error {
		incomes, err := tx.SumIncomes(ctx, id)
		if err != nil {
			return err
		}
		expenses, err := tx.SumExpenses(ctx, id)
		if err != nil {
			return err
		}
		d = Drift{BankAccountID: id, Cached: accounts[id].Balance, Computed: incomes.Sub(expenses)}
		if d.Consistent() || !repair {
			return nil
		}
		if err := tx.SetBalance(ctx, id, d.Computed); err != nil {
			return err
		}
		d.Repaired = true
		return nil
	})
	if err != nil {
		return Drift{}, err
	}
	if !d.Consistent() {
		e.log.Warn("balance drift detected",
			"bank_account_id", id,
			"cached", d.Cached.StringFixed(AmountPlaces),
			"computed", d.Computed.StringFixed(AmountPlaces),
			"repaired", d.Repaired,
		)
	}
	return d, nil
}

// ReconcileAll checks every account and returns only the drifted ones,
// ordered by account id.
func (e *Engine) ReconcileAll(ctx context.Context, repair bool) ([]Drift, error) {
	ids, err := e.store.ListAccountIDs(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		drifted []Drift
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileWorkers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			d, err := e.ReconcileAccount(gctx, id, repair)
			if errors.Is(err, apperr.ErrNotFound) {
				return nil // deleted since listing
			}
			if err != nil {
				return err
			}
			if !d.Consistent() {
				mu.Lock()
				drifted = append(drifted, d)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(drifted, func(i, j int) bool { return drifted[i].BankAccountID < drifted[j].BankAccountID })
	e.log.Info("reconciliation finished", "accounts", len(ids), "drifted", len(drifted))
	return drifted, nil
}
