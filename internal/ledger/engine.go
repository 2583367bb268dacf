// Package ledger keeps every bank account balance equal to the sum of its
// incomes minus the sum of its expenses. Each mutation of an income or
// expense and the matching balance change commit together in one database
// transaction, with the affected account rows locked for its duration.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"finance-ledger-go/internal/apperr"
	"finance-ledger-go/internal/models"
	"finance-ledger-go/internal/store"
)

type Options struct {
	// StoreTimeout bounds one atomic unit including the wait for locks.
	// Zero means no timeout beyond the caller's context.
	StoreTimeout time.Duration
	// LockRetries bounds how often a revision or removal is retried when the
	// transaction moves to another account between read and lock.
	LockRetries int
}

type Engine struct {
	store   *store.Store
	locks   *lockSet
	timeout time.Duration
	retries int
	log     *slog.Logger
}

func New(st *store.Store, opts Options, log *slog.Logger) *Engine {
	retries := opts.LockRetries
	if retries < 1 {
		retries = 1
	}
	return &Engine{
		store:   st,
		locks:   newLockSet(),
		timeout: opts.StoreTimeout,
		retries: retries,
		log:     log,
	}
}

var errMoved = errors.New("transaction moved to another account")

type unitFunc func(ctx context.Context, tx *store.Store, accounts map[uint]*models.BankAccount) error

// atomically runs fn with the given accounts locked in-process and FOR
// UPDATE in the store. Any error rolls the whole unit back.
func (e *Engine) atomically(ctx context.Context, accountIDs []uint, fn unitFunc) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	unlock, err := e.locks.lock(ctx, accountIDs...)
	if err != nil {
		return apperr.Retry(err, "bank account busy")
	}
	defer unlock()

	err = e.store.Tx(ctx, func(tx *store.Store) error {
		accounts, err := tx.LockAccounts(ctx, accountIDs...)
		if err != nil {
			return err
		}
		return fn(ctx, tx, accounts)
	})
	if errors.Is(err, errMoved) {
		return err
	}
	return apperr.FromStore(err, "ledger")
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout > 0 {
		return context.WithTimeout(ctx, e.timeout)
	}
	return context.WithCancel(ctx)
}

// post applies the per-account deltas to the locked accounts, one write per
// account.
func (e *Engine) post(ctx context.Context, tx *store.Store, accounts map[uint]*models.BankAccount, deltas map[uint]decimal.Decimal) error {
	ids := make([]uint, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		delta := deltas[id]
		if delta.IsZero() {
			continue
		}
		acct, ok := accounts[id]
		if !ok {
			return apperr.Storage(nil, "bank account %d not locked", id)
		}
		before := acct.Balance
		after := before.Add(delta)
		if after.Abs().GreaterThanOrEqual(MaxBalance) {
			return apperr.Validation("amount", "balance of bank account %d would exceed %s", id, MaxBalance.String())
		}
		acct.Balance = after
		if err := tx.SetBalance(ctx, id, acct.Balance); err != nil {
			return err
		}
		e.log.Debug("balance adjusted",
			"bank_account_id", id,
			"before", before.StringFixed(AmountPlaces),
			"delta", delta.StringFixed(AmountPlaces),
			"after", acct.Balance.StringFixed(AmountPlaces),
		)
	}
	return nil
}

// book describes one kind of transaction: how it is read, changed and
// removed, and the sign of its contribution to the balance.
type book struct {
	name   string
	sign   decimal.Decimal
	get    func(ctx context.Context, st *store.Store, id uint) (accountID uint, amount decimal.Decimal, err error)
	update func(ctx context.Context, st *store.Store, id uint, fields map[string]any) error
	remove func(ctx context.Context, st *store.Store, id uint) error
}

func (b book) effect(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(b.sign)
}

var incomeBook = book{
	name: "income",
	sign: decimal.NewFromInt(1),
	get: func(ctx context.Context, st *store.Store, id uint) (uint, decimal.Decimal, error) {
		in, err := st.GetIncome(ctx, id)
		if err != nil {
			return 0, decimal.Zero, err
		}
		return in.BankAccountID, in.Amount, nil
	},
	update: func(ctx context.Context, st *store.Store, id uint, fields map[string]any) error {
		return st.UpdateIncome(ctx, id, fields)
	},
	remove: func(ctx context.Context, st *store.Store, id uint) error {
		return st.DeleteIncome(ctx, id)
	},
}

var expenseBook = book{
	name: "expense",
	sign: decimal.NewFromInt(-1),
	get: func(ctx context.Context, st *store.Store, id uint) (uint, decimal.Decimal, error) {
		ex, err := st.GetExpense(ctx, id)
		if err != nil {
			return 0, decimal.Zero, err
		}
		return ex.BankAccountID, ex.Amount, nil
	},
	update: func(ctx context.Context, st *store.Store, id uint, fields map[string]any) error {
		return st.UpdateExpense(ctx, id, fields)
	},
	remove: func(ctx context.Context, st *store.Store, id uint) error {
		return st.DeleteExpense(ctx, id)
	},
}

// change is a revision expressed in store terms.
type change struct {
	account *uint
	amount  *decimal.Decimal
	fields  map[string]any
}

// revise reverses the old contribution and applies the new one inside the
// same unit as the row update. after runs inside the unit to reload the row.
func (e *Engine) revise(ctx context.Context, b book, id uint, c change, after func(ctx context.Context, tx *store.Store) error) error {
	return e.retryMoved(ctx, b, id, func(accountID uint) []uint {
		ids := []uint{accountID}
		if c.account != nil {
			ids = append(ids, *c.account)
		}
		return ids
	}, func(ctx context.Context, tx *store.Store, accounts map[uint]*models.BankAccount, oldAccount uint, oldAmount decimal.Decimal) error {
		newAccount, newAmount := oldAccount, oldAmount
		if c.account != nil {
			newAccount = *c.account
		}
		if c.amount != nil {
			newAmount = *c.amount
		}

		if len(c.fields) > 0 {
			if err := b.update(ctx, tx, id, c.fields); err != nil {
				return err
			}
		}

		deltas := map[uint]decimal.Decimal{}
		deltas[oldAccount] = deltas[oldAccount].Sub(b.effect(oldAmount))
		deltas[newAccount] = deltas[newAccount].Add(b.effect(newAmount))
		if err := e.post(ctx, tx, accounts, deltas); err != nil {
			return err
		}
		return after(ctx, tx)
	})
}

// remove deletes the row and reverses its contribution.
func (e *Engine) remove(ctx context.Context, b book, id uint) error {
	return e.retryMoved(ctx, b, id, func(accountID uint) []uint {
		return []uint{accountID}
	}, func(ctx context.Context, tx *store.Store, accounts map[uint]*models.BankAccount, account uint, amount decimal.Decimal) error {
		if err := b.remove(ctx, tx, id); err != nil {
			return err
		}
		return e.post(ctx, tx, accounts, map[uint]decimal.Decimal{account: b.effect(amount).Neg()})
	})
}

// retryMoved reads the row to learn which account to lock, locks it, then
// re-reads the row inside the unit. If the row moved to a different account
// in between, the attempt is abandoned and repeated.
func (e *Engine) retryMoved(
	ctx context.Context,
	b book,
	id uint,
	lockIDs func(accountID uint) []uint,
	fn func(ctx context.Context, tx *store.Store, accounts map[uint]*models.BankAccount, account uint, amount decimal.Decimal) error,
) error {
	for attempt := 0; attempt < e.retries; attempt++ {
		readCtx, cancel := e.withTimeout(ctx)
		seenAccount, _, err := b.get(readCtx, e.store, id)
		cancel()
		if err != nil {
			return err
		}

		err = e.atomically(ctx, lockIDs(seenAccount), func(ctx context.Context, tx *store.Store, accounts map[uint]*models.BankAccount) error {
			account, amount, err := b.get(ctx, tx, id)
			if err != nil {
				return err
			}
			if account != seenAccount {
				return errMoved
			}
			return fn(ctx, tx, accounts, account, amount)
		})
		if !errors.Is(err, errMoved) {
			return err
		}
		e.log.Info("transaction moved while waiting for lock, retrying", "kind", b.name, "id", id, "attempt", attempt+1)
	}
	return apperr.Retry(errMoved, "%s %d changed concurrently", b.name, id)
}
