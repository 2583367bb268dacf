package jobs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-ledger-go/internal/ledger"
)

type fakeReconciler struct {
	calls   atomic.Int32
	repair  atomic.Bool
	drifted []ledger.Drift
	err     error
}

func (f *fakeReconciler) ReconcileAll(ctx context.Context, repair bool) ([]ledger.Drift, error) {
	f.calls.Add(1)
	f.repair.Store(repair)
	return f.drifted, f.err
}

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func TestReconcileLogsDrift(t *testing.T) {
	var buf bytes.Buffer
	r := &fakeReconciler{drifted: []ledger.Drift{{BankAccountID: 3, Cached: decimal.NewFromInt(1)}}}
	s := NewScheduler(r, newLogger(&buf), Options{Schedule: "@hourly", Repair: true})

	s.Reconcile()

	assert.EqualValues(t, 1, r.calls.Load())
	assert.True(t, r.repair.Load())
	assert.Contains(t, buf.String(), "drifted balances")
	assert.Contains(t, buf.String(), "bank_account_ids=[3]")
}

func TestReconcileLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	r := &fakeReconciler{err: errors.New("db down")}
	s := NewScheduler(r, newLogger(&buf), Options{Schedule: "@hourly", Timeout: time.Second})

	s.Reconcile()
	assert.Contains(t, buf.String(), "reconciliation failed")
	assert.Contains(t, buf.String(), "db down")
}

func TestStartRejectsBadSchedule(t *testing.T) {
	var buf bytes.Buffer
	s := NewScheduler(&fakeReconciler{}, newLogger(&buf), Options{Schedule: "every tuesday"})
	assert.Error(t, s.Start())
}

func TestScheduledRun(t *testing.T) {
	var buf bytes.Buffer
	r := &fakeReconciler{}
	s := NewScheduler(r, newLogger(&buf), Options{Schedule: "@every 1s"})
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return r.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
