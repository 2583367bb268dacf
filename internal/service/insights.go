package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finance-ledger-go/internal/apperr"
	"finance-ledger-go/internal/ledger"
	"finance-ledger-go/internal/store"
)

const MonthLayout = "2006-01"

var hundred = decimal.NewFromInt(100)

type MonthlyHealth struct {
	Income      decimal.Decimal `json:"income"`
	Spent       decimal.Decimal `json:"spent"`
	Savings     decimal.Decimal `json:"savings"`
	SavingsRate decimal.Decimal `json:"savings_rate"` // percent of income, floored at 0
}

type CategoryBreakdown struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
	Change     decimal.Decimal `json:"change"` // percent vs previous month
}

type AccountSpending struct {
	BankAccountID uint            `json:"bank_account_id"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	Percentage    decimal.Decimal `json:"percentage"`
}

type BehavioralInsight struct {
	AverageDailySpend decimal.Decimal `json:"average_daily_spend"`
	HighestSpendDay   string          `json:"highest_spend_day"`
}

type Insights struct {
	Month              string              `json:"month"`
	MonthlyHealth      MonthlyHealth       `json:"monthly_health"`
	CategoryBreakdown  []CategoryBreakdown `json:"category_breakdown"`
	AccountSpending    []AccountSpending   `json:"account_spending"`
	BehavioralInsights BehavioralInsight   `json:"behavioral_insights"`
}

// InsightsService summarizes a user's month from the stored transactions.
// It only reads.
type InsightsService struct {
	store *store.Store
	now   func() time.Time
}

func NewInsightsService(st *store.Store) *InsightsService {
	return &InsightsService{store: st, now: time.Now}
}

// MonthlySummary reports on month (YYYY-MM); empty means the current month.
func (s *InsightsService) MonthlySummary(ctx context.Context, userID uint, month string) (*Insights, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if month != "" {
		t, err := time.Parse(MonthLayout, month)
		if err != nil {
			return nil, apperr.Validation("month", "month must be formatted YYYY-MM")
		}
		start = t
	}
	end := start.AddDate(0, 1, 0)
	prev := start.AddDate(0, -1, 0)

	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	accounts, err := s.store.ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	incomes, err := s.store.ListIncomesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpensesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	inMonth := func(date string, from, to time.Time) bool {
		return date >= from.Format(ledger.DateLayout) && date < to.Format(ledger.DateLayout)
	}

	res := &Insights{
		Month:             start.Format(MonthLayout),
		CategoryBreakdown: []CategoryBreakdown{},
		AccountSpending:   []AccountSpending{},
	}

	var income, spent decimal.Decimal
	for _, in := range incomes {
		if inMonth(in.Date, start, end) {
			income = income.Add(in.Amount)
		}
	}

	categoryThis := map[string]decimal.Decimal{}
	categoryLast := map[string]decimal.Decimal{}
	accountSpend := map[uint]decimal.Decimal{}
	weekdaySpend := map[time.Weekday]decimal.Decimal{}
	for _, e := range expenses {
		switch {
		case inMonth(e.Date, start, end):
			spent = spent.Add(e.Amount)
			categoryThis[e.Category] = categoryThis[e.Category].Add(e.Amount)
			accountSpend[e.BankAccountID] = accountSpend[e.BankAccountID].Add(e.Amount)
			if d, err := time.Parse(ledger.DateLayout, e.Date); err == nil {
				weekdaySpend[d.Weekday()] = weekdaySpend[d.Weekday()].Add(e.Amount)
			}
		case inMonth(e.Date, prev, start):
			categoryLast[e.Category] = categoryLast[e.Category].Add(e.Amount)
		}
	}

	res.MonthlyHealth = MonthlyHealth{Income: income, Spent: spent, Savings: income.Sub(spent)}
	if income.IsPositive() {
		res.MonthlyHealth.SavingsRate = decimal.Max(decimal.Zero, percent(income.Sub(spent), income))
	}

	for cat, amt := range categoryThis {
		cb := CategoryBreakdown{Category: cat, Amount: amt, Percentage: percent(amt, spent)}
		if last := categoryLast[cat]; last.IsPositive() {
			cb.Change = percent(amt.Sub(last), last)
		}
		res.CategoryBreakdown = append(res.CategoryBreakdown, cb)
	}
	sort.Slice(res.CategoryBreakdown, func(i, j int) bool {
		a, b := res.CategoryBreakdown[i], res.CategoryBreakdown[j]
		if !a.Amount.Equal(b.Amount) {
			return a.Amount.GreaterThan(b.Amount)
		}
		return a.Category < b.Category
	})

	for _, a := range accounts {
		amt, ok := accountSpend[a.ID]
		if !ok {
			continue
		}
		name := a.BankName
		if a.Alias != nil {
			name = *a.Alias
		}
		res.AccountSpending = append(res.AccountSpending, AccountSpending{
			BankAccountID: a.ID,
			Name:          name,
			Amount:        amt,
			Percentage:    percent(amt, spent),
		})
	}

	res.BehavioralInsights = behavior(spent, weekdaySpend, daysElapsed(start, end, now))
	return res, nil
}

func percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(ledger.AmountPlaces)
}

// daysElapsed counts the days of [start, end) up to and including today.
func daysElapsed(start, end, now time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case today.Before(start):
		return 0
	case !today.Before(end):
		return int(end.Sub(start).Hours() / 24)
	}
	return today.Day()
}

func behavior(spent decimal.Decimal, byWeekday map[time.Weekday]decimal.Decimal, days int) BehavioralInsight {
	var b BehavioralInsight
	if days > 0 {
		b.AverageDailySpend = spent.Div(decimal.NewFromInt(int64(days))).Round(ledger.AmountPlaces)
	}
	var highest decimal.Decimal
	for d := time.Sunday; d <= time.Saturday; d++ {
		if amt := byWeekday[d]; amt.GreaterThan(highest) {
			highest = amt
			b.HighestSpendDay = d.String()
		}
	}
	return b
}
