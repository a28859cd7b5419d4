package tracker

import (
	"context"
	"fmt"
	"log/slog"

	"kharcha/internal/core"
)

// resetWindowDays is how deep into a new month the reset still fires.
const resetWindowDays = 5

// RunMonthlyReset applies the start-of-month budget reset once per calendar
// month. It fires only within the first days of the month and only if the
// persisted marker has not already been stamped for the current month key,
// so repeated calls are no-ops. Returns whether a reset was applied.
//
// A record created here starts with the savings goal enabled at the settings
// default: a new month should nudge the user to save. That intentionally
// diverges from lazy creation, which starts goals disabled.
func (t *Tracker) RunMonthlyReset(ctx context.Context) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if now.Day() > resetWindowDays {
		return false, nil
	}

	month := now.Month().String()
	year := now.Year()
	key := core.MonthKey(month, year)
	if t.lastReset == key {
		return false, nil
	}

	if mb := t.monthBudget(month, year); mb == nil {
		b := core.NewMonthBudget(month, year, t.settings)
		b.SavingsGoal = t.settings.DefaultSavingsGoal
		b.HasSavingsGoal = true
		t.budgets = append(t.budgets, b)
	} else {
		// The record was pre-created by an early expense this month: pull
		// the defaulted fields back to current settings, keep user data
		// like bill amounts and the credit limit.
		mb.TotalBudget = t.settings.DefaultCashBalance.Add(t.settings.DefaultBankBalance)
		mb.SIP = t.settings.DefaultSIP
		mb.Rent = t.settings.DefaultRent
		mb.SavingsGoal = t.settings.DefaultSavingsGoal
		mb.CreditCardUsed = core.Money{}
		mb.SIPPaid = false
		mb.RentPaid = false
		mb.InitialCashBalance = nil
		mb.InitialBankBalance = nil
	}

	if err := t.persistData(ctx); err != nil {
		return false, err
	}
	if err := t.store.SaveLastReset(ctx, key); err != nil {
		return false, fmt.Errorf("save reset marker: %w", err)
	}
	t.lastReset = key

	slog.InfoContext(ctx, "Monthly budget reset applied", "key", key)
	return true, nil
}
