package tracker

import (
	"context"
	"log/slog"

	"kharcha/internal/core"
)

// AddBillExpense settles a bill with a real payment: the amount goes into
// the ledger (category Bills, Services for laundry) through the standard
// commit protocol, then the registry record is flagged paid with the amount.
// For SIP and Rent the submitted amount becomes the month's standing amount.
func (t *Tracker) AddBillExpense(ctx context.Context, bill core.BillType, date core.Date, amount core.Money, method core.PaymentMethod) (CheckResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := bill.Validate(); err != nil {
		return CheckResult{}, err
	}
	e := core.NewExpense(date, bill.Category(), string(bill), amount, bill.DefaultDescription(), method)
	res, err := t.commitExpense(ctx, e)
	if err != nil {
		return res, err
	}

	mb := t.ensureMonthBudget(e.Month, e.Year)
	mb.ApplyBillPayment(bill, amount, true)

	if err := t.persistData(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// MarkBillPaid records that a bill was settled outside the tracker: the
// paid flag is set with a zero amount and no ledger entry is created. There
// is no way back to unpaid within the same month.
func (t *Tracker) MarkBillPaid(ctx context.Context, bill core.BillType, month string, year int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := bill.Validate(); err != nil {
		return err
	}
	mb := t.ensureMonthBudget(month, year)
	mb.ApplyBillPayment(bill, core.Money{}, true)

	if err := t.persistData(ctx); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Bill marked as already paid",
		"bill", bill, "month", month, "year", year)
	return nil
}

// SetSavingsGoal enables or disables the month's savings goal. Enabling
// stores the entered amount; disabling zeroes it. Single-step toggle, no
// intermediate states.
func (t *Tracker) SetSavingsGoal(ctx context.Context, month string, year int, enabled bool, amount core.Money) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	mb := t.ensureMonthBudget(month, year)
	if enabled {
		mb.SavingsGoal = amount
		mb.HasSavingsGoal = true
	} else {
		mb.SavingsGoal = core.Money{}
		mb.HasSavingsGoal = false
	}

	if err := t.persistData(ctx); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Savings goal updated",
		"month", month, "year", year,
		"enabled", enabled, "amount_paise", amount.Paise)
	return nil
}

// BudgetEdit is a user edit of one month's budget record.
type BudgetEdit struct {
	Month               string
	Year                int
	InitialCashBalance  core.Money
	InitialBankBalance  core.Money
	SavingsGoal         core.Money
	CreditCardLimit     core.Money
	PreviousMonthCredit core.Money
}

// UpdateBudget applies a budget-page edit. The total budget is always
// cash+bank. User-entered cash and bank balances are stored as explicit
// overrides even when they happen to equal the current settings defaults;
// an override is only cleared by the monthly reset.
func (t *Tracker) UpdateBudget(ctx context.Context, edit BudgetEdit) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if edit.InitialCashBalance.Paise < 0 || edit.InitialBankBalance.Paise < 0 {
		return core.ErrInvalidAmount
	}

	mb := t.ensureMonthBudget(edit.Month, edit.Year)

	cash := edit.InitialCashBalance
	bank := edit.InitialBankBalance
	mb.InitialCashBalance = &cash
	mb.InitialBankBalance = &bank
	mb.TotalBudget = cash.Add(bank)

	mb.SavingsGoal = edit.SavingsGoal
	mb.HasSavingsGoal = edit.SavingsGoal.Paise > 0

	if edit.CreditCardLimit.Paise > 0 {
		mb.CreditCardBalance = edit.CreditCardLimit
	} else {
		mb.CreditCardBalance = t.settings.DefaultCreditLimit
	}
	mb.PreviousMonthCredit = edit.PreviousMonthCredit

	if err := t.persistData(ctx); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Budget updated",
		"month", edit.Month, "year", edit.Year,
		"total_budget_paise", mb.TotalBudget.Paise)
	return nil
}
