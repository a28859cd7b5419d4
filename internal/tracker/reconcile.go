package tracker

import (
	"kharcha/internal/core"
)

// Verdict is the outcome of an affordability check.
type Verdict int

const (
	VerdictOK Verdict = iota
	VerdictWarn
	VerdictBlock
)

func (v Verdict) String() string {
	switch v {
	case VerdictOK:
		return "ok"
	case VerdictWarn:
		return "warn"
	case VerdictBlock:
		return "block"
	}
	return "unknown"
}

// Warning floors per payment method: falling below these after a spend
// triggers a WARN.
var warnFloors = map[core.PaymentMethod]core.Money{
	core.Cash:       core.FromRupees(200),
	core.UPI:        core.FromRupees(500),
	core.CreditCard: core.FromRupees(1000),
}

// CheckResult carries the affordability verdict plus the balances it was
// derived from. Remaining is available minus used before the proposed
// amount; After is what would remain were the expense committed.
type CheckResult struct {
	Verdict   Verdict
	Remaining core.Money
	After     core.Money
}

func (r CheckResult) Blocked() bool { return r.Verdict == VerdictBlock }
func (r CheckResult) Warned() bool  { return r.Verdict == VerdictWarn }

// Balances is the per-method usage for one month.
type Balances struct {
	CashUsed   core.Money `json:"cashUsed"`
	BankUsed   core.Money `json:"bankUsed"`
	CreditUsed core.Money `json:"creditUsed"`
}

// BudgetDetails is the read-only dashboard projection for one month.
type BudgetDetails struct {
	TotalBudget         core.Money `json:"total_budget"`
	DailyAllowance      core.Money `json:"daily_allowance"`
	RemainingBudget     core.Money `json:"remaining_budget"`
	BudgetUsedPct       float64    `json:"budget_used_pct"`
	FixedExpenses       core.Money `json:"fixed_expenses"`
	VariableExpenses    core.Money `json:"variable_expenses"`
	DailyExpenses       core.Money `json:"daily_expenses"`
	SavingsGoal         core.Money `json:"savings_goal"`
	HasSavingsGoal      bool       `json:"has_savings_goal"`
	EffectiveTotal      core.Money `json:"effective_total"`
	DaysLeft            int        `json:"days_left"`
	CreditCardBalance   core.Money `json:"credit_card_balance"`
	CreditCardUsed      core.Money `json:"credit_card_used"`
	CreditCardRemaining core.Money `json:"credit_card_remaining"`
	CashBalance         core.Money `json:"cash_balance"`
	BankBalance         core.Money `json:"bank_balance"`
}

// CurrentBalances reports the month's usage per payment method. Cash and
// bank usage are recomputed from the ledger on every call; credit usage is
// read from the registry counter, which also absorbs manually recorded bill
// charges that have no matching ledger entry.
func (t *Tracker) CurrentBalances(month string, year int) Balances {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentBalances(month, year)
}

func (t *Tracker) currentBalances(month string, year int) Balances {
	var b Balances
	for _, e := range t.expenses {
		if !e.In(month, year) {
			continue
		}
		switch e.PaymentMethod {
		case core.Cash:
			b.CashUsed = b.CashUsed.Add(e.Amount)
		case core.UPI:
			b.BankUsed = b.BankUsed.Add(e.Amount)
		}
	}
	if mb := t.monthBudget(month, year); mb != nil {
		b.CreditUsed = mb.CreditCardUsed
	}
	return b
}

// availableFor resolves the spendable balance for a method: the registry
// override when the record carries one, the settings default otherwise.
// Callers must hold the mutex.
func (t *Tracker) availableFor(mb *core.MonthlyBudget, method core.PaymentMethod) core.Money {
	switch method {
	case core.Cash:
		if mb != nil && mb.InitialCashBalance != nil {
			return *mb.InitialCashBalance
		}
		return t.settings.DefaultCashBalance
	case core.UPI:
		if mb != nil && mb.InitialBankBalance != nil {
			return *mb.InitialBankBalance
		}
		return t.settings.DefaultBankBalance
	case core.CreditCard:
		if mb != nil {
			return mb.CreditCardBalance
		}
		return t.settings.DefaultCreditLimit
	}
	return core.Money{}
}

func usedFor(b Balances, method core.PaymentMethod) core.Money {
	switch method {
	case core.Cash:
		return b.CashUsed
	case core.UPI:
		return b.BankUsed
	case core.CreditCard:
		return b.CreditUsed
	}
	return core.Money{}
}

// CheckAffordability decides OK, WARN or BLOCK for a proposed spend. The
// check is advisory and performs no mutation; commit paths run it and stop
// on BLOCK. Credit card spends BLOCK unconditionally while the method is
// disabled in settings, before any balance is consulted.
func (t *Tracker) CheckAffordability(month string, year int, amount core.Money, method core.PaymentMethod) CheckResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checkAffordability(month, year, amount, method)
}

func (t *Tracker) checkAffordability(month string, year int, amount core.Money, method core.PaymentMethod) CheckResult {
	if method == core.CreditCard && !t.settings.CreditCardEnabled {
		return CheckResult{Verdict: VerdictBlock}
	}

	mb := t.monthBudget(month, year)
	available := t.availableFor(mb, method)
	used := usedFor(t.currentBalances(month, year), method)
	remaining := available.Sub(used)
	after := remaining.Sub(amount)

	res := CheckResult{Remaining: remaining, After: after}
	switch {
	case amount.Paise > remaining.Paise:
		res.Verdict = VerdictBlock
	case after.Paise < warnFloors[method].Paise:
		res.Verdict = VerdictWarn
	default:
		res.Verdict = VerdictOK
	}
	return res
}

// BudgetDetails computes the dashboard projection for one month. Months
// without a registry record get the documented default projection. Days
// left, and with it the daily allowance, are derived from the real current
// date, so the figure is only meaningful for the current month.
func (t *Tracker) BudgetDetails(month string, year int) BudgetDetails {
	t.mu.Lock()
	defer t.mu.Unlock()

	mb := t.monthBudget(month, year)
	if mb == nil {
		return BudgetDetails{
			TotalBudget:         t.settings.DefaultBudget,
			DailyAllowance:      core.FromRupees(500),
			RemainingBudget:     t.settings.DefaultBudget,
			EffectiveTotal:      t.settings.DefaultBudget,
			DaysLeft:            30,
			CreditCardBalance:   t.settings.DefaultCreditLimit,
			CreditCardRemaining: t.settings.DefaultCreditLimit,
			CashBalance:         t.settings.DefaultCashBalance,
			BankBalance:         t.settings.DefaultBankBalance,
		}
	}

	totalBudget := mb.TotalBudget
	if totalBudget.IsZero() {
		totalBudget = t.settings.DefaultBudget
	}

	d := BudgetDetails{
		TotalBudget:       totalBudget,
		HasSavingsGoal:    mb.HasSavingsGoal,
		CreditCardBalance: mb.CreditCardBalance,
		CreditCardUsed:    mb.CreditCardUsed,
		CashBalance:       t.availableFor(mb, core.Cash),
		BankBalance:       t.availableFor(mb, core.UPI),
	}
	if mb.CreditCardBalance.IsZero() {
		d.CreditCardBalance = t.settings.DefaultCreditLimit
	}
	d.CreditCardRemaining = d.CreditCardBalance.Sub(d.CreditCardUsed)

	if mb.HasSavingsGoal {
		d.SavingsGoal = mb.SavingsGoal
	}
	d.EffectiveTotal = totalBudget.Sub(d.SavingsGoal)

	// Credit-card spending is excluded from budget consumption; the budget
	// tracks cash+bank, credit has its own limit.
	for _, e := range t.expenses {
		if !e.In(month, year) {
			continue
		}
		if e.PaymentMethod != core.Cash && e.PaymentMethod != core.UPI {
			continue
		}
		if e.Subcategory == string(core.BillSIP) || e.Subcategory == string(core.BillRent) {
			d.FixedExpenses = d.FixedExpenses.Add(e.Amount)
		} else if e.Category == core.CategoryBills || e.Category == core.CategoryServices {
			d.VariableExpenses = d.VariableExpenses.Add(e.Amount)
		} else {
			d.DailyExpenses = d.DailyExpenses.Add(e.Amount)
		}
	}

	spent := d.FixedExpenses.Add(d.VariableExpenses).Add(d.DailyExpenses)
	d.RemainingBudget = d.EffectiveTotal.Sub(spent)

	d.DaysLeft = core.DaysLeftInMonth(t.now())
	if d.DaysLeft > 0 {
		d.DailyAllowance = core.Money{Paise: d.RemainingBudget.Paise / int64(d.DaysLeft)}
	}

	if d.EffectiveTotal.Paise > 0 {
		d.BudgetUsedPct = 100 - float64(d.RemainingBudget.Paise)/float64(d.EffectiveTotal.Paise)*100
	}
	return d
}
