package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"kharcha/internal/core"
)

// commitExpense runs the fixed commit sequence for a validated expense:
// affordability check, abort on BLOCK, append to the ledger, bump the
// registry's credit counter for credit-card spends, persist ledger and
// registry together. This is the only place credit usage is incremented.
// Callers must hold the mutex.
func (t *Tracker) commitExpense(ctx context.Context, e core.Expense) (CheckResult, error) {
	if err := e.Validate(); err != nil {
		return CheckResult{}, err
	}

	res := t.checkAffordability(e.Month, e.Year, e.Amount, e.PaymentMethod)
	if res.Blocked() {
		if e.PaymentMethod == core.CreditCard && !t.settings.CreditCardEnabled {
			return res, ErrCreditCardDisabled
		}
		return res, ErrInsufficientBalance
	}

	t.expenses = append(t.expenses, e)

	mb := t.ensureMonthBudget(e.Month, e.Year)
	if e.PaymentMethod == core.CreditCard {
		mb.CreditCardUsed = mb.CreditCardUsed.Add(e.Amount)
	}

	if err := t.persistData(ctx); err != nil {
		return res, err
	}

	slog.InfoContext(ctx, "Expense committed",
		"category", e.Category,
		"subcategory", e.Subcategory,
		"amount_paise", e.Amount.Paise,
		"method", e.PaymentMethod,
		"month", e.Month,
		"year", e.Year,
		"verdict", res.Verdict.String())

	return res, nil
}

// AddFoodExpense commits a food-form expense. A Quick Commerce source is
// recorded under Miscellaneous; the description defaults to
// "<source> food expenses".
func (t *Tracker) AddFoodExpense(ctx context.Context, date core.Date, source, description string, amount core.Money, method core.PaymentMethod) (CheckResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	source = strings.TrimSpace(source)
	if source == "" {
		return CheckResult{}, core.ErrEmptySubcategory
	}
	if description == "" {
		description = fmt.Sprintf("%s food expenses", source)
	}
	e := core.NewExpense(date, core.FoodCategory(source), source, amount, description, method)
	return t.commitExpense(ctx, e)
}

// AddPetrolExpense commits a petrol expense. Any weekday other than Monday
// is rejected before the affordability check runs.
func (t *Tracker) AddPetrolExpense(ctx context.Context, date core.Date, description string, amount core.Money, method core.PaymentMethod) (CheckResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !core.IsMonday(date) {
		return CheckResult{}, ErrPetrolNotMonday
	}
	if description == "" {
		description = "Weekly petrol"
	}
	e := core.NewExpense(date, core.CategoryTransportation, "Petrol", amount, description, method)
	return t.commitExpense(ctx, e)
}

// StageMiscEntry validates and appends an entry to the transient staging
// list. Credit-card-disabled is rejected at staging time already so a doomed
// batch cannot build up.
func (t *Tracker) StageMiscEntry(amount core.Money, tag, customTag, description, notes string, method core.PaymentMethod) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := amount.Validate(); err != nil {
		return err
	}
	if err := method.Validate(); err != nil {
		return err
	}
	if method == core.CreditCard && !t.settings.CreditCardEnabled {
		return ErrCreditCardDisabled
	}
	storedTag, category, err := core.ClassifyMiscTag(tag, customTag)
	if err != nil {
		return err
	}
	if description == "" {
		description = storedTag
	}
	t.staged = append(t.staged, core.MiscEntry{
		Amount:        amount,
		Tag:           storedTag,
		Category:      category,
		Description:   description,
		Notes:         notes,
		PaymentMethod: method,
	})
	return nil
}

// StagedEntries returns a copy of the misc staging list.
func (t *Tracker) StagedEntries() []core.MiscEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]core.MiscEntry(nil), t.staged...)
}

// RemoveStagedEntry drops one staged entry by position.
func (t *Tracker) RemoveStagedEntry(index int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= len(t.staged) {
		return ErrIndexOutOfRange
	}
	t.staged = append(t.staged[:index], t.staged[index+1:]...)
	return nil
}

// CommitStagedEntries commits the whole staging list against one date.
// Affordability is validated per payment method on the batch sums before
// anything is appended; one failing group aborts the entire batch. On
// success the staging list is cleared and any WARN results are returned for
// the caller to surface.
func (t *Tracker) CommitStagedEntries(ctx context.Context, date core.Date) (map[core.PaymentMethod]CheckResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.staged) == 0 {
		return nil, ErrNothingStaged
	}
	if err := date.Validate(); err != nil {
		return nil, err
	}

	month, year := date.MonthName(), date.Year()

	sums := map[core.PaymentMethod]core.Money{}
	for _, entry := range t.staged {
		sums[entry.PaymentMethod] = sums[entry.PaymentMethod].Add(entry.Amount)
	}

	results := map[core.PaymentMethod]CheckResult{}
	for _, method := range []core.PaymentMethod{core.Cash, core.UPI, core.CreditCard} {
		total, ok := sums[method]
		if !ok {
			continue
		}
		res := t.checkAffordability(month, year, total, method)
		if res.Blocked() {
			if method == core.CreditCard && !t.settings.CreditCardEnabled {
				return nil, ErrCreditCardDisabled
			}
			return nil, fmt.Errorf("%s batch of %d paise: %w", method, total.Paise, ErrInsufficientBalance)
		}
		if res.Warned() {
			results[method] = res
		}
	}

	mb := t.ensureMonthBudget(month, year)
	for _, entry := range t.staged {
		description := entry.Description
		if entry.Notes != "" {
			description = fmt.Sprintf("%s - %s", entry.Description, entry.Notes)
		}
		e := core.NewExpense(date, entry.Category, entry.Tag, entry.Amount, description, entry.PaymentMethod)
		t.expenses = append(t.expenses, e)
		if entry.PaymentMethod == core.CreditCard {
			mb.CreditCardUsed = mb.CreditCardUsed.Add(entry.Amount)
		}
	}

	if err := t.persistData(ctx); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Staged expenses committed",
		"count", len(t.staged),
		"month", month,
		"year", year)

	t.staged = nil
	return results, nil
}

// DeleteExpense removes a ledger record by position. The registry's
// CreditCardUsed counter is left untouched even for credit-card records:
// the counter also carries manual bill charges, so it cannot be safely
// decremented from a single ledger amount.
func (t *Tracker) DeleteExpense(ctx context.Context, index int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if index < 0 || index >= len(t.expenses) {
		return ErrIndexOutOfRange
	}
	removed := t.expenses[index]
	t.expenses = append(t.expenses[:index], t.expenses[index+1:]...)

	if err := t.persistData(ctx); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Expense deleted",
		"index", index,
		"subcategory", removed.Subcategory,
		"amount_paise", removed.Amount.Paise,
		"method", removed.PaymentMethod)
	return nil
}
