package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"kharcha/internal/core"
)

func TestAddFoodExpense(t *testing.T) {
	tr, _ := newTestTracker(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	res, err := tr.AddFoodExpense(ctx, core.NewDate(2025, 6, 5), "Restaurant", "",
		core.FromRupees(250), core.Cash)
	if err != nil {
		t.Fatalf("AddFoodExpense() error = %v", err)
	}
	if res.Blocked() {
		t.Fatal("affordable expense was blocked")
	}

	expenses := tr.Expenses()
	if len(expenses) != 1 {
		t.Fatalf("ledger has %d records, want 1", len(expenses))
	}
	e := expenses[0]
	if e.Category != core.CategoryFood {
		t.Errorf("category = %v, want Food", e.Category)
	}
	if e.Description != "Restaurant food expenses" {
		t.Errorf("description = %q", e.Description)
	}
	if e.Month != "June" || e.Year != 2025 {
		t.Errorf("month/year = %s/%d, want June/2025", e.Month, e.Year)
	}
}

func TestAddFoodExpenseQuickCommerce(t *testing.T) {
	tr, _ := newTestTracker(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))

	if _, err := tr.AddFoodExpense(context.Background(), core.NewDate(2025, 6, 5),
		"Quick Commerce", "", core.FromRupees(150), core.UPI); err != nil {
		t.Fatalf("AddFoodExpense() error = %v", err)
	}

	e := tr.Expenses()[0]
	if e.Category != core.CategoryMiscellaneous {
		t.Errorf("category = %v, want Miscellaneous", e.Category)
	}
	if e.Subcategory != "Quick Commerce" {
		t.Errorf("subcategory = %q", e.Subcategory)
	}
}

func TestAddFoodExpenseEmptySource(t *testing.T) {
	tr, _ := newTestTracker(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))

	_, err := tr.AddFoodExpense(context.Background(), core.NewDate(2025, 6, 5),
		"  ", "", core.FromRupees(100), core.Cash)
	if !errors.Is(err, core.ErrEmptySubcategory) {
		t.Errorf("error = %v, want ErrEmptySubcategory", err)
	}
}

func TestAddPetrolExpenseMondayOnly(t *testing.T) {
	tr, _ := newTestTracker(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	// 2025-06-04 is a Wednesday. The weekday gate fires before affordability:
	// an amount that would also be blocked on balance still reports the
	// Monday error.
	_, err := tr.AddPetrolExpense(ctx, core.NewDate(2025, 6, 4), "",
		core.FromRupees(1000000), core.Cash)
	if !errors.Is(err, ErrPetrolNotMonday) {
		t.Fatalf("error = %v, want ErrPetrolNotMonday", err)
	}
	if len(tr.Expenses()) != 0 {
		t.Fatal("rejected petrol expense reached the ledger")
	}

	// 2025-06-02 is a Monday.
	if _, err := tr.AddPetrolExpense(ctx, core.NewDate(2025, 6, 2), "",
		core.FromRupees(500), core.Cash); err != nil {
		t.Fatalf("AddPetrolExpense() on Monday error = %v", err)
	}
	e := tr.Expenses()[0]
	if e.Category != core.CategoryTransportation || e.Subcategory != "Petrol" {
		t.Errorf("recorded as %v/%q, want Transportation/Petrol", e.Category, e.Subcategory)
	}
	if e.Description != "Weekly petrol" {
		t.Errorf("description = %q, want default", e.Description)
	}
}

func TestCommitBlocksOnInsufficientBalance(t *testing.T) {
	tr, _ := newTestTracker(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	setCashBalance(t, tr, 1000)

	res, err := tr.AddFoodExpense(context.Background(), core.NewDate(2025, 6, 5),
		"Restaurant", "", core.FromRupees(1600), core.Cash)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("error = %v, want ErrInsufficientBalance", err)
	}
	if !res.Blocked() {
		t.Errorf("verdict = %v, want block", res.Verdict)
	}
	if len(tr.Expenses()) != 0 {
		t.Error("blocked expense reached the ledger")
	}
	if _, ok := tr.MonthBudget("June", 2025); ok {
		t.Error("blocked expense created a registry record")
	}
}

func TestCreditCardUsageCounter(t *testing.T) {
	tr, _ := newTestTracker(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if _, err := tr.AddFoodExpense(ctx, core.NewDate(2025, 6, 5), "Zomato", "",
		core.FromRupees(700), core.CreditCard); err != nil {
		t.Fatalf("AddFoodExpense() error = %v", err)
	}

	mb, ok := tr.MonthBudget("June", 2025)
	if !ok {
		t.Fatal("June record missing")
	}
	if mb.CreditCardUsed != core.FromRupees(700) {
		t.Fatalf("CreditCardUsed = %v, want 700", mb.CreditCardUsed.Rupees())
	}

	// Deleting the record does not roll the counter back: it may also carry
	// manual bill charges.
	if err := tr.DeleteExpense(ctx, 0); err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}
	if len(tr.Expenses()) != 0 {
		t.Fatal("ledger not empty after delete")
	}
	mb, _ = tr.MonthBudget("June", 2025)
	if mb.CreditCardUsed != core.FromRupees(700) {
		t.Errorf("CreditCardUsed after delete = %v, want 700", mb.CreditCardUsed.Rupees())
	}
}

func TestCreditCardDisabledRejectsCommit(t *testing.T) {
	tr, _ := newTestTracker(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	s := tr.Settings()
	s.CreditCardEnabled = false
	if _, err := tr.UpdateSettings(ctx, s); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}

	_, err := tr.AddFoodExpense(ctx, core.NewDate(2025, 6, 5), "Zomato", "",
		core.FromRupees(100), core.CreditCard)
	if !errors.Is(err, ErrCreditCardDisabled) {
		t.Errorf("commit error = %v, want ErrCreditCardDisabled", err)
	}

	err = tr.StageMiscEntry(core.FromRupees(100), "Movie", "", "", "", core.CreditCard)
	if !errors.Is(err, ErrCreditCardDisabled) {
		t.Errorf("staging error = %v, want ErrCreditCardDisabled", err)
	}
}

func TestDeleteExpenseOutOfRange(t *testing.T) {
	tr, _ := newTestTracker(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	if err := tr.DeleteExpense(context.Background(), 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestStageMiscEntryClassification(t *testing.T) {
	tr, _ := newTestTracker(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))

	if err := tr.StageMiscEntry(core.FromRupees(400), "Movie", "", "", "", core.UPI); err != nil {
		t.Fatalf("StageMiscEntry(Movie) error = %v", err)
	}
	if err := tr.StageMiscEntry(core.FromRupees(120), "Others", "Stationery", "", "", core.Cash); err != nil {
		t.Fatalf("StageMiscEntry(Others) error = %v", err)
	}
	if err := tr.StageMiscEntry(core.FromRupees(120), "Others", "", "", "", core.Cash); !errors.Is(err, core.ErrCustomTagRequired) {
		t.Errorf("Others without custom tag: error = %v, want ErrCustomTagRequired", err)
	}

	staged := tr.StagedEntries()
	if len(staged) != 2 {
		t.Fatalf("staged = %d entries, want 2", len(staged))
	}
	if staged[0].Category != core.CategoryEntertainment || staged[0].Description != "Movie" {
		t.Errorf("entry 0 = %v/%q", staged[0].Category, staged[0].Description)
	}
	if staged[1].Tag != "Stationery" || staged[1].Category != core.CategoryMiscellaneous {
		t.Errorf("entry 1 = %q/%v, want Stationery/Miscellaneous", staged[1].Tag, staged[1].Category)
	}

	if err := tr.RemoveStagedEntry(5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("RemoveStagedEntry(5) error = %v, want ErrIndexOutOfRange", err)
	}
	if err := tr.RemoveStagedEntry(0); err != nil {
		t.Fatalf("RemoveStagedEntry(0) error = %v", err)
	}
	staged = tr.StagedEntries()
	if len(staged) != 1 || staged[0].Tag != "Stationery" {
		t.Errorf("after removal staged = %+v", staged)
	}
}

func TestCommitStagedEntries(t *testing.T) {
	tr, _ := newTestTracker(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if _, err := tr.CommitStagedEntries(ctx, core.NewDate(2025, 6, 7)); !errors.Is(err, ErrNothingStaged) {
		t.Fatalf("empty commit error = %v, want ErrNothingStaged", err)
	}

	if err := tr.StageMiscEntry(core.FromRupees(400), "Movie", "", "", "with friends", core.UPI); err != nil {
		t.Fatalf("StageMiscEntry() error = %v", err)
	}
	if err := tr.StageMiscEntry(core.FromRupees(80), "Groceries", "", "", "", core.Cash); err != nil {
		t.Fatalf("StageMiscEntry() error = %v", err)
	}

	results, err := tr.CommitStagedEntries(ctx, core.NewDate(2025, 6, 7))
	if err != nil {
		t.Fatalf("CommitStagedEntries() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("unexpected warnings: %v", results)
	}
	if len(tr.StagedEntries()) != 0 {
		t.Error("staging list not cleared after commit")
	}

	expenses := tr.Expenses()
	if len(expenses) != 2 {
		t.Fatalf("ledger has %d records, want 2", len(expenses))
	}
	if expenses[0].Description != "Movie - with friends" {
		t.Errorf("description = %q, want notes appended", expenses[0].Description)
	}
	if expenses[1].Description != "Groceries" {
		t.Errorf("description = %q, want tag fallback", expenses[1].Description)
	}
}

func TestCommitStagedEntriesAllOrNothing(t *testing.T) {
	tr, _ := newTestTracker(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	setCashBalance(t, tr, 1000)

	// The UPI entry alone is affordable; the cash group busts its balance.
	if err := tr.StageMiscEntry(core.FromRupees(50), "Movie", "", "", "", core.UPI); err != nil {
		t.Fatalf("StageMiscEntry() error = %v", err)
	}
	if err := tr.StageMiscEntry(core.FromRupees(600), "Groceries", "", "", "", core.Cash); err != nil {
		t.Fatalf("StageMiscEntry() error = %v", err)
	}
	if err := tr.StageMiscEntry(core.FromRupees(600), "Laundry", "", "", "", core.Cash); err != nil {
		t.Fatalf("StageMiscEntry() error = %v", err)
	}

	_, err := tr.CommitStagedEntries(ctx, core.NewDate(2025, 6, 7))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("error = %v, want ErrInsufficientBalance", err)
	}
	if len(tr.Expenses()) != 0 {
		t.Error("failed batch leaked records into the ledger")
	}
	if len(tr.StagedEntries()) != 3 {
		t.Error("failed batch cleared the staging list")
	}
}

func TestCommitStagedEntriesWarns(t *testing.T) {
	tr, _ := newTestTracker(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	setCashBalance(t, tr, 1000)

	// 900 of 1000 leaves 100, under the 200 cash floor: committed with WARN.
	if err := tr.StageMiscEntry(core.FromRupees(900), "Groceries", "", "", "", core.Cash); err != nil {
		t.Fatalf("StageMiscEntry() error = %v", err)
	}
	results, err := tr.CommitStagedEntries(ctx, core.NewDate(2025, 6, 7))
	if err != nil {
		t.Fatalf("CommitStagedEntries() error = %v", err)
	}
	res, ok := results[core.Cash]
	if !ok {
		t.Fatal("no warning recorded for the cash group")
	}
	if !res.Warned() {
		t.Errorf("verdict = %v, want warn", res.Verdict)
	}
	if len(tr.Expenses()) != 1 {
		t.Errorf("ledger has %d records, want 1", len(tr.Expenses()))
	}
}

func TestJuneScenario(t *testing.T) {
	tr, _ := newTestTracker(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	// First commit of the month seeds the registry from defaults.
	if _, err := tr.AddFoodExpense(ctx, core.NewDate(2025, 6, 3),
		"Restaurant", "", core.FromRupees(500), core.Cash); err != nil {
		t.Fatalf("AddFoodExpense() error = %v", err)
	}
	mb, ok := tr.MonthBudget("June", 2025)
	if !ok {
		t.Fatal("month record was not created")
	}
	if mb.TotalBudget != core.FromRupees(10000) {
		t.Errorf("TotalBudget = %v, want 10000", mb.TotalBudget.Rupees())
	}
	if got := tr.CurrentBalances("June", 2025).CashUsed; got != core.FromRupees(500) {
		t.Errorf("CashUsed = %v, want 500", got.Rupees())
	}

	// Cash remaining is 1500 of the 2000 default: 1600 more must block.
	_, err := tr.AddFoodExpense(ctx, core.NewDate(2025, 6, 4),
		"Restaurant", "", core.FromRupees(1600), core.Cash)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("error = %v, want ErrInsufficientBalance", err)
	}
	if len(tr.Expenses()) != 1 {
		t.Errorf("ledger has %d records, want 1", len(tr.Expenses()))
	}
}
