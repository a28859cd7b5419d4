package tracker

import (
	"context"
	"testing"
	"time"

	"kharcha/internal/core"
)

func TestRunMonthlyResetCreatesRecord(t *testing.T) {
	tr, store := newTestTracker(t, time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()

	applied, err := tr.RunMonthlyReset(ctx)
	if err != nil {
		t.Fatalf("RunMonthlyReset() error = %v", err)
	}
	if !applied {
		t.Fatal("reset not applied on day 3 of a fresh month")
	}

	mb, ok := tr.MonthBudget("June", 2025)
	if !ok {
		t.Fatal("reset did not create the June record")
	}
	if mb.TotalBudget != core.FromRupees(10000) {
		t.Errorf("TotalBudget = %v, want 10000", mb.TotalBudget.Rupees())
	}
	if !mb.HasSavingsGoal || mb.SavingsGoal != core.FromRupees(1000) {
		t.Errorf("savings goal = %v enabled=%v, want 1000 enabled", mb.SavingsGoal.Rupees(), mb.HasSavingsGoal)
	}

	marker, err := store.LoadLastReset(ctx)
	if err != nil {
		t.Fatalf("LoadLastReset() error = %v", err)
	}
	if marker != "June-2025" {
		t.Errorf("reset marker = %q, want June-2025", marker)
	}

	// Second run in the same month is a no-op.
	applied, err = tr.RunMonthlyReset(ctx)
	if err != nil {
		t.Fatalf("second RunMonthlyReset() error = %v", err)
	}
	if applied {
		t.Error("reset applied twice in one month")
	}
	if len(tr.Budgets()) != 1 {
		t.Errorf("registry has %d records, want 1", len(tr.Budgets()))
	}
}

func TestRunMonthlyResetOutsideWindow(t *testing.T) {
	tr, _ := newTestTracker(t, time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC))

	applied, err := tr.RunMonthlyReset(context.Background())
	if err != nil {
		t.Fatalf("RunMonthlyReset() error = %v", err)
	}
	if applied {
		t.Error("reset applied on day 15")
	}
	if len(tr.Budgets()) != 0 {
		t.Error("late-month reset created a record")
	}
}

func TestRunMonthlyResetOverwritesExistingRecord(t *testing.T) {
	tr, _ := newTestTracker(t, time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()

	// Pre-create the June record with user edits and credit usage, the way an
	// early expense plus a budget edit would.
	if err := tr.UpdateBudget(ctx, BudgetEdit{
		Month:              "June",
		Year:               2025,
		InitialCashBalance: core.FromRupees(3000),
		InitialBankBalance: core.FromRupees(6000),
		SavingsGoal:        core.FromRupees(2500),
	}); err != nil {
		t.Fatalf("UpdateBudget() error = %v", err)
	}
	if _, err := tr.AddFoodExpense(ctx, core.NewDate(2025, 6, 1), "Zomato", "",
		core.FromRupees(400), core.CreditCard); err != nil {
		t.Fatalf("AddFoodExpense() error = %v", err)
	}
	if _, err := tr.AddBillExpense(ctx, core.BillSIP, core.NewDate(2025, 6, 1),
		core.FromRupees(2200), core.UPI); err != nil {
		t.Fatalf("AddBillExpense() error = %v", err)
	}

	applied, err := tr.RunMonthlyReset(ctx)
	if err != nil {
		t.Fatalf("RunMonthlyReset() error = %v", err)
	}
	if !applied {
		t.Fatal("reset not applied")
	}

	mb, _ := tr.MonthBudget("June", 2025)
	if mb.TotalBudget != core.FromRupees(10000) {
		t.Errorf("TotalBudget = %v, want back to 10000", mb.TotalBudget.Rupees())
	}
	if mb.InitialCashBalance != nil || mb.InitialBankBalance != nil {
		t.Error("balance overrides survived the reset")
	}
	if !mb.CreditCardUsed.IsZero() {
		t.Errorf("CreditCardUsed = %v, want zero", mb.CreditCardUsed.Rupees())
	}
	if mb.SIP != core.FromRupees(2000) {
		t.Errorf("SIP = %v, want back to the 2000 default", mb.SIP.Rupees())
	}
	if mb.SIPPaid || mb.RentPaid {
		t.Error("paid flags survived the reset")
	}
	if mb.SavingsGoal != core.FromRupees(1000) {
		t.Errorf("SavingsGoal = %v, want the 1000 default", mb.SavingsGoal.Rupees())
	}

	// The ledger is untouched: reset is about the registry only.
	if len(tr.Expenses()) != 2 {
		t.Errorf("ledger has %d records after reset, want 2", len(tr.Expenses()))
	}
}
