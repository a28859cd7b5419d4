package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"kharcha/internal/core"
)

func TestExportSnapshot(t *testing.T) {
	tr, _ := newTestTracker(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if _, err := tr.AddFoodExpense(ctx, core.NewDate(2025, 6, 5), "Restaurant", "",
		core.FromRupees(250), core.Cash); err != nil {
		t.Fatalf("AddFoodExpense() error = %v", err)
	}

	data, name, err := tr.ExportSnapshot()
	if err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}
	if name != "expense_tracker_export_2025-06-10.json" {
		t.Errorf("filename = %q", name)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(snap.Expenses) != 1 || len(snap.Budgets) != 1 {
		t.Errorf("snapshot has %d expenses, %d budgets, want 1 and 1", len(snap.Expenses), len(snap.Budgets))
	}
	if snap.Settings == nil {
		t.Error("snapshot is missing settings")
	}
}

func TestExportSnapshotEmptyDataset(t *testing.T) {
	tr, _ := newTestTracker(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))

	data, _, err := tr.ExportSnapshot()
	if err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}

	// Collections must serialize as [], not null, so the document round-trips
	// through import validation.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	for _, key := range []string{"expenses", "budgets"} {
		if string(raw[key]) == "null" {
			t.Errorf("%s serialized as null", key)
		}
	}

	tr2, _ := newTestTracker(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	if err := tr2.ImportSnapshot(context.Background(), data); err != nil {
		t.Errorf("fresh export does not import: %v", err)
	}
}

func TestImportSnapshotRoundTrip(t *testing.T) {
	tr, _ := newTestTracker(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if _, err := tr.AddFoodExpense(ctx, core.NewDate(2025, 6, 5), "Zomato", "",
		core.FromRupees(180), core.UPI); err != nil {
		t.Fatalf("AddFoodExpense() error = %v", err)
	}
	if _, err := tr.AddBillExpense(ctx, core.BillRent, core.NewDate(2025, 6, 1),
		core.FromRupees(1900), core.UPI); err != nil {
		t.Fatalf("AddBillExpense() error = %v", err)
	}
	data, _, err := tr.ExportSnapshot()
	if err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}

	tr2, store2 := newTestTracker(t, time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))
	if err := tr2.ImportSnapshot(ctx, data); err != nil {
		t.Fatalf("ImportSnapshot() error = %v", err)
	}

	if len(tr2.Expenses()) != 2 {
		t.Errorf("imported ledger has %d records, want 2", len(tr2.Expenses()))
	}
	mb, ok := tr2.MonthBudget("June", 2025)
	if !ok {
		t.Fatal("imported registry is missing June")
	}
	if !mb.RentPaid || mb.Rent != core.FromRupees(1900) {
		t.Errorf("imported June record = rent %v paid=%v", mb.Rent.Rupees(), mb.RentPaid)
	}

	if store2.Backup() == nil {
		t.Error("pre-import backup was not written")
	}
}

func TestImportSnapshotRejectsMissingCollections(t *testing.T) {
	tr, _ := newTestTracker(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if _, err := tr.AddFoodExpense(ctx, core.NewDate(2025, 6, 5), "Restaurant", "",
		core.FromRupees(250), core.Cash); err != nil {
		t.Fatalf("AddFoodExpense() error = %v", err)
	}

	for _, doc := range []string{
		`{"expenses": []}`,
		`{"budgets": []}`,
		`{}`,
	} {
		if err := tr.ImportSnapshot(ctx, []byte(doc)); !errors.Is(err, ErrInvalidSnapshot) {
			t.Errorf("ImportSnapshot(%s) error = %v, want ErrInvalidSnapshot", doc, err)
		}
	}

	// Rejected documents must leave current state alone.
	if len(tr.Expenses()) != 1 {
		t.Errorf("ledger has %d records after rejected imports, want 1", len(tr.Expenses()))
	}
}

func TestImportSnapshotRejectsInvalidExpense(t *testing.T) {
	tr, _ := newTestTracker(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))

	doc := `{"expenses": [{"Subcategory": "", "Amount": 100}], "budgets": []}`
	err := tr.ImportSnapshot(context.Background(), []byte(doc))
	if err == nil {
		t.Fatal("snapshot with an invalid expense was accepted")
	}
}
