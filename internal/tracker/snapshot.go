package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"kharcha/internal/core"
)

var ErrInvalidSnapshot = errors.New("invalid snapshot: expenses and budgets are required")

// Snapshot is the full-state export document.
type Snapshot struct {
	Expenses   []core.Expense       `json:"expenses"`
	Budgets    []core.MonthlyBudget `json:"budgets"`
	Settings   *core.Settings       `json:"settings,omitempty"`
	ExportDate time.Time            `json:"exportDate"`
}

// snapshotIn mirrors Snapshot for imports; pointer slices distinguish a
// missing key from an empty collection.
type snapshotIn struct {
	Expenses *[]core.Expense       `json:"expenses"`
	Budgets  *[]core.MonthlyBudget `json:"budgets"`
	Settings *core.Settings        `json:"settings"`
}

// ExportSnapshot serializes the whole state as an indented JSON document and
// returns it with its download filename. Collections are always emitted,
// empty ones as [] rather than null, so an export of a fresh dataset remains
// importable.
func (t *Tracker) ExportSnapshot() ([]byte, string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	settings := t.settings
	snap := Snapshot{
		Expenses:   t.expenses,
		Budgets:    t.budgets,
		Settings:   &settings,
		ExportDate: t.now(),
	}
	if snap.Expenses == nil {
		snap.Expenses = []core.Expense{}
	}
	if snap.Budgets == nil {
		snap.Budgets = []core.MonthlyBudget{}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("marshal snapshot: %w", err)
	}
	name := fmt.Sprintf("expense_tracker_export_%s.json", core.DateOf(t.now()).FilenameStamp())
	return data, name, nil
}

// ImportSnapshot replaces the full state with the snapshot's contents. The
// document is rejected, without touching current state, when expenses or
// budgets are missing. The pre-import state is saved as a best-effort backup
// blob first. Settings are replaced only when the snapshot carries them.
func (t *Tracker) ImportSnapshot(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var in snapshotIn
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}
	if in.Expenses == nil || in.Budgets == nil {
		return ErrInvalidSnapshot
	}
	for i, e := range *in.Expenses {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("snapshot expense %d: %w", i, err)
		}
	}

	backup, err := json.Marshal(Snapshot{
		Expenses: t.expenses,
		Budgets:  t.budgets,
		Settings: &t.settings,
	})
	if err == nil {
		err = t.store.SaveBackup(ctx, backup)
	}
	if err != nil {
		slog.WarnContext(ctx, "Pre-import backup failed, continuing", "error", err)
	}

	t.expenses = *in.Expenses
	t.budgets = *in.Budgets
	if in.Settings != nil {
		s := *in.Settings
		s.Normalize()
		t.settings = s
		if err := t.store.SaveSettings(ctx, s); err != nil {
			return fmt.Errorf("save imported settings: %w", err)
		}
	}

	if err := t.persistData(ctx); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Snapshot imported",
		"expenses", len(t.expenses),
		"budgets", len(t.budgets),
		"settings_replaced", in.Settings != nil)
	return nil
}
