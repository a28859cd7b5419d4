// Package tracker implements the expense tracker core: the ledger of
// committed expenses, the monthly budget registry, the balance
// reconciliation engine and the monthly reset policy. All state lives in an
// explicit Tracker value so the core can be exercised without any
// presentation layer.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"kharcha/internal/core"
)

// Store is the persistence surface the tracker needs: independent keyed
// blobs for settings, ledger+registry, the reset marker and import backups.
// Every save is a full serialize-and-replace; SaveData must write the ledger
// and registry as one unit.
type Store interface {
	LoadSettings(ctx context.Context) (core.Settings, bool, error)
	LoadData(ctx context.Context) ([]core.Expense, []core.MonthlyBudget, error)
	LoadLastReset(ctx context.Context) (string, error)
	SaveSettings(ctx context.Context, s core.Settings) error
	SaveData(ctx context.Context, expenses []core.Expense, budgets []core.MonthlyBudget) error
	SaveLastReset(ctx context.Context, key string) error
	SaveBackup(ctx context.Context, data []byte) error
}

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrCreditCardDisabled  = errors.New("credit card payments are disabled")
	ErrPetrolNotMonday     = errors.New("petrol expenses can only be added on Mondays")
	ErrNothingStaged       = errors.New("no staged expenses to commit")
	ErrIndexOutOfRange     = errors.New("expense index out of range")
)

// Tracker holds the full application state. The mutex serializes operations
// so the HTTP adapter can call in from concurrent requests; each operation
// reads and writes state atomically, nothing yields mid-computation.
type Tracker struct {
	mu    sync.Mutex
	store Store

	settings  core.Settings
	expenses  []core.Expense
	budgets   []core.MonthlyBudget
	staged    []core.MiscEntry
	lastReset string

	now func() time.Time
}

// Load builds a Tracker from the store. Unreadable blobs are replaced by
// defaults or empty collections rather than failing: a corrupt settings or
// data blob degrades to a fresh start, and the replacement is persisted so
// the corruption does not resurface.
func Load(ctx context.Context, store Store) (*Tracker, error) {
	t := &Tracker{store: store, now: time.Now}

	settings, found, err := store.LoadSettings(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Unreadable settings blob, falling back to defaults", "error", err)
		settings = core.DefaultSettings()
		found = false
	}
	if !found {
		settings = core.DefaultSettings()
	}
	settings.Normalize()
	t.settings = settings
	if err := store.SaveSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("persist settings: %w", err)
	}

	expenses, budgets, err := store.LoadData(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Unreadable data blobs, starting empty", "error", err)
		expenses, budgets = nil, nil
		if err := store.SaveData(ctx, nil, nil); err != nil {
			return nil, fmt.Errorf("persist empty data: %w", err)
		}
	}
	t.expenses = expenses
	t.budgets = budgets

	lastReset, err := store.LoadLastReset(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Unreadable reset marker, treating as unset", "error", err)
		lastReset = ""
	}
	t.lastReset = lastReset

	slog.InfoContext(ctx, "Tracker state loaded",
		"expenses", len(t.expenses),
		"budgets", len(t.budgets),
		"last_reset", t.lastReset)

	return t, nil
}

// monthBudget returns a pointer into the registry for (month, year), or nil.
// Callers must hold the mutex.
func (t *Tracker) monthBudget(month string, year int) *core.MonthlyBudget {
	for i := range t.budgets {
		if t.budgets[i].Month == month && t.budgets[i].Year == year {
			return &t.budgets[i]
		}
	}
	return nil
}

// ensureMonthBudget returns the record for (month, year), creating it
// through the seeding constructor when absent. Callers must hold the mutex.
func (t *Tracker) ensureMonthBudget(month string, year int) *core.MonthlyBudget {
	if b := t.monthBudget(month, year); b != nil {
		return b
	}
	t.budgets = append(t.budgets, core.NewMonthBudget(month, year, t.settings))
	return &t.budgets[len(t.budgets)-1]
}

// persistData writes the ledger and registry as one unit. Callers must hold
// the mutex.
func (t *Tracker) persistData(ctx context.Context) error {
	if err := t.store.SaveData(ctx, t.expenses, t.budgets); err != nil {
		return fmt.Errorf("save data: %w", err)
	}
	return nil
}

// Settings returns a copy of the current settings.
func (t *Tracker) Settings() core.Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settings
}

// UpdateSettings normalizes and persists new settings. Existing registry
// records keep their values; only records created or reset afterwards pick
// up the new defaults.
func (t *Tracker) UpdateSettings(ctx context.Context, s core.Settings) (core.Settings, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s.Normalize()
	if err := t.store.SaveSettings(ctx, s); err != nil {
		return core.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	t.settings = s
	slog.InfoContext(ctx, "Settings updated",
		"default_budget_paise", s.DefaultBudget.Paise,
		"credit_card_enabled", s.CreditCardEnabled)
	return s, nil
}

// Expenses returns a copy of the ledger in insertion order.
func (t *Tracker) Expenses() []core.Expense {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]core.Expense(nil), t.expenses...)
}

// Budgets returns a copy of all registry records.
func (t *Tracker) Budgets() []core.MonthlyBudget {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]core.MonthlyBudget(nil), t.budgets...)
}

// LastReset returns the persisted reset marker, "" when no reset has ever
// fired.
func (t *Tracker) LastReset() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastReset
}

// MonthBudget returns a copy of the record for (month, year), if any.
func (t *Tracker) MonthBudget(month string, year int) (core.MonthlyBudget, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if b := t.monthBudget(month, year); b != nil {
		return *b, true
	}
	return core.MonthlyBudget{}, false
}
