package storage

import (
	"context"
	"sync"

	"kharcha/internal/core"
)

// MemoryStore keeps all state in process memory. It backs tests and the
// memory data backend; nothing survives a restart.
type MemoryStore struct {
	mu        sync.RWMutex
	settings  *core.Settings
	expenses  []core.Expense
	budgets   []core.MonthlyBudget
	lastReset string
	backup    []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) LoadSettings(ctx context.Context) (core.Settings, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return core.Settings{}, false, nil
	}
	return *m.settings, true, nil
}

func (m *MemoryStore) SaveSettings(ctx context.Context, settings core.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = &settings
	return nil
}

func (m *MemoryStore) LoadData(ctx context.Context) ([]core.Expense, []core.MonthlyBudget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	expenses := make([]core.Expense, len(m.expenses))
	copy(expenses, m.expenses)
	budgets := make([]core.MonthlyBudget, len(m.budgets))
	copy(budgets, m.budgets)
	return expenses, budgets, nil
}

func (m *MemoryStore) SaveData(ctx context.Context, expenses []core.Expense, budgets []core.MonthlyBudget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses = make([]core.Expense, len(expenses))
	copy(m.expenses, expenses)
	m.budgets = make([]core.MonthlyBudget, len(budgets))
	copy(m.budgets, budgets)
	return nil
}

func (m *MemoryStore) LoadLastReset(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastReset, nil
}

func (m *MemoryStore) SaveLastReset(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastReset = key
	return nil
}

func (m *MemoryStore) SaveBackup(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backup = make([]byte, len(data))
	copy(m.backup, data)
	return nil
}

// Backup returns the last saved backup blob, for tests.
func (m *MemoryStore) Backup() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.backup
}
