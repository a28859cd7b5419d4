package events

import (
	"time"

	"kharcha/internal/core"
)

// Event kinds carried on the tracker events queue.
const (
	KindExpenseCommitted = "expense_committed"
	KindMonthlyReset     = "monthly_reset"
	KindSnapshotImported = "snapshot_imported"
)

// Envelope is the wire format for all tracker events.
type Envelope struct {
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	Expense  *ExpenseCommitted `json:"expense,omitempty"`
	Reset    *MonthlyReset     `json:"reset,omitempty"`
	Snapshot *SnapshotImported `json:"snapshot,omitempty"`
}

// ExpenseCommitted announces a new ledger record.
type ExpenseCommitted struct {
	Category      core.Category      `json:"category"`
	Subcategory   string             `json:"subcategory"`
	AmountPaise   int64              `json:"amountPaise"`
	PaymentMethod core.PaymentMethod `json:"paymentMethod"`
	Month         string             `json:"month"`
	Year          int                `json:"year"`
}

// MonthlyReset announces that the budget reset fired for a month key.
type MonthlyReset struct {
	Key string `json:"key"`
}

// SnapshotImported announces a full-state replacement.
type SnapshotImported struct {
	Expenses int `json:"expenses"`
	Budgets  int `json:"budgets"`
}
