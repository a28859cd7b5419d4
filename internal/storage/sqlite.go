// Package storage persists the tracker's state as independent keyed JSON
// blobs: settings, expenses, budgets, the monthly reset marker and a
// best-effort import backup. Each save replaces the whole blob; the dataset
// is small and fully loaded at startup, so there is no incremental schema.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"kharcha/internal/core"

	_ "modernc.org/sqlite"
)

// Blob keys. The settings, expenses, budgets and lastMonthlyReset blobs are
// the canonical persisted state; dataBackup holds the pre-import copy.
const (
	keySettings  = "settings"
	keyExpenses  = "expenses"
	keyBudgets   = "budgets"
	keyLastReset = "lastMonthlyReset"
	keyBackup    = "dataBackup"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) getBlob(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read blob %s: %w", key, err)
	}
	return []byte(value), true, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func setBlob(ctx context.Context, ex execer, key string, value []byte) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, string(value))
	if err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	return nil
}

// LoadSettings returns the persisted settings. The second return is false
// when nothing has been saved yet; a malformed blob is an error the caller
// degrades from.
func (s *SQLiteStore) LoadSettings(ctx context.Context) (core.Settings, bool, error) {
	data, found, err := s.getBlob(ctx, keySettings)
	if err != nil || !found {
		return core.Settings{}, false, err
	}
	var settings core.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return core.Settings{}, false, fmt.Errorf("parse settings blob: %w", err)
	}
	return settings, true, nil
}

func (s *SQLiteStore) SaveSettings(ctx context.Context, settings core.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return setBlob(ctx, s.db, keySettings, data)
}

// LoadData reads the ledger and registry blobs. Missing blobs yield empty
// collections.
func (s *SQLiteStore) LoadData(ctx context.Context) ([]core.Expense, []core.MonthlyBudget, error) {
	var expenses []core.Expense
	if data, found, err := s.getBlob(ctx, keyExpenses); err != nil {
		return nil, nil, err
	} else if found {
		if err := json.Unmarshal(data, &expenses); err != nil {
			return nil, nil, fmt.Errorf("parse expenses blob: %w", err)
		}
	}

	var budgets []core.MonthlyBudget
	if data, found, err := s.getBlob(ctx, keyBudgets); err != nil {
		return nil, nil, err
	} else if found {
		if err := json.Unmarshal(data, &budgets); err != nil {
			return nil, nil, fmt.Errorf("parse budgets blob: %w", err)
		}
	}

	return expenses, budgets, nil
}

// SaveData replaces the ledger and registry blobs in one transaction.
func (s *SQLiteStore) SaveData(ctx context.Context, expenses []core.Expense, budgets []core.MonthlyBudget) error {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	if budgets == nil {
		budgets = []core.MonthlyBudget{}
	}
	expData, err := json.Marshal(expenses)
	if err != nil {
		return fmt.Errorf("marshal expenses: %w", err)
	}
	budData, err := json.Marshal(budgets)
	if err != nil {
		return fmt.Errorf("marshal budgets: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if err := setBlob(ctx, tx, keyExpenses, expData); err != nil {
		return err
	}
	if err := setBlob(ctx, tx, keyBudgets, budData); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	slog.DebugContext(ctx, "State saved",
		"expenses", len(expenses),
		"budgets", len(budgets))
	return nil
}

func (s *SQLiteStore) LoadLastReset(ctx context.Context) (string, error) {
	data, found, err := s.getBlob(ctx, keyLastReset)
	if err != nil || !found {
		return "", err
	}
	return string(data), nil
}

func (s *SQLiteStore) SaveLastReset(ctx context.Context, key string) error {
	return setBlob(ctx, s.db, keyLastReset, []byte(key))
}

// SaveBackup stores the pre-import state. There is no restore path; the
// blob exists so a bad import is recoverable by hand.
func (s *SQLiteStore) SaveBackup(ctx context.Context, data []byte) error {
	return setBlob(ctx, s.db, keyBackup, data)
}

// LoadBackup returns the last pre-import backup, if any.
func (s *SQLiteStore) LoadBackup(ctx context.Context) ([]byte, bool, error) {
	return s.getBlob(ctx, keyBackup)
}
