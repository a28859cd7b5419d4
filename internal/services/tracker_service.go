// Package services orchestrates tracker operations with event publishing.
// The tracker stays authoritative; events are fire-and-forget notifications
// and never fail an operation.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"kharcha/internal/core"
	"kharcha/internal/events"
	"kharcha/internal/tracker"
)

// EventPublisher is the subset of the AMQP publisher the service needs.
type EventPublisher interface {
	PublishExpenseCommitted(ctx context.Context, e core.Expense) error
	PublishMonthlyReset(ctx context.Context, key string) error
	PublishSnapshotImported(ctx context.Context, expenses, budgets int) error
	Close() error
}

// TrackerService wraps the tracker with AMQP event publishing. The publisher
// may be nil when AMQP is not configured; every publish path checks.
type TrackerService struct {
	tracker   *tracker.Tracker
	publisher EventPublisher
}

func NewTrackerService(t *tracker.Tracker, publisher *events.Publisher) *TrackerService {
	s := &TrackerService{tracker: t}
	if publisher != nil {
		s.publisher = publisher
	}
	return s
}

// Tracker exposes the underlying tracker for read-only queries.
func (s *TrackerService) Tracker() *tracker.Tracker {
	return s.tracker
}

func (s *TrackerService) publishExpense(ctx context.Context, e core.Expense) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseCommitted(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event", "error", err)
	}
}

// AddFoodExpense commits a food expense and announces it.
func (s *TrackerService) AddFoodExpense(ctx context.Context, date core.Date, source, description string, amount core.Money, method core.PaymentMethod) (tracker.CheckResult, error) {
	res, err := s.tracker.AddFoodExpense(ctx, date, source, description, amount, method)
	if err != nil {
		return res, err
	}
	s.publishExpense(ctx, core.NewExpense(date, core.FoodCategory(source), source, amount, description, method))
	return res, nil
}

// AddPetrolExpense commits a petrol expense and announces it.
func (s *TrackerService) AddPetrolExpense(ctx context.Context, date core.Date, description string, amount core.Money, method core.PaymentMethod) (tracker.CheckResult, error) {
	res, err := s.tracker.AddPetrolExpense(ctx, date, description, amount, method)
	if err != nil {
		return res, err
	}
	s.publishExpense(ctx, core.NewExpense(date, core.CategoryTransportation, "Petrol", amount, description, method))
	return res, nil
}

// AddBillExpense settles a bill and announces the ledger record.
func (s *TrackerService) AddBillExpense(ctx context.Context, bill core.BillType, date core.Date, amount core.Money, method core.PaymentMethod) (tracker.CheckResult, error) {
	res, err := s.tracker.AddBillExpense(ctx, bill, date, amount, method)
	if err != nil {
		return res, err
	}
	s.publishExpense(ctx, core.NewExpense(date, bill.Category(), string(bill), amount, bill.DefaultDescription(), method))
	return res, nil
}

// CommitStagedEntries commits the misc staging list and announces each
// resulting record.
func (s *TrackerService) CommitStagedEntries(ctx context.Context, date core.Date) (map[core.PaymentMethod]tracker.CheckResult, error) {
	staged := s.tracker.StagedEntries()
	results, err := s.tracker.CommitStagedEntries(ctx, date)
	if err != nil {
		return results, err
	}
	for _, entry := range staged {
		s.publishExpense(ctx, core.NewExpense(date, entry.Category, entry.Tag, entry.Amount, entry.Description, entry.PaymentMethod))
	}
	return results, nil
}

// RunMonthlyReset applies the monthly reset and announces it when it fired.
func (s *TrackerService) RunMonthlyReset(ctx context.Context) (bool, error) {
	applied, err := s.tracker.RunMonthlyReset(ctx)
	if err != nil || !applied {
		return applied, err
	}
	if s.publisher != nil {
		if perr := s.publisher.PublishMonthlyReset(ctx, s.tracker.LastReset()); perr != nil {
			slog.ErrorContext(ctx, "Failed to publish reset event", "error", perr)
		}
	}
	return applied, nil
}

// ImportSnapshot replaces the full state and announces the import.
func (s *TrackerService) ImportSnapshot(ctx context.Context, data []byte) error {
	if err := s.tracker.ImportSnapshot(ctx, data); err != nil {
		return err
	}
	if s.publisher != nil {
		if err := s.publisher.PublishSnapshotImported(ctx,
			len(s.tracker.Expenses()), len(s.tracker.Budgets())); err != nil {
			slog.ErrorContext(ctx, "Failed to publish import event", "error", err)
		}
	}
	return nil
}

// Close releases the AMQP connection, if one was configured.
func (s *TrackerService) Close() error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Close(); err != nil {
		return fmt.Errorf("close publisher: %w", err)
	}
	return nil
}
