// Package events publishes tracker activity to an AMQP exchange so external
// consumers (notification bots, analytics pipelines) can react without
// polling the API.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"kharcha/internal/core"
)

type Publisher struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewPublisher(url, exchangeName, queueName string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p := &Publisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := p.setup(); err != nil {
		p.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return p, nil
}

func (p *Publisher) setup() error {
	err := p.channel.ExchangeDeclare(
		p.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = p.channel.QueueDeclare(
		p.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key is the queue name; there is a single consumer queue.
	err = p.channel.QueueBind(p.queueName, p.queueName, p.exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

func (p *Publisher) publish(ctx context.Context, env Envelope) error {
	env.Timestamp = time.Now()
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchangeName, // exchange
		p.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	slog.DebugContext(ctx, "Event published",
		"kind", env.Kind,
		"exchange", p.exchangeName,
		"queue", p.queueName)
	return nil
}

// PublishExpenseCommitted announces a committed ledger record.
func (p *Publisher) PublishExpenseCommitted(ctx context.Context, e core.Expense) error {
	return p.publish(ctx, Envelope{
		Kind: KindExpenseCommitted,
		Expense: &ExpenseCommitted{
			Category:      e.Category,
			Subcategory:   e.Subcategory,
			AmountPaise:   e.Amount.Paise,
			PaymentMethod: e.PaymentMethod,
			Month:         e.Month,
			Year:          e.Year,
		},
	})
}

// PublishMonthlyReset announces an applied budget reset.
func (p *Publisher) PublishMonthlyReset(ctx context.Context, key string) error {
	return p.publish(ctx, Envelope{
		Kind:  KindMonthlyReset,
		Reset: &MonthlyReset{Key: key},
	})
}

// PublishSnapshotImported announces a full-state import.
func (p *Publisher) PublishSnapshotImported(ctx context.Context, expenses, budgets int) error {
	return p.publish(ctx, Envelope{
		Kind:     KindSnapshotImported,
		Snapshot: &SnapshotImported{Expenses: expenses, Budgets: budgets},
	})
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
