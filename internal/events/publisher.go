// Package events announces application lifecycle changes on an AMQP topic
// exchange so other services can react to them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"applytrack/internal/config"
	"applytrack/internal/logging"
	"applytrack/pkg/utils"
)

// Routing keys
const (
	ApplicationCreated       = "application.created"
	ApplicationStatusChanged = "application.status_changed"
	BulkApplyCompleted       = "bulk_apply.completed"
)

// Envelope is the JSON body of every published message
type Envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Data       interface{} `json:"data"`
}

func newEnvelope(routingKey string, data interface{}, now time.Time) Envelope {
	return Envelope{
		ID:         utils.GenerateID(),
		Type:       routingKey,
		OccurredAt: now.UTC(),
		Data:       data,
	}
}

// AMQPPublisher publishes envelopes to a durable topic exchange
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	exchange string
	logger   logging.Logger
}

// NewAMQPPublisher dials the broker and declares the exchange
func NewAMQPPublisher(cfg *config.Config) (*AMQPPublisher, error) {
	if cfg.Events.AMQPURL == "" {
		return nil, fmt.Errorf("amqp url is required")
	}

	conn, err := amqp.Dial(cfg.Events.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("error connecting to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("error opening RabbitMQ channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(cfg.Events.Exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error declaring exchange %s: %w", cfg.Events.Exchange, err)
	}

	logger := logging.GetGlobalLogger().WithField("component", "events")
	logger.Info("Event publisher connected", map[string]interface{}{"exchange": cfg.Events.Exchange})

	return &AMQPPublisher{
		conn:     conn,
		exchange: cfg.Events.Exchange,
		logger:   logger,
	}, nil
}

// Publish sends data under routingKey. A channel is opened per message since
// amqp channels must not be shared between goroutines.
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, data interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(newEnvelope(routingKey, data, time.Now()))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("event publisher is closed")
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("error opening RabbitMQ channel: %w", err)
	}
	defer ch.Close()

	err = ch.Publish(
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	p.logger.Debug("Event published", map[string]interface{}{"routing_key": routingKey})
	return nil
}

// Close closes the broker connection
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

// Noop discards every event; used when no broker is configured
type Noop struct{}

func (Noop) Publish(ctx context.Context, routingKey string, data interface{}) error { return nil }

func (Noop) Close() error { return nil }
