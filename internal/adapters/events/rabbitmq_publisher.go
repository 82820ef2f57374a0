package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
)

// ExchangeName is the topic exchange habit events are published to. The
// routing key is the event type, e.g. habit.completion.toggled.
const ExchangeName = "kanso.habit.events"

var (
	_ domain.EventPublisher = (*RabbitMQPublisher)(nil)
	_ domain.EventPublisher = (*NoopPublisher)(nil)
)

// amqpChannel is the slice of *amqp.Channel the publisher needs.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type RabbitMQPublisher struct {
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string
	mu       sync.Mutex
}

func NewRabbitMQPublisher(url string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		ExchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.Printf("[EVENTS] RabbitMQ publisher connected (exchange=%s)", ExchangeName)

	return &RabbitMQPublisher{
		conn:     conn,
		channel:  ch,
		exchange: ExchangeName,
	}, nil
}

// Publish serializes the event as JSON and sends it persistently. The
// channel is not safe for concurrent use, hence the mutex.
func (p *RabbitMQPublisher) Publish(ctx context.Context, event domain.HabitEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.Type, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx,
		p.exchange, // exchange
		event.Type, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Timestamp:    time.Now(),
			Type:         event.Type,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			log.Printf("[EVENTS] Error closing channel: %v", err)
		}
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return err
		}
	}

	log.Println("[EVENTS] RabbitMQ publisher closed")
	return nil
}

// NoopPublisher logs events instead of sending them. It stands in when no
// broker is configured.
type NoopPublisher struct {
	Verbose bool
}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (p *NoopPublisher) Publish(_ context.Context, event domain.HabitEvent) error {
	if p.Verbose {
		log.Printf("[EVENTS] (noop) %s habit=%s streak=%d", event.Type, event.HabitID, event.CurrentStreak)
	}
	return nil
}

func (p *NoopPublisher) Close() error { return nil }
