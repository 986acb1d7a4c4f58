package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"eventrsvp/internal/domain"
)

const (
	ExchangeName = "events"
	ExchangeKind = "topic"

	RoutingKeyReservationCreated   = "reservation.created"
	RoutingKeyReservationCancelled = "reservation.cancelled"
)

// ReservationMessage is the JSON body published for reservation changes.
type ReservationMessage struct {
	ReservationID string    `json:"reservation_id"`
	UserID        string    `json:"user_id"`
	EventID       string    `json:"event_id"`
	Capacity      int       `json:"capacity"`
	Occupancy     int       `json:"occupancy"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends reservation changes to a topic exchange. It implements domain.ReservationNotifier.
type Publisher struct {
	conn    *amqp.Connection
	mu      sync.Mutex
	channel amqpChannel
	logger  *slog.Logger
	now     func() time.Time
}

// NewPublisher dials RabbitMQ and declares the durable topic exchange.
func NewPublisher(url string, logger *slog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, ExchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	p := newPublisher(ch, logger)
	p.conn = conn
	return p, nil
}

func newPublisher(ch amqpChannel, logger *slog.Logger) *Publisher {
	return &Publisher{channel: ch, logger: logger, now: time.Now}
}

func (p *Publisher) ReservationCreated(ctx context.Context, r *domain.Reservation, e *domain.Event) error {
	return p.publish(ctx, RoutingKeyReservationCreated, p.message(r, e))
}

func (p *Publisher) ReservationCancelled(ctx context.Context, r *domain.Reservation, e *domain.Event) error {
	return p.publish(ctx, RoutingKeyReservationCancelled, p.message(r, e))
}

func (p *Publisher) message(r *domain.Reservation, e *domain.Event) ReservationMessage {
	msg := ReservationMessage{OccurredAt: p.now().UTC()}
	if r != nil {
		msg.ReservationID = r.ID
		msg.UserID = r.UserID
		msg.EventID = r.EventID
	}
	if e != nil {
		msg.EventID = e.ID
		msg.Capacity = e.Capacity
		msg.Occupancy = e.Occupancy
	}
	return msg
}

func (p *Publisher) publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.PublishWithContext(ctx,
		ExchangeName,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    p.now().UTC(),
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	p.logger.DebugContext(ctx, "published reservation message", "exchange", ExchangeName, "routing_key", routingKey)
	return nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
