// Package services provides external service integrations such as the broker publisher
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/amirphl/billboard-engine/config"
	amqp "github.com/rabbitmq/amqp091-go"
)

// PlaylistGeneratedEvent is published once per stored playlist
type PlaylistGeneratedEvent struct {
	PlaylistID    string    `json:"playlist_id"`
	Scope         string    `json:"scope"`
	VehicleID     *uint     `json:"vehicle_id,omitempty"`
	Tariff        string    `json:"tariff"`
	WindowSeconds int64     `json:"window_seconds"`
	Placements    int       `json:"placements"`
	Warnings      int       `json:"warnings"`
	ValidFrom     time.Time `json:"valid_from"`
	ValidUntil    time.Time `json:"valid_until"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// EventPublisher sends domain events to the broker
type EventPublisher interface {
	PublishPlaylistGenerated(ctx context.Context, event PlaylistGeneratedEvent) error
	Close() error
}

// RabbitMQPublisher publishes persistent JSON messages to a durable queue.
// The connection is opened lazily and re-dialed after a failure.
type RabbitMQPublisher struct {
	cfg config.BrokerConfig

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewRabbitMQPublisher(cfg config.BrokerConfig) EventPublisher {
	return &RabbitMQPublisher{cfg: cfg}
}

func (p *RabbitMQPublisher) PublishPlaylistGenerated(ctx context.Context, event PlaylistGeneratedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		log.Printf("rabbitmq: channel unavailable: %v", err)
		return err
	}

	if p.cfg.PublishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.PublishTimeout)
		defer cancel()
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.cfg.GeneratedQueue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		p.reset()
		return err
	}
	return nil
}

// channel returns an open channel with the queue declared. Caller holds p.mu.
func (p *RabbitMQPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.cfg.GeneratedQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", p.cfg.GeneratedQueue, err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *RabbitMQPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

// NoopPublisher drops events; used when the broker is disabled
type NoopPublisher struct{}

func NewNoopPublisher() EventPublisher {
	return NoopPublisher{}
}

func (NoopPublisher) PublishPlaylistGenerated(ctx context.Context, event PlaylistGeneratedEvent) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
