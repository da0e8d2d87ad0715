package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/MKabaja/SHIFTFlow/internal/queue"
)

// Publisher emits audit events.  Publish must not block the request path.
type Publisher interface {
	Publish(ev queue.AuthEvent)
}

// NopPublisher drops every event.  It is used when auditing is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(queue.AuthEvent) {}

// AMQPPublisher buffers events and publishes them to the auth.audit queue
// from a single goroutine started by Run.  Events are dropped when the
// buffer is full.
type AMQPPublisher struct {
	url    string
	log    logrus.FieldLogger
	events chan queue.AuthEvent

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher returns a publisher with a buffer of size events.
func NewAMQPPublisher(url string, size int, log logrus.FieldLogger) *AMQPPublisher {
	if size <= 0 {
		size = 256
	}
	return &AMQPPublisher{url: url, log: log, events: make(chan queue.AuthEvent, size)}
}

// Publish enqueues ev.
func (p *AMQPPublisher) Publish(ev queue.AuthEvent) {
	if ev.OccurredAt == "" {
		ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}
	select {
	case p.events <- ev:
	default:
		p.log.WithField("type", ev.Type).Warn("rabbitmq: audit buffer full, event dropped")
	}
}

// Run publishes queued events until ctx is cancelled.
func (p *AMQPPublisher) Run(ctx context.Context) {
	defer p.close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.events:
			if err := p.publish(ctx, ev); err != nil {
				p.log.WithError(err).WithField("type", ev.Type).Warn("rabbitmq: publish failed")
			}
		}
	}
}

func (p *AMQPPublisher) publish(ctx context.Context, ev queue.AuthEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	ch, err := p.channel()
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := ch.PublishWithContext(ctx,
		"",                   // default exchange
		queue.AuditQueueName, // routing key = queue name
		false,                // mandatory
		false,                // immediate
		pub,
	); err != nil {
		// Drop the connection so the next event redials.
		p.close()
		return err
	}
	return nil
}

// channel returns an open channel, dialing and declaring the queue when
// needed.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			return nil, fmt.Errorf("dial: %w", err)
		}
		p.conn = conn
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("channel open: %w", err)
	}
	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue.AuditQueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.ch = ch
	return ch, nil
}

func (p *AMQPPublisher) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
