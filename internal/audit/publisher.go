package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"fraudgate/internal/platform/kafka/producer"
	dErrors "fraudgate/pkg/domain-errors"
)

// Publisher captures blocked-customer events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily. A Kafka sink
// can fan the same events out to downstream consumers, always best-effort.
type Publisher struct {
	store  Store
	events chan Event
	wg     sync.WaitGroup
	logger *slog.Logger
	async  bool

	producer *producer.Producer
	topic    string
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer enables async processing with the specified buffer size.
// Events are queued and persisted in a background goroutine.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan Event, size)
			p.async = true
		}
	}
}

// WithKafkaSink mirrors every event onto a Kafka topic.
func WithKafkaSink(prod *producer.Producer, topic string) PublisherOption {
	return func(p *Publisher) {
		p.producer = prod
		p.topic = topic
	}
}

// WithPublisherLogger sets a logger for async error reporting.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher constructs a publisher over the given store.
func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

// processEvents runs in a goroutine and persists events from the channel.
func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		if err := p.store.Append(context.Background(), event); err != nil {
			if p.logger != nil {
				p.logger.Error("failed to persist blocked log entry",
					"error", err,
					"reason", event.Reason,
				)
			}
		}
	}
}

// Close shuts down the async publisher and waits for pending events to drain.
func (p *Publisher) Close() {
	if p.async && p.events != nil {
		close(p.events)
		p.wg.Wait()
	}
}

// Emit records one blocked-customer event. The Kafka mirror never blocks or
// fails the caller.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	p.mirror(event)

	if p.async {
		select {
		case p.events <- event:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
			if p.logger != nil {
				p.logger.Warn("blocked log buffer full, entry dropped",
					"reason", event.Reason,
				)
			}
			return dErrors.New(dErrors.CodeInternal, "blocked log buffer full")
		}
	}
	return p.store.Append(ctx, event)
}

// List returns the blocked log, newest first.
func (p *Publisher) List(ctx context.Context) ([]Event, error) {
	return p.store.List(ctx)
}

func (p *Publisher) mirror(event Event) {
	if p.producer == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := p.producer.ProduceAsync(&producer.Message{
		Topic: p.topic,
		Key:   []byte(event.IPAddress),
		Value: payload,
	}); err != nil && p.logger != nil {
		p.logger.Warn("blocked log kafka mirror failed", "error", err)
	}
}
