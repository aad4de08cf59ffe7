package events

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/aw-admin-api/pkg/jobs"
)

// AsyncConfig sizes the delivery pool of an AsyncPublisher.
type AsyncConfig struct {
	Workers     int
	Buffer      int
	MaxAttempts int
	Backoff     time.Duration
	// DrainTimeout bounds how long Close waits for buffered events.
	DrainTimeout time.Duration
	// OnDrop is called for events that were never delivered.
	OnDrop func(event Event, err error)
}

// AsyncPublisher moves delivery off the request path. Publish only buffers the
// event; workers hand it to the wrapped publisher and retry with backoff.
type AsyncPublisher struct {
	next   Publisher
	queue  *jobs.Queue
	drain  time.Duration
	onDrop func(Event, error)
	logger *zap.Logger
}

// NewAsyncPublisher starts the delivery workers around next.
func NewAsyncPublisher(ctx context.Context, next Publisher, cfg AsyncConfig, logger *zap.Logger) *AsyncPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
	p := &AsyncPublisher{next: next, drain: cfg.DrainTimeout, onDrop: cfg.OnDrop, logger: logger}
	p.queue = jobs.NewQueue("events", p.deliver, jobs.Config{
		Workers:     cfg.Workers,
		Buffer:      cfg.Buffer,
		MaxAttempts: cfg.MaxAttempts,
		Backoff:     cfg.Backoff,
		Logger:      logger,
		OnGiveUp: func(job jobs.Job, err error) {
			if event, ok := job.Payload.(Event); ok {
				p.dropped(event, err)
			}
		},
	})
	p.queue.Start(ctx)
	return p
}

// Publish implements Publisher. It fails only when the buffer is full or the
// publisher is closed.
func (p *AsyncPublisher) Publish(_ context.Context, event Event) error {
	err := p.queue.TryEnqueue(jobs.Job{ID: event.ID, Kind: event.Name, Payload: event})
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", event.Name, err)
	}
	return nil
}

// Close drains buffered events then closes the wrapped publisher.
func (p *AsyncPublisher) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), p.drain)
	defer cancel()
	if err := p.queue.Stop(ctx); err != nil {
		p.logger.Warn("event queue not drained", zap.Error(err))
	}
	return p.next.Close()
}

func (p *AsyncPublisher) deliver(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(Event)
	if !ok {
		return nil
	}
	return p.next.Publish(ctx, event)
}

func (p *AsyncPublisher) dropped(event Event, err error) {
	if p.onDrop != nil {
		p.onDrop(event, err)
	}
}
