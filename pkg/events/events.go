// Package events publishes domain events after a write has committed.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event names emitted by the service.
const (
	UserCreated   = "user.created"
	UserUpdated   = "user.updated"
	BlogPublished = "blog.published"
	BlogUpdated   = "blog.updated"
	BlogDeleted   = "blog.deleted"
)

// Event is the JSON envelope placed on the broker.
type Event struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// New stamps an event with an id and the current time.
func New(name string, payload interface{}) Event {
	return Event{ID: uuid.NewString(), Name: name, OccurredAt: time.Now().UTC(), Payload: payload}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher discards events.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }
