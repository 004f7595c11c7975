package events

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"launchpad/internal/metrics"
)

// DefaultQueue carries lifecycle events to the worker.
const DefaultQueue = "token_lifecycle"

// MessagePublisher is satisfied by config.Publisher.
type MessagePublisher interface {
	Publish(ctx context.Context, message interface{}) error
}

// QueuePublisher forwards events to a message queue. Failures are logged and
// counted; the lifecycle operation that raised the event has already committed.
type QueuePublisher struct {
	pub MessagePublisher
}

func NewQueuePublisher(pub MessagePublisher) *QueuePublisher {
	return &QueuePublisher{pub: pub}
}

func (q *QueuePublisher) Publish(ctx context.Context, e Event) {
	err := q.pub.Publish(ctx, e)
	metrics.EventPublished("amqp", err)
	if err != nil {
		log.WithFields(log.Fields{"type": e.Type, "mint": e.MintAddress}).Errorf("> failed to queue event: %v", err)
	}
}

// Decode parses a queued event.
func Decode(body []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return Event{}, fmt.Errorf("invalid event payload: %w", err)
	}
	if e.Type == "" {
		return Event{}, fmt.Errorf("invalid event payload: missing type")
	}
	return e, nil
}
