package events

import (
	"context"
	"sync"
	"time"

	"launchpad/internal/models"
)

// Type names a token lifecycle event.
type Type string

const (
	TokenCreated       Type = "token.created"
	TokenUpdated       Type = "token.updated"
	TokenStatusChanged Type = "token.status_changed"
	TokenGraduated     Type = "token.graduated"
	TokenVerified      Type = "token.verified"
)

// Event is a lifecycle notification. Data carries the entity snapshot.
type Event struct {
	Type        Type                    `json:"type"`
	MintAddress string                  `json:"mint_address"`
	Status      models.GraduationStatus `json:"graduation_status,omitempty"`
	Previous    models.GraduationStatus `json:"previous_status,omitempty"`
	Data        interface{}             `json:"data,omitempty"`
	Timestamp   time.Time               `json:"timestamp"`
}

// Publisher delivers events. Implementations never fail the caller; delivery
// errors are logged and counted by the sink.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

// Fanout publishes to every sink in order.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e Event) {
	for _, p := range f {
		if p != nil {
			p.Publish(ctx, e)
		}
	}
}

// Recorder keeps published events in memory. Used by tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the type of each recorded event in order.
func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
