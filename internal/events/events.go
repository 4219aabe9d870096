// Package events publishes invalidation notifications for every gap, FAQ, and
// report mutation so dependent read views are never served stale data.
package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Entity names the record type an event refers to.
type Entity string

const (
	EntityGap    Entity = "gap"
	EntityFAQ    Entity = "faq"
	EntityReport Entity = "report"
)

// Action names the mutation that produced an event.
type Action string

const (
	ActionCreated      Action = "created"
	ActionUpdated      Action = "updated"
	ActionTransitioned Action = "transitioned"
	ActionFeedback     Action = "feedback"
)

// Event describes a committed mutation. Version is the record's version after
// the mutation. Sequence is assigned by the Bus and increases across all entities.
type Event struct {
	Entity   Entity    `json:"entity"`
	ID       string    `json:"id"`
	Version  int64     `json:"version"`
	Action   Action    `json:"action"`
	At       time.Time `json:"at"`
	Sequence uint64    `json:"sequence"`
}

// Publisher accepts committed mutation events. Publishing never fails the mutation;
// delivery problems are the publisher's to log.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Subscriber receives events from a Bus. Subscribers run synchronously on the
// publishing goroutine and must not block.
type Subscriber func(ctx context.Context, e Event)

// Bus fans events out to subscribers and maintains a global change sequence.
type Bus struct {
	mu   sync.RWMutex
	subs []Subscriber
	seq  atomic.Uint64
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for every subsequent event.
func (b *Bus) Subscribe(fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

func (b *Bus) Publish(ctx context.Context, e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	e.Sequence = b.seq.Add(1)

	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(ctx, e)
	}
}

// Sequence returns the number of events published so far.
func (b *Bus) Sequence() uint64 {
	return b.seq.Load()
}

// Discard is a Publisher that drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(context.Context, Event) {}
