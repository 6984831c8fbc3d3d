// Package projection builds local read models from observed events.
// It does not emit events.
package projection

import (
	"context"
	"sync"
	"time"

	"presence-chat/domain/event"
)

// Entry is one line of the activity timeline.
type Entry struct {
	Event string    `json:"event"`
	At    time.Time `json:"at"`
	Actor string    `json:"actor"`
}

// Timeline keeps the most recent domain events in memory, oldest first.
// It is a sink of the event fanout and is safe for concurrent use.
type Timeline struct {
	mu       sync.RWMutex
	capacity int
	entries  []Entry
}

func NewTimeline(capacity int) *Timeline {
	return &Timeline{capacity: capacity}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	entry := Entry{Event: e.Name(), At: e.OccurredAt(), Actor: actorOf(e)}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entry)
	if len(t.entries) > t.capacity {
		t.entries = t.entries[len(t.entries)-t.capacity:]
	}
	return nil
}

// Recent returns a copy of the timeline.
func (t *Timeline) Recent() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	res := make([]Entry, len(t.entries))
	copy(res, t.entries)
	return res
}

func actorOf(e event.DomainEvent) string {
	switch evt := e.(type) {
	case event.ParticipantJoined:
		return evt.Participant
	case event.ParticipantLeft:
		return evt.Participant
	case event.MessagePosted:
		return evt.From
	case event.MessageEdited:
		return evt.By
	case event.MessageRemoved:
		return evt.By
	}
	return ""
}
