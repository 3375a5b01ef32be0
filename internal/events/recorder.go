package events

import (
	"context"
	"sync"
)

// Event is one recorded publish.
type Event struct {
	Channel string
	Payload map[string]any
}

// Recorder keeps published events in memory. Tests in other packages use
// it to assert on side effects.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, channel string, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Channel: channel, Payload: payload})
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Channels returns the channel of each recorded event in order.
func (r *Recorder) Channels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Channel
	}
	return out
}
