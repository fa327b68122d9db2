package app

import (
	"sync"

	"intellitest/internal/domain"
)

// EventType names what changed in a session.
type EventType string

const (
	EventState     EventType = "state"
	EventTick      EventType = "tick"
	EventSubmitted EventType = "submitted"
	EventReset     EventType = "reset"
)

// Event is pushed to session subscribers.
type Event struct {
	Type       EventType          `json:"type"`
	SessionID  string             `json:"sessionId"`
	Snapshot   *Snapshot          `json:"snapshot,omitempty"`
	Submission *domain.Submission `json:"submission,omitempty"`
}

// hub fans session events out to subscribers. Slow subscribers lose stale
// events rather than blocking the session.
type hub struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[chan Event]struct{})}
}

func (h *hub) subscribe(sessionID string, initial Event) (<-chan Event, func()) {
	ch := make(chan Event, 8)
	ch <- initial

	h.mu.Lock()
	set, ok := h.subs[sessionID]
	if !ok {
		set = make(map[chan Event]struct{})
		h.subs[sessionID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if set, ok := h.subs[sessionID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, sessionID)
			}
		}
	}
	return ch, cancel
}

func (h *hub) publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[ev.SessionID] {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

// closeSession ends every subscription of a session.
func (h *hub) closeSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[sessionID] {
		close(ch)
	}
	delete(h.subs, sessionID)
}
