package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Toast is one displayed message
type Toast struct {
	ID          string        `json:"id"`
	Message     string        `json:"message"`
	Severity    Severity      `json:"type"`
	Duration    time.Duration `json:"duration"`
	Dismissible bool          `json:"dismissible"`
	CreatedAt   time.Time     `json:"created_at"`
}

// EventKind tells subscribers what happened to a toast
type EventKind string

const (
	EventShown     EventKind = "shown"
	EventDismissed EventKind = "dismissed"
)

// Event is delivered to Hub subscribers
type Event struct {
	Kind  EventKind
	Toast Toast
}

// Timer is the part of *time.Timer the hub needs
type Timer interface {
	Stop() bool
}

// Hub holds active toasts and dismisses each one after its duration
type Hub struct {
	mu        sync.Mutex
	toasts    []Toast
	timers    map[string]Timer
	listeners map[uint64]func(Event)
	nextID    uint64

	now       func() time.Time
	afterFunc func(time.Duration, func()) Timer
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithHubClock replaces the time source and timer factory, for tests
func WithHubClock(now func() time.Time, afterFunc func(time.Duration, func()) Timer) HubOption {
	return func(h *Hub) {
		h.now = now
		h.afterFunc = afterFunc
	}
}

// NewHub creates an empty hub
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		timers:    make(map[string]Timer),
		listeners: make(map[uint64]func(Event)),
		now:       time.Now,
		afterFunc: func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Notify implements Sink
func (h *Hub) Notify(message string, severity Severity, duration time.Duration) {
	h.Show(message, severity, duration)
}

// Show adds a toast and schedules its dismissal
func (h *Hub) Show(message string, severity Severity, duration time.Duration) Toast {
	t := Toast{
		ID:          uuid.New().String(),
		Message:     message,
		Severity:    severity,
		Duration:    ResolveDuration(severity, duration),
		Dismissible: true,
		CreatedAt:   h.now(),
	}

	h.mu.Lock()
	h.toasts = append(h.toasts, t)
	id := t.ID
	h.timers[id] = h.afterFunc(t.Duration, func() { h.Dismiss(id) })
	listeners := h.snapshotLocked()
	h.mu.Unlock()

	for _, l := range listeners {
		l(Event{Kind: EventShown, Toast: t})
	}
	return t
}

func (h *Hub) Success(message string) Toast { return h.Show(message, SeveritySuccess, 0) }
func (h *Hub) Error(message string) Toast   { return h.Show(message, SeverityError, 0) }
func (h *Hub) Warning(message string) Toast { return h.Show(message, SeverityWarning, 0) }
func (h *Hub) Info(message string) Toast    { return h.Show(message, SeverityInfo, 0) }

// Dismiss removes a toast. It reports false if the id is not active.
func (h *Hub) Dismiss(id string) bool {
	h.mu.Lock()
	idx := -1
	for i, t := range h.toasts {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		h.mu.Unlock()
		return false
	}

	removed := h.toasts[idx]
	h.toasts = append(h.toasts[:idx], h.toasts[idx+1:]...)
	if tm, ok := h.timers[id]; ok {
		tm.Stop()
		delete(h.timers, id)
	}
	listeners := h.snapshotLocked()
	h.mu.Unlock()

	for _, l := range listeners {
		l(Event{Kind: EventDismissed, Toast: removed})
	}
	return true
}

// Active returns the toasts currently displayed, oldest first
func (h *Hub) Active() []Toast {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Toast, len(h.toasts))
	copy(out, h.toasts)
	return out
}

// Subscribe registers fn for show and dismiss events
func (h *Hub) Subscribe(fn func(Event)) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

// Close stops every pending dismissal timer
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, tm := range h.timers {
		tm.Stop()
		delete(h.timers, id)
	}
}

func (h *Hub) snapshotLocked() []func(Event) {
	out := make([]func(Event), 0, len(h.listeners))
	for _, l := range h.listeners {
		out = append(out, l)
	}
	return out
}
