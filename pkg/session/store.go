package session

import (
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
)

// Listener receives every session written after it subscribed
type Listener func(Session)

type subscription struct {
	id uint64
	fn Listener
}

// Store holds the current Session. Writes replace the whole value; listeners
// are called outside the lock, one write at a time, in write order. A panicking
// listener is logged and skipped.
type Store struct {
	mu        sync.Mutex
	value     Session
	epoch     uint64
	listeners []subscription
	nextID    uint64

	pending    []Session
	delivering bool
}

// NewStore creates a store holding the empty session at epoch 0
func NewStore() *Store {
	return &Store{}
}

// Current returns a snapshot of the session
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value.clone()
}

// Epoch returns the current epoch
func (s *Store) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Subscribe registers fn for future writes. The current value is not replayed.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Replace unconditionally writes next and starts a new epoch, which it returns
func (s *Store) Replace(next Session) (uint64, error) {
	if !next.Valid() {
		return 0, ErrInvalidSession
	}

	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.commitLocked(next)
	return epoch, nil
}

// ReplaceIf writes next only while the store is still at epoch. With renew the
// write starts a new epoch; without it the epoch is kept, which is how an access
// token renewal stays part of the same logical session.
func (s *Store) ReplaceIf(epoch uint64, next Session, renew bool) error {
	if !next.Valid() {
		return ErrInvalidSession
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return ErrSessionSuperseded
	}
	if renew {
		s.epoch++
	}
	s.commitLocked(next)
	return nil
}

// commitLocked stores next, releases s.mu and delivers queued writes. A writer
// that finds delivery in progress only queues; the active deliverer drains the
// queue so listeners observe writes in order.
func (s *Store) commitLocked(next Session) {
	s.value = next.clone()
	s.pending = append(s.pending, s.value.clone())
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true

	for {
		batch := s.pending
		s.pending = nil
		listeners := make([]subscription, len(s.listeners))
		copy(listeners, s.listeners)
		s.mu.Unlock()

		for _, value := range batch {
			for _, sub := range listeners {
				deliver(sub.fn, value)
			}
		}

		s.mu.Lock()
		if len(s.pending) == 0 {
			s.delivering = false
			s.mu.Unlock()
			return
		}
	}
}

// deliver calls fn and contains a panic so delivery continues for later
// listeners and later writes
func deliver(fn Listener, value Session) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("panic in session listener")
		}
	}()
	fn(value)
}
