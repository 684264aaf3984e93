// Package events reconciles live store changes into local snapshots. The
// store publishes row changes over Postgres NOTIFY; a listener decodes them
// into typed change events and a snapshot store applies them with a
// deterministic merge rule. Delivery order is arrival order; a change racing
// an in-flight fetch resolves last-write-wins.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Kind discriminates a change event.
type Kind string

const (
	Insert Kind = "insert"
	Update Kind = "update"
	Delete Kind = "delete"
)

// Change is one row change pushed by the store. Entity is the full row as
// JSON for inserts and updates, and may be empty for deletes.
type Change struct {
	Kind   Kind            `json:"kind"`
	Table  string          `json:"table"`
	ID     int64           `json:"id"`
	Entity json.RawMessage `json:"entity,omitempty"`
}

// Listener delivers store changes from a Postgres NOTIFY channel.
type Listener struct {
	pql     *pq.Listener
	log     *logrus.Logger
	changes chan Change
}

// NewListener connects a listener to the given notification channel.
func NewListener(conninfo, channel string, log *logrus.Logger) (*Listener, error) {
	pql := pq.NewListener(conninfo, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Errorf("Store listener event %d: %v", ev, err)
		}
	})
	if err := pql.Listen(channel); err != nil {
		pql.Close()
		return nil, err
	}
	return &Listener{
		pql:     pql,
		log:     log,
		changes: make(chan Change, 64),
	}, nil
}

// Changes is the stream of decoded change events.
func (l *Listener) Changes() <-chan Change {
	return l.changes
}

// Run pumps notifications until ctx is done. Malformed payloads are logged
// and dropped; they never stop the stream.
func (l *Listener) Run(ctx context.Context) {
	defer close(l.changes)
	defer l.pql.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-l.pql.Notify:
			if !ok {
				return
			}
			if n == nil {
				// Reconnect marker; the next fetch resyncs state.
				continue
			}
			var c Change
			if err := json.Unmarshal([]byte(n.Extra), &c); err != nil {
				l.log.Warnf("Dropping malformed change notification: %v", err)
				continue
			}
			select {
			case l.changes <- c:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Store is a subscribable snapshot of one entity collection, kept current by
// applying change events.
type Store[T any] struct {
	mu    sync.RWMutex
	items []T
	id    func(T) int64
	subs  []func()
}

// NewStore creates a store keyed by the given ID accessor.
func NewStore[T any](id func(T) int64) *Store[T] {
	return &Store[T]{id: id}
}

// Reset replaces the snapshot wholesale, typically after a full fetch.
func (s *Store[T]) Reset(items []T) {
	s.mu.Lock()
	s.items = append([]T(nil), items...)
	s.mu.Unlock()
	s.notify()
}

// Apply merges one change: append on insert, replace-by-id on update (insert
// when absent), remove-by-id on delete.
func (s *Store[T]) Apply(kind Kind, id int64, entity T) {
	s.mu.Lock()
	switch kind {
	case Insert:
		s.items = append(s.items, entity)
	case Update:
		replaced := false
		for i := range s.items {
			if s.id(s.items[i]) == id {
				s.items[i] = entity
				replaced = true
				break
			}
		}
		if !replaced {
			s.items = append(s.items, entity)
		}
	case Delete:
		for i := range s.items {
			if s.id(s.items[i]) == id {
				s.items = append(s.items[:i], s.items[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()
	s.notify()
}

// Snapshot returns a copy of the current items.
func (s *Store[T]) Snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T(nil), s.items...)
}

// Subscribe registers a callback invoked after every snapshot change.
func (s *Store[T]) Subscribe(onChange func()) {
	s.mu.Lock()
	s.subs = append(s.subs, onChange)
	s.mu.Unlock()
}

func (s *Store[T]) notify() {
	s.mu.RLock()
	subs := append([](func())(nil), s.subs...)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn()
	}
}
