// Package store is the process-wide key/value state of the palette.
//
// Values are arbitrary Go values. Subscribers are called synchronously, in
// subscription order, after every Set of the key they watch. Boolean values
// can optionally be persisted so toggles survive restarts.
package store

import (
	"strconv"
	"sync"

	"github.com/rubiojr/cmdk/pkg/log"
)

// Persister saves and restores settings. *storage.DB satisfies it.
type Persister interface {
	SaveSetting(key, value string) error
	LoadSettings() (map[string]string, error)
}

type subscriber struct {
	id uint64
	fn func(value any)
}

// Store is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	values    map[string]any
	subs      map[string][]subscriber
	nextID    uint64
	persister Persister
	logger    *log.Logger
}

func New() *Store {
	return &Store{
		values: make(map[string]any),
		subs:   make(map[string][]subscriber),
		logger: log.ForService("store"),
	}
}

// WithPersister restores persisted booleans into the store and saves every
// subsequent boolean Set through p.
func (s *Store) WithPersister(p Persister) error {
	settings, err := p.LoadSettings()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.persister = p
	for k, v := range settings {
		if b, err := strconv.ParseBool(v); err == nil {
			s.values[k] = b
		}
	}
	return nil
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Bool returns the boolean stored under key, false when unset.
func (s *Store) Bool(key string) bool {
	v, _ := s.Get(key)
	b, _ := v.(bool)
	return b
}

// Set stores value and notifies the key's subscribers.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	s.values[key] = value
	subs, persister := s.watchersLocked(key)
	s.mu.Unlock()

	s.publish(key, value, subs, persister)
}

func (s *Store) watchersLocked(key string) ([]subscriber, Persister) {
	return append([]subscriber(nil), s.subs[key]...), s.persister
}

// publish persists boolean values and calls subs. It runs without s.mu held
// so subscribers may use the store.
func (s *Store) publish(key string, value any, subs []subscriber, persister Persister) {
	if b, ok := value.(bool); ok && persister != nil {
		if err := persister.SaveSetting(key, strconv.FormatBool(b)); err != nil {
			s.logger.Warnf("persisting %s: %v", key, err)
		}
	}

	for _, sub := range subs {
		sub.fn(value)
	}
}

// SetIfAbsent stores value only when key has no value yet and reports
// whether it did. Subscribers are notified only on a successful store.
func (s *Store) SetIfAbsent(key string, value any) bool {
	s.mu.Lock()
	if _, exists := s.values[key]; exists {
		s.mu.Unlock()
		return false
	}
	s.values[key] = value
	subs := append([]subscriber(nil), s.subs[key]...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(value)
	}
	return true
}

// Toggle flips a boolean key and returns the new value. Concurrent toggles
// never lose a flip.
func (s *Store) Toggle(key string) bool {
	s.mu.Lock()
	b, _ := s.values[key].(bool)
	b = !b
	s.values[key] = b
	subs, persister := s.watchersLocked(key)
	s.mu.Unlock()

	s.publish(key, b, subs, persister)
	return b
}

// Delete removes key without notifying subscribers.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Subscribe registers fn for changes of key and returns a function that
// removes the subscription. Calling it more than once is harmless.
func (s *Store) Subscribe(key string, fn func(value any)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[key] = append(s.subs[key], subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			subs := s.subs[key]
			for i, sub := range subs {
				if sub.id == id {
					s.subs[key] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
		})
	}
}
