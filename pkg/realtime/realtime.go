// Package realtime is an in-process publish/subscribe hub that fans out
// palette events (source reloads, store changes) to every open palette
// session.
//
// Delivery is best effort: a listener whose buffer is full misses the
// event, and nothing is persisted or replayed.
package realtime

import (
	"sync"
	"time"
)

// Event types.
const (
	// TypeReload tells sessions that a source rebuilt its corpus and
	// the current query should be run again.
	TypeReload = "reload"
	// TypeStore carries a store change made by an action.
	TypeStore = "store"
)

// Event is a single notification. Source names the palette source for
// reloads; Key and Value describe store changes.
type Event struct {
	Type   string    `json:"type"`
	Source string    `json:"source,omitempty"`
	Key    string    `json:"key,omitempty"`
	Value  any       `json:"value,omitempty"`
	At     time.Time `json:"at"`
}

// ReloadEvent returns a reload event for source.
func ReloadEvent(source string) Event {
	return Event{Type: TypeReload, Source: source, At: time.Now().UTC()}
}

// StoreEvent returns a store change event.
func StoreEvent(key string, value any) Event {
	return Event{Type: TypeStore, Key: key, Value: value, At: time.Now().UTC()}
}

// Hub fans events out to listeners, each with its own buffered channel.
// It is safe for concurrent use.
type Hub struct {
	mu        sync.RWMutex
	listeners map[uint64]chan Event
	nextID    uint64
	bufSize   int
}

// NewHub constructs a hub with the given per-listener buffer size.
// If bufSize <= 0, a default of 32 is used.
func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 32
	}
	return &Hub{
		listeners: make(map[uint64]chan Event),
		bufSize:   bufSize,
	}
}

// Register adds a listener. Callers must Unregister the returned id.
func (h *Hub) Register() (uint64, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan Event, h.bufSize)
	h.listeners[id] = ch
	return id, ch
}

// Unregister removes the listener and closes its channel. Unknown ids are
// ignored.
func (h *Hub) Unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.listeners[id]; ok {
		delete(h.listeners, id)
		close(ch)
	}
}

// Broadcast delivers e to every listener with room in its buffer.
func (h *Hub) Broadcast(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.listeners {
		select {
		case ch <- e:
		default:
			// Drop for slow listener.
		}
	}
}

// Size returns the number of listeners.
func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}
