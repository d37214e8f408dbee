package services

import (
	"sync"

	"github.com/asaskevich/EventBus"
)

// Session event topics
const (
	TopicCatalogProgress = "catalog.progress"
	TopicCatalogState    = "catalog.state"
	TopicSearchResults   = "search.results"
	TopicEditState       = "edit.state"
)

var sessionTopics = []string{
	TopicCatalogProgress,
	TopicCatalogState,
	TopicSearchResults,
	TopicEditState,
}

// Event is what listeners receive
type Event struct {
	Topic string `json:"topic"`
	Data  any    `json:"data"`
}

// eventHub subscribes to each session topic once and fans events out to
// listener channels. A listener whose buffer is full misses the event.
type eventHub struct {
	bus EventBus.Bus

	mu        sync.Mutex
	listeners map[uint64]chan Event
	next      uint64
	closed    bool
}

func newEventHub() *eventHub {
	h := &eventHub{
		bus:       EventBus.New(),
		listeners: make(map[uint64]chan Event),
	}
	for _, topic := range sessionTopics {
		// Subscribe only fails for non-func handlers
		_ = h.bus.Subscribe(topic, func(data any) {
			h.broadcast(Event{Topic: topic, Data: data})
		})
	}
	return h
}

func (h *eventHub) publish(topic string, data any) {
	h.bus.Publish(topic, data)
}

// subscribe registers a listener. The returned func detaches it.
func (h *eventHub) subscribe(buffer int) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.next
	h.next++
	h.listeners[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if l, ok := h.listeners[id]; ok {
				delete(h.listeners, id)
				close(l)
			}
		})
	}
}

func (h *eventHub) broadcast(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.listeners {
		select {
		case ch <- e:
		default:
		}
	}
}

func (h *eventHub) listenerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

// close detaches every listener; later publications go nowhere
func (h *eventHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.listeners {
		delete(h.listeners, id)
		close(ch)
	}
}
