package session

import (
	"sync"

	"github.com/google/uuid"
)

type EventKind string

const (
	// EventCurrent carries the state a subscriber starts from. A zero
	// Session means the user is signed out.
	EventCurrent   EventKind = "current"
	EventSignedUp  EventKind = "signed_up"
	EventSignedIn  EventKind = "signed_in"
	EventRefreshed EventKind = "refreshed"
	EventSignedOut EventKind = "signed_out"
)

// Event is emitted whenever the authentication state of a user changes.
// Session is the zero value for EventSignedOut when the user is unknown.
type Event struct {
	Kind    EventKind
	Session Session
}

type subscriber struct {
	user uuid.UUID // uuid.Nil receives every user's events
	fn   func(Event)
}

// Hub fans authentication events out to subscribers and remembers the
// latest signed-in session per user. A new subscriber first receives the
// current state and then every later change. Callbacks run synchronously,
// one event at a time, and must not block or call back into the Hub.
type Hub struct {
	mu      sync.Mutex
	deliver sync.Mutex
	nextID  int
	subs    map[int]subscriber
	current map[uuid.UUID]Session
}

func NewHub() *Hub {
	return &Hub{
		subs:    make(map[int]subscriber),
		current: make(map[uuid.UUID]Session),
	}
}

// Subscribe registers fn for every user's events. fn first receives one
// EventCurrent per signed-in user. It returns the function that removes fn.
func (h *Hub) Subscribe(fn func(Event)) (unsubscribe func()) {
	return h.subscribe(uuid.Nil, fn)
}

// SubscribeUser registers fn for one user's events. fn first receives that
// user's current state as an EventCurrent.
func (h *Hub) SubscribeUser(userID uuid.UUID, fn func(Event)) (unsubscribe func()) {
	return h.subscribe(userID, fn)
}

func (h *Hub) subscribe(user uuid.UUID, fn func(Event)) func() {
	h.deliver.Lock()
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = subscriber{user: user, fn: fn}

	var initial []Event
	if user == uuid.Nil {
		for _, s := range h.current {
			initial = append(initial, Event{Kind: EventCurrent, Session: s})
		}
	} else {
		initial = []Event{{Kind: EventCurrent, Session: h.current[user]}}
	}
	h.mu.Unlock()

	for _, e := range initial {
		fn(e)
	}
	h.deliver.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

func (h *Hub) Publish(e Event) {
	h.deliver.Lock()
	defer h.deliver.Unlock()

	h.mu.Lock()
	if !e.Session.IsZero() {
		if e.Kind == EventSignedOut {
			delete(h.current, e.Session.UserID)
		} else {
			h.current[e.Session.UserID] = e.Session
		}
	}
	fns := make([]func(Event), 0, len(h.subs))
	for _, sub := range h.subs {
		if sub.user == uuid.Nil || sub.user == e.Session.UserID {
			fns = append(fns, sub.fn)
		}
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
