package session

import (
	"sync"

	"authgate/internal/identity"
)

// Status is the three-state authentication status. A store starts at
// StatusUnknown and leaves it exactly once, when bootstrap resolves.
type Status string

const (
	StatusUnknown         Status = "unknown"
	StatusUnauthenticated Status = "unauthenticated"
	StatusAuthenticated   Status = "authenticated"
)

// State is the full session state snapshot handed to readers and listeners.
// Identity is non-nil iff Status is StatusAuthenticated.
type State struct {
	Status   Status
	Identity *identity.Identity
}

// Listener receives the new state synchronously after every store mutation.
type Listener func(State)

// Store is the single process-wide holder of session state. Flows write into
// it through the two setters; everything else only reads or subscribes. The
// store itself never talks to the backend.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
}

func NewStore() *Store {
	return &Store{
		state:     State{Status: StatusUnknown},
		listeners: make(map[int]Listener),
	}
}

func (s *Store) Read() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) SetAuthenticated(who *identity.Identity) {
	s.mu.Lock()
	s.state = State{Status: StatusAuthenticated, Identity: who}
	state, listeners := s.state, s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, state)
}

func (s *Store) SetUnauthenticated() {
	s.mu.Lock()
	s.state = State{Status: StatusUnauthenticated}
	state, listeners := s.state, s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, state)
}

// Subscribe registers a listener and returns its unsubscribe func. Listeners
// are called synchronously after each mutation, outside the store lock, so a
// listener may Read() or unsubscribe from within its own callback.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		out = append(out, l)
	}
	return out
}

func notify(listeners []Listener, state State) {
	for _, l := range listeners {
		l(state)
	}
}
