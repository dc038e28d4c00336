package session

import (
	"testing"

	"authgate/internal/identity"

	"github.com/stretchr/testify/assert"
)

func TestStoreInitialState(t *testing.T) {
	store := NewStore()

	state := store.Read()
	assert.Equal(t, StatusUnknown, state.Status)
	assert.Nil(t, state.Identity)
}

func TestStoreTransitions(t *testing.T) {
	store := NewStore()
	who := &identity.Identity{Name: "Ada", Email: "ada@example.com"}

	store.SetAuthenticated(who)
	state := store.Read()
	assert.Equal(t, StatusAuthenticated, state.Status)
	assert.Equal(t, who, state.Identity)

	store.SetUnauthenticated()
	state = store.Read()
	assert.Equal(t, StatusUnauthenticated, state.Status)
	assert.Nil(t, state.Identity)
}

func TestStoreNotifiesSubscribersSynchronously(t *testing.T) {
	store := NewStore()
	who := &identity.Identity{Name: "Ada", Email: "ada@example.com"}

	var seen []Status
	unsubscribe := store.Subscribe(func(state State) {
		seen = append(seen, state.Status)
	})

	store.SetAuthenticated(who)
	// Notification happened before SetAuthenticated returned
	assert.Equal(t, []Status{StatusAuthenticated}, seen)

	store.SetUnauthenticated()
	assert.Equal(t, []Status{StatusAuthenticated, StatusUnauthenticated}, seen)

	unsubscribe()
	store.SetAuthenticated(who)
	assert.Len(t, seen, 2, "unsubscribed listener must not fire")
}

func TestStoreListenerCanReadInsideCallback(t *testing.T) {
	store := NewStore()

	var observed Status
	store.Subscribe(func(State) {
		// Reading back must see the fully applied transition, never a
		// half-applied one, and must not deadlock.
		observed = store.Read().Status
	})

	store.SetUnauthenticated()
	assert.Equal(t, StatusUnauthenticated, observed)
}

func TestStoreMultipleSubscribers(t *testing.T) {
	store := NewStore()

	first, second := 0, 0
	store.Subscribe(func(State) { first++ })
	store.Subscribe(func(State) { second++ })

	store.SetUnauthenticated()
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}
