// Package store is the single holder of session state. All mutation flows
// through Dispatch, which runs the injected reducer and fans the new state
// out to subscribers in subscription order.
package store

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/wristchess/internal/models"
)

// ReduceFunc computes the next state. Returning the same pointer means
// no-op and suppresses notification.
type ReduceFunc func(s *models.SessionState, a models.Action, now time.Time) *models.SessionState

// Listener observes state changes. Listeners must not retain or mutate
// either state; they receive shared pointers.
type Listener func(newState, prevState *models.SessionState)

type subscription struct {
	id int
	fn Listener
}

// Store serializes dispatches with a mutex and notifies listeners outside
// of it, so a listener may dispatch follow-up actions without deadlocking.
type Store struct {
	mu     sync.Mutex
	state  *models.SessionState
	reduce ReduceFunc
	clock  clockwork.Clock

	subs   []subscription
	nextID int
}

// New builds a store around an initial state and a reducer.
func New(initial *models.SessionState, reduce ReduceFunc, clock clockwork.Clock) *Store {
	return &Store{
		state:  initial,
		reduce: reduce,
		clock:  clock,
	}
}

// GetState returns the current state pointer. Callers must treat it as
// immutable.
func (st *Store) GetState() *models.SessionState {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state
}

// Dispatch runs one action through the reducer. When the reducer returns
// the same reference the dispatch is a no-op and nobody is notified.
func (st *Store) Dispatch(a models.Action) {
	st.mu.Lock()
	prev := st.state
	next := st.reduce(prev, a, st.clock.Now())
	if next == prev {
		st.mu.Unlock()
		return
	}
	st.state = next
	subs := make([]subscription, len(st.subs))
	copy(subs, st.subs)
	st.mu.Unlock()

	for _, sub := range subs {
		notify(sub, next, prev)
	}
}

// notify isolates a panicking listener so the remaining listeners still
// see the update.
func notify(sub subscription, newState, prevState *models.SessionState) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Int("subscription_id", sub.id).
				Interface("panic", r).
				Msg("state listener panicked")
		}
	}()
	sub.fn(newState, prevState)
}

// Subscribe registers a listener and returns its unsubscribe function.
// Unsubscribing twice is harmless.
func (st *Store) Subscribe(fn Listener) func() {
	st.mu.Lock()
	defer st.mu.Unlock()
	id := st.nextID
	st.nextID++
	st.subs = append(st.subs, subscription{id: id, fn: fn})

	return func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		for i, sub := range st.subs {
			if sub.id == id {
				st.subs = append(st.subs[:i], st.subs[i+1:]...)
				return
			}
		}
	}
}
