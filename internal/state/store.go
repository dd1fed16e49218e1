package state

import (
	"sync"

	"lexa-chat/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Store owns the State. Dispatch serializes all transitions, so concurrent
// async results apply in the order their dispatches reach the mutex.
type Store struct {
	mu    sync.Mutex
	state State
	subs  map[int]chan struct{}
	next  int
	log   *zerolog.Logger
}

func NewStore(logger *zerolog.Logger) *Store {
	storeLog := logger.With().Str("component", "Store").Logger()
	return &Store{
		state: Initial(),
		subs:  make(map[int]chan struct{}),
		log:   &storeLog,
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a and returns the states before and after it.
func (s *Store) Dispatch(a Action) (prev, next State) {
	s.mu.Lock()
	prev = s.state
	next = Reduce(prev, a)
	s.state = next
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
			// a change notification is already pending
		}
	}
	s.mu.Unlock()

	metrics.IncDispatch(a.Name())
	s.log.Trace().Str("action", a.Name()).Msg("dispatch")
	return prev, next
}

// Subscribe returns a channel that receives a signal after every dispatch.
// Signals coalesce: a reader sees at least one signal after the last change.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
