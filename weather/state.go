package weather

import (
	"sync"

	"start-page/domain"
)

// State is the shared weather condition read by every themed component.
// Set is the only way to change it.
type State struct {
	mu        sync.Mutex
	condition domain.Condition
	subs      map[chan domain.Condition]struct{}
}

// NewState returns a State holding the initial condition.
func NewState() *State {
	return &State{condition: domain.InitialCondition, subs: make(map[chan domain.Condition]struct{})}
}

// Condition returns the current value.
func (s *State) Condition() domain.Condition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.condition
}

// Set stores c and notifies subscribers. Slow subscribers only see the latest value.
func (s *State) Set(c domain.Condition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.condition = c
	for ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- c:
		default:
		}
	}
}

// Subscribe returns a channel receiving every new condition and a func to
// stop the subscription.
func (s *State) Subscribe() (<-chan domain.Condition, func()) {
	ch := make(chan domain.Condition, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch, func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}
}
