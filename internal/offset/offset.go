// Package offset holds the user adjustable brightness offset shared between
// the control loop, the D-Bus service and the tray menu.
package offset

import "sync"

// State is a mutex guarded signed offset. The zero value is not usable; build
// one with New.
type State struct {
	mu    sync.RWMutex
	value int

	subMutex    sync.RWMutex
	subscribers map[string]chan int
}

// New returns a State starting at initial.
func New(initial int) *State {
	return &State{
		value:       initial,
		subscribers: make(map[string]chan int),
	}
}

// Read returns the current offset.
func (s *State) Read() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Adjust applies offset += delta and returns the resulting offset.
// Subscribers are notified after the lock is released.
func (s *State) Adjust(delta int) int {
	s.mu.Lock()
	s.value += delta
	current := s.value
	s.mu.Unlock()

	s.publish(current)
	return current
}

// Subscribe registers a buffered channel that receives every new offset.
// Values are dropped for subscribers that fall behind.
func (s *State) Subscribe(id string) <-chan int {
	ch := make(chan int, 16)
	s.subMutex.Lock()
	if old, ok := s.subscribers[id]; ok {
		close(old)
	}
	s.subscribers[id] = ch
	s.subMutex.Unlock()
	return ch
}

func (s *State) Unsubscribe(id string) {
	s.subMutex.Lock()
	if ch, ok := s.subscribers[id]; ok {
		close(ch)
		delete(s.subscribers, id)
	}
	s.subMutex.Unlock()
}

func (s *State) publish(value int) {
	s.subMutex.RLock()
	defer s.subMutex.RUnlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- value:
		default:
		}
	}
}
