package runtime

import (
	"sync"
	"time"
)

// singleTimer is the one deep-link timer the system owns. Starting it again
// replaces the pending fire; the reducer relies on this identity to keep at
// most one timer alive across wait-state transitions.
type singleTimer struct {
	mu sync.Mutex
	t  *time.Timer
}

func (s *singleTimer) Start(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t != nil {
		s.t.Stop()
	}
	s.t = time.AfterFunc(d, fn)
}

func (s *singleTimer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t != nil {
		s.t.Stop()
		s.t = nil
	}
}
