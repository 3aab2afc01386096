package listing

import "sync"

// Sequencer numbers outgoing requests so late responses can be recognized.
type Sequencer struct {
	mu     sync.Mutex
	latest uint64
}

func (s *Sequencer) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	return s.latest
}

// IsLatest reports whether n is still the most recently issued number.
func (s *Sequencer) IsLatest(n uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return n == s.latest
}
