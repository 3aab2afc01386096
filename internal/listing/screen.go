package listing

import "sync"

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

type Snapshot[T any] struct {
	Status Status `json:"status"`
	Data   T      `json:"data"`
	Error  string `json:"error,omitempty"`
}

// Screen tracks one list screen: idle -> loading -> success|error.
// List screens drop their rows on error; the dashboard keeps the last good data.
type Screen[T any] struct {
	mu          sync.Mutex
	status      Status
	data        T
	err         string
	keepOnError bool
}

func NewScreen[T any](keepOnError bool) *Screen[T] {
	return &Screen[T]{status: StatusIdle, keepOnError: keepOnError}
}

func (s *Screen[T]) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusLoading
	s.err = ""
}

func (s *Screen[T]) Succeed(data T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusSuccess
	s.data = data
	s.err = ""
}

func (s *Screen[T]) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusError
	s.err = err.Error()
	if !s.keepOnError {
		var zero T
		s.data = zero
	}
}

func (s *Screen[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot[T]{Status: s.status, Data: s.data, Error: s.err}
}
