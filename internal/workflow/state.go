package workflow

import (
	"errors"
	"fmt"
)

type State string

const (
	StateClosed     State = "closed"
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateSubmitting State = "submitting"
	StateDone       State = "done"
	StateError      State = "error"
)

var (
	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrWorkflowState    = errors.New("illegal workflow transition")
)

// machine is the state shared by every modal. It is not safe for concurrent
// use; owners guard it with their own mutex.
type machine struct {
	state State
	err   string
}

func (m *machine) State() State {
	if m.state == "" {
		return StateClosed
	}
	return m.state
}

// move switches to next when the current state is one of from.
func (m *machine) move(next State, from ...State) error {
	current := m.State()
	for _, s := range from {
		if s == current {
			m.state = next
			if next != StateError {
				m.err = ""
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrWorkflowState, current, next)
}

func (m *machine) fail(err error) {
	m.state = StateError
	m.err = err.Error()
}
