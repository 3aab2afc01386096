package listing

import (
	"context"
	"time"
)

// Request is what a list screen asks for: the free-text term being typed
// plus the screen's other filters, encoded as a URL query string.
type Request struct {
	Term  string
	Query string
}

// SearchFunc runs one backend query for a settled request.
type SearchFunc func(ctx context.Context, req Request) (interface{}, error)

// Result is a settled query that is still the latest for its screen.
type Result struct {
	Screen string
	Seq    uint64
	Rows   interface{}
	Err    error
}

// Live debounces keystrokes for one screen, issues at most one query per
// quiet window, and publishes only responses that are still current.
type Live struct {
	name      string
	debouncer *Debouncer
	sequencer Sequencer
	screen    *Screen[interface{}]
	search    SearchFunc
	publish   func(Result)
}

func NewLive(name string, wait time.Duration, search SearchFunc, publish func(Result)) *Live {
	return &Live{
		name:      name,
		debouncer: NewDebouncer(wait),
		screen:    NewScreen[interface{}](false),
		search:    search,
		publish:   publish,
	}
}

// Input records a keystroke. ctx bounds the eventual query.
func (l *Live) Input(ctx context.Context, req Request) {
	l.debouncer.Trigger(func() {
		l.run(ctx, req)
	})
}

// Now skips the debounce window, as a direct query parameter does.
func (l *Live) Now(ctx context.Context, req Request) {
	l.debouncer.Stop()
	l.run(ctx, req)
}

func (l *Live) run(ctx context.Context, req Request) {
	seq := l.sequencer.Next()
	l.screen.Begin()

	rows, err := l.search(ctx, req)
	if !l.sequencer.IsLatest(seq) {
		return
	}

	if err != nil {
		l.screen.Fail(err)
	} else {
		l.screen.Succeed(rows)
	}
	l.publish(Result{Screen: l.name, Seq: seq, Rows: rows, Err: err})
}

func (l *Live) Snapshot() Snapshot[interface{}] {
	return l.screen.Snapshot()
}

func (l *Live) Stop() {
	l.debouncer.Stop()
}
