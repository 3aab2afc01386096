package websocket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"signage-console/internal/listing"
)

// ScreenSearch runs a list screen's query on behalf of a session.
type ScreenSearch func(ctx context.Context, sessionID string, req listing.Request) (interface{}, error)

// RedirectError is returned by a ScreenSearch when the browser must navigate away.
type RedirectError interface {
	error
	RedirectTo() string
}

// SearchHandler turns "search" messages into debounced, sequenced screen queries.
type SearchHandler struct {
	manager *Manager
	screens map[string]ScreenSearch
	wait    time.Duration
}

func NewSearchHandler(manager *Manager, wait time.Duration, screens map[string]ScreenSearch) *SearchHandler {
	return &SearchHandler{
		manager: manager,
		screens: screens,
		wait:    wait,
	}
}

func (h *SearchHandler) HandleWebSocketMessage(client *Client, msg *Message) error {
	switch msg.Type {
	case TypeSearch:
		var payload SearchPayload
		if err := msg.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("invalid search payload: %w", err)
		}
		return h.search(client, payload)

	case TypePing:
		return h.manager.SendToClient(client.ID, mustMessage(TypePong, nil))

	default:
		return fmt.Errorf("unsupported message type %q", msg.Type)
	}
}

func (h *SearchHandler) search(client *Client, payload SearchPayload) error {
	run, ok := h.screens[payload.Screen]
	if !ok {
		return fmt.Errorf("unknown screen %q", payload.Screen)
	}

	live := client.Screen(payload.Screen, func() *listing.Live {
		return listing.NewLive(payload.Screen, h.wait,
			func(ctx context.Context, req listing.Request) (interface{}, error) {
				return run(ctx, client.SessionID, req)
			},
			func(r listing.Result) {
				h.publish(client, r)
			},
		)
	})

	live.Input(client.Context(), listing.Request{Term: payload.Term, Query: payload.Query})
	return nil
}

func (h *SearchHandler) publish(client *Client, r listing.Result) {
	out := ResultsPayload{
		Screen: r.Screen,
		Seq:    r.Seq,
		Rows:   r.Rows,
	}
	if r.Err != nil {
		out.Rows = nil
		out.Error = r.Err.Error()
		var re RedirectError
		if errors.As(r.Err, &re) {
			out.Redirect = re.RedirectTo()
		}
	}

	h.manager.SendToClient(client.ID, mustMessage(TypeResults, out))
}
