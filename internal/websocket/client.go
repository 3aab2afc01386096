package websocket

import (
	"context"
	"log"
	"sync"
	"time"

	"signage-console/internal/listing"

	"github.com/gorilla/websocket"
)

type Client struct {
	ID        string
	SessionID string
	Conn      *websocket.Conn
	Manager   *Manager
	Send      chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	screens map[string]*listing.Live
}

func NewClient(id, sessionID string, conn *websocket.Conn, manager *Manager) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ID:        id,
		SessionID: sessionID,
		Conn:      conn,
		Manager:   manager,
		Send:      make(chan []byte, 256),
		ctx:       ctx,
		cancel:    cancel,
		screens:   make(map[string]*listing.Live),
	}
}

// Context is cancelled when the client disconnects.
func (c *Client) Context() context.Context {
	return c.ctx
}

// Screen returns the client's live search for name, creating it on first use.
func (c *Client) Screen(name string, create func() *listing.Live) *listing.Live {
	c.mu.Lock()
	defer c.mu.Unlock()

	live, ok := c.screens[name]
	if !ok {
		live = create()
		c.screens[name] = live
	}
	return live
}

// shutdown stops pending searches and cancels in-flight ones.
func (c *Client) shutdown() {
	c.mu.Lock()
	for _, live := range c.screens {
		live.Stop()
	}
	c.mu.Unlock()
	c.cancel()
}

func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.Manager.Unregister <- c:
		case <-c.Manager.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] read error for client %s: %v", c.ID, err)
			}
			break
		}

		select {
		case c.Manager.HandleMessage <- &ClientMessage{Client: c, Message: message}:
		case <-c.Manager.done:
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(c.Manager.pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One JSON document per frame; clients parse frames individually.
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
