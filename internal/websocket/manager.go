package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

type ClientMessage struct {
	Client  *Client
	Message []byte
}

type Manager struct {
	clients           map[string]*Client
	sessionIndex      map[string]map[string]bool
	clientsMutex      sync.RWMutex
	Register          chan *Client
	Unregister        chan *Client
	HandleMessage     chan *ClientMessage
	done              chan struct{}
	maxConnPerSession int
	writeWait         time.Duration
	pongWait          time.Duration
	pingPeriod        time.Duration
	messageHandler    MessageHandler
}

type MessageHandler interface {
	HandleWebSocketMessage(client *Client, msg *Message) error
}

func NewManager(maxConnPerSession int, writeWait, pongWait, pingPeriod time.Duration) *Manager {
	return &Manager{
		clients:           make(map[string]*Client),
		sessionIndex:      make(map[string]map[string]bool),
		Register:          make(chan *Client),
		Unregister:        make(chan *Client),
		HandleMessage:     make(chan *ClientMessage),
		done:              make(chan struct{}),
		maxConnPerSession: maxConnPerSession,
		writeWait:         writeWait,
		pongWait:          pongWait,
		pingPeriod:        pingPeriod,
	}
}

func (m *Manager) SetMessageHandler(handler MessageHandler) {
	m.messageHandler = handler
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.Register:
			m.registerClient(client)

		case client := <-m.Unregister:
			m.unregisterClient(client)

		case clientMsg := <-m.HandleMessage:
			m.processMessage(clientMsg)

		case <-m.done:
			m.closeAll()
			return
		}
	}
}

// Shutdown stops Run and disconnects every client.
func (m *Manager) Shutdown() {
	select {
	case <-m.done:
	default:
		close(m.done)
	}
}

func (m *Manager) registerClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if m.sessionIndex[client.SessionID] == nil {
		m.sessionIndex[client.SessionID] = make(map[string]bool)
	}

	if len(m.sessionIndex[client.SessionID]) >= m.maxConnPerSession {
		log.Printf("[WS] max connections reached for session %s", client.SessionID)
		client.shutdown()
		close(client.Send)
		return
	}

	m.clients[client.ID] = client
	m.sessionIndex[client.SessionID][client.ID] = true

	log.Printf("[WS] client registered: %s", client.ID)
}

func (m *Manager) unregisterClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if _, ok := m.clients[client.ID]; ok {
		m.remove(client)
		log.Printf("[WS] client unregistered: %s", client.ID)
	}
}

// remove must be called with clientsMutex held.
func (m *Manager) remove(client *Client) {
	delete(m.clients, client.ID)
	delete(m.sessionIndex[client.SessionID], client.ID)
	if len(m.sessionIndex[client.SessionID]) == 0 {
		delete(m.sessionIndex, client.SessionID)
	}

	client.shutdown()
	close(client.Send)
}

func (m *Manager) closeAll() {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	for _, client := range m.clients {
		m.remove(client)
	}
}

func (m *Manager) processMessage(clientMsg *ClientMessage) {
	var msg Message
	if err := json.Unmarshal(clientMsg.Message, &msg); err != nil {
		log.Printf("[WS] error unmarshaling message: %v", err)
		m.SendToClient(clientMsg.Client.ID, mustMessage(TypeError, ErrorPayload{Message: "invalid message"}))
		return
	}

	if m.messageHandler != nil {
		if err := m.messageHandler.HandleWebSocketMessage(clientMsg.Client, &msg); err != nil {
			log.Printf("[WS] error handling message: %v", err)
			m.SendToClient(clientMsg.Client.ID, mustMessage(TypeError, ErrorPayload{Message: err.Error()}))
		}
	}
}

// SendToSession delivers message to every connection of a session.
func (m *Manager) SendToSession(sessionID string, message *Message) error {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	for clientID := range m.sessionIndex[sessionID] {
		select {
		case m.clients[clientID].Send <- messageBytes:
		default:
			log.Printf("[WS] client %s send buffer full", clientID)
		}
	}

	return nil
}

func (m *Manager) SendToClient(clientID string, message *Message) error {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	client, exists := m.clients[clientID]
	if !exists {
		return nil
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case client.Send <- messageBytes:
	default:
		log.Printf("[WS] client %s send buffer full", clientID)
	}

	return nil
}

func (m *Manager) SessionConnections(sessionID string) int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	if clients, exists := m.sessionIndex[sessionID]; exists {
		return len(clients)
	}
	return 0
}

func mustMessage(msgType MessageType, payload interface{}) *Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		msg, _ = NewMessage(TypeError, ErrorPayload{Message: err.Error()})
	}
	return msg
}
