package handler

import (
	"context"
	"log"
	"net/http"
	"net/url"

	"signage-console/internal/domain"
	"signage-console/internal/listing"
	"signage-console/internal/middleware"
	"signage-console/internal/service"
	"signage-console/internal/websocket"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

// sessionExpired tells a live screen to send the browser to the login screen.
type sessionExpired struct {
	error
}

func (sessionExpired) RedirectTo() string {
	return middleware.LoginPath
}

func (e sessionExpired) Unwrap() error {
	return e.error
}

type WebSocketHandler struct {
	manager  *websocket.Manager
	upgrader ws.Upgrader
}

func NewWebSocketHandler(manager *websocket.Manager, readBufferSize, writeBufferSize int) *WebSocketHandler {
	return &WebSocketHandler{
		manager: manager,
		upgrader: ws.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleConnection upgrades an authenticated request; the connection belongs
// to the request's session.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)
	if principal == nil {
		notAuthenticated(w, r)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WebSocket] Failed to upgrade connection: %v", err)
		return
	}

	log.Printf("[WebSocket] Connection upgraded for account: %s", principal.AccountID)

	client := websocket.NewClient(uuid.New().String(), principal.SessionID, conn, h.manager)
	h.manager.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

// LiveScreens are the list screens that accept search-as-you-type over the socket.
type LiveScreens struct {
	tokens          middleware.PrincipalResolver
	campaigns       *service.CampaignService
	devices         *service.DeviceService
	locations       *service.LocationService
	defaultPageSize int
}

func NewLiveScreens(tokens middleware.PrincipalResolver, campaigns *service.CampaignService, devices *service.DeviceService, locations *service.LocationService, defaultPageSize int) *LiveScreens {
	return &LiveScreens{
		tokens:          tokens,
		campaigns:       campaigns,
		devices:         devices,
		locations:       locations,
		defaultPageSize: defaultPageSize,
	}
}

func (s *LiveScreens) Searches() map[string]websocket.ScreenSearch {
	return map[string]websocket.ScreenSearch{
		"campaigns": s.withPrincipal(func(ctx context.Context, p *domain.Principal, req listing.Request) (interface{}, error) {
			return s.campaigns.List(ctx, p, req.Term)
		}),
		"locations": s.withPrincipal(func(ctx context.Context, p *domain.Principal, req listing.Request) (interface{}, error) {
			return s.locations.Search(ctx, p, req.Term)
		}),
		"devices": s.withPrincipal(func(ctx context.Context, p *domain.Principal, req listing.Request) (interface{}, error) {
			values, err := url.ParseQuery(req.Query)
			if err != nil {
				return nil, &service.ValidationError{Message: "invalid device filters"}
			}
			query := domain.ParseDeviceQuery(values, s.defaultPageSize).WithFilters(func(q *domain.DeviceQuery) {
				q.SearchTerm = req.Term
			})
			return s.devices.List(ctx, p, query)
		}),
	}
}

func (s *LiveScreens) withPrincipal(search func(ctx context.Context, p *domain.Principal, req listing.Request) (interface{}, error)) websocket.ScreenSearch {
	return func(ctx context.Context, sessionID string, req listing.Request) (interface{}, error) {
		p, err := s.tokens.Principal(ctx, sessionID)
		if err != nil {
			if unauthenticated(err) {
				return nil, sessionExpired{err}
			}
			return nil, err
		}

		rows, err := search(ctx, p, req)
		if unauthenticated(err) {
			return nil, sessionExpired{err}
		}
		return rows, err
	}
}
