package handler

import (
	"net/http"

	"signage-console/internal/config"
	"signage-console/internal/middleware"
	"signage-console/pkg/response"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Auth      *AuthHandler
	Dashboard *DashboardHandler
	Devices   *DeviceHandler
	Locations *LocationHandler
	Campaigns *CampaignHandler
	Media     *MediaHandler
	Wizard    *WizardHandler
	Assign    *AssignHandler
	WebSocket *WebSocketHandler
}

// NewRouter mounts the public login routes and the session-protected dashboard.
func NewRouter(h *Handlers, session func(http.Handler) http.Handler, cors config.CORSConfig) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(
		cors.AllowedOrigins,
		cors.AllowedMethods,
		cors.AllowedHeaders,
	))

	r.HandleFunc("/", h.Auth.Screen).Methods("GET", "OPTIONS")
	r.HandleFunc("/login", h.Auth.Login).Methods("POST", "OPTIONS")
	r.HandleFunc("/register", h.Auth.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/logout", h.Auth.Logout).Methods("POST", "OPTIONS")
	r.HandleFunc("/health", healthHandler).Methods("GET")

	ws := r.PathPrefix("/ws").Subrouter()
	ws.Use(session)
	ws.HandleFunc("/search", h.WebSocket.HandleConnection)

	dashboard := r.PathPrefix("/dashboard").Subrouter()
	dashboard.Use(session)

	dashboard.HandleFunc("/home", h.Dashboard.Home).Methods("GET", "OPTIONS")

	dashboard.HandleFunc("/devices", h.Devices.List).Methods("GET", "OPTIONS")
	dashboard.HandleFunc("/devices/filters", h.Devices.Filters).Methods("GET", "OPTIONS")

	dashboard.HandleFunc("/locations", h.Locations.List).Methods("GET", "OPTIONS")

	// Wizard routes are registered before /campaigns/{id} so "wizard" is never read as an id.
	dashboard.HandleFunc("/campaigns/wizard", h.Wizard.Open).Methods("POST", "OPTIONS")
	dashboard.HandleFunc("/campaigns/wizard/{id}", h.Wizard.View).Methods("GET", "OPTIONS")
	dashboard.HandleFunc("/campaigns/wizard/{id}/media", h.Wizard.Upload).Methods("POST", "OPTIONS")
	dashboard.HandleFunc("/campaigns/wizard/{id}/save", h.Wizard.Save).Methods("POST", "OPTIONS")
	dashboard.HandleFunc("/campaigns/wizard/{id}/cancel", h.Wizard.Cancel).Methods("POST", "OPTIONS")

	dashboard.HandleFunc("/campaigns", h.Campaigns.List).Methods("GET", "OPTIONS")
	dashboard.HandleFunc("/campaigns/{id}", h.Campaigns.Detail).Methods("GET", "OPTIONS")
	dashboard.HandleFunc("/campaigns/{id}", h.Campaigns.Delete).Methods("DELETE", "OPTIONS")
	dashboard.HandleFunc("/campaigns/{id}/name", h.Campaigns.Rename).Methods("PATCH", "OPTIONS")
	dashboard.HandleFunc("/campaigns/{id}/devices", h.Campaigns.AssignDevices).Methods("PUT", "OPTIONS")
	dashboard.HandleFunc("/campaigns/{id}/actions/{action}", h.Campaigns.Act).Methods("POST", "OPTIONS")

	dashboard.HandleFunc("/campaigns/{id}/media/upload", h.Media.OpenUpload).Methods("POST", "OPTIONS")
	dashboard.HandleFunc("/campaigns/{id}/media/upload", h.Media.UploadStatus).Methods("GET", "OPTIONS")
	dashboard.HandleFunc("/campaigns/{id}/media/upload", h.Media.CloseUpload).Methods("DELETE", "OPTIONS")
	dashboard.HandleFunc("/campaigns/{id}/media/upload/files", h.Media.Upload).Methods("POST", "OPTIONS")
	dashboard.HandleFunc("/campaigns/{id}/media/upload/finish", h.Media.FinishUpload).Methods("POST", "OPTIONS")
	dashboard.HandleFunc("/campaigns/{id}/media/{mediaId}", h.Media.Update).Methods("PUT", "OPTIONS")

	dashboard.HandleFunc("/campaigns/{id}/assign", h.Assign.Open).Methods("POST", "OPTIONS")
	dashboard.HandleFunc("/campaigns/{id}/assign", h.Assign.View).Methods("GET", "OPTIONS")
	dashboard.HandleFunc("/campaigns/{id}/assign", h.Assign.Close).Methods("DELETE", "OPTIONS")
	dashboard.HandleFunc("/campaigns/{id}/assign/toggle", h.Assign.Toggle).Methods("POST", "OPTIONS")
	dashboard.HandleFunc("/campaigns/{id}/assign/filter", h.Assign.Filter).Methods("POST", "OPTIONS")
	dashboard.HandleFunc("/campaigns/{id}/assign/clear", h.Assign.Clear).Methods("POST", "OPTIONS")
	dashboard.HandleFunc("/campaigns/{id}/assign/submit", h.Assign.Submit).Methods("POST", "OPTIONS")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{
		"status":  "healthy",
		"service": "signage-console",
	})
}
