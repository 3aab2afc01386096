package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"signage-console/internal/config"
	"signage-console/internal/handler"
	"signage-console/internal/middleware"
	"signage-console/internal/repository"
	"signage-console/internal/service"
	"signage-console/internal/websocket"
	"signage-console/internal/workflow"
	"signage-console/pkg/seal"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Logging.SlogLevel()}))
	slog.SetDefault(logger)

	sealer, err := seal.New(cfg.Session.SealKey)
	if err != nil {
		log.Fatalf("Failed to set up session sealing: %v", err)
	}

	sessionStore, closeStore := openSessionStore(cfg)
	defer closeStore()
	sessionRepo := repository.NewSealedSessionRepository(sessionStore, sealer)

	backend := repository.NewBackend(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	authRepo := repository.NewAuthRepository(backend)
	campaignRepo := repository.NewCampaignRepository(backend)
	mediaRepo := repository.NewMediaRepository(backend)
	deviceRepo := repository.NewDeviceRepository(backend)
	locationRepo := repository.NewLocationRepository(backend)
	dashboardRepo := repository.NewDashboardRepository(backend)

	// WebSocket Manager
	wsManager := websocket.NewManager(
		cfg.WebSocket.MaxConnPerSession,
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
		cfg.WebSocket.PingPeriod,
	)
	go wsManager.Run()

	tokenService := service.NewTokenService(sessionRepo, authRepo, logger)
	authService := service.NewAuthService(authRepo, sessionRepo, tokenService, logger)
	campaignService := service.NewCampaignService(campaignRepo, logger)
	mediaService := service.NewMediaService(mediaRepo, campaignRepo, cfg.Media.UploadConcurrency, cfg.Media.DefaultDuration, logger)
	deviceService := service.NewDeviceService(deviceRepo)
	locationService := service.NewLocationService(locationRepo)
	dashboardService := service.NewDashboardService(dashboardRepo)

	uploadFlow := workflow.NewUploadFlow(mediaService, logger)
	wizardFlow := workflow.NewCreateCampaignFlow(campaignService, mediaService, logger)
	assignFlow := workflow.NewAssignDevicesFlow(deviceService, campaignService, logger)

	liveScreens := handler.NewLiveScreens(tokenService, campaignService, deviceService, locationService, cfg.Listing.DefaultPageSize)
	wsManager.SetMessageHandler(websocket.NewSearchHandler(wsManager, cfg.Listing.SearchDebounce, liveScreens.Searches()))

	onLogout := []func(sessionID string){
		campaignService.Forget,
		dashboardService.Forget,
		uploadFlow.DropSession,
		wizardFlow.DropSession,
		assignFlow.DropSession,
		func(sessionID string) {
			wsManager.SendToSession(sessionID, websocket.SessionClosedMessage(middleware.LoginPath))
		},
	}

	handlers := &handler.Handlers{
		Auth:      handler.NewAuthHandler(authService, tokenService, cfg.Session.CookieName, cfg.Session.Secure, onLogout...),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Devices:   handler.NewDeviceHandler(deviceService, cfg.Listing.DefaultPageSize),
		Locations: handler.NewLocationHandler(locationService),
		Campaigns: handler.NewCampaignHandler(campaignService),
		Media:     handler.NewMediaHandler(mediaService, campaignService, uploadFlow, cfg.Media.MaxUploadBytes),
		Wizard:    handler.NewWizardHandler(wizardFlow, cfg.Media.MaxUploadBytes),
		Assign:    handler.NewAssignHandler(assignFlow),
		WebSocket: handler.NewWebSocketHandler(wsManager, cfg.WebSocket.ReadBufferSize, cfg.WebSocket.WriteBufferSize),
	}

	r := handler.NewRouter(handlers, middleware.SessionMiddleware(tokenService, cfg.Session.CookieName), cfg.CORS)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// Media uploads stream through to the backend within one request.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting Signage Console on %s (env: %s)", addr, cfg.Server.Env)
		log.Printf("Backend API at %s, sessions in %s", cfg.Backend.BaseURL, cfg.Session.Store)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	wsManager.Shutdown()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}

func openSessionStore(cfg *config.Config) (repository.SessionRepository, func()) {
	if cfg.Session.Store == config.StoreCouchDB {
		return openCouchDB(cfg), func() {}
	}

	store, err := repository.OpenSQLiteSessions(cfg.SQLite.Path)
	if err != nil {
		log.Fatalf("Failed to open session database: %v", err)
	}
	if err := store.InitSchema(context.Background()); err != nil {
		log.Fatalf("Failed to initialize session schema: %v", err)
	}
	log.Printf("Session store: sqlite at %s", cfg.SQLite.Path)

	return store, func() { store.Close() }
}

func openCouchDB(cfg *config.Config) repository.SessionRepository {
	couchURL := fmt.Sprintf("http://%s:%s@%s:%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
	)

	client, err := kivik.New("couch", couchURL)
	if err != nil {
		log.Fatalf("Failed to connect to CouchDB: %v", err)
	}

	exists, err := client.DBExists(context.Background(), cfg.Database.Name)
	if err != nil {
		log.Fatalf("Failed to check database existence: %v", err)
	}

	if !exists {
		if err := client.CreateDB(context.Background(), cfg.Database.Name); err != nil {
			log.Fatalf("Failed to create database: %v", err)
		}
		log.Printf("Created database: %s", cfg.Database.Name)
	}

	log.Printf("Session store: CouchDB at %s:%s", cfg.Database.Host, cfg.Database.Port)
	return repository.NewSessionRepository(client, cfg.Database.Name)
}
