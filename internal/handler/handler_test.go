package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"signage-console/internal/config"
	"signage-console/internal/domain"
	"signage-console/internal/listing"
	"signage-console/internal/middleware"
	"signage-console/internal/repository"
	"signage-console/internal/service"
	"signage-console/internal/websocket"
	"signage-console/internal/workflow"
	"signage-console/pkg/jwt"
	"signage-console/pkg/response"
)

const testCookie = "sid"

// fakeBackend stands in for the signage REST API of account 42.
type fakeBackend struct {
	mu       sync.Mutex
	requests []string
	uploads  []string
	// deviceQueries holds the raw query of every devices page request.
	deviceQueries []string

	failDashboard atomic.Bool
}

func (b *fakeBackend) record(r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, r.Method+" "+r.URL.Path)
}

func (b *fakeBackend) saw(req string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.requests {
		if r == req {
			return true
		}
	}
	return false
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	token, err := jwt.GenerateToken("42", time.Hour, "backend-secret")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	campaigns := `[
		{"campaignId":"c1","name":"Summer","campaignStatus":"READY","numberOfDevices":1},
		{"campaignId":"c2","name":"Winter","campaignStatus":"RUNNING","numberOfDevices":3}
	]`

	mux := http.NewServeMux()
	mux.HandleFunc("POST /authenticate", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"message":"Bad credentials"}`)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"accessToken": token, "refreshToken": "r1"})
	})
	mux.HandleFunc("GET /account/42/dashboard", func(w http.ResponseWriter, r *http.Request) {
		if b.failDashboard.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			io.WriteString(w, `{"message":"Dashboard unavailable"}`)
			return
		}
		io.WriteString(w, `{"numberOfActiveDevices":3,"numberOfLocations":2,"storageUsage":"0.9","campaigns":null}`)
	})
	mux.HandleFunc("GET /account/42/campaign", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, campaigns)
	})
	mux.HandleFunc("POST /account/42/campaign", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"campaignId":"c9"}`)
	})
	mux.HandleFunc("POST /account/42/campaign/c1/play", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"campaignId":"c1","campaignStatus":"RUNNING"}`)
	})
	mux.HandleFunc("DELETE /account/42/campaign/c9", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /account/42/devices", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.deviceQueries = append(b.deviceQueries, r.URL.RawQuery)
		b.mu.Unlock()
		io.WriteString(w, `{"content":[{"id":7,"name":"Lobby screen","active":true,"heartbeat":"2026-10-16T09:30:00","locationName":"Lobby"}],"totalPages":1}`)
	})
	mux.HandleFunc("GET /account/42/filter", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"locationNames":["Lobby","Cafe"],"campaignNames":["Summer"],"campaignStatuses":["RUNNING"]}`)
	})
	mux.HandleFunc("POST /account/42/campaign/c1/media", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		file.Close()
		b.mu.Lock()
		b.uploads = append(b.uploads, header.Filename+"@"+r.FormValue("duration"))
		b.mu.Unlock()
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		mux.ServeHTTP(w, r)
	})
}

type testEnv struct {
	router    http.Handler
	backend   *fakeBackend
	live      map[string]websocket.ScreenSearch
	loggedOut []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{backend: &fakeBackend{}}
	srv := httptest.NewServer(env.backend.handler(t))
	t.Cleanup(srv.Close)

	sessions, err := repository.OpenSQLiteSessions(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteSessions() error = %v", err)
	}
	t.Cleanup(func() { sessions.Close() })
	if err := sessions.InitSchema(t.Context()); err != nil {
		t.Fatalf("InitSchema() error = %v", err)
	}

	backend := repository.NewBackendWithClient(srv.URL, srv.Client())
	authRepo := repository.NewAuthRepository(backend)
	campaignRepo := repository.NewCampaignRepository(backend)

	tokens := service.NewTokenService(sessions, authRepo, nil)
	authService := service.NewAuthService(authRepo, sessions, tokens, nil)
	campaignService := service.NewCampaignService(campaignRepo, nil)
	mediaService := service.NewMediaService(repository.NewMediaRepository(backend), campaignRepo, 2, 5, nil)
	deviceService := service.NewDeviceService(repository.NewDeviceRepository(backend))
	locationService := service.NewLocationService(repository.NewLocationRepository(backend))
	dashboardService := service.NewDashboardService(repository.NewDashboardRepository(backend))

	uploadFlow := workflow.NewUploadFlow(mediaService, nil)
	wizardFlow := workflow.NewCreateCampaignFlow(campaignService, mediaService, nil)
	assignFlow := workflow.NewAssignDevicesFlow(deviceService, campaignService, nil)

	manager := websocket.NewManager(2, time.Second, time.Minute, 50*time.Second)

	handlers := &Handlers{
		Auth: NewAuthHandler(authService, tokens, testCookie, false, campaignService.Forget, dashboardService.Forget, func(sessionID string) {
			env.loggedOut = append(env.loggedOut, sessionID)
		}),
		Dashboard: NewDashboardHandler(dashboardService),
		Devices:   NewDeviceHandler(deviceService, 10),
		Locations: NewLocationHandler(locationService),
		Campaigns: NewCampaignHandler(campaignService),
		Media:     NewMediaHandler(mediaService, campaignService, uploadFlow, 1<<20),
		Wizard:    NewWizardHandler(wizardFlow, 1<<20),
		Assign:    NewAssignHandler(assignFlow),
		WebSocket: NewWebSocketHandler(manager, 1024, 1024),
	}

	env.live = NewLiveScreens(tokens, campaignService, deviceService, locationService, 10).Searches()
	env.router = NewRouter(handlers, middleware.SessionMiddleware(tokens, testCookie), config.CORSConfig{
		AllowedOrigins: "*",
		AllowedMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowedHeaders: "Content-Type",
	})
	return env
}

func (e *testEnv) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"userName":"ana","password":"secret"}`))
	rec := e.do(req, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookie {
			return c
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) response.Response {
	t.Helper()
	var body struct {
		response.Response
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body %q: %v", rec.Body.String(), err)
	}
	if data != nil && len(body.Data) > 0 {
		if err := json.Unmarshal(body.Data, data); err != nil {
			t.Fatalf("invalid data %s: %v", body.Data, err)
		}
	}
	return body.Response
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"userName":"ana","password":"secret"}`))
	rec := env.do(req, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var data struct {
		AccountID string `json:"accountId"`
	}
	body := decodeEnvelope(t, rec, &data)
	if body.Redirect != "/dashboard/home" {
		t.Errorf("redirect = %q, want /dashboard/home", body.Redirect)
	}
	if data.AccountID != "42" {
		t.Errorf("accountId = %q, want 42", data.AccountID)
	}
	if strings.Contains(rec.Body.String(), "r1") {
		t.Error("refresh token leaked into the response")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || !cookies[0].HttpOnly || cookies[0].Value == "" {
		t.Fatalf("cookies = %+v, want one HttpOnly session cookie", cookies)
	}
}

func TestLogin_Failures(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{name: "bad credentials", body: `{"userName":"ana","password":"nope"}`, wantStatus: http.StatusUnauthorized, wantError: "Bad credentials"},
		{name: "missing password", body: `{"userName":"ana"}`, wantStatus: http.StatusBadRequest},
		{name: "not json", body: `user=ana`, wantStatus: http.StatusBadRequest, wantError: "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body)), nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := decodeEnvelope(t, rec, nil)
			if tt.wantError != "" && body.Error != tt.wantError {
				t.Errorf("error = %q, want %q", body.Error, tt.wantError)
			}
			if len(rec.Result().Cookies()) != 0 {
				t.Error("failed login set a cookie")
			}
		})
	}
}

func TestProtectedRoutes_WithoutSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/dashboard/campaigns", nil), nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Errorf("GET status = %d location = %q, want 303 to /", rec.Code, rec.Header().Get("Location"))
	}

	rec = env.do(httptest.NewRequest(http.MethodPost, "/dashboard/campaigns/c1/actions/play", nil), &http.Cookie{Name: testCookie, Value: "unknown"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("POST status = %d, want 401", rec.Code)
	}
	if body := decodeEnvelope(t, rec, nil); body.Redirect != "/" {
		t.Errorf("redirect = %q, want /", body.Redirect)
	}
	if env.backend.saw("POST /account/42/campaign/c1/play") {
		t.Error("action reached the backend without a session")
	}
}

func TestDashboardHome_KeepsLastGoodSummary(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	type snapshot struct {
		Status string `json:"status"`
		Error  string `json:"error"`
		Data   *struct {
			StoragePercent float64           `json:"storagePercent"`
			StorageTier    string            `json:"storageTier"`
			Campaigns      []json.RawMessage `json:"campaigns"`
		} `json:"data"`
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/dashboard/home", nil), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var first snapshot
	decodeEnvelope(t, rec, &first)
	if first.Status != "success" || first.Data == nil {
		t.Fatalf("snapshot = %+v, want success with data", first)
	}
	if first.Data.StoragePercent != 90 || first.Data.StorageTier != "critical" {
		t.Errorf("storage = %v/%s, want 90/critical", first.Data.StoragePercent, first.Data.StorageTier)
	}
	if first.Data.Campaigns == nil {
		t.Error("campaigns should be an empty list, not null")
	}

	env.backend.failDashboard.Store(true)
	rec = env.do(httptest.NewRequest(http.MethodGet, "/dashboard/home", nil), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status after failure = %d, body = %s", rec.Code, rec.Body.String())
	}
	var second snapshot
	decodeEnvelope(t, rec, &second)
	if second.Status != "error" || second.Error == "" {
		t.Errorf("snapshot = %+v, want error status", second)
	}
	if second.Data == nil || second.Data.StoragePercent != 90 {
		t.Error("failed refresh dropped the last good summary")
	}
}

func TestDashboardHome_FirstLoadFailure(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)
	env.backend.failDashboard.Store(true)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/dashboard/home", nil), cookie)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestCampaignActions(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/dashboard/campaigns?search=summer", nil), cookie)
	var list struct {
		Rows []struct {
			ID      string   `json:"campaignId"`
			Actions []string `json:"actions"`
		} `json:"rows"`
	}
	decodeEnvelope(t, rec, &list)
	if len(list.Rows) != 1 || list.Rows[0].ID != "c1" {
		t.Fatalf("rows = %+v, want only c1", list.Rows)
	}

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "play ready campaign", path: "/dashboard/campaigns/c1/actions/play", wantStatus: http.StatusOK},
		{name: "deploy is not offered once running", path: "/dashboard/campaigns/c1/actions/deploy", wantStatus: http.StatusConflict},
		{name: "unknown action", path: "/dashboard/campaigns/c1/actions/archive", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(httptest.NewRequest(http.MethodPost, tt.path, nil), cookie)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}

	if env.backend.saw("POST /account/42/campaign/c1/deploy") {
		t.Error("a disallowed action reached the backend")
	}
}

func TestWizard_OpenAndCancel(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	rec := env.do(httptest.NewRequest(http.MethodPost, "/dashboard/campaigns/wizard", nil), cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("open status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var view workflow.WizardView
	decodeEnvelope(t, rec, &view)
	if view.CampaignID != "c9" || view.State != workflow.StateReady {
		t.Fatalf("view = %+v, want ready wizard for c9", view)
	}

	rec = env.do(httptest.NewRequest(http.MethodPost, "/dashboard/campaigns/wizard/c9/cancel", nil), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body := decodeEnvelope(t, rec, nil); body.Redirect != "/dashboard/campaigns" {
		t.Errorf("redirect = %q, want /dashboard/campaigns", body.Redirect)
	}
	if !env.backend.saw("DELETE /account/42/campaign/c9") {
		t.Error("cancel did not delete the provisioned campaign")
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/dashboard/campaigns/wizard/c9", nil), cookie)
	if rec.Code != http.StatusNotFound {
		t.Errorf("view after cancel status = %d, want 404", rec.Code)
	}
}

func TestMediaUpload(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for _, name := range []string{"a.png", "b.mp4"} {
		part, _ := form.CreateFormFile("file", name)
		part.Write([]byte("content of " + name))
	}
	form.WriteField("duration", "7")
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/dashboard/campaigns/c1/media/upload/files", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := env.do(req, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var view workflow.UploadView
	decodeEnvelope(t, rec, &view)
	if len(view.Batch.Rows) != 2 || !view.Batch.CanFinish {
		t.Fatalf("batch = %+v, want two rows and finishable", view.Batch)
	}
	if len(env.backend.uploads) != 2 {
		t.Errorf("backend uploads = %v, want 2", env.backend.uploads)
	}
	for _, u := range env.backend.uploads {
		if !strings.HasSuffix(u, "@7") {
			t.Errorf("upload %q did not carry duration 7", u)
		}
	}

	rec = env.do(httptest.NewRequest(http.MethodPost, "/dashboard/campaigns/c1/media/upload/finish", nil), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("finish status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body := decodeEnvelope(t, rec, nil); body.Redirect != "/dashboard/campaigns/c1" {
		t.Errorf("redirect = %q, want /dashboard/campaigns/c1", body.Redirect)
	}
}

func TestMediaUpload_NoFiles(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	form.WriteField("duration", "5")
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/dashboard/campaigns/c1/media/upload/files", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := env.do(req, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	rec := env.do(httptest.NewRequest(http.MethodPost, "/logout", nil), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body := decodeEnvelope(t, rec, nil); body.Redirect != "/" {
		t.Errorf("redirect = %q, want /", body.Redirect)
	}
	if len(env.loggedOut) != 1 || env.loggedOut[0] != cookie.Value {
		t.Errorf("logout hooks saw %v, want [%s]", env.loggedOut, cookie.Value)
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/dashboard/home", nil), cookie)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("after logout status = %d, want 303", rec.Code)
	}
}

func TestLoginScreen(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil), nil)
	var screen LoginScreen
	decodeEnvelope(t, rec, &screen)
	if screen.Screen != "login" {
		t.Errorf("screen = %q, want login", screen.Screen)
	}

	cookie := env.login(t)
	rec = env.do(httptest.NewRequest(http.MethodGet, "/", nil), cookie)
	if body := decodeEnvelope(t, rec, nil); body.Redirect != "/dashboard/home" {
		t.Errorf("signed-in redirect = %q, want /dashboard/home", body.Redirect)
	}
}

func TestUnknownRouteRedirects(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/nowhere", nil), nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Errorf("status = %d location = %q, want 303 to /", rec.Code, rec.Header().Get("Location"))
	}
}

type resolverFunc func(ctx context.Context, sessionID string) (*domain.Principal, error)

func (f resolverFunc) Principal(ctx context.Context, sessionID string) (*domain.Principal, error) {
	return f(ctx, sessionID)
}

func TestLiveScreens_ExpiredSessionRedirects(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "token layer", err: service.ErrNotAuthenticated},
		{name: "backend 401", err: fmt.Errorf("load principal: %w", &repository.APIError{Status: http.StatusUnauthorized, Message: "Unauthorized"})},
	}

	for _, tt := range tests {
		expired := resolverFunc(func(ctx context.Context, sessionID string) (*domain.Principal, error) {
			return nil, tt.err
		})
		screens := NewLiveScreens(expired, nil, nil, nil, 10).Searches()

		for _, name := range []string{"campaigns", "devices", "locations"} {
			t.Run(tt.name+"/"+name, func(t *testing.T) {
				_, err := screens[name](t.Context(), "s1", listing.Request{Term: "term"})

				var redirect websocket.RedirectError
				if !errors.As(err, &redirect) {
					t.Fatalf("error = %v, want a redirect", err)
				}
				if redirect.RedirectTo() != "/" {
					t.Errorf("RedirectTo() = %q, want /", redirect.RedirectTo())
				}
				if !errors.Is(err, tt.err) {
					t.Error("redirect should still wrap the original error")
				}
			})
		}
	}
}

func TestLiveScreens_BackendUnauthorizedDuringSearch(t *testing.T) {
	principal := resolverFunc(func(ctx context.Context, sessionID string) (*domain.Principal, error) {
		return &domain.Principal{SessionID: sessionID, AccountID: "42", AccessToken: "revoked"}, nil
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"Token revoked"}`)
	}))
	t.Cleanup(srv.Close)

	backend := repository.NewBackendWithClient(srv.URL, srv.Client())
	locations := service.NewLocationService(repository.NewLocationRepository(backend))
	screens := NewLiveScreens(principal, nil, nil, locations, 10).Searches()

	_, err := screens["locations"](t.Context(), "s1", listing.Request{Term: "lobby"})

	var redirect websocket.RedirectError
	if !errors.As(err, &redirect) {
		t.Fatalf("error = %v, want a redirect", err)
	}
}

func TestLiveScreens_DeviceSearchKeepsFilters(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	rows, err := env.live["devices"](t.Context(), cookie.Value, listing.Request{
		Term:  "lobby",
		Query: "locationNames=Lobby&locationNames=Cafe&campaignStatuses=RUNNING&active=true&page=3&size=50&searchTerms=old",
	})
	if err != nil {
		t.Fatalf("devices search error = %v", err)
	}

	env.backend.mu.Lock()
	queries := append([]string(nil), env.backend.deviceQueries...)
	env.backend.mu.Unlock()
	if len(queries) != 1 {
		t.Fatalf("device requests = %v, want 1", queries)
	}

	sent, err := url.ParseQuery(queries[0])
	if err != nil {
		t.Fatalf("backend query %q: %v", queries[0], err)
	}
	want := url.Values{
		"locationNames":    {"Lobby", "Cafe"},
		"campaignStatuses": {"RUNNING"},
		"searchTerms":      {"lobby"},
		"active":           {"true"},
		"page":             {"0"},
		"size":             {"50"},
	}
	if !reflect.DeepEqual(sent, want) {
		t.Errorf("backend query = %v, want %v", sent, want)
	}

	view, ok := rows.(*domain.DevicesView)
	if !ok {
		t.Fatalf("rows = %T, want *domain.DevicesView", rows)
	}
	if view.Query.Page != 0 || view.Query.Size != 50 || view.Query.SearchTerm != "lobby" {
		t.Errorf("view query = %+v", view.Query)
	}
	if len(view.Devices) != 1 || view.Devices[0].HeartbeatDisplay != "2026-10-16 09:30:00" {
		t.Errorf("devices = %+v, want one row with a formatted heartbeat", view.Devices)
	}
}

func TestLiveScreens_DeviceSearchRejectsBadQuery(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	_, err := env.live["devices"](t.Context(), cookie.Value, listing.Request{Term: "x", Query: "size=%zz"})

	var validationErr *service.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("error = %v, want a validation error", err)
	}
	if env.backend.saw("GET /account/42/devices") {
		t.Error("a malformed filter query should not reach the backend")
	}
}
