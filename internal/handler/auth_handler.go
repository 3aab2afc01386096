package handler

import (
	"errors"
	"net/http"

	"signage-console/internal/domain"
	"signage-console/internal/middleware"
	"signage-console/internal/repository"
	"signage-console/internal/service"
	"signage-console/pkg/response"

	"github.com/go-playground/validator/v10"
)

const homePath = "/dashboard/home"

type LoginScreen struct {
	Screen string   `json:"screen"`
	Fields []string `json:"fields"`
}

type AuthHandler struct {
	authService *service.AuthService
	tokens      middleware.PrincipalResolver
	cookieName  string
	secure      bool
	onLogout    []func(sessionID string)
	validator   *validator.Validate
}

func NewAuthHandler(authService *service.AuthService, tokens middleware.PrincipalResolver, cookieName string, secure bool, onLogout ...func(sessionID string)) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
		cookieName:  cookieName,
		secure:      secure,
		onLogout:    onLogout,
		validator:   validator.New(),
	}
}

// Screen serves the login screen, or sends a signed-in browser to the dashboard.
func (h *AuthHandler) Screen(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if _, err := h.tokens.Principal(r.Context(), cookie.Value); err == nil {
			response.Navigate(w, nil, homePath)
			return
		}
	}

	response.Success(w, LoginScreen{
		Screen: "login",
		Fields: []string{"userName", "password"},
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeBody(r, &req, h.validator, false); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		var apiErr *repository.APIError
		if errors.As(err, &apiErr) {
			response.Error(w, http.StatusUnauthorized, apiErr.Message)
			return
		}
		writeError(w, r, err)
		return
	}

	middleware.SetSessionCookie(w, h.cookieName, session.ID, h.secure)
	response.Navigate(w, domain.LoginResponse{AccountID: session.AccountID}, homePath)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeBody(r, &req, h.validator, false); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.authService.Register(r.Context(), &req); err != nil {
		var apiErr *repository.APIError
		if errors.As(err, &apiErr) {
			response.BadRequest(w, apiErr.Message)
			return
		}
		writeError(w, r, err)
		return
	}

	response.Created(w, map[string]string{
		"message":  "Account created. Please log in.",
		"redirect": middleware.LoginPath,
	})
}

// Logout drops the server-side session and everything held for it.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var sessionID string
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		sessionID = cookie.Value
	}

	if err := h.authService.Logout(r.Context(), sessionID); err != nil {
		writeError(w, r, err)
		return
	}
	if sessionID != "" {
		for _, fn := range h.onLogout {
			fn(sessionID)
		}
	}

	middleware.ClearSessionCookie(w, h.cookieName)
	response.Navigate(w, nil, middleware.LoginPath)
}
