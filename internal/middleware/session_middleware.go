package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"signage-console/internal/domain"
	"signage-console/internal/service"
	"signage-console/pkg/response"
)

type contextKey string

const principalKey contextKey = "principal"

// LoginPath is where unauthenticated browsers are sent.
const LoginPath = "/"

type PrincipalResolver interface {
	Principal(ctx context.Context, sessionID string) (*domain.Principal, error)
}

// SessionMiddleware resolves the session cookie into a Principal with a valid
// access token. Without one, GET requests are redirected to the login screen
// and other methods get 401 with the login path. The cookie is only cleared
// once the session itself is gone; a failed refresh leaves it for a retry.
func SessionMiddleware(tokens PrincipalResolver, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sessionID string
			if cookie, err := r.Cookie(cookieName); err == nil {
				sessionID = cookie.Value
			}

			principal, err := tokens.Principal(r.Context(), sessionID)
			if err != nil {
				if !errors.Is(err, service.ErrNotAuthenticated) {
					log.Printf("[SESSION] failed to resolve session: %v", err)
				}
				if errors.Is(err, service.ErrSessionGone) {
					ClearSessionCookie(w, cookieName)
				}
				if r.Method == http.MethodGet {
					http.Redirect(w, r, LoginPath, http.StatusSeeOther)
					return
				}
				response.Unauthorized(w, "Not authenticated", LoginPath)
				return
			}

			if info, ok := r.Context().Value(requestInfoKey).(*requestInfo); ok {
				info.accountID = principal.AccountID
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetPrincipal(r *http.Request) *domain.Principal {
	principal, ok := r.Context().Value(principalKey).(*domain.Principal)
	if !ok {
		return nil
	}
	return principal
}

// WithPrincipal is used by tests and by handlers that resolve the session themselves.
func WithPrincipal(ctx context.Context, principal *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

func SetSessionCookie(w http.ResponseWriter, name, sessionID string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
