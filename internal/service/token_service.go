package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"signage-console/internal/domain"
	"signage-console/internal/repository"
	"signage-console/pkg/jwt"

	"golang.org/x/sync/singleflight"
)

// TokenService owns the access token of every session. Callers never read
// tokens from the store directly; they ask for a Principal.
type TokenService struct {
	sessions repository.SessionRepository
	auth     repository.AuthRepository
	group    singleflight.Group
	now      func() time.Time
	Logger   *slog.Logger
}

func NewTokenService(sessions repository.SessionRepository, auth repository.AuthRepository, logger *slog.Logger) *TokenService {
	return &TokenService{
		sessions: sessions,
		auth:     auth,
		now:      time.Now,
		Logger:   logger,
	}
}

func (s *TokenService) GetValidAccessToken(ctx context.Context, sessionID string) (string, error) {
	principal, err := s.Principal(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return principal.AccessToken, nil
}

// Principal returns the session's account with a token that is not expired
// right now, refreshing it first if needed.
func (s *TokenService) Principal(ctx context.Context, sessionID string) (*domain.Principal, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	token := session.AccessToken
	if token == "" || jwt.IsExpired(token, s.now()) {
		token, err = s.refresh(ctx, sessionID)
		if err != nil {
			return nil, err
		}
	}

	return &domain.Principal{
		SessionID:   session.ID,
		AccountID:   session.AccountID,
		AccessToken: token,
	}, nil
}

// Invalidate drops the session; later lookups report ErrSessionGone.
func (s *TokenService) Invalidate(ctx context.Context, sessionID string) error {
	s.group.Forget(sessionID)
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *TokenService) load(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, ErrSessionGone
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionGone
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.AccountID == "" {
		return nil, ErrSessionGone
	}
	return session, nil
}

// refresh shares one in-flight refresh per session among all concurrent callers.
// The new token is persisted before any waiter is released.
func (s *TokenService) refresh(ctx context.Context, sessionID string) (string, error) {
	ch := s.group.DoChan(sessionID, func() (interface{}, error) {
		// Detached so one caller giving up does not fail the others.
		return s.doRefresh(context.WithoutCancel(ctx), sessionID)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (s *TokenService) doRefresh(ctx context.Context, sessionID string) (string, error) {
	logger := resolveLogger(s.Logger)

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return "", err
	}

	// A refresh that finished just before this one started already did the work.
	if session.AccessToken != "" && !jwt.IsExpired(session.AccessToken, s.now()) {
		return session.AccessToken, nil
	}

	if session.RefreshToken == "" {
		return "", ErrSessionGone
	}

	token, err := s.auth.Refresh(ctx, session.RefreshToken)
	if err != nil {
		logger.Warn("access token refresh failed",
			"event", "token_refresh_failed",
			"module", "service/token",
			"session_id", sessionID,
			"error", err.Error(),
		)
		return "", ErrNotAuthenticated
	}

	session.AccessToken = token
	session.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return "", fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	logger.Debug("access token refreshed",
		"event", "token_refreshed",
		"module", "service/token",
		"session_id", sessionID,
	)
	return token, nil
}
