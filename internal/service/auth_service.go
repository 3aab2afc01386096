package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"signage-console/internal/domain"
	"signage-console/internal/repository"
	"signage-console/pkg/jwt"

	"github.com/google/uuid"
)

type AuthService struct {
	auth     repository.AuthRepository
	sessions repository.SessionRepository
	tokens   *TokenService
	Logger   *slog.Logger
}

func NewAuthService(auth repository.AuthRepository, sessions repository.SessionRepository, tokens *TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		auth:     auth,
		sessions: sessions,
		tokens:   tokens,
		Logger:   logger,
	}
}

// Login authenticates against the backend and opens a new server-side session.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.Session, error) {
	pair, err := s.auth.Authenticate(ctx, domain.Credentials{
		UserName: req.UserName,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	accountID, err := jwt.AccountIDFromToken(pair.AccessToken)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &domain.Session{
		ID:           uuid.New().String(),
		AccountID:    accountID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	resolveLogger(s.Logger).Info("session opened",
		"event", "session_opened",
		"module", "service/auth",
		"account_id", accountID,
	)
	return session, nil
}

func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) error {
	if req.Password != req.Confirm {
		return &ValidationError{Field: "confirm", Message: "Passwords do not match"}
	}

	return s.auth.Register(ctx, domain.Credentials{
		UserName: req.UserName,
		Password: req.Password,
	})
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.tokens.Invalidate(ctx, sessionID)
}
