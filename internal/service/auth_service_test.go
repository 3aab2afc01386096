package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"signage-console/internal/domain"
	"signage-console/internal/repository"
	"signage-console/pkg/jwt"
)

func TestAuthService_Login(t *testing.T) {
	access := mustToken(t, "42", time.Hour)
	noAccountToken := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9." +
		base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"x","exp":4102444800}`)) +
		".c2ln"

	tests := []struct {
		name    string
		auth    *mockAuthRepository
		wantErr error
	}{
		{
			name: "opens session",
			auth: &mockAuthRepository{pair: &domain.TokenPair{AccessToken: access, RefreshToken: "r1"}},
		},
		{
			name:    "token without account",
			auth:    &mockAuthRepository{pair: &domain.TokenPair{AccessToken: noAccountToken, RefreshToken: "r1"}},
			wantErr: jwt.ErrMissingAccount,
		},
		{
			name:    "bad credentials",
			auth:    &mockAuthRepository{authErr: &repository.APIError{Status: 401, Message: "Bad credentials"}},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := newMockSessionRepository()
			tokens := NewTokenService(sessions, tt.auth, nil)
			svc := NewAuthService(tt.auth, sessions, tokens, nil)

			session, err := svc.Login(context.Background(), &domain.LoginRequest{UserName: "ann", Password: "pw"})

			if tt.auth.authErr != nil {
				var apiErr *repository.APIError
				if !errors.As(err, &apiErr) || apiErr.Message != "Bad credentials" {
					t.Errorf("expected backend message, got %v", err)
				}
				return
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Login() error = %v, want %v", err, tt.wantErr)
				}
				if len(sessions.sessions) != 0 {
					t.Error("no session should be stored on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}

			if session.ID == "" || session.AccountID != "42" {
				t.Errorf("unexpected session %+v", session)
			}
			stored, ok := sessions.sessions[session.ID]
			if !ok || stored.RefreshToken != "r1" {
				t.Errorf("session not persisted: %+v", stored)
			}
		})
	}
}

func TestAuthService_Register(t *testing.T) {
	auth := &mockAuthRepository{}
	sessions := newMockSessionRepository()
	svc := NewAuthService(auth, sessions, NewTokenService(sessions, auth, nil), nil)

	err := svc.Register(context.Background(), &domain.RegisterRequest{UserName: "ann", Password: "a", Confirm: "b"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "confirm" {
		t.Errorf("expected confirm validation error, got %v", err)
	}

	if err := svc.Register(context.Background(), &domain.RegisterRequest{UserName: "ann", Password: "a", Confirm: "a"}); err != nil {
		t.Errorf("Register() error = %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	auth := &mockAuthRepository{}
	sessions := newMockSessionRepository()
	seedSession(sessions, mustToken(t, "42", time.Hour), "r1")
	svc := NewAuthService(auth, sessions, NewTokenService(sessions, auth, nil), nil)

	if err := svc.Logout(context.Background(), "s1"); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, ok := sessions.sessions["s1"]; ok {
		t.Error("session should be deleted")
	}
}
