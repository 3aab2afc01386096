package repository

import (
	"context"
	"errors"
	"net/http"

	"signage-console/internal/domain"
)

type AuthRepository interface {
	Authenticate(ctx context.Context, creds domain.Credentials) (*domain.TokenPair, error)
	Register(ctx context.Context, creds domain.Credentials) error
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

type authRepository struct {
	backend *Backend
}

func NewAuthRepository(backend *Backend) AuthRepository {
	return &authRepository{backend: backend}
}

func (r *authRepository) Authenticate(ctx context.Context, creds domain.Credentials) (*domain.TokenPair, error) {
	body, err := jsonBody(creds)
	if err != nil {
		return nil, err
	}

	var pair domain.TokenPair
	if _, err := r.backend.call(ctx, request{
		method:      http.MethodPost,
		path:        "/authenticate",
		body:        body,
		contentType: "application/json",
	}, &pair, "Login failed"); err != nil {
		return nil, err
	}

	if pair.AccessToken == "" {
		return nil, errors.New("login response did not include an access token")
	}
	return &pair, nil
}

func (r *authRepository) Register(ctx context.Context, creds domain.Credentials) error {
	body, err := jsonBody(creds)
	if err != nil {
		return err
	}

	_, err = r.backend.call(ctx, request{
		method:      http.MethodPost,
		path:        "/register",
		body:        body,
		contentType: "application/json",
	}, nil, "Registration failed")
	return err
}

func (r *authRepository) Refresh(ctx context.Context, refreshToken string) (string, error) {
	body, err := jsonBody(domain.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", err
	}

	var out domain.RefreshResponse
	if _, err := r.backend.call(ctx, request{
		method:      http.MethodPost,
		path:        "/refresh",
		body:        body,
		contentType: "application/json",
	}, &out, "Failed to refresh session"); err != nil {
		return "", err
	}

	if out.AccessToken == "" {
		return "", errors.New("refresh response did not include an access token")
	}
	return out.AccessToken, nil
}
