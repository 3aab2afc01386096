package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"signage-console/internal/domain"
	"signage-console/pkg/seal"

	"github.com/go-kivik/kivik/v4"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
}

type CouchDBSessionRepository struct {
	db *kivik.DB
}

type sessionDoc struct {
	ID           string `json:"_id"`
	Rev          string `json:"_rev,omitempty"`
	DocType      string `json:"doc_type"`
	SessionID    string `json:"session_id"`
	AccountID    string `json:"account_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func NewSessionRepository(client *kivik.Client, dbName string) *CouchDBSessionRepository {
	return &CouchDBSessionRepository{
		db: client.DB(dbName),
	}
}

func sessionDocID(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (r *CouchDBSessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	doc, err := r.getDoc(ctx, id)
	if err != nil {
		return nil, err
	}
	return docToSession(doc), nil
}

func (r *CouchDBSessionRepository) getDoc(ctx context.Context, id string) (*sessionDoc, error) {
	row := r.db.Get(ctx, sessionDocID(id))

	var doc sessionDoc
	if err := row.ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == 404 {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &doc, nil
}

// Save upserts; the current revision is looked up so repeated saves of one session do not conflict.
func (r *CouchDBSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	doc := sessionDoc{
		ID:           sessionDocID(session.ID),
		DocType:      "session",
		SessionID:    session.ID,
		AccountID:    session.AccountID,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		CreatedAt:    session.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:    session.UpdatedAt.Format(time.RFC3339Nano),
	}

	existing, err := r.getDoc(ctx, session.ID)
	switch {
	case err == nil:
		doc.Rev = existing.Rev
	case !errors.Is(err, ErrSessionNotFound):
		return err
	}

	if _, err := r.db.Put(ctx, doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *CouchDBSessionRepository) Delete(ctx context.Context, id string) error {
	doc, err := r.getDoc(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}

	if _, err := r.db.Delete(ctx, doc.ID, doc.Rev); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func docToSession(doc *sessionDoc) *domain.Session {
	createdAt, _ := time.Parse(time.RFC3339Nano, doc.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, doc.UpdatedAt)

	return &domain.Session{
		ID:           doc.SessionID,
		AccountID:    doc.AccountID,
		AccessToken:  doc.AccessToken,
		RefreshToken: doc.RefreshToken,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// sealedSessionRepository keeps refresh tokens sealed at rest in whichever store it wraps.
type sealedSessionRepository struct {
	inner  SessionRepository
	sealer *seal.Sealer
}

func NewSealedSessionRepository(inner SessionRepository, sealer *seal.Sealer) SessionRepository {
	return &sealedSessionRepository{inner: inner, sealer: sealer}
}

func (r *sealedSessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	session, err := r.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	refresh, err := r.sealer.Open(session.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to open refresh token: %w", err)
	}
	session.RefreshToken = refresh
	return session, nil
}

func (r *sealedSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	sealed, err := r.sealer.Seal(session.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to seal refresh token: %w", err)
	}

	stored := *session
	stored.RefreshToken = sealed
	return r.inner.Save(ctx, &stored)
}

func (r *sealedSessionRepository) Delete(ctx context.Context, id string) error {
	return r.inner.Delete(ctx, id)
}
