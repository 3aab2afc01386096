package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"signage-console/internal/domain"

	_ "modernc.org/sqlite"
)

// SQLiteSessionRepository is the single-node session store.
type SQLiteSessionRepository struct {
	db *sql.DB
}

// OpenSQLiteSessions opens the database at path, creating directories as needed.
func OpenSQLiteSessions(path string) (*SQLiteSessionRepository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &SQLiteSessionRepository{db: db}, nil
}

func (r *SQLiteSessionRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// InitSchema ensures the sessions table exists.
func (r *SQLiteSessionRepository) InitSchema(ctx context.Context) error {
	stmt := `CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		access_token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (r *SQLiteSessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, access_token, refresh_token, created_at, updated_at
		FROM sessions WHERE id = ?`, id)

	var (
		session              domain.Session
		createdAt, updatedAt string
	)
	if err := row.Scan(&session.ID, &session.AccountID, &session.AccessToken, &session.RefreshToken, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("query session: %w", err)
	}

	session.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	session.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &session, nil
}

func (r *SQLiteSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, account_id, access_token, refresh_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			account_id = excluded.account_id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			updated_at = excluded.updated_at`,
		session.ID,
		session.AccountID,
		session.AccessToken,
		session.RefreshToken,
		session.CreatedAt.UTC().Format(time.RFC3339Nano),
		session.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SQLiteSessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
