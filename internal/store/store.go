// Package store persists the durable user identities produced by the
// authorization flow in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/brizzai/auth-gateway/internal/auth/models"
	"github.com/brizzai/auth-gateway/internal/config"
	uuid "github.com/hashicorp/go-uuid"
	_ "modernc.org/sqlite"
)

const timeFormat = time.RFC3339Nano

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	provider_id TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL DEFAULT '',
	display_name TEXT NOT NULL DEFAULT '',
	access_token TEXT NOT NULL,
	refresh_token TEXT NOT NULL,
	token_expires_at TEXT NOT NULL,
	last_login TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// User is the durable record for one provider identity.
type User struct {
	ID             string
	ProviderID     string
	Email          string
	DisplayName    string
	AccessToken    string
	RefreshToken   string
	TokenExpiresAt time.Time
	LastLogin      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserStore provides SQLite-backed storage for user identities.
type UserStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewUserStore opens the database at the configured path and ensures the
// schema exists.
func NewUserStore(cfg *config.Config) (*UserStore, error) {
	return Open(cfg.Database.Path)
}

// Open opens a user store at path.
func Open(path string) (*UserStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite permits a single writer; one pooled connection keeps concurrent
	// upserts serialized at the storage layer instead of failing with
	// SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &UserStore{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *UserStore) Close() error {
	return s.db.Close()
}

// Upsert creates the record for providerID or refreshes the existing one in
// a single conditional write. The token fields and last_login of the stored
// record always come from one complete grant, never from an interleaving of
// two concurrent callbacks.
func (s *UserStore) Upsert(ctx context.Context, providerID string, info models.UserInfo, grant models.TokenGrant) (*User, error) {
	id, err := uuid.GenerateUUID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user id: %w", err)
	}

	now := s.now().UTC()
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO users
		(id, provider_id, email, display_name, access_token, refresh_token, token_expires_at, last_login, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(provider_id) DO UPDATE SET
			email = excluded.email,
			display_name = excluded.display_name,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_expires_at = excluded.token_expires_at,
			last_login = excluded.last_login,
			updated_at = excluded.updated_at
		RETURNING id, provider_id, email, display_name, access_token, refresh_token, token_expires_at, last_login, created_at, updated_at`,
		id, providerID, info.Email, info.Name,
		grant.AccessToken, grant.RefreshToken, grant.ExpiresAt.UTC().Format(timeFormat),
		now.Format(timeFormat), now.Format(timeFormat), now.Format(timeFormat),
	)

	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

// GetByID returns the user with the given local identifier, or nil when no
// such user exists.
func (s *UserStore) GetByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, provider_id, email, display_name, access_token, refresh_token, token_expires_at, last_login, created_at, updated_at
		FROM users WHERE id = ?`, id)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// GetByProviderID returns the user for a provider identity, or nil when no
// such user exists.
func (s *UserStore) GetByProviderID(ctx context.Context, providerID string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, provider_id, email, display_name, access_token, refresh_token, token_expires_at, last_login, created_at, updated_at
		FROM users WHERE provider_id = ?`, providerID)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func scanUser(row *sql.Row) (*User, error) {
	var user User
	var expiresAt, lastLogin, createdAt, updatedAt string

	err := row.Scan(&user.ID, &user.ProviderID, &user.Email, &user.DisplayName,
		&user.AccessToken, &user.RefreshToken, &expiresAt, &lastLogin, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	for _, f := range []struct {
		raw string
		dst *time.Time
	}{
		{expiresAt, &user.TokenExpiresAt},
		{lastLogin, &user.LastLogin},
		{createdAt, &user.CreatedAt},
		{updatedAt, &user.UpdatedAt},
	} {
		t, err := time.Parse(timeFormat, f.raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored timestamp: %w", err)
		}
		*f.dst = t
	}

	return &user, nil
}
