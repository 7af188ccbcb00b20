// Package user resolves user ids to displayable identities for audit
// narratives. The postgres store reads the tapir_users projection; the cached
// resolver decorates any resolver with a redis TTL cache.
package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arXiv/arxiv-admin-console-sub000/internal/audit"
	"github.com/arXiv/arxiv-admin-console-sub000/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema is the projection DDL used by integration tests and dev
// deployments; production reads the legacy table directly.
const Schema = `
CREATE TABLE IF NOT EXISTS tapir_users (
	user_id    TEXT PRIMARY KEY,
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	username   TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT ''
);
`

// LookupUser implements audit.Resolver.
func (s *PostgresStore) LookupUser(ctx context.Context, userID string) (audit.Identity, error) {
	query := `
		SELECT user_id, first_name, last_name, username, email
		FROM tapir_users
		WHERE user_id = $1
	`
	var identity audit.Identity
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&identity.UserID,
		&identity.FirstName,
		&identity.LastName,
		&identity.Username,
		&identity.Email,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return audit.Identity{}, sentinel.ErrNotFound
	}
	if err != nil {
		return audit.Identity{}, fmt.Errorf("query user %s: %w", userID, err)
	}
	return identity, nil
}

// Upsert writes a user row; used by tests and the projection refresher.
func (s *PostgresStore) Upsert(ctx context.Context, identity audit.Identity) error {
	query := `
		INSERT INTO tapir_users (user_id, first_name, last_name, username, email)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			username = EXCLUDED.username,
			email = EXCLUDED.email
	`
	_, err := s.db.ExecContext(ctx, query,
		identity.UserID, identity.FirstName, identity.LastName, identity.Username, identity.Email)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", identity.UserID, err)
	}
	return nil
}
