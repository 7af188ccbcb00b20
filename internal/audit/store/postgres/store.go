// Package postgres persists admin audit log rows in the tapir_admin_audit
// table. log_date is stored as Unix-epoch seconds, matching the legacy schema;
// the wire representation converts back to ISO datetimes on the way out.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/arXiv/arxiv-admin-console-sub000/internal/audit"
	"github.com/arXiv/arxiv-admin-console-sub000/pkg/platform/sentinel"
	txcontext "github.com/arXiv/arxiv-admin-console-sub000/pkg/platform/tx"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Schema is the DDL this store expects. Exposed for integration tests and
// fresh deployments; production runs against the pre-existing legacy table.
const Schema = `
CREATE TABLE IF NOT EXISTS tapir_admin_audit (
	entry_id        BIGSERIAL PRIMARY KEY,
	log_date        BIGINT NOT NULL,
	session_id      TEXT NOT NULL DEFAULT '',
	ip_addr         TEXT NOT NULL DEFAULT '',
	remote_host     TEXT NOT NULL DEFAULT '',
	admin_user      TEXT NOT NULL,
	affected_user   TEXT NOT NULL,
	tracking_cookie TEXT NOT NULL DEFAULT '',
	action          TEXT NOT NULL,
	data            TEXT NOT NULL DEFAULT '',
	comment         TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS tapir_admin_audit_affected_user_idx
	ON tapir_admin_audit (affected_user, log_date DESC);
`

type dbExecutor interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const auditColumns = `entry_id, log_date, session_id, ip_addr, remote_host,
	admin_user, affected_user, tracking_cookie, action, data, comment`

// Append inserts one audit row and returns the assigned entry id. This is the
// fail-closed write path: callers must abort their action when it errors.
func (s *Store) Append(ctx context.Context, e *audit.Event) (int64, error) {
	query := `
		INSERT INTO tapir_admin_audit (
			log_date, session_id, ip_addr, remote_host,
			admin_user, affected_user, tracking_cookie, action, data, comment
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING entry_id
	`
	var id int64
	err := s.execer(ctx).QueryRowContext(ctx, query,
		e.Timestamp.Unix(),
		e.SessionID,
		e.RemoteIP,
		e.RemoteHost,
		e.AdminID,
		e.UserID,
		e.TrackingCookie,
		string(e.Action),
		e.Data,
		e.Comment,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert audit row: %w", err)
	}
	return id, nil
}

// ListRecent returns the most recent rows, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Record, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM tapir_admin_audit
		ORDER BY log_date DESC, entry_id DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit rows: %w", err)
	}
	defer rows.Close()

	return s.scanRecords(rows)
}

// ListByUser returns rows affecting one user, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string, limit int) ([]audit.Record, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM tapir_admin_audit
		WHERE affected_user = $1
		ORDER BY log_date DESC, entry_id DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit rows: %w", err)
	}
	defer rows.Close()

	return s.scanRecords(rows)
}

// GetByID returns a single row.
func (s *Store) GetByID(ctx context.Context, id int64) (audit.Record, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM tapir_admin_audit
		WHERE entry_id = $1
	`
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return audit.Record{}, sentinel.ErrNotFound
	}
	if err != nil {
		return audit.Record{}, fmt.Errorf("query audit row: %w", err)
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (audit.Record, error) {
	var (
		rec     audit.Record
		logDate int64
	)
	err := row.Scan(
		&rec.ID,
		&logDate,
		&rec.SessionID,
		&rec.RemoteIP,
		&rec.RemoteHost,
		&rec.AdminUser,
		&rec.AffectedUser,
		&rec.TrackingCookie,
		&rec.Action,
		&rec.Data,
		&rec.Comment,
	)
	if err != nil {
		return audit.Record{}, err
	}
	rec.LogDate = audit.FormatLogDate(time.Unix(logDate, 0))
	return rec, nil
}

func (s *Store) scanRecords(rows *sql.Rows) ([]audit.Record, error) {
	var records []audit.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit rows: %w", err)
	}
	return records, nil
}
