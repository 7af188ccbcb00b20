//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/arXiv/arxiv-admin-console-sub000/internal/audit"
	"github.com/arXiv/arxiv-admin-console-sub000/internal/audit/store/postgres"
	"github.com/arXiv/arxiv-admin-console-sub000/pkg/platform/sentinel"
	txcontext "github.com/arXiv/arxiv-admin-console-sub000/pkg/platform/tx"
	"github.com/arXiv/arxiv-admin-console-sub000/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T(), postgres.Schema)
	s.store = postgres.New(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "tapir_admin_audit"))
}

func (s *PostgresStoreSuite) newEvent(ts time.Time, userID, comment string) *audit.Event {
	e, err := audit.NewEvent(audit.ActionSuspendUser, audit.Common{
		Timestamp:      ts,
		AdminID:        "1001",
		UserID:         userID,
		SessionID:      "555",
		RemoteIP:       "10.0.0.9",
		RemoteHost:     "admin.arxiv.org",
		TrackingCookie: "abc123",
		Comment:        comment,
	}, audit.NewSuspensionPayload(true))
	s.Require().NoError(err)
	return e
}

func (s *PostgresStoreSuite) TestAppendAndGet() {
	ctx := context.Background()
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := s.store.Append(ctx, s.newEvent(ts, "2002", "abuse"))
	s.Require().NoError(err)
	s.Positive(id)

	rec, err := s.store.GetByID(ctx, id)
	s.Require().NoError(err)
	s.Equal("suspend-user", rec.Action)
	s.Equal("tapir_users.flag_banned=1", rec.Data)
	s.Equal("1001", rec.AdminUser)
	s.Equal("2002", rec.AffectedUser)
	s.Equal("555", rec.SessionID)
	s.Equal("10.0.0.9", rec.RemoteIP)
	s.Equal("admin.arxiv.org", rec.RemoteHost)
	s.Equal("abc123", rec.TrackingCookie)
	s.Equal("abuse", rec.Comment)

	// Epoch seconds round-trip through the ISO wire shape.
	parsed, err := rec.Timestamp()
	s.Require().NoError(err)
	s.Equal(ts, parsed)
}

func (s *PostgresStoreSuite) TestGetByIDNotFound() {
	_, err := s.store.GetByID(context.Background(), 424242)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListOrderingAndFilters() {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := s.store.Append(ctx, s.newEvent(base, "2002", "oldest"))
	s.Require().NoError(err)
	_, err = s.store.Append(ctx, s.newEvent(base.Add(time.Minute), "3003", "middle"))
	s.Require().NoError(err)
	_, err = s.store.Append(ctx, s.newEvent(base.Add(2*time.Minute), "2002", "newest"))
	s.Require().NoError(err)

	s.Run("recent newest first", func() {
		rows, err := s.store.ListRecent(ctx, 2)
		s.Require().NoError(err)
		s.Require().Len(rows, 2)
		s.Equal("newest", rows[0].Comment)
		s.Equal("middle", rows[1].Comment)
	})

	s.Run("by user", func() {
		rows, err := s.store.ListByUser(ctx, "2002", 10)
		s.Require().NoError(err)
		s.Require().Len(rows, 2)
		s.Equal("newest", rows[0].Comment)
		s.Equal("oldest", rows[1].Comment)
	})
}

func (s *PostgresStoreSuite) TestAppendInsideTransaction() {
	ctx := context.Background()
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tx, err := s.postgres.DB.BeginTx(ctx, nil)
	s.Require().NoError(err)

	txCtx := txcontext.WithTx(ctx, tx)
	id, err := s.store.Append(txCtx, s.newEvent(ts, "2002", "rolled back"))
	s.Require().NoError(err)
	s.Positive(id)

	s.Require().NoError(tx.Rollback())

	// The audit row dies with the transaction it rode in.
	_, err = s.store.GetByID(ctx, id)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
