package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/arXiv/arxiv-admin-console-sub000/internal/audit"
	"github.com/arXiv/arxiv-admin-console-sub000/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) appendComment(adminID, userID, comment string) int64 {
	e, err := audit.NewEvent(audit.ActionComment, audit.Common{
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		AdminID:   adminID,
		UserID:    userID,
		Comment:   comment,
	}, audit.CommentPayload{})
	s.Require().NoError(err)

	id, err := s.store.Append(s.ctx, e)
	s.Require().NoError(err)
	return id
}

func (s *InMemoryStoreSuite) TestAppendAssignsIncreasingIDs() {
	first := s.appendComment("1", "2", "a")
	second := s.appendComment("1", "2", "b")
	s.Equal(int64(1), first)
	s.Equal(int64(2), second)
}

func (s *InMemoryStoreSuite) TestListRecentNewestFirst() {
	s.appendComment("1", "2", "oldest")
	s.appendComment("1", "3", "middle")
	s.appendComment("1", "2", "newest")

	rows, err := s.store.ListRecent(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal("newest", rows[0].Comment)
	s.Equal("middle", rows[1].Comment)
}

func (s *InMemoryStoreSuite) TestListByUserFilters() {
	s.appendComment("1", "2", "for two")
	s.appendComment("1", "3", "for three")
	s.appendComment("1", "2", "for two again")

	rows, err := s.store.ListByUser(s.ctx, "2", 10)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal("for two again", rows[0].Comment)
	s.Equal("for two", rows[1].Comment)
}

func (s *InMemoryStoreSuite) TestGetByID() {
	id := s.appendComment("1", "2", "findable")

	rec, err := s.store.GetByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("findable", rec.Comment)
	s.Equal(id, rec.ID)

	_, err = s.store.GetByID(s.ctx, 999)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestClear() {
	s.appendComment("1", "2", "gone soon")
	s.store.Clear()

	rows, err := s.store.ListRecent(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(rows)

	s.Equal(int64(1), s.appendComment("1", "2", "fresh"))
}
