package publish

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/arXiv/arxiv-admin-console-sub000/internal/audit"
)

// captureSink records published messages; optionally fails every call.
type captureSink struct {
	mu       sync.Mutex
	messages []message
	err      error
}

func (c *captureSink) Publish(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, message{key: key, value: value})
	return nil
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

type PublisherSuite struct {
	suite.Suite
	sink *captureSink
	ctx  context.Context
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.sink = &captureSink{}
	s.ctx = context.Background()
}

func (s *PublisherSuite) newEvent(comment string) *audit.Event {
	e, err := audit.NewEvent(audit.ActionSuspendUser, audit.Common{
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		AdminID:   "1001",
		UserID:    "2002",
		Comment:   comment,
	}, audit.NewSuspensionPayload(true))
	s.Require().NoError(err)
	return e
}

func (s *PublisherSuite) TestEmitAndFlush() {
	p := New(s.sink, nil)
	p.Emit(42, s.newEvent(""))
	s.Equal(1, p.Pending())

	p.flush(s.ctx)

	s.Require().Equal(1, s.sink.count())
	s.Equal(0, p.Pending())

	// Messages are keyed by the affected user so per-user ordering survives
	// topic partitioning.
	s.Equal("2002", s.sink.messages[0].key)

	var env envelope
	s.Require().NoError(json.Unmarshal(s.sink.messages[0].value, &env))
	s.Equal(int64(42), env.EntryID)
	s.Equal("suspend-user", env.Action)
	s.Equal("tapir_users.flag_banned=1", env.Data)
	s.Equal("1001", env.AdminUser)
	s.Equal("2002", env.AffectedUser)
	s.Equal("2024-03-01T12:00:00Z", env.LogDate)
}

func (s *PublisherSuite) TestOverflowDropsOldest() {
	p := New(s.sink, nil, WithCapacity(2))
	p.Emit(1, s.newEvent("first"))
	p.Emit(2, s.newEvent("second"))
	p.Emit(3, s.newEvent("third"))

	s.Equal(2, p.Pending())
	s.Equal(int64(1), p.Dropped())

	p.flush(s.ctx)
	s.Require().Equal(2, s.sink.count())

	var env envelope
	s.Require().NoError(json.Unmarshal(s.sink.messages[0].value, &env))
	s.Equal(int64(2), env.EntryID)
}

func (s *PublisherSuite) TestSinkFailureCountsDropped() {
	s.sink.err = errors.New("broker down")
	p := New(s.sink, nil)
	p.Emit(1, s.newEvent(""))
	p.Emit(2, s.newEvent(""))

	p.flush(s.ctx)

	s.Equal(0, p.Pending())
	s.Equal(int64(2), p.Dropped())
}

func (s *PublisherSuite) TestRunDrainsOnCancel() {
	p := New(s.sink, nil, WithFlushInterval(time.Hour))
	p.Emit(1, s.newEvent(""))

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		s.Require().ErrorIs(err, context.Canceled)
	case <-time.After(5 * time.Second):
		s.FailNow("publisher did not stop")
	}

	// The final flush ran before Run returned.
	s.Equal(1, s.sink.count())
}
