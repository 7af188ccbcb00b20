package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// stubResolver serves a fixed identity set and fails everything else.
type stubResolver struct {
	identities map[string]Identity
	calls      int
}

func (r *stubResolver) LookupUser(_ context.Context, userID string) (Identity, error) {
	r.calls++
	if id, ok := r.identities[userID]; ok {
		return id, nil
	}
	return Identity{}, errors.New("no such user")
}

func knownUsers() *stubResolver {
	return &stubResolver{identities: map[string]Identity{
		"1001": {UserID: "1001", FirstName: "Grace", LastName: "Hopper"},
		"2002": {UserID: "2002", FirstName: "Paul", LastName: "Erdos"},
		"3003": {UserID: "3003", Username: "suspect_account"},
	}}
}

type DescribeSuite struct {
	suite.Suite
	ctx      context.Context
	common   Common
	resolver *stubResolver
}

func TestDescribeSuite(t *testing.T) {
	suite.Run(t, new(DescribeSuite))
}

func (s *DescribeSuite) SetupTest() {
	s.ctx = context.Background()
	s.resolver = knownUsers()
	s.common = Common{
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		AdminID:   "1001",
		UserID:    "2002",
	}
}

func (s *DescribeSuite) mustEvent(action Action, p Payload) *Event {
	e, err := NewEvent(action, s.common, p)
	s.Require().NoError(err)
	return e
}

func (s *DescribeSuite) TestFlagNarratives() {
	s.Run("banned flag set", func() {
		payload, err := NewFlagPayload(FlagBanned, true)
		s.Require().NoError(err)
		e := s.mustEvent(ActionFlipFlag, payload)
		s.Equal("Grace Hopper banned Paul Erdos", Describe(s.ctx, e, s.resolver))
	})

	s.Run("banned flag cleared", func() {
		payload, err := NewFlagPayload(FlagBanned, false)
		s.Require().NoError(err)
		e := s.mustEvent(ActionFlipFlag, payload)
		s.Equal("Grace Hopper unbanned Paul Erdos", Describe(s.ctx, e, s.resolver))
	})

	s.Run("numeric flag", func() {
		payload, err := NewFlagPayload(FlagEndorsementPointValue, 10)
		s.Require().NoError(err)
		e := s.mustEvent(ActionFlipFlag, payload)
		s.Equal("Grace Hopper set the endorsement point value of Paul Erdos to 10",
			Describe(s.ctx, e, s.resolver))
	})
}

func (s *DescribeSuite) TestSuspensionNarratives() {
	e := s.mustEvent(ActionSuspendUser, NewSuspensionPayload(true))
	s.Equal("Grace Hopper suspended Paul Erdos", Describe(s.ctx, e, s.resolver))

	e = s.mustEvent(ActionUnsuspendUser, NewSuspensionPayload(false))
	s.Equal("Grace Hopper reinstated Paul Erdos", Describe(s.ctx, e, s.resolver))
}

func (s *DescribeSuite) TestEndorsementNamesBothParties() {
	e := s.mustEvent(ActionEndorsedBySuspect,
		EndorsementPayload{EndorserID: "3003", Category: "cs.CR", EndorseeID: "2002"})
	s.Equal("Paul Erdos was endorsed by the suspect user suspect_account in cs.CR",
		Describe(s.ctx, e, s.resolver))

	s.ElementsMatch([]string{"1001", "2002", "3003"}, e.ReferencedUsers())
}

func (s *DescribeSuite) TestPlaceholdersForUnresolvedUsers() {
	s.common.UserID = "9999"
	e := s.mustEvent(ActionComment, CommentPayload{})
	s.Equal("Grace Hopper commented on user 9999", Describe(s.ctx, e, s.resolver))
}

func (s *DescribeSuite) TestRenderIsIdempotent() {
	e := s.mustEvent(ActionSuspendUser, NewSuspensionPayload(true))
	ids := ResolveIdentities(s.ctx, e, s.resolver)

	first := e.Render(ids)
	second := e.Render(ids)
	s.Equal(first, second)

	// A later render with more identities supersedes; the earlier output was
	// still well formed.
	partial := e.Render(Identities{})
	s.Equal("user 1001 suspended user 2002", partial)
}

func (s *DescribeSuite) TestCommentAppended() {
	s.common.Comment = "per moderation ticket 7712"
	e := s.mustEvent(ActionSuspendUser, NewSuspensionPayload(true))
	s.Equal("Grace Hopper suspended Paul Erdos (per moderation ticket 7712)",
		Describe(s.ctx, e, s.resolver))
}

func TestDescribeRecordFallback(t *testing.T) {
	resolver := knownUsers()
	rec := Record{
		AdminUser:    "1001",
		AffectedUser: "2002",
		Action:       "flip-flag",
		Data:         "corrupted payload",
		LogDate:      "2024-03-01T12:00:00Z",
	}

	narrative := DescribeRecord(context.Background(), rec, resolver)
	assert.Equal(t, `Grace Hopper performed flip-flag on Paul Erdos (unrecognized data "corrupted payload")`, narrative)
}

func TestDescribeRecordFallbackUnknownAction(t *testing.T) {
	rec := Record{
		AdminUser:    "7",
		AffectedUser: "8",
		Action:       "launch-rocket",
		LogDate:      "2024-03-01T12:00:00Z",
		Comment:      "huh",
	}

	narrative := DescribeRecord(context.Background(), rec, nil)
	assert.Equal(t, "user 7 performed launch-rocket on user 8 (huh)", narrative)
}

func TestResolveIdentitiesSkipsFailures(t *testing.T) {
	resolver := knownUsers()
	e, err := NewEvent(ActionComment, Common{
		Timestamp: time.Now(),
		AdminID:   "1001",
		UserID:    "4040",
	}, CommentPayload{})
	require.NoError(t, err)

	ids := ResolveIdentities(context.Background(), e, resolver)
	assert.Len(t, ids, 1)
	assert.Equal(t, "Grace Hopper", ids.Name("1001"))
	assert.Equal(t, "user 4040", ids.Name("4040"))
	assert.Equal(t, "unknown user", ids.Name(""))
}
