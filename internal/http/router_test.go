package httpapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/arXiv/arxiv-admin-console-sub000/internal/admin"
	"github.com/arXiv/arxiv-admin-console-sub000/internal/admin/handler"
	"github.com/arXiv/arxiv-admin-console-sub000/internal/audit"
	"github.com/arXiv/arxiv-admin-console-sub000/internal/audit/store/memory"
	"github.com/arXiv/arxiv-admin-console-sub000/pkg/testutil"
)

var testSecret = []byte("router-test-secret")

type RouterSuite struct {
	suite.Suite
	store  *memory.InMemoryStore
	router http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.store = memory.NewInMemoryStore()
	service, err := admin.NewService(s.store, audit.ResolverFunc(
		func(_ context.Context, userID string) (audit.Identity, error) {
			return audit.Identity{UserID: userID, Username: "u" + userID}, nil
		}), nil)
	s.Require().NoError(err)

	h := handler.New(service, nil, 100)
	s.router = NewRouter(h, testSecret, nil)
}

func (s *RouterSuite) token(claims jwt.MapClaims) string {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	s.Require().NoError(err)
	return signed
}

func (s *RouterSuite) adminToken() string {
	return s.token(jwt.MapClaims{
		"sub":   "1001",
		"admin": true,
		"sid":   "555",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
}

func (s *RouterSuite) TestAdminRoutesRequireToken() {
	req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/admin/audit-log", nil)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
}

func (s *RouterSuite) TestNonAdminTokenRejected() {
	req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/admin/audit-log", nil)
	req.Header.Set("Authorization", "Bearer "+s.token(jwt.MapClaims{
		"sub":   "2002",
		"admin": false,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}))
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
}

func (s *RouterSuite) TestWrongSignatureRejected() {
	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1001", "admin": true,
	}).SignedString([]byte("some other secret"))
	s.Require().NoError(err)

	req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/admin/audit-log", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
}

func (s *RouterSuite) TestAuthorizedWriteCarriesTokenIdentity() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/users/2002/suspension", map[string]any{
		"comment": "abuse",
	})
	req.Header.Set("Authorization", "Bearer "+s.adminToken())
	req.Header.Set("X-Forwarded-For", "203.0.113.50")

	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)

	resp := testutil.UnmarshalResponse[admin.RecordedResponse](s.T(), rr)
	rec, err := s.store.GetByID(req.Context(), resp.EntryID)
	s.Require().NoError(err)
	s.Equal("1001", rec.AdminUser)
	s.Equal("555", rec.SessionID)
	s.Equal("203.0.113.50", rec.RemoteIP)
}

func (s *RouterSuite) TestHealthAndMetricsOpen() {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/healthz", nil))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/metrics", nil))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
}
