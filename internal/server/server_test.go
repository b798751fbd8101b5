package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"budgetbook/internal/config"
	apierrors "budgetbook/internal/errors"
	"budgetbook/internal/middleware"
	"budgetbook/internal/models"
	"budgetbook/internal/repositories/repository_mocks"
	"budgetbook/internal/services"
	"budgetbook/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

type ServerSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	tokens    services.TokenServiceInterface
	blacklist *repository_mocks.MockBlacklistedTokenRepositoryInterface
	quotes    *service_mocks.MockQuoteServiceInterface
	summaries *service_mocks.MockSummaryServiceInterface
	e         *echo.Echo
}

func TestServer(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	privateKey, publicKey, err := config.GenerateRSAKeyPair()
	s.Require().NoError(err)
	s.tokens = services.NewTokenService(&config.JWTConfig{
		PrivateKey:           privateKey,
		PublicKey:            publicKey,
		Issuer:               "budgetbook-test",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: 24 * time.Hour,
	})
	s.blacklist = repository_mocks.NewMockBlacklistedTokenRepositoryInterface(s.ctrl)
	s.quotes = service_mocks.NewMockQuoteServiceInterface(s.ctrl)
	s.summaries = service_mocks.NewMockSummaryServiceInterface(s.ctrl)

	staticDir := s.T().TempDir()
	s.Require().NoError(os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>budgetbook</html>"), 0o600))
	s.Require().NoError(os.WriteFile(filepath.Join(staticDir, "app.js"), []byte("console.log('ok')"), 0o600))
	s.Require().NoError(os.WriteFile(filepath.Join(staticDir, "sw.js"), []byte("self.addEventListener('fetch', () => {})"), 0o600))

	cfg := &config.Config{Server: config.ServerConfig{
		Environment:      "testing",
		StaticDir:        staticDir,
		CORSAllowOrigins: []string{"http://localhost:3000"},
	}}
	s.e = New(cfg, Dependencies{
		Auth:         service_mocks.NewMockAuthServiceInterface(s.ctrl),
		Tokens:       s.tokens,
		Blacklist:    s.blacklist,
		Transactions: service_mocks.NewMockTransactionServiceInterface(s.ctrl),
		Summaries:    s.summaries,
		Quotes:       s.quotes,
		Database:     pingerFunc(func(context.Context) error { return nil }),
		RateLimiter:  middleware.NewIPRateLimiter(100, 100),
		Gatherer:     prometheus.NewRegistry(),
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *ServerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServerSuite) do(method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *ServerSuite) login() (uuid.UUID, string) {
	user := &models.User{ID: uuid.New(), Email: "minji@example.com", Role: models.RoleUser}
	token, _, err := s.tokens.GenerateAccessToken(user)
	s.Require().NoError(err)
	s.blacklist.EXPECT().IsBlacklisted(gomock.Any(), gomock.Any()).Return(false, nil)
	return user.ID, token
}

func decodeError(s *ServerSuite, rec *httptest.ResponseRecorder) apierrors.ErrorResponse {
	var resp apierrors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (s *ServerSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/health", "")

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"healthy"`)
	s.NotEmpty(rec.Header().Get(middleware.TraceIDHeader))
}

func (s *ServerSuite) TestUnknownRoute() {
	rec := s.do(http.MethodGet, "/nowhere", "")

	s.Equal(http.StatusNotFound, rec.Code)
	resp := decodeError(s, rec)
	s.Equal("SYSTEM_007", resp.Code)
	s.Equal(rec.Header().Get(middleware.TraceIDHeader), resp.TraceID)
}

func (s *ServerSuite) TestProtectedRoutesRequireToken() {
	for _, target := range []string{"/api/transactions", "/api/summary/2024-03", "/api/summary", "/api/quotes/AAPL", "/api/auth/me"} {
		rec := s.do(http.MethodGet, target, "")
		s.Equal(http.StatusUnauthorized, rec.Code, target)
		s.Equal("AUTH_002", decodeError(s, rec).Code, target)
	}
}

func (s *ServerSuite) TestQuoteRoute() {
	_, token := s.login()
	s.quotes.EXPECT().GetQuote(gomock.Any(), "AAPL").Return(&models.Quote{
		Symbol:    "AAPL",
		Currency:  "USD",
		Price:     decimal.RequireFromString("172.5"),
		FetchedAt: time.Now(),
	}, nil)

	rec := s.do(http.MethodGet, "/api/quotes/AAPL", token)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"symbol":"AAPL"`)
	s.Equal("no-store", rec.Header().Get("Cache-Control"))
}

func (s *ServerSuite) TestSummaryRoute() {
	userID, token := s.login()
	ym := models.MustParseYearMonth("2024-03")
	s.summaries.EXPECT().Get(gomock.Any(), userID, ym).Return(models.EmptyMonthlySummary(userID, ym), nil)

	rec := s.do(http.MethodGet, "/api/summary/2024-03", token)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"yearMonth":"2024-03"`)
}

func (s *ServerSuite) TestDashboardAndAssets() {
	rec := s.do(http.MethodGet, "/", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "budgetbook")

	rec = s.do(http.MethodGet, "/static/app.js", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "console.log")

	rec = s.do(http.MethodGet, "/sw.js", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "addEventListener")
}

func (s *ServerSuite) TestCORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/api/transactions", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal("http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func (s *ServerSuite) TestMetricsEndpoint() {
	rec := s.do(http.MethodGet, "/metrics", "")

	s.Equal(http.StatusOK, rec.Code)
	s.True(strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/plain"))
}
