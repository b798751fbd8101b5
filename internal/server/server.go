package server

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"budgetbook/internal/config"
	"budgetbook/internal/handlers"
	"budgetbook/internal/middleware"
	"budgetbook/internal/repositories"
	"budgetbook/internal/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodySize caps request bodies; transaction payloads are a few hundred bytes.
const maxBodySize = "64K"

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Auth         services.AuthServiceInterface
	Tokens       services.TokenServiceInterface
	Blacklist    repositories.BlacklistedTokenRepositoryInterface
	Transactions services.TransactionServiceInterface
	Summaries    services.SummaryServiceInterface
	Quotes       services.QuoteServiceInterface
	Database     handlers.Pinger
	RateLimiter  *middleware.IPRateLimiter
	Gatherer     prometheus.Gatherer
}

// New builds the echo instance with every route registered.
func New(cfg *config.Config, deps Dependencies, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.ExposeErrorDetails(cfg.Server.ExposeErrorDetails))
	e.Use(requestLogger(logger))
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomiddleware.BodyLimit(maxBodySize))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		Skipper: func(c echo.Context) bool {
			return !strings.HasPrefix(c.Request().URL.Path, "/api/")
		},
		AllowOrigins:  cfg.Server.CORSAllowOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.TraceIDHeader},
		ExposeHeaders: []string{middleware.TraceIDHeader},
	}))

	health := handlers.NewHealthCheckHandler(deps.Database)
	e.GET("/health", health.HealthCheck)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	static := handlers.NewStaticHandler(cfg.Server.StaticDir, logger)
	e.GET("/", static.ServeIndex)
	e.Static("/static", cfg.Server.StaticDir)
	e.File("/sw.js", filepath.Join(cfg.Server.StaticDir, "sw.js"))

	api := e.Group("/api")
	if deps.RateLimiter != nil {
		api.Use(deps.RateLimiter.Middleware())
	}

	requireAuth := middleware.RequireAuth(deps.Tokens, deps.Blacklist)

	auth := handlers.NewAuthHandler(deps.Auth)
	authGroup := api.Group("/auth")
	authGroup.POST("/register", auth.Register)
	authGroup.POST("/login", auth.Login)
	authGroup.POST("/refresh", auth.RefreshToken)
	authGroup.POST("/logout", auth.Logout, requireAuth)
	authGroup.GET("/me", auth.Me, requireAuth)

	transactions := handlers.NewTransactionHandler(deps.Transactions)
	txGroup := api.Group("/transactions", requireAuth)
	txGroup.GET("", transactions.ListTransactions)
	txGroup.POST("", transactions.CreateTransaction)
	txGroup.GET("/:id", transactions.GetTransaction)
	txGroup.PUT("/:id", transactions.UpdateTransaction)
	txGroup.DELETE("/:id", transactions.DeleteTransaction)

	summaries := handlers.NewSummaryHandler(deps.Summaries)
	summaryGroup := api.Group("/summary", requireAuth)
	summaryGroup.GET("", summaries.ListYear)
	summaryGroup.GET("/:yearMonth", summaries.GetMonth)
	summaryGroup.POST("/:yearMonth/recompute", summaries.Recompute)
	summaryGroup.GET("/:yearMonth/categories", summaries.Categories)

	quotes := handlers.NewQuoteHandler(deps.Quotes)
	api.GET("/quotes/:symbol", quotes.GetQuote, requireAuth)

	return e
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			attrs := []any{
				"trace_id", middleware.GetTraceID(c),
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"remote_ip", v.RemoteIP,
			}
			if v.Error != nil {
				logger.WarnContext(c.Request().Context(), "request failed", append(attrs, "error", v.Error.Error())...)
				return nil
			}
			logger.InfoContext(c.Request().Context(), "request", attrs...)
			return nil
		},
	})
}
