package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	custommiddleware "tradelink/internal/middleware"
)

const dashboardPrefix = "/api/user"

// /api/trades[/auth] are the paths older EAs were built with
var (
	terminalAuthPaths  = []string{"/auth", "/api/trades/auth"}
	terminalTradePaths = []string{"/trades", "/api/trades"}
)

func isTerminalPath(path string) bool {
	for _, p := range terminalAuthPaths {
		if path == p {
			return true
		}
	}
	for _, p := range terminalTradePaths {
		if path == p {
			return true
		}
	}
	return false
}

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	AuthHandler    *AuthHandler
	TradeHandler   *TradeHandler
	UserHandler    *UserHandler
	JWTSecret      string
	AllowedOrigins []string
	Log            zerolog.Logger
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogMethod:   true,
		LogURIPath:  true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			evt := config.Log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				evt = config.Log.Error().Err(v.Error)
			}
			// Paths only: query strings may carry an access token.
			evt.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())

	origins := config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Registered on e so preflights are answered even though only POST routes exist.
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		Skipper:      func(c echo.Context) bool { return !isTerminalPath(c.Request().URL.Path) },
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		Skipper:      func(c echo.Context) bool { return !strings.HasPrefix(c.Request().URL.Path, dashboardPrefix) },
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	// Terminal protocol
	for _, path := range terminalAuthPaths {
		e.POST(path, config.AuthHandler.Authenticate)
	}
	for _, path := range terminalTradePaths {
		e.POST(path, config.TradeHandler.Submit)
	}

	// Dashboard read API (protected with AuthMiddleware)
	user := e.Group(dashboardPrefix, custommiddleware.AuthMiddleware(config.JWTSecret))
	{
		user.GET("/me", config.UserHandler.GetMe)
		user.GET("/credentials", config.UserHandler.GetCredentials)
		user.POST("/credentials", config.UserHandler.RegenerateCredentials)
		user.GET("/accounts", config.UserHandler.GetAccounts)
		user.GET("/accounts/:accountId/trades", config.UserHandler.GetTrades)
		user.GET("/stream", config.UserHandler.Stream)
	}
}
