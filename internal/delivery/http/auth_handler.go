package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"tradelink/internal/delivery/http/dto"
	"tradelink/internal/service"
)

// AuthHandler handles terminal authentication
type AuthHandler struct {
	authService *service.TerminalAuthService
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.TerminalAuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// Authenticate links a terminal account and returns its session token
// POST /auth
func (h *AuthHandler) Authenticate(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	token, err := h.authService.Authenticate(ctx, service.TerminalLogin{
		Username:  c.FormValue("username"),
		Password:  c.FormValue("password"),
		Terminal:  c.FormValue("terminal"),
		AccountID: c.FormValue("account"),
	})
	if err != nil {
		return TerminalFailure(c, h.log, err)
	}

	return c.JSON(http.StatusOK, dto.TerminalTokenResponse{Token: token})
}
