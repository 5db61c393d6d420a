package http

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"tradelink/internal/delivery/http/dto"
	"tradelink/internal/domain"
	"tradelink/internal/middleware"
	"tradelink/internal/service"
	"tradelink/internal/utils"
	"tradelink/internal/websocket"
)

// UserHandler serves the dashboard's read API. Every query is scoped to the
// authenticated user.
type UserHandler struct {
	users       *service.UserService
	credentials *service.CredentialService
	accountRepo domain.AccountRepository
	tradeRepo   domain.TradeRepository
	hub         *websocket.Hub
	log         zerolog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(
	users *service.UserService,
	credentials *service.CredentialService,
	accountRepo domain.AccountRepository,
	tradeRepo domain.TradeRepository,
	hub *websocket.Hub,
	log zerolog.Logger,
) *UserHandler {
	return &UserHandler{
		users:       users,
		credentials: credentials,
		accountRepo: accountRepo,
		tradeRepo:   tradeRepo,
		hub:         hub,
		log:         log.With().Str("component", "user_handler").Logger(),
	}
}

// GetMe returns the authenticated user's profile
// GET /api/user/me
func (h *UserHandler) GetMe(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.users.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return NotFoundResponse(c, "User not found")
	}
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get user")
		return InternalServerErrorResponse(c, "Failed to get user")
	}

	return SuccessResponse(c, dto.UserOutput{
		ID:        user.ID.String(),
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	})
}

// GetCredentials returns the current terminal username
// GET /api/user/credentials
func (h *UserHandler) GetCredentials(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cred, err := h.credentials.Current(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return NotFoundResponse(c, "No credentials generated yet")
	}
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get credentials")
		return InternalServerErrorResponse(c, "Failed to get credentials")
	}

	return SuccessResponse(c, dto.CredentialOutput{
		Username:  cred.Username,
		UpdatedAt: cred.UpdatedAt.Format(time.RFC3339),
	})
}

// RegenerateCredentials issues a new terminal password, invalidating the old one
// POST /api/user/credentials
func (h *UserHandler) RegenerateCredentials(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cred, err := h.credentials.Issue(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return NotFoundResponse(c, "User not found")
	}
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to generate credentials")
		return InternalServerErrorResponse(c, "Failed to generate credentials")
	}

	return CreatedResponse(c, dto.IssuedCredentialOutput{
		Username: cred.Username,
		Password: cred.Password,
	})
}

// GetAccounts lists the user's linked terminal accounts
// GET /api/user/accounts
func (h *UserHandler) GetAccounts(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	accounts, err := h.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get accounts")
		return InternalServerErrorResponse(c, "Failed to get accounts")
	}

	output := make([]dto.AccountOutput, 0, len(accounts))
	for _, a := range accounts {
		output = append(output, dto.AccountOutput{
			AccountID:     a.AccountID,
			Terminal:      a.Terminal,
			LastConnected: a.LastConnected.Format(time.RFC3339),
			IsActive:      a.IsActive,
			CreatedAt:     a.CreatedAt.Format(time.RFC3339),
		})
	}

	return SuccessResponse(c, map[string]interface{}{
		"accounts": output,
		"count":    len(output),
	})
}

// GetTrades lists the trades of one of the user's accounts
// GET /api/user/accounts/:accountId/trades
func (h *UserHandler) GetTrades(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}
	accountID := c.Param("accountId")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	trades, err := h.tradeRepo.GetByAccount(ctx, userID, accountID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID.String()).Str("account_id", accountID).Msg("Failed to get trades")
		return InternalServerErrorResponse(c, "Failed to get trades")
	}

	output := make([]dto.TradeOutput, 0, len(trades))
	for _, t := range trades {
		// open_time is kept verbatim; opened_at is only set when it parses
		var openedAt string
		if at, err := utils.ParseTerminalTime(t.OpenTime); err == nil {
			openedAt = at.Format(time.RFC3339)
		}
		output = append(output, dto.TradeOutput{
			Ticket:     t.Ticket,
			Symbol:     t.Symbol,
			Type:       int(t.Type),
			TypeName:   t.Type.String(),
			Lots:       t.Lots.String(),
			OpenPrice:  t.OpenPrice.String(),
			OpenTime:   t.OpenTime,
			OpenedAt:   openedAt,
			StopLoss:   t.StopLoss.String(),
			TakeProfit: t.TakeProfit.String(),
			Comment:    t.Comment,
			Magic:      t.Magic,
			Status:     t.Status,
			CreatedAt:  t.CreatedAt.Format(time.RFC3339),
			UpdatedAt:  t.UpdatedAt.Format(time.RFC3339),
		})
	}

	return SuccessResponse(c, map[string]interface{}{
		"account_id": accountID,
		"trades":     output,
		"count":      len(output),
	})
}

// Stream pushes the user's change events over a websocket
// GET /api/user/stream
func (h *UserHandler) Stream(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}
	return h.hub.Serve(c.Response(), c.Request(), userID)
}
