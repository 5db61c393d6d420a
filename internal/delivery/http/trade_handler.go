package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"tradelink/internal/delivery/http/dto"
	"tradelink/internal/service"
)

// ActionNew is the only trade action terminals send today
const ActionNew = "new"

// TradeHandler handles trade reports from linked terminals
type TradeHandler struct {
	ingestion *service.IngestionService
	log       zerolog.Logger
}

// NewTradeHandler creates a new TradeHandler
func NewTradeHandler(ingestion *service.IngestionService, log zerolog.Logger) *TradeHandler {
	return &TradeHandler{
		ingestion: ingestion,
		log:       log.With().Str("component", "trade_handler").Logger(),
	}
}

// Submit records a trade-open event
// POST /trades
func (h *TradeHandler) Submit(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	session, err := h.ingestion.Authorize(ctx, bearerToken(c))
	if err != nil {
		return TerminalFailure(c, h.log, err)
	}

	if action := c.FormValue("action"); action != ActionNew {
		return TerminalError(c, http.StatusBadRequest, "Invalid action")
	}

	_, err = h.ingestion.Record(ctx, session, service.TradeFields{
		Ticket:     c.FormValue("ticket"),
		Symbol:     c.FormValue("symbol"),
		Type:       c.FormValue("type"),
		Lots:       c.FormValue("lots"),
		OpenPrice:  c.FormValue("openPrice"),
		OpenTime:   c.FormValue("openTime"),
		StopLoss:   c.FormValue("stopLoss"),
		TakeProfit: c.FormValue("takeProfit"),
		Comment:    c.FormValue("comment"),
		Magic:      c.FormValue("magic"),
	})
	if err != nil {
		return TerminalFailure(c, h.log, err)
	}

	return c.JSON(http.StatusOK, dto.TerminalAckResponse{Success: true})
}

// bearerToken prefers the form field terminals send, then an Authorization header
func bearerToken(c echo.Context) string {
	if token := c.FormValue("token"); token != "" {
		return token
	}
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
