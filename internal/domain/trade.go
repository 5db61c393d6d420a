package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeType is the terminal's order type code.
type TradeType int

// TradeType values as reported by the terminal
const (
	TradeTypeBuy TradeType = iota
	TradeTypeSell
	TradeTypeBuyLimit
	TradeTypeSellLimit
	TradeTypeBuyStop
	TradeTypeSellStop
)

// Valid reports whether t is a known order type.
func (t TradeType) Valid() bool {
	return t >= TradeTypeBuy && t <= TradeTypeSellStop
}

func (t TradeType) String() string {
	switch t {
	case TradeTypeBuy:
		return "BUY"
	case TradeTypeSell:
		return "SELL"
	case TradeTypeBuyLimit:
		return "BUY_LIMIT"
	case TradeTypeSellLimit:
		return "SELL_LIMIT"
	case TradeTypeBuyStop:
		return "BUY_STOP"
	case TradeTypeSellStop:
		return "SELL_STOP"
	}
	return "UNKNOWN"
}

// TradeStatus constants
const (
	TradeStatusOpen = "open"
)

// Trade is a position reported by a terminal, keyed by (UserID, AccountID, Ticket).
// StopLoss and TakeProfit of zero mean unset.
type Trade struct {
	UserID     uuid.UUID       `json:"user_id"`
	AccountID  string          `json:"account_id"`
	Ticket     string          `json:"ticket"`
	Symbol     string          `json:"symbol"`
	Type       TradeType       `json:"type"`
	Lots       decimal.Decimal `json:"lots"`
	OpenPrice  decimal.Decimal `json:"open_price"`
	OpenTime   string          `json:"open_time"` // as sent by the terminal
	StopLoss   decimal.Decimal `json:"stop_loss"`
	TakeProfit decimal.Decimal `json:"take_profit"`
	Comment    string          `json:"comment"`
	Magic      int64           `json:"magic"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
