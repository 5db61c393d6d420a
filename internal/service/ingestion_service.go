package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"tradelink/internal/domain"
	"tradelink/internal/middleware"
	"tradelink/internal/utils"
)

// MinLots is recorded when a terminal omits the volume or sends garbage
var MinLots = decimal.RequireFromString("0.01")

// TokenDecoder resolves terminal session tokens
type TokenDecoder interface {
	Decode(token string) (middleware.Session, error)
}

// TradeFields are the raw form values of a trade-open report
type TradeFields struct {
	Ticket     string
	Symbol     string
	Type       string
	Lots       string
	OpenPrice  string
	OpenTime   string
	StopLoss   string
	TakeProfit string
	Comment    string
	Magic      string
}

// IngestionService records trades reported by linked terminals
type IngestionService struct {
	tradeRepo domain.TradeRepository
	tokens    TokenDecoder
	publisher domain.EventPublisher
	maxAge    time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// NewIngestionService creates a new IngestionService. Tokens older than
// maxAge are rejected; zero accepts tokens of any age.
func NewIngestionService(
	tradeRepo domain.TradeRepository,
	tokens TokenDecoder,
	publisher domain.EventPublisher,
	maxAge time.Duration,
	log zerolog.Logger,
) *IngestionService {
	return &IngestionService{
		tradeRepo: tradeRepo,
		tokens:    tokens,
		publisher: orNoop(publisher),
		maxAge:    maxAge,
		now:       time.Now,
		log:       log.With().Str("component", "ingestion").Logger(),
	}
}

// Ingest authorizes the token and records the trade
func (s *IngestionService) Ingest(ctx context.Context, token string, fields TradeFields) error {
	session, err := s.Authorize(ctx, token)
	if err != nil {
		return err
	}
	_, err = s.Record(ctx, session, fields)
	return err
}

// Authorize resolves a bearer token. Every failure is ErrUnauthorized; the
// reason is only logged.
func (s *IngestionService) Authorize(_ context.Context, token string) (middleware.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return middleware.Session{}, domain.ErrUnauthorized
	}

	session, err := s.tokens.Decode(token)
	if err != nil {
		s.log.Debug().Err(err).Msg("Rejected session token")
		return middleware.Session{}, domain.ErrUnauthorized
	}

	if s.maxAge > 0 && s.now().Sub(session.IssuedAt) > s.maxAge {
		s.log.Debug().
			Str("user_id", session.UserID.String()).
			Str("account_id", session.AccountID).
			Time("issued_at", session.IssuedAt).
			Msg("Rejected stale session token")
		return middleware.Session{}, domain.ErrUnauthorized
	}

	return session, nil
}

// Record normalizes the fields and upserts the trade at
// (session user, session account, ticket).
func (s *IngestionService) Record(ctx context.Context, session middleware.Session, fields TradeFields) (*domain.Trade, error) {
	ticket := strings.TrimSpace(fields.Ticket)
	if ticket == "" {
		return nil, domain.InvalidRequest("missing ticket")
	}

	now := s.now()
	trade := normalizeTrade(fields, now)
	trade.UserID = session.UserID
	trade.AccountID = session.AccountID
	trade.Ticket = ticket

	if err := s.tradeRepo.Upsert(ctx, trade); err != nil {
		s.log.Error().Err(err).
			Str("user_id", session.UserID.String()).
			Str("account_id", session.AccountID).
			Str("ticket", ticket).
			Msg("Failed to record trade")
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	s.log.Debug().
		Str("user_id", session.UserID.String()).
		Str("account_id", session.AccountID).
		Str("ticket", ticket).
		Str("symbol", trade.Symbol).
		Str("type", trade.Type.String()).
		Str("lots", trade.Lots.String()).
		Msg("Trade recorded")
	publishChange(ctx, s.publisher, s.log, domain.EventTradeUpserted, session.UserID, session.AccountID, ticket, now)

	return trade, nil
}

// normalizeTrade applies the defaults for absent or unparsable fields.
// Terminal input is noisy; nothing here fails.
func normalizeTrade(f TradeFields, now time.Time) *domain.Trade {
	tradeType := domain.TradeType(parseInt(f.Type, 0))
	if !tradeType.Valid() {
		tradeType = domain.TradeTypeBuy
	}

	lots := parseDecimal(f.Lots, MinLots)
	if !lots.IsPositive() {
		lots = MinLots
	}

	openTime := strings.TrimSpace(f.OpenTime)
	if openTime == "" {
		openTime = utils.FormatTerminalTime(now)
	}

	return &domain.Trade{
		Symbol:     strings.TrimSpace(f.Symbol),
		Type:       tradeType,
		Lots:       lots,
		OpenPrice:  parseDecimal(f.OpenPrice, decimal.Zero),
		OpenTime:   openTime,
		StopLoss:   parseDecimal(f.StopLoss, decimal.Zero),
		TakeProfit: parseDecimal(f.TakeProfit, decimal.Zero),
		Comment:    f.Comment,
		Magic:      parseInt(f.Magic, 0),
		Status:     domain.TradeStatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// parseInt accepts integers and, like the terminal's own number formatting,
// floats such as "1.0" (truncated).
func parseInt(raw string, def int64) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
		return def
	}
	return int64(f)
}

// Bounds of the NUMERIC(20, 8) trade columns. Inputs outside them are
// treated as unparsable before any arithmetic runs on the exponent.
const (
	decimalScale       = 8
	maxDecimalExponent = 20
	maxCoefficientBits = 128
)

var maxDecimalValue = decimal.New(1, 12)

func parseDecimal(raw string, def decimal.Decimal) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return def
	}
	if exp := d.Exponent(); exp > maxDecimalExponent || exp < -maxDecimalExponent {
		return def
	}
	if d.Coefficient().BitLen() > maxCoefficientBits {
		return def
	}
	d = d.Round(decimalScale)
	if d.Abs().GreaterThanOrEqual(maxDecimalValue) {
		return def
	}
	return d
}
