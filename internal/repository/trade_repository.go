package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"tradelink/internal/domain"
)

// TradeRepositoryImpl implements the TradeRepository interface.
// Decimal columns travel as text so no numeric codec registration is needed.
type TradeRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewTradeRepository creates a new TradeRepository
func NewTradeRepository(db *pgxpool.Pool) domain.TradeRepository {
	return &TradeRepositoryImpl{db: db}
}

// Upsert writes the whole trade at its key. created_at keeps its first value.
func (r *TradeRepositoryImpl) Upsert(ctx context.Context, trade *domain.Trade) error {
	query := `
		INSERT INTO trades (
			user_id, account_id, ticket, symbol, type, lots, open_price, open_time,
			stop_loss, take_profit, comment, magic, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6::text::numeric, $7::text::numeric, $8,
			$9::text::numeric, $10::text::numeric, $11, $12, $13, $14, $15
		)
		ON CONFLICT (user_id, account_id, ticket) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			type = EXCLUDED.type,
			lots = EXCLUDED.lots,
			open_price = EXCLUDED.open_price,
			open_time = EXCLUDED.open_time,
			stop_loss = EXCLUDED.stop_loss,
			take_profit = EXCLUDED.take_profit,
			comment = EXCLUDED.comment,
			magic = EXCLUDED.magic,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query,
		trade.UserID,
		trade.AccountID,
		trade.Ticket,
		trade.Symbol,
		int16(trade.Type),
		trade.Lots.String(),
		trade.OpenPrice.String(),
		trade.OpenTime,
		trade.StopLoss.String(),
		trade.TakeProfit.String(),
		trade.Comment,
		trade.Magic,
		trade.Status,
		trade.CreatedAt,
		trade.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert trade %s: %w", trade.Ticket, err)
	}

	return nil
}

// GetByAccount retrieves the trades of one of the user's accounts
func (r *TradeRepositoryImpl) GetByAccount(ctx context.Context, userID uuid.UUID, accountID string) ([]*domain.Trade, error) {
	query := `
		SELECT user_id, account_id, ticket, symbol, type, lots::text, open_price::text, open_time,
		       stop_loss::text, take_profit::text, comment, magic, status, created_at, updated_at
		FROM trades
		WHERE user_id = $1 AND account_id = $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades by account: %w", err)
	}
	defer rows.Close()

	var trades []*domain.Trade
	for rows.Next() {
		var (
			trade                                 = &domain.Trade{}
			tradeType                             int16
			lots, openPrice, stopLoss, takeProfit string
		)
		err := rows.Scan(
			&trade.UserID,
			&trade.AccountID,
			&trade.Ticket,
			&trade.Symbol,
			&tradeType,
			&lots,
			&openPrice,
			&trade.OpenTime,
			&stopLoss,
			&takeProfit,
			&trade.Comment,
			&trade.Magic,
			&trade.Status,
			&trade.CreatedAt,
			&trade.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		trade.Type = domain.TradeType(tradeType)
		if err := parseDecimals(
			decimalField{lots, &trade.Lots},
			decimalField{openPrice, &trade.OpenPrice},
			decimalField{stopLoss, &trade.StopLoss},
			decimalField{takeProfit, &trade.TakeProfit},
		); err != nil {
			return nil, fmt.Errorf("failed to decode trade %s: %w", trade.Ticket, err)
		}

		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}

type decimalField struct {
	raw string
	dst *decimal.Decimal
}

func parseDecimals(fields ...decimalField) error {
	for _, f := range fields {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return err
		}
		*f.dst = d
	}
	return nil
}
