package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelink/internal/domain"
)

func TestStore_ForeignKeys(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	err := s.Credentials().Save(ctx, &domain.TerminalCredential{UserID: userID, Username: "user_x"})
	assert.ErrorIs(t, err, ErrForeignKey)

	err = s.Accounts().Upsert(ctx, &domain.Account{UserID: userID, AccountID: "42", LastConnected: now})
	assert.ErrorIs(t, err, ErrForeignKey)

	require.NoError(t, s.Users().Create(ctx, &domain.User{ID: userID, Email: "a@example.com"}))

	err = s.Trades().Upsert(ctx, &domain.Trade{UserID: userID, AccountID: "42", Ticket: "1"})
	assert.ErrorIs(t, err, ErrForeignKey)

	require.NoError(t, s.Accounts().Upsert(ctx, &domain.Account{UserID: userID, AccountID: "42", LastConnected: now}))
	require.NoError(t, s.Trades().Upsert(ctx, &domain.Trade{UserID: userID, AccountID: "42", Ticket: "1", Lots: decimal.NewFromInt(1)}))

	assert.Equal(t, 1, s.TradeCount())
	assert.Equal(t, 3, s.Writes())
}

func TestStore_TradesNewestFirst(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Users().Create(ctx, &domain.User{ID: userID, Email: "a@example.com"}))
	require.NoError(t, s.Accounts().Upsert(ctx, &domain.Account{UserID: userID, AccountID: "42", LastConnected: base}))

	for i, ticket := range []string{"3", "1", "2"} {
		at := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.Trades().Upsert(ctx, &domain.Trade{
			UserID: userID, AccountID: "42", Ticket: ticket, CreatedAt: at, UpdatedAt: at,
		}))
	}

	trades, err := s.Trades().GetByAccount(ctx, userID, "42")
	require.NoError(t, err)
	var tickets []string
	for _, tr := range trades {
		tickets = append(tickets, tr.Ticket)
	}
	assert.Equal(t, []string{"2", "1", "3"}, tickets)
}
