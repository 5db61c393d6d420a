package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTradeType(t *testing.T) {
	assert.True(t, TradeTypeBuy.Valid())
	assert.True(t, TradeTypeSellStop.Valid())
	assert.False(t, TradeType(6).Valid())
	assert.False(t, TradeType(-1).Valid())
	assert.Equal(t, "BUY_LIMIT", TradeTypeBuyLimit.String())
	assert.Equal(t, "UNKNOWN", TradeType(9).String())
}

func TestRequestErrorMatchesInvalidRequest(t *testing.T) {
	err := fmt.Errorf("handler: %w", InvalidRequest("missing ticket"))

	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.NotErrorIs(t, err, ErrUnauthorized)

	var reqErr *RequestError
	assert.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "missing ticket", reqErr.Reason)
}
