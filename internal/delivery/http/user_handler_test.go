package http

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelink/internal/middleware"
	"tradelink/internal/service"
)

func TestDashboard_RequiresJWT(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/user/me", "/api/user/credentials", "/api/user/accounts", "/api/user/accounts/42/trades"} {
		rec := s.dashboard(http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestDashboard_Credentials(t *testing.T) {
	s := newTestServer(t)
	user, err := s.users.Ensure(context.Background(), "fresh@example.com")
	require.NoError(t, err)
	jwt, err := middleware.GenerateJWT(testJWTSecret, user.ID, time.Hour)
	require.NoError(t, err)

	rec := s.dashboard(http.MethodGet, "/api/user/credentials", jwt)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.dashboard(http.MethodPost, "/api/user/credentials", jwt)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	issued := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.NotEmpty(t, issued["password"])

	rec = s.dashboard(http.MethodGet, "/api/user/credentials", jwt)
	require.Equal(t, http.StatusOK, rec.Code)
	current := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, issued["username"], current["username"])
	assert.NotContains(t, rec.Body.String(), issued["password"].(string))

	// The issued password links a terminal
	s.link(t, &service.Credential{
		Username: issued["username"].(string),
		Password: issued["password"].(string),
	}, "42")
}

func TestDashboard_AccountsAndTradesAreScoped(t *testing.T) {
	s := newTestServer(t)
	_, aliceCred, aliceJWT := s.newUser(t, "alice@example.com")
	_, _, bobJWT := s.newUser(t, "bob@example.com")

	token := s.link(t, aliceCred, "42")
	rec := s.postForm("/trades", url.Values{
		"token": {token}, "action": {"new"}, "ticket": {"1001"}, "symbol": {"EURUSD"}, "type": {"1"}, "lots": {"0.25"},
		"openTime": {"2024.05.01 09:30:00"},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.dashboard(http.MethodGet, "/api/user/accounts", aliceJWT)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["count"])

	rec = s.dashboard(http.MethodGet, "/api/user/accounts/42/trades", aliceJWT)
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeBody(t, rec)["data"].(map[string]interface{})
	require.Equal(t, float64(1), data["count"])
	trade := data["trades"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "1001", trade["ticket"])
	assert.Equal(t, "SELL", trade["type_name"])
	assert.Equal(t, "0.25", trade["lots"])
	assert.Equal(t, "2024.05.01 09:30:00", trade["open_time"])
	assert.Equal(t, "2024-05-01T09:30:00Z", trade["opened_at"])

	rec = s.dashboard(http.MethodGet, "/api/user/accounts", bobJWT)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["data"].(map[string]interface{})["count"])

	rec = s.dashboard(http.MethodGet, "/api/user/accounts/42/trades", bobJWT)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["data"].(map[string]interface{})["count"])
}

func TestDashboard_Me(t *testing.T) {
	s := newTestServer(t)
	userID, _, jwt := s.newUser(t, "Me@Example.com")

	rec := s.dashboard(http.MethodGet, "/api/user/me", jwt)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	me := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, userID.String(), me["id"])
	assert.Equal(t, "me@example.com", me["email"])

	// Signed for a user that was never provisioned
	ghost, err := middleware.GenerateJWT(testJWTSecret, uuid.New(), time.Hour)
	require.NoError(t, err)
	rec = s.dashboard(http.MethodGet, "/api/user/me", ghost)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboard_UnparsableOpenTimeIsKeptVerbatim(t *testing.T) {
	s := newTestServer(t)
	_, cred, jwt := s.newUser(t, "a@example.com")
	token := s.link(t, cred, "42")

	rec := s.postForm("/trades", url.Values{
		"token": {token}, "action": {"new"}, "ticket": {"1"}, "openTime": {"yesterday"},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.dashboard(http.MethodGet, "/api/user/accounts/42/trades", jwt)
	require.Equal(t, http.StatusOK, rec.Code)
	trade := decodeBody(t, rec)["data"].(map[string]interface{})["trades"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "yesterday", trade["open_time"])
	assert.NotContains(t, trade, "opened_at")
}
