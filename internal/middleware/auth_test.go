package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runAuth(t *testing.T, secret string, prepare func(*http.Request)) (*httptest.ResponseRecorder, uuid.UUID, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/user/accounts", nil)
	if prepare != nil {
		prepare(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen uuid.UUID
	handler := AuthMiddleware(secret)(func(c echo.Context) error {
		id, err := GetUserID(c)
		if err != nil {
			return err
		}
		seen = id
		return c.NoContent(http.StatusOK)
	})
	return rec, seen, handler(c)
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}

func TestAuthMiddleware_AcceptsTokenSources(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateJWT("secret", userID, time.Hour)
	require.NoError(t, err)

	sources := map[string]func(*http.Request){
		"header": func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
		"query": func(r *http.Request) {
			q := r.URL.Query()
			q.Set("access_token", token)
			r.URL.RawQuery = q.Encode()
		},
		"cookie": func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "token", Value: token}) },
	}
	for name, prepare := range sources {
		t.Run(name, func(t *testing.T) {
			rec, seen, err := runAuth(t, "secret", prepare)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, userID, seen)
		})
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	valid, err := GenerateJWT("secret", uuid.New(), time.Hour)
	require.NoError(t, err)
	expired, err := GenerateJWT("secret", uuid.New(), -time.Minute)
	require.NoError(t, err)
	foreign, err := GenerateJWT("other", uuid.New(), time.Hour)
	require.NoError(t, err)
	nilUser, err := GenerateJWT("secret", uuid.Nil, time.Hour)
	require.NoError(t, err)

	cases := map[string]string{
		"missing":      "",
		"not bearer":   "Token " + valid,
		"expired":      "Bearer " + expired,
		"wrong secret": "Bearer " + foreign,
		"nil user":     "Bearer " + nilUser,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := runAuth(t, "secret", func(r *http.Request) {
				if header != "" {
					r.Header.Set("Authorization", header)
				}
			})
			assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))
		})
	}
}
