package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tradelink/internal/middleware"
	"tradelink/internal/notify"
	"tradelink/internal/repository/memory"
	"tradelink/internal/service"
	"tradelink/internal/websocket"
)

const testJWTSecret = "jwt-secret"

type testServer struct {
	e           *echo.Echo
	store       *memory.Store
	users       *service.UserService
	credentials *service.CredentialService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := zerolog.Nop()
	store := memory.NewStore()
	broker := notify.NewLocalBroker()
	codec := middleware.NewSessionCodec("session-secret")

	users := service.NewUserService(store.Users())
	credentials := service.NewCredentialService(store.Credentials(), store.Users(), broker, log, service.WithHashCost(bcrypt.MinCost))
	auth := service.NewTerminalAuthService(credentials, store.Accounts(), codec, broker, "", log)
	ingestion := service.NewIngestionService(store.Trades(), codec, broker, time.Hour, log)

	e := echo.New()
	SetupRoutes(e, &RouterConfig{
		AuthHandler:  NewAuthHandler(auth, log),
		TradeHandler: NewTradeHandler(ingestion, log),
		UserHandler:  NewUserHandler(users, credentials, store.Accounts(), store.Trades(), websocket.NewHub(broker, log), log),
		JWTSecret:    testJWTSecret,
		Log:          log,
	})

	return &testServer{
		e:           e,
		store:       store,
		users:       users,
		credentials: credentials,
	}
}

func (s *testServer) postForm(path string, form url.Values, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) dashboard(method, path, jwt string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if jwt != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+jwt)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// newUser creates a user with terminal credentials and a dashboard JWT
func (s *testServer) newUser(t *testing.T, email string) (uuid.UUID, *service.Credential, string) {
	t.Helper()
	ctx := context.Background()

	user, err := s.users.Ensure(ctx, email)
	require.NoError(t, err)
	cred, err := s.credentials.Issue(ctx, user.ID)
	require.NoError(t, err)
	jwt, err := middleware.GenerateJWT(testJWTSecret, user.ID, time.Hour)
	require.NoError(t, err)
	return user.ID, cred, jwt
}

// link authenticates a terminal and returns its session token
func (s *testServer) link(t *testing.T, cred *service.Credential, account string) string {
	t.Helper()
	rec := s.postForm("/auth", url.Values{
		"username": {cred.Username},
		"password": {cred.Password},
		"account":  {account},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body["token"])
	return body["token"]
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}
