package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tradelink/internal/domain"
	"tradelink/internal/middleware"
	"tradelink/internal/repository/memory"
)

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Events() []domain.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ChangeEvent(nil), p.events...)
}

type fixture struct {
	store       *memory.Store
	publisher   *recordingPublisher
	codec       *middleware.SessionCodec
	users       *UserService
	credentials *CredentialService
	auth        *TerminalAuthService
	ingestion   *IngestionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	pub := &recordingPublisher{}
	codec := middleware.NewSessionCodec("test-secret")
	log := zerolog.Nop()

	credentials := NewCredentialService(store.Credentials(), store.Users(), pub, log, WithHashCost(bcrypt.MinCost))
	return &fixture{
		store:       store,
		publisher:   pub,
		codec:       codec,
		users:       NewUserService(store.Users()),
		credentials: credentials,
		auth:        NewTerminalAuthService(credentials, store.Accounts(), codec, pub, "", log),
		ingestion:   NewIngestionService(store.Trades(), codec, pub, 0, log),
	}
}

// linkedUser creates a user with a terminal credential
func (f *fixture) linkedUser(t *testing.T, email string) (uuid.UUID, *Credential) {
	t.Helper()
	ctx := context.Background()

	user, err := f.users.Ensure(ctx, email)
	require.NoError(t, err)
	cred, err := f.credentials.Issue(ctx, user.ID)
	require.NoError(t, err)
	return user.ID, cred
}

// login authenticates accountID and returns the token
func (f *fixture) login(t *testing.T, cred *Credential, accountID string) string {
	t.Helper()
	token, err := f.auth.Authenticate(context.Background(), TerminalLogin{
		Username:  cred.Username,
		Password:  cred.Password,
		AccountID: accountID,
	})
	require.NoError(t, err)
	return token
}

// session links a fresh user to accountID and returns the session a
// terminal would hold for it
func (f *fixture) session(t *testing.T, accountID string) middleware.Session {
	t.Helper()
	user, err := f.users.Ensure(context.Background(), uuid.NewString()+"@example.com")
	require.NoError(t, err)
	return f.accountFor(t, user.ID, accountID)
}

// accountFor links accountID to an existing user
func (f *fixture) accountFor(t *testing.T, userID uuid.UUID, accountID string) middleware.Session {
	t.Helper()
	require.NoError(t, f.store.Accounts().Upsert(context.Background(), &domain.Account{
		UserID:        userID,
		AccountID:     accountID,
		Terminal:      DefaultTerminalName,
		LastConnected: time.Now(),
		IsActive:      true,
	}))
	return middleware.Session{UserID: userID, AccountID: accountID, IssuedAt: time.Now()}
}

var errDown = errors.New("database is down")

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
