package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tradelink/internal/domain"
)

// DefaultTerminalName labels accounts whose terminal did not identify itself
const DefaultTerminalName = "MetaTrader"

// TokenIssuer mints terminal session tokens
type TokenIssuer interface {
	Issue(userID uuid.UUID, accountID string) (string, error)
}

// TerminalLogin is the form a terminal submits to link an account
type TerminalLogin struct {
	Username  string
	Password  string
	Terminal  string
	AccountID string
}

// TerminalAuthService links terminal accounts to users
type TerminalAuthService struct {
	credentials     *CredentialService
	accountRepo     domain.AccountRepository
	tokens          TokenIssuer
	publisher       domain.EventPublisher
	defaultTerminal string
	now             func() time.Time
	log             zerolog.Logger
}

// NewTerminalAuthService creates a new TerminalAuthService
func NewTerminalAuthService(
	credentials *CredentialService,
	accountRepo domain.AccountRepository,
	tokens TokenIssuer,
	publisher domain.EventPublisher,
	defaultTerminal string,
	log zerolog.Logger,
) *TerminalAuthService {
	if defaultTerminal == "" {
		defaultTerminal = DefaultTerminalName
	}
	return &TerminalAuthService{
		credentials:     credentials,
		accountRepo:     accountRepo,
		tokens:          tokens,
		publisher:       orNoop(publisher),
		defaultTerminal: defaultTerminal,
		now:             time.Now,
		log:             log.With().Str("component", "terminal_auth").Logger(),
	}
}

// Authenticate checks the terminal credential, records the account
// connection and returns a session token for (user, account).
func (s *TerminalAuthService) Authenticate(ctx context.Context, login TerminalLogin) (string, error) {
	accountID := strings.TrimSpace(login.AccountID)
	if accountID == "" {
		return "", domain.InvalidRequest("missing account")
	}

	userID, err := s.credentials.Find(ctx, login.Username, login.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			s.log.Info().Str("username", login.Username).Str("account_id", accountID).Msg("Terminal authentication rejected")
		}
		return "", err
	}

	terminal := strings.TrimSpace(login.Terminal)
	if terminal == "" {
		terminal = s.defaultTerminal
	}

	now := s.now()
	account := &domain.Account{
		UserID:        userID,
		AccountID:     accountID,
		Terminal:      terminal,
		LastConnected: now,
		IsActive:      true,
	}
	if err := s.accountRepo.Upsert(ctx, account); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	token, err := s.tokens.Issue(userID, accountID)
	if err != nil {
		return "", err
	}

	s.log.Info().Str("user_id", userID.String()).Str("account_id", accountID).Str("terminal", terminal).Msg("Terminal linked")
	publishChange(ctx, s.publisher, s.log, domain.EventAccountLinked, userID, accountID, "", now)

	return token, nil
}
