package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"tradelink/internal/domain"
)

const (
	usernamePrefix   = "user_"
	usernameIDChars  = 8
	passwordLength   = 12
	passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*"
)

// Credential is a freshly issued terminal login. The password is only ever
// available here; storage keeps a bcrypt hash.
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CredentialOption customizes a CredentialService
type CredentialOption func(*CredentialService)

// WithHashCost sets the bcrypt cost
func WithHashCost(cost int) CredentialOption {
	return func(s *CredentialService) { s.hashCost = cost }
}

// CredentialService issues and verifies terminal credentials
type CredentialService struct {
	credRepo  domain.CredentialRepository
	userRepo  domain.UserRepository
	publisher domain.EventPublisher
	hashCost  int
	random    io.Reader
	now       func() time.Time
	log       zerolog.Logger
}

// NewCredentialService creates a new CredentialService
func NewCredentialService(
	credRepo domain.CredentialRepository,
	userRepo domain.UserRepository,
	publisher domain.EventPublisher,
	log zerolog.Logger,
	opts ...CredentialOption,
) *CredentialService {
	s := &CredentialService{
		credRepo:  credRepo,
		userRepo:  userRepo,
		publisher: orNoop(publisher),
		hashCost:  bcrypt.DefaultCost,
		random:    rand.Reader,
		now:       time.Now,
		log:       log.With().Str("component", "credentials").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UsernameFor derives the stable terminal username of a user
func UsernameFor(userID uuid.UUID) string {
	return usernamePrefix + userID.String()[:usernameIDChars]
}

// Issue generates a new password for the user, replacing any previous one
func (s *CredentialService) Issue(ctx context.Context, userID uuid.UUID) (*Credential, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	password, err := s.generatePassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	cred := &domain.TerminalCredential{
		UserID:       userID,
		Username:     UsernameFor(userID),
		PasswordHash: string(hash),
		UpdatedAt:    now,
	}
	if err := s.credRepo.Save(ctx, cred); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	s.log.Info().Str("user_id", userID.String()).Str("username", cred.Username).Msg("Issued terminal credentials")
	publishChange(ctx, s.publisher, s.log, domain.EventCredentialsRotated, userID, "", "", now)

	return &Credential{Username: cred.Username, Password: password}, nil
}

// Find returns the user currently holding exactly (username, password)
func (s *CredentialService) Find(ctx context.Context, username, password string) (uuid.UUID, error) {
	if username == "" || password == "" {
		return uuid.Nil, domain.ErrInvalidCredentials
	}

	creds, err := s.credRepo.FindByUsername(ctx, username)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	for _, cred := range creds {
		if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) == nil {
			return cred.UserID, nil
		}
	}

	return uuid.Nil, domain.ErrInvalidCredentials
}

// Current returns the user's credential without its secret
func (s *CredentialService) Current(ctx context.Context, userID uuid.UUID) (*domain.TerminalCredential, error) {
	cred, err := s.credRepo.GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return cred, nil
}

func (s *CredentialService) generatePassword() (string, error) {
	limit := big.NewInt(int64(len(passwordAlphabet)))
	buf := make([]byte, passwordLength)
	for i := range buf {
		n, err := rand.Int(s.random, limit)
		if err != nil {
			return "", err
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
