package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tradelink/internal/domain"
)

// Session is what a terminal's bearer token resolves to
type Session struct {
	UserID    uuid.UUID
	AccountID string
	IssuedAt  time.Time
}

// SessionClaims is the payload of a terminal session token
type SessionClaims struct {
	UserID     string `json:"user_id"`
	AccountID  string `json:"account_id"`
	IssuedAtMs int64  `json:"iat_ms"`
	jwt.RegisteredClaims
}

// SessionCodec issues and decodes terminal session tokens. Tokens are
// HS256-signed so a userId/accountId pair alone is not enough to forge one.
type SessionCodec struct {
	secret []byte
	now    func() time.Time
}

// NewSessionCodec creates a codec signing with secret
func NewSessionCodec(secret string) *SessionCodec {
	return &SessionCodec{secret: []byte(secret), now: time.Now}
}

// Issue encodes (userID, accountID, now) into a signed token
func (c *SessionCodec) Issue(userID uuid.UUID, accountID string) (string, error) {
	now := c.now()
	claims := &SessionClaims{
		UserID:     userID.String(),
		AccountID:  accountID,
		IssuedAtMs: now.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

// Decode verifies the signature and returns the session. Age is not
// checked here; callers apply their own staleness policy to IssuedAt.
func (c *SessionCodec) Decode(token string) (Session, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithoutClaimsValidation(), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Session{}, errors.Join(domain.ErrMalformedToken, err)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Session{}, fmt.Errorf("%w: bad user id", domain.ErrMalformedToken)
	}
	if claims.AccountID == "" {
		return Session{}, fmt.Errorf("%w: missing account id", domain.ErrMalformedToken)
	}

	return Session{
		UserID:    userID,
		AccountID: claims.AccountID,
		IssuedAt:  time.UnixMilli(claims.IssuedAtMs),
	}, nil
}
