// Package memory provides in-process implementations of the domain
// repositories. Each write replaces or merges a single key under one lock,
// mirroring the per-row atomicity of the Postgres upserts.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"tradelink/internal/domain"
)

type accountKey struct {
	userID    uuid.UUID
	accountID string
}

type tradeKey struct {
	userID    uuid.UUID
	accountID string
	ticket    string
}

// Store holds all tenants' data behind a single mutex
type Store struct {
	mu          sync.RWMutex
	users       map[uuid.UUID]domain.User
	credentials map[uuid.UUID]domain.TerminalCredential
	accounts    map[accountKey]domain.Account
	trades      map[tradeKey]domain.Trade
	writeErr    error
	writes      int
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:       make(map[uuid.UUID]domain.User),
		credentials: make(map[uuid.UUID]domain.TerminalCredential),
		accounts:    make(map[accountKey]domain.Account),
		trades:      make(map[tradeKey]domain.Trade),
	}
}

// FailWrites makes every subsequent write return err. Pass nil to recover.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Writes reports how many writes succeeded
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// TradeCount reports the number of stored trades across all tenants
func (s *Store) TradeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trades)
}

func (s *Store) Users() *UserRepository             { return &UserRepository{s} }
func (s *Store) Credentials() *CredentialRepository { return &CredentialRepository{s} }
func (s *Store) Accounts() *AccountRepository       { return &AccountRepository{s} }
func (s *Store) Trades() *TradeRepository           { return &TradeRepository{s} }

// ErrForeignKey is returned for writes referencing a missing parent row,
// where Postgres would raise a foreign key violation.
var ErrForeignKey = errors.New("foreign key violation")

// write runs fn under the write lock unless writes are failing
func (s *Store) write(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	if err := fn(); err != nil {
		return err
	}
	s.writes++
	return nil
}

// requireUser must be called with the lock held
func (s *Store) requireUser(userID uuid.UUID) error {
	if _, ok := s.users[userID]; !ok {
		return fmt.Errorf("%w: user %s does not exist", ErrForeignKey, userID)
	}
	return nil
}

// UserRepository is the in-memory domain.UserRepository
type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	return r.s.write(func() error {
		r.s.users[user.ID] = *user
		return nil
	})
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

// CredentialRepository is the in-memory domain.CredentialRepository
type CredentialRepository struct{ s *Store }

func (r *CredentialRepository) Save(_ context.Context, cred *domain.TerminalCredential) error {
	return r.s.write(func() error {
		if err := r.s.requireUser(cred.UserID); err != nil {
			return err
		}
		r.s.credentials[cred.UserID] = *cred
		return nil
	})
}

func (r *CredentialRepository) FindByUsername(_ context.Context, username string) ([]*domain.TerminalCredential, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.TerminalCredential
	for _, c := range r.s.credentials {
		if c.Username == username {
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *CredentialRepository) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.TerminalCredential, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.credentials[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

// AccountRepository is the in-memory domain.AccountRepository
type AccountRepository struct{ s *Store }

func (r *AccountRepository) Upsert(_ context.Context, account *domain.Account) error {
	return r.s.write(func() error {
		if err := r.s.requireUser(account.UserID); err != nil {
			return err
		}
		key := accountKey{account.UserID, account.AccountID}
		merged, ok := r.s.accounts[key]
		if !ok {
			merged = *account
			merged.CreatedAt = account.LastConnected
		}
		merged.Terminal = account.Terminal
		merged.LastConnected = account.LastConnected
		merged.IsActive = account.IsActive
		r.s.accounts[key] = merged
		return nil
	})
}

func (r *AccountRepository) GetByUserID(_ context.Context, userID uuid.UUID) ([]*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Account
	for k, a := range r.s.accounts {
		if k.userID == userID {
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastConnected.After(out[j].LastConnected) })
	return out, nil
}

func (r *AccountRepository) MarkIdle(_ context.Context, before time.Time) (int64, error) {
	var n int64
	err := r.s.write(func() error {
		for k, a := range r.s.accounts {
			if a.IsActive && a.LastConnected.Before(before) {
				a.IsActive = false
				r.s.accounts[k] = a
				n++
			}
		}
		return nil
	})
	return n, err
}

// TradeRepository is the in-memory domain.TradeRepository
type TradeRepository struct{ s *Store }

func (r *TradeRepository) Upsert(_ context.Context, trade *domain.Trade) error {
	return r.s.write(func() error {
		if _, ok := r.s.accounts[accountKey{trade.UserID, trade.AccountID}]; !ok {
			return fmt.Errorf("%w: account %s of user %s does not exist", ErrForeignKey, trade.AccountID, trade.UserID)
		}
		key := tradeKey{trade.UserID, trade.AccountID, trade.Ticket}
		stored := *trade
		if prev, ok := r.s.trades[key]; ok {
			stored.CreatedAt = prev.CreatedAt
		}
		r.s.trades[key] = stored
		return nil
	})
}

func (r *TradeRepository) GetByAccount(_ context.Context, userID uuid.UUID, accountID string) ([]*domain.Trade, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Trade
	for k, t := range r.s.trades {
		if k.userID == userID && k.accountID == accountID {
			out = append(out, &t)
		}
	}
	// created_at DESC like the SQL query; ticket keeps equal timestamps stable
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Ticket < out[j].Ticket
	})
	return out, nil
}

var (
	_ domain.UserRepository       = (*UserRepository)(nil)
	_ domain.CredentialRepository = (*CredentialRepository)(nil)
	_ domain.AccountRepository    = (*AccountRepository)(nil)
	_ domain.TradeRepository      = (*TradeRepository)(nil)
)
