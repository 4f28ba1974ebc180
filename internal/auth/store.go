// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/tomtom215/cohortlens/internal/metrics"
)

var (
	// ErrUserExists is returned when signing up with an email already registered.
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound is returned by stores when no account matches.
	ErrUserNotFound = errors.New("user not found")
)

// Account is a stored identity. Password is kept as submitted.
type Account struct {
	Email    string
	Name     string
	Password string
}

// IdentityStore persists accounts keyed by email.
type IdentityStore interface {
	// Create stores acct unless its email is taken, in which case it returns ErrUserExists.
	// The check and insert are atomic.
	Create(ctx context.Context, acct Account) error

	// Get returns the account for email or ErrUserNotFound.
	Get(ctx context.Context, email string) (Account, error)

	// Count returns the number of stored accounts.
	Count(ctx context.Context) (int, error)
}

// MemoryStore is an in-process IdentityStore.
// Accounts are lost when the process exits.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewMemoryStore creates an empty in-memory identity store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]Account),
	}
}

// Create stores a new account.
func (s *MemoryStore) Create(ctx context.Context, acct Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[acct.Email]; exists {
		return ErrUserExists
	}
	s.accounts[acct.Email] = acct
	metrics.AuthUsersRegistered.Set(float64(len(s.accounts)))
	return nil
}

// Get retrieves an account by email.
func (s *MemoryStore) Get(ctx context.Context, email string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[email]
	if !ok {
		return Account{}, ErrUserNotFound
	}
	return acct, nil
}

// Count returns the number of accounts.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts), nil
}
