// Package auth tracks the operator credential.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/katworks/sandstar/internal/domain"
)

// Verifier checks an operator code against the server
type Verifier interface {
	VerifyCode(ctx context.Context, code string) error
}

// State holds the credential. Presence of a credential is what makes the
// user an operator; the server decides whether it is still valid.
type State struct {
	mu         sync.RWMutex
	credential string
	verifier   Verifier
	store      domain.StateStore
	reinit     func()
	logger     *slog.Logger
}

// NewState restores the persisted credential, if any
func NewState(verifier Verifier, store domain.StateStore, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	s := &State{verifier: verifier, store: store, logger: logger}
	cred, err := store.Credential()
	if err != nil {
		logger.Warn("failed to read stored credential", "error", err)
	}
	s.credential = cred
	return s
}

// OnChange registers the hook run after login and logout. It must reset
// every session cache and reload the current route.
func (s *State) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reinit = fn
}

// Credential returns the operator code, or "" for anonymous users
func (s *State) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

// IsOperator reports whether a credential is held
func (s *State) IsOperator() bool {
	return s.Credential() != ""
}

// Login verifies code and, on success, persists it and reinitialises the
// session. A rejected code leaves all state untouched. An empty code is
// ignored without contacting the server.
func (s *State) Login(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}

	if err := s.verifier.VerifyCode(ctx, code); err != nil {
		s.logger.Warn("operator login failed", "error", err)
		return err
	}

	if err := s.store.SaveCredential(code); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}

	s.mu.Lock()
	s.credential = code
	hook := s.reinit
	s.mu.Unlock()

	s.logger.Info("operator logged in")
	if hook != nil {
		hook()
	}
	return nil
}

// Logout forgets the credential and reinitialises the session
func (s *State) Logout() error {
	if err := s.store.ClearCredential(); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}

	s.mu.Lock()
	s.credential = ""
	hook := s.reinit
	s.mu.Unlock()

	s.logger.Info("operator logged out")
	if hook != nil {
		hook()
	}
	return nil
}
