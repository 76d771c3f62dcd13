// Package auth holds the client's authentication state: the active
// credential, its durable persistence, and notification of login/logout
// transitions.
package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/ethanbaker/docchat/pkg/errs"
	"github.com/ethanbaker/docchat/pkg/store"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Reason describes why the authentication state changed
type Reason string

const (
	ReasonLogin       Reason = "login"
	ReasonLogout      Reason = "logout"
	ReasonInvalidated Reason = "invalidated" // the server rejected the credential
)

// Event is delivered to listeners after every state transition
type Event struct {
	Authenticated bool
	Reason        Reason
}

// Listener receives state-change notifications. Listeners run synchronously
// on the goroutine that caused the transition, after the new state is visible.
type Listener func(ctx context.Context, ev Event)

// Session is the single source of truth for "is the user authenticated".
// Only Session writes the credential.
type Session struct {
	store  store.Store
	logger *zap.Logger

	mu         sync.RWMutex
	credential Credential
	listeners  []Listener
}

// NewSession creates a logged-out session over the given store
func NewSession(s store.Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		store:  s,
		logger: logger.Named("auth"),
	}
}

// Subscribe registers a listener for state changes
func (s *Session) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// RestoreOnStart reads the persisted credential and, if one exists, marks the
// session authenticated without contacting the server. A missing or unreadable
// credential leaves the session logged out. No notification is emitted.
func (s *Session) RestoreOnStart(ctx context.Context) bool {
	value, err := s.store.Get(ctx, store.KeyToken)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			s.logger.Warn("could not read persisted credential, starting logged out", zap.Error(err))
		}
		return false
	}

	cred := NewCredential(value)
	if cred.IsZero() {
		return false
	}

	s.mu.Lock()
	s.credential = cred
	s.mu.Unlock()

	s.logger.Debug("restored credential", zap.String("token", cred.Redacted()))
	return true
}

// Login persists the credential and marks the session authenticated
func (s *Session) Login(ctx context.Context, cred Credential) error {
	if cred.IsZero() {
		return errs.Validation("credential is empty")
	}

	if err := s.store.Set(ctx, store.KeyToken, cred.Value); err != nil {
		return err
	}

	s.mu.Lock()
	s.credential = cred
	s.mu.Unlock()

	s.logger.Info("logged in", zap.String("token", cred.Redacted()))
	s.notify(ctx, Event{Authenticated: true, Reason: ReasonLogin})
	return nil
}

// Logout clears the credential. It always succeeds locally; a failure to
// remove the persisted token is logged.
func (s *Session) Logout(ctx context.Context) {
	s.clear(ctx, ReasonLogout)
}

// Invalidate logs the session out after the server rejected the credential
func (s *Session) Invalidate(ctx context.Context) {
	s.logger.Warn("credential rejected by server, logging out")
	s.clear(ctx, ReasonInvalidated)
}

func (s *Session) clear(ctx context.Context, reason Reason) {
	if err := s.store.Delete(ctx, store.KeyToken); err != nil {
		s.logger.Error("failed to remove persisted credential", zap.Error(err))
	}

	s.mu.Lock()
	s.credential = Credential{}
	s.mu.Unlock()

	s.logger.Info("logged out", zap.String("reason", string(reason)))
	s.notify(ctx, Event{Authenticated: false, Reason: reason})
}

func (s *Session) notify(ctx context.Context, ev Event) {
	s.mu.RLock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(ctx, ev)
	}
}

// IsAuthenticated reports whether a credential is held
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.credential.IsZero()
}

// Credential returns the active credential, if any
func (s *Session) Credential() (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential, !s.credential.IsZero()
}

// Token implements oauth2.TokenSource over the active credential
func (s *Session) Token() (*oauth2.Token, error) {
	cred, ok := s.Credential()
	if !ok {
		return nil, errs.ErrUnauthorized
	}
	return &oauth2.Token{AccessToken: cred.Value, TokenType: "Bearer"}, nil
}
