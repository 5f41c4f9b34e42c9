package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/hisabi-admin/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Listener is notified after every change of the authenticated flag.
type Listener func(authenticated bool)

// Store is the single source of truth for the admin credential. It is
// created once at startup with Initialize and mutated only through Login
// and Logout.
type Store struct {
	repo Repo

	mu         sync.RWMutex
	credential string
	listeners  []Listener
}

var _ oauth2.TokenSource = (*Store)(nil)

// Initialize reads the persisted credential. A missing credential yields an
// unauthenticated store; an unreadable one is logged, cleared and treated as missing.
func Initialize(repo Repo) (*Store, error) {
	if repo == nil {
		return nil, fmt.Errorf("[session Initialize] repo is required")
	}

	s := &Store{repo: repo}
	persisted, err := repo.Load()
	switch {
	case err == nil:
		s.credential = persisted.Token
	case errors.Is(err, ErrSessionNotFound):
	default:
		log.Warn().Err(err).Msg("Discarding unreadable session")
		if clearErr := repo.Clear(); clearErr != nil {
			return nil, fmt.Errorf("[session Initialize] clear unreadable session: %w", clearErr)
		}
	}
	return s, nil
}

// Login persists an already validated credential and marks the store authenticated.
func (s *Store) Login(credential string) error {
	if credential == "" {
		return apperrors.Wrapf(apperrors.ErrRequiredField, "[Store Login] credential")
	}

	s.mu.Lock()
	if err := s.repo.Save(Session{Token: credential, CreatedAt: NowTimeFunc()}); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("[Store Login] persist: %w", err)
	}
	s.credential = credential
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	notify(listeners, true)
	return nil
}

// Logout clears the persisted and in-memory credential. The in-memory
// credential is dropped even when the repo fails, so later requests go
// out unauthenticated.
func (s *Store) Logout() error {
	s.mu.Lock()
	had := s.credential != ""
	s.credential = ""
	err := s.repo.Clear()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	if had {
		notify(listeners, false)
	}
	if err != nil {
		return fmt.Errorf("[Store Logout] clear: %w", err)
	}
	return nil
}

// Authenticated is exactly "a credential is present".
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential != ""
}

// Credential returns the raw credential or "" when signed out
func (s *Store) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

// Token implements oauth2.TokenSource. It returns ErrNoCredential when signed out.
func (s *Store) Token() (*oauth2.Token, error) {
	credential := s.Credential()
	if credential == "" {
		return nil, apperrors.ErrNoCredential
	}
	return &oauth2.Token{AccessToken: credential, TokenType: "Bearer"}, nil
}

// OnChange registers a listener for authentication changes
func (s *Store) OnChange(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func notify(listeners []Listener, authenticated bool) {
	for _, l := range listeners {
		l(authenticated)
	}
}
