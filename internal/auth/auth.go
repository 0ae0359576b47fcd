// Package auth gates the staff dashboard behind a single configured
// username and password. It is a placeholder, not an identity provider.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"qr-menu/internal/session"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Login on a username or password mismatch.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Authenticator checks staff credentials and tracks login expiry per session.
type Authenticator struct {
	username string
	hash     []byte
	ttl      time.Duration
	store    session.Store
	now      func() time.Time
	logger   zerolog.Logger
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

// New hashes password and returns an Authenticator whose logins last ttl.
func New(username, password string, ttl time.Duration, store session.Store, logger zerolog.Logger, opts ...Option) (*Authenticator, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	a := &Authenticator{
		username: username,
		hash:     hash,
		ttl:      ttl,
		store:    store,
		now:      time.Now,
		logger:   logger.With().Str("component", "admin-auth").Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Login checks the credentials and, on a match, records the login time
// for sid. A mismatch is not counted or throttled.
func (a *Authenticator) Login(ctx context.Context, sid, username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(a.hash, []byte(password))
	if !userOK || passErr != nil {
		a.logger.Warn().Str("session_id", sid).Msg("admin login rejected")
		return ErrInvalidCredentials
	}

	if err := a.store.SetAdmin(ctx, sid, a.now()); err != nil {
		return err
	}

	a.logger.Info().Str("session_id", sid).Msg("admin logged in")
	return nil
}

// Authenticated reports whether sid holds a login no older than the TTL.
// An expired login is removed as a side effect.
func (a *Authenticator) Authenticated(ctx context.Context, sid string) (bool, error) {
	admin, err := a.store.Admin(ctx, sid)
	if err != nil {
		return false, err
	}
	if !admin.Authenticated {
		return false, nil
	}

	if a.now().Sub(admin.LoginTime) > a.ttl {
		a.logger.Info().Str("session_id", sid).Msg("admin session expired")
		if err := a.store.ClearAdmin(ctx, sid); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// Logout removes the login of sid.
func (a *Authenticator) Logout(ctx context.Context, sid string) error {
	return a.store.ClearAdmin(ctx, sid)
}
