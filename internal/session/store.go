// Package session keeps per-client ordering state, the durable table
// binding and the staff login keys.
package session

import (
	"context"
	"errors"
	"time"

	"qr-menu/internal/cart"

	"github.com/google/uuid"
)

// ErrConflict is returned when an update kept losing to concurrent writers.
var ErrConflict = errors.New("session update conflict")

// UpdateFunc transforms the current state of a session. Returning an error
// aborts the update and leaves the stored state untouched.
type UpdateFunc func(cart.State) (cart.State, error)

// AdminSession is the pair of session-scoped keys written on staff login.
type AdminSession struct {
	Authenticated bool
	LoginTime     time.Time
}

// Store persists session state.
//
// Update is atomic per session: concurrent updates to the same session are
// applied one after the other, never interleaved. Whenever the resulting
// state carries a table number it is also written to the durable table key,
// which outlives the rest of the session and seeds Load for a fresh one.
type Store interface {
	Load(ctx context.Context, sid string) (cart.State, error)
	Update(ctx context.Context, sid string, fn UpdateFunc) (cart.State, error)

	SetAdmin(ctx context.Context, sid string, loginTime time.Time) error
	Admin(ctx context.Context, sid string) (AdminSession, error)
	ClearAdmin(ctx context.Context, sid string) error

	Close() error
}

// NewID returns a fresh session identifier.
func NewID() string {
	return uuid.NewString()
}

func restoreTable(state cart.State, table int, ok bool) cart.State {
	if !ok {
		return state
	}
	return state.SetTableNumber(table)
}
