package session

import (
	"context"
	"errors"
	"time"

	"qr-menu/internal/cart"
	"qr-menu/internal/model"

	"github.com/rs/zerolog"
)

// ErrNoTable is returned when an operation needs a table and none is selected.
var ErrNoTable = errors.New("no table selected")

// Phase is the state of the table selection step.
type Phase string

const (
	PhaseNoTable  Phase = "NO_TABLE"
	PhaseTableSet Phase = "TABLE_SET"
)

// Gate binds a session to one of a fixed range of tables.
type Gate struct {
	store  Store
	tables int
	delay  time.Duration
	logger zerolog.Logger
}

// NewGate creates a gate for tables 1..tables. Select waits delay before
// committing a choice.
func NewGate(store Store, tables int, delay time.Duration, logger zerolog.Logger) *Gate {
	return &Gate{
		store:  store,
		tables: tables,
		delay:  delay,
		logger: logger.With().Str("component", "table-gate").Logger(),
	}
}

// Tables lists the selectable table numbers.
func (g *Gate) Tables() []int {
	tables := make([]int, g.tables)
	for i := range tables {
		tables[i] = i + 1
	}
	return tables
}

// Phase reports whether state is bound to a valid table.
func (g *Gate) Phase(state cart.State) Phase {
	if state.HasSelectedTable && state.TableNumber != nil && g.valid(*state.TableNumber) {
		return PhaseTableSet
	}
	return PhaseNoTable
}

// Dismissible reports whether the selection view may be closed without choosing.
func (g *Gate) Dismissible(state cart.State) bool {
	return g.Phase(state) == PhaseTableSet
}

// Require returns ErrNoTable unless state is bound to a table.
func (g *Gate) Require(state cart.State) error {
	if g.Phase(state) != PhaseTableSet {
		return ErrNoTable
	}
	return nil
}

// Select validates n, waits the confirmation delay and binds the session to n.
// Cancelling ctx during the delay abandons the selection.
func (g *Gate) Select(ctx context.Context, sid string, n int) (cart.State, error) {
	if !g.valid(n) {
		return cart.State{}, model.ErrInvalidTable
	}

	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return cart.State{}, ctx.Err()
		case <-timer.C:
		}
	}

	return g.SelectNow(ctx, sid, n)
}

// SelectNow binds the session to n without the confirmation delay. It
// serves table links encoded in QR codes.
func (g *Gate) SelectNow(ctx context.Context, sid string, n int) (cart.State, error) {
	if !g.valid(n) {
		return cart.State{}, model.ErrInvalidTable
	}

	state, err := g.store.Update(ctx, sid, func(s cart.State) (cart.State, error) {
		return s.SetTableNumber(n), nil
	})
	if err != nil {
		return cart.State{}, err
	}

	g.logger.Info().Str("session_id", sid).Int("table", n).Msg("table selected")
	return state, nil
}

func (g *Gate) valid(n int) bool {
	return n >= 1 && n <= g.tables
}
