package ordering

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"qr-menu/internal/cart"
	"qr-menu/internal/model"
	"qr-menu/internal/session"

	"github.com/rs/zerolog"
)

var (
	// ErrEmptyCart is returned by PlaceOrder when there is nothing to order.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrOrderInProgress is returned when the session already has a submission in flight.
	ErrOrderInProgress = errors.New("order already in progress")

	// ErrSubmitFailed wraps every error from the order backend.
	ErrSubmitFailed = errors.New("failed to submit order")

	// ErrNoCurrentOrder is returned by Tracking when the session tracks no order.
	ErrNoCurrentOrder = errors.New("no current order")
)

// Flow turns a session's cart into a submitted order.
type Flow struct {
	store   session.Store
	gate    *session.Gate
	client  OrderClient
	tracker *Tracker
	now     func() time.Time
	logger  zerolog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewFlow wires the ordering flow.
func NewFlow(store session.Store, gate *session.Gate, client OrderClient, tracker *Tracker, logger zerolog.Logger) *Flow {
	return &Flow{
		store:    store,
		gate:     gate,
		client:   client,
		tracker:  tracker,
		now:      time.Now,
		logger:   logger.With().Str("component", "ordering-flow").Logger(),
		inFlight: make(map[string]struct{}),
	}
}

func (f *Flow) begin(sid string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.inFlight[sid]; busy {
		return false
	}
	f.inFlight[sid] = struct{}{}
	return true
}

func (f *Flow) release(sid string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.inFlight, sid)
}

// PlaceOrder submits the cart of sid. On success the acknowledged snapshot
// becomes the current order, the submitted lines leave the cart and tracking
// starts. On failure the cart is left exactly as it was.
func (f *Flow) PlaceOrder(ctx context.Context, sid string) (cart.State, error) {
	if !f.begin(sid) {
		return cart.State{}, ErrOrderInProgress
	}
	defer f.release(sid)

	state, err := f.store.Load(ctx, sid)
	if err != nil {
		return cart.State{}, err
	}
	if len(state.Items) == 0 {
		return state, ErrEmptyCart
	}
	if err := f.gate.Require(state); err != nil {
		return state, err
	}

	snapshot := state.Snapshot(f.now())

	ack, err := f.client.SubmitOrder(ctx, snapshot.Request())
	if err != nil {
		f.logger.Error().
			Err(err).
			Str("session_id", sid).
			Int("table", snapshot.TableNumber).
			Msg("order submission failed")
		return state, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}
	snapshot = snapshot.WithAck(ack)

	submitted := state.Items
	state, err = f.store.Update(ctx, sid, func(s cart.State) (cart.State, error) {
		return settle(s, submitted).SetCurrentOrder(snapshot), nil
	})
	if err != nil {
		return cart.State{}, fmt.Errorf("order %s accepted but session not updated: %w", ack.OrderID, err)
	}

	f.tracker.Open(sid, snapshot.OrderID)

	f.logger.Info().
		Str("session_id", sid).
		Str("order_id", snapshot.OrderID).
		Int("table", snapshot.TableNumber).
		Str("total", snapshot.TotalPrice.StringFixed(2)).
		Msg("order placed")

	return state, nil
}

// settle takes the submitted quantities off the cart. Lines added or
// topped up while the submission was in flight stay in the cart.
func settle(s cart.State, submitted []cart.LineItem) cart.State {
	for _, line := range submitted {
		index := s.IndexOf(line.LineID)
		if index < 0 {
			continue
		}
		s, _ = s.UpdateQuantity(index, s.Items[index].Quantity-line.Quantity)
	}
	return s
}

// TrackingView is the status view of the current order.
type TrackingView struct {
	Order model.OrderSnapshot `json:"order"`
	Step  Step                `json:"step"`
}

// Tracking returns the current order of sid and its simulated step. If the
// order is not being tracked yet, tracking restarts from StepReceived.
func (f *Flow) Tracking(ctx context.Context, sid string) (TrackingView, error) {
	state, err := f.store.Load(ctx, sid)
	if err != nil {
		return TrackingView{}, err
	}
	if state.CurrentOrder == nil {
		return TrackingView{}, ErrNoCurrentOrder
	}

	order := *state.CurrentOrder
	step, ok := f.tracker.Step(sid, order.OrderID)
	if !ok {
		f.tracker.Open(sid, order.OrderID)
		step = StepReceived
	}
	return TrackingView{Order: order, Step: step}, nil
}

// DismissTracking closes the status view: timers stop and the current
// order is forgotten.
func (f *Flow) DismissTracking(ctx context.Context, sid string) (cart.State, error) {
	f.tracker.Close(sid)
	return f.store.Update(ctx, sid, func(s cart.State) (cart.State, error) {
		return s.ClearCurrentOrder(), nil
	})
}
