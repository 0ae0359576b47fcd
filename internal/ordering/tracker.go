package ordering

import (
	"sync"
	"time"

	"qr-menu/internal/i18n"

	"github.com/rs/zerolog"
)

// Step is the customer-facing progress of an order.
type Step int

const (
	StepReceived Step = iota
	StepPreparing
	StepServed
)

// Label returns the localized step title.
func (s Step) Label(lang string) string {
	switch s {
	case StepPreparing:
		return i18n.T(lang, i18n.KeyStepPreparing)
	case StepServed:
		return i18n.T(lang, i18n.KeyStepServed)
	default:
		return i18n.T(lang, i18n.KeyStepReceived)
	}
}

// Description returns the localized step explanation.
func (s Step) Description(lang string) string {
	switch s {
	case StepPreparing:
		return i18n.T(lang, i18n.KeyStepPreparingDesc)
	case StepServed:
		return i18n.T(lang, i18n.KeyStepServedDesc)
	default:
		return i18n.T(lang, i18n.KeyStepReceivedDesc)
	}
}

// Tracker simulates order progress per session with two timers started
// when tracking opens. It never consults the backend.
type Tracker struct {
	preparingAfter time.Duration
	servedAfter    time.Duration
	logger         zerolog.Logger

	mu       sync.Mutex
	gen      uint64
	sessions map[string]*tracking
}

type tracking struct {
	gen     uint64
	orderID string
	step    Step
	timers  []*time.Timer
}

// NewTracker creates a tracker that moves to preparing after preparingAfter
// and to served after servedAfter, both measured from Open.
func NewTracker(preparingAfter, servedAfter time.Duration, logger zerolog.Logger) *Tracker {
	return &Tracker{
		preparingAfter: preparingAfter,
		servedAfter:    servedAfter,
		logger:         logger.With().Str("component", "order-tracker").Logger(),
		sessions:       make(map[string]*tracking),
	}
}

// Open starts tracking orderID for sid from StepReceived, replacing
// anything sid was tracking before.
func (t *Tracker) Open(sid, orderID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closeLocked(sid)

	t.gen++
	gen := t.gen
	tr := &tracking{gen: gen, orderID: orderID, step: StepReceived}
	tr.timers = []*time.Timer{
		time.AfterFunc(t.preparingAfter, func() { t.advance(sid, gen, StepPreparing) }),
		time.AfterFunc(t.servedAfter, func() { t.advance(sid, gen, StepServed) }),
	}
	t.sessions[sid] = tr

	t.logger.Debug().Str("session_id", sid).Str("order_id", orderID).Msg("tracking opened")
}

func (t *Tracker) advance(sid string, gen uint64, step Step) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr, ok := t.sessions[sid]
	if !ok || tr.gen != gen || step <= tr.step {
		return
	}
	tr.step = step
	t.logger.Debug().Str("session_id", sid).Str("order_id", tr.orderID).Int("step", int(step)).Msg("order advanced")
}

// Step returns the current step of the order sid is tracking.
func (t *Tracker) Step(sid, orderID string) (Step, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr, ok := t.sessions[sid]
	if !ok || tr.orderID != orderID {
		return StepReceived, false
	}
	return tr.step, true
}

// Close stops tracking for sid. Pending transitions never fire.
func (t *Tracker) Close(sid string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeLocked(sid)
}

func (t *Tracker) closeLocked(sid string) {
	tr, ok := t.sessions[sid]
	if !ok {
		return
	}
	for _, timer := range tr.timers {
		timer.Stop()
	}
	delete(t.sessions, sid)
}

// Stop closes every open tracking.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for sid := range t.sessions {
		t.closeLocked(sid)
	}
}
