package handler

import (
	"errors"
	"net/http"

	"qr-menu/internal/i18n"
	"qr-menu/internal/model"
	"qr-menu/internal/ordering"
	"qr-menu/internal/session"

	"github.com/rs/zerolog"
)

// CheckoutResponse is returned when an order is accepted. CloseCart tells
// the client to dismiss the cart view.
type CheckoutResponse struct {
	Order     model.OrderSnapshot `json:"order"`
	CloseCart bool                `json:"closeCart"`
	Session   SessionView         `json:"session"`
}

// TrackingResponse is the status view of the current order.
type TrackingResponse struct {
	Order       model.OrderSnapshot `json:"order"`
	Step        ordering.Step       `json:"step"`
	Label       string              `json:"label"`
	Description string              `json:"description"`
}

// CheckoutHandler submits carts and serves the order tracking view.
type CheckoutHandler struct {
	flow   *ordering.Flow
	store  session.Store
	gate   *session.Gate
	logger zerolog.Logger
}

// NewCheckoutHandler creates a checkout handler.
func NewCheckoutHandler(flow *ordering.Flow, store session.Store, gate *session.Gate, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		flow:   flow,
		store:  store,
		gate:   gate,
		logger: logger.With().Str("handler", "checkout").Logger(),
	}
}

// Checkout handles POST /api/checkout.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := session.IDFromContext(ctx)

	state, err := h.flow.PlaceOrder(ctx, sid)
	if err != nil {
		lang := string(state.Language)
		switch {
		case errors.Is(err, ordering.ErrEmptyCart):
			writeError(w, http.StatusConflict, i18n.T(lang, i18n.KeyCartEmpty), h.logger)
		case errors.Is(err, ordering.ErrOrderInProgress):
			writeError(w, http.StatusConflict, i18n.T(lang, i18n.KeyProcessing), h.logger)
		case errors.Is(err, session.ErrNoTable):
			writeError(w, http.StatusBadRequest, i18n.T(lang, i18n.KeySelectTable), h.logger)
		case errors.Is(err, ordering.ErrSubmitFailed):
			h.logger.Error().Err(err).Str("session_id", sid).Msg("checkout failed")
			writeError(w, http.StatusBadGateway, i18n.T(lang, i18n.KeyOrderFailed), h.logger)
		default:
			writeError(w, http.StatusInternalServerError, "failed to place order", h.logger)
		}
		return
	}

	writeJSON(w, http.StatusCreated, CheckoutResponse{
		Order:     *state.CurrentOrder,
		CloseCart: true,
		Session:   newSessionView(state, h.gate),
	})
}

// Tracking handles GET /api/order/tracking.
func (h *CheckoutHandler) Tracking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := session.IDFromContext(ctx)

	view, err := h.flow.Tracking(ctx, sid)
	if err != nil {
		if errors.Is(err, ordering.ErrNoCurrentOrder) {
			writeError(w, http.StatusNotFound, "no current order", h.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load order", h.logger)
		return
	}

	state, err := h.store.Load(ctx, sid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load session", h.logger)
		return
	}
	lang := string(state.Language)

	writeJSON(w, http.StatusOK, TrackingResponse{
		Order:       view.Order,
		Step:        view.Step,
		Label:       view.Step.Label(lang),
		Description: view.Step.Description(lang),
	})
}

// DismissTracking handles DELETE /api/order/tracking.
func (h *CheckoutHandler) DismissTracking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.flow.DismissTracking(ctx, session.IDFromContext(ctx))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update session", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(state, h.gate))
}
