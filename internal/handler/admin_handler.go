package handler

import (
	"errors"
	"net/http"

	"qr-menu/internal/auth"
	"qr-menu/internal/i18n"
	"qr-menu/internal/model"
	"qr-menu/internal/ordering"
	"qr-menu/internal/session"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// statuses lists the values staff may pick, in kitchen order.
var statuses = []model.OrderStatus{
	model.OrderStatusPending,
	model.OrderStatusPreparing,
	model.OrderStatusPrepared,
	model.OrderStatusServed,
}

// LoginRequest is the body of POST /api/admin/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminOrder is an order with its status label in the session language.
type AdminOrder struct {
	model.Order
	StatusLabel string `json:"statusLabel"`
}

// StatusOption is one entry of the status picker.
type StatusOption struct {
	Value model.OrderStatus `json:"value"`
	Label string            `json:"label"`
}

// AdminView is the staff dashboard. Orders are only present after login.
type AdminView struct {
	Authenticated bool           `json:"authenticated"`
	Orders        []AdminOrder   `json:"orders,omitempty"`
	Statuses      []StatusOption `json:"statuses,omitempty"`
	Message       string         `json:"message,omitempty"`
}

// StatusResponse is returned after a status change.
type StatusResponse struct {
	Order   AdminOrder `json:"order"`
	Message string     `json:"message"`
}

// AdminHandler serves the staff dashboard.
type AdminHandler struct {
	auth   *auth.Authenticator
	orders ordering.OrderClient
	store  session.Store
	logger zerolog.Logger
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(authenticator *auth.Authenticator, orders ordering.OrderClient, store session.Store, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		auth:   authenticator,
		orders: orders,
		store:  store,
		logger: logger.With().Str("handler", "admin").Logger(),
	}
}

// Dashboard handles GET /admin. Without a valid login it reports
// authenticated=false so the client shows the login form.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ok, lang, err := h.check(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load session", h.logger)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, AdminView{Authenticated: false})
		return
	}

	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list orders")
		writeJSON(w, http.StatusOK, AdminView{
			Authenticated: true,
			Orders:        []AdminOrder{},
			Statuses:      statusOptions(lang),
			Message:       i18n.T(lang, i18n.KeyStatusUpdateError),
		})
		return
	}

	writeJSON(w, http.StatusOK, AdminView{
		Authenticated: true,
		Orders:        labelOrders(orders, lang),
		Statuses:      statusOptions(lang),
	})
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	ctx := r.Context()
	sid := session.IDFromContext(ctx)
	if err := h.auth.Login(ctx, sid, req.Username, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, i18n.T(h.language(r), i18n.KeyInvalidLogin), h.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to store login", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, AdminView{Authenticated: true})
}

// Logout handles POST /api/admin/logout.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.auth.Logout(ctx, session.IDFromContext(ctx)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear login", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, AdminView{Authenticated: false})
}

// Orders handles GET /api/admin/orders.
func (h *AdminHandler) Orders(w http.ResponseWriter, r *http.Request) {
	lang, ok := h.require(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list orders")
		writeError(w, http.StatusBadGateway, "failed to retrieve orders", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, labelOrders(orders, lang))
}

// UpdateStatus handles PATCH /api/admin/orders/{id}.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	lang, ok := h.require(w, r)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return
	}

	var req model.StatusUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	if !req.Status.Valid() {
		writeDomainError(w, model.ErrInvalidStatus, "failed to update order", h.logger)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), orderID.String(), req.Status)
	if err != nil {
		var apiErr *ordering.APIError
		switch {
		case errors.Is(err, model.ErrOrderNotFound),
			errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
			writeError(w, http.StatusNotFound, i18n.T(lang, i18n.KeyStatusUpdateError), h.logger)
		case errors.Is(err, model.ErrInvalidStatus),
			errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest:
			writeError(w, http.StatusBadRequest, i18n.T(lang, i18n.KeyStatusUpdateError), h.logger)
		default:
			h.logger.Error().Err(err).Msg("failed to update order status")
			writeError(w, http.StatusBadGateway, i18n.T(lang, i18n.KeyStatusUpdateError), h.logger)
		}
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{
		Order:   AdminOrder{Order: *order, StatusLabel: i18n.StatusLabel(lang, order.Status)},
		Message: i18n.T(lang, i18n.KeyStatusUpdated),
	})
}

// check reports whether the caller holds a live login, and its language.
func (h *AdminHandler) check(r *http.Request) (bool, string, error) {
	ctx := r.Context()
	ok, err := h.auth.Authenticated(ctx, session.IDFromContext(ctx))
	if err != nil {
		return false, "", err
	}
	return ok, h.language(r), nil
}

// require writes a 401 unless the caller holds a live login.
func (h *AdminHandler) require(w http.ResponseWriter, r *http.Request) (string, bool) {
	ok, lang, err := h.check(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load session", h.logger)
		return "", false
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "admin login required", h.logger)
		return "", false
	}
	return lang, true
}

func (h *AdminHandler) language(r *http.Request) string {
	ctx := r.Context()
	state, err := h.store.Load(ctx, session.IDFromContext(ctx))
	if err != nil {
		return ""
	}
	return string(state.Language)
}

func labelOrders(orders []model.Order, lang string) []AdminOrder {
	out := make([]AdminOrder, len(orders))
	for i, o := range orders {
		out[i] = AdminOrder{Order: o, StatusLabel: i18n.StatusLabel(lang, o.Status)}
	}
	return out
}

func statusOptions(lang string) []StatusOption {
	out := make([]StatusOption, len(statuses))
	for i, s := range statuses {
		out[i] = StatusOption{Value: s, Label: i18n.StatusLabel(lang, s)}
	}
	return out
}
