package handler

import (
	"net/http"
	"strconv"

	"qr-menu/internal/model"
	"qr-menu/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	ack, err := h.service.CreateOrder(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, "failed to create order", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, ack)
}

// List handles GET /api/orders requests, newest first.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		var err error
		limit, err = strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit parameter", h.logger)
			return
		}
	}

	orders, err := h.service.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve orders", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return
	}

	order, err := h.service.GetByID(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err, "failed to retrieve order", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PATCH /api/orders/{id} requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
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

	order, err := h.service.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		writeDomainError(w, err, "failed to update order", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
