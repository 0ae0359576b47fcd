package handler

import (
	"errors"
	"net/http"

	"qr-menu/internal/cart"
	"qr-menu/internal/model"
	"qr-menu/internal/session"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// AddItemRequest is the body of POST /api/cart/items.
type AddItemRequest struct {
	ProductID int64  `json:"productId"`
	Note      string `json:"note"`
}

// UpdateItemRequest is the body of PATCH /api/cart/items/{lineId}.
// Absent fields are left alone.
type UpdateItemRequest struct {
	Quantity *int    `json:"quantity"`
	Note     *string `json:"note"`
}

// CartHandler applies cart mutations to the caller's session.
type CartHandler struct {
	products ProductSource
	store    session.Store
	gate     *session.Gate
	logger   zerolog.Logger
}

// NewCartHandler creates a cart handler.
func NewCartHandler(products ProductSource, store session.Store, gate *session.Gate, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		products: products,
		store:    store,
		gate:     gate,
		logger:   logger.With().Str("handler", "cart").Logger(),
	}
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	ctx := r.Context()
	product, ok := h.findProduct(r, req.ProductID)
	if !ok {
		writeError(w, http.StatusNotFound, "product not found", h.logger)
		return
	}
	if !product.IsAvailable {
		writeDomainError(w, model.ErrUnavailable, "failed to add item", h.logger)
		return
	}

	state, err := h.store.Update(ctx, session.IDFromContext(ctx), func(s cart.State) (cart.State, error) {
		return s.AddItem(product, req.Note), nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, newSessionView(state, h.gate))
}

// UpdateItem handles PATCH /api/cart/items/{lineId}. A quantity of zero or
// less removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	lineID, err := uuid.Parse(mux.Vars(r)["lineId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid line ID", h.logger)
		return
	}

	var req UpdateItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	h.update(w, r, func(s cart.State) (cart.State, error) {
		var err error
		if req.Note != nil {
			if s, err = s.UpdateLineNote(lineID, *req.Note); err != nil {
				return s, err
			}
		}
		if req.Quantity != nil {
			return s.UpdateLineQuantity(lineID, *req.Quantity)
		}
		if s.IndexOf(lineID) < 0 {
			return s, cart.ErrLineNotFound
		}
		return s, nil
	})
}

// RemoveItem handles DELETE /api/cart/items/{lineId}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	lineID, err := uuid.Parse(mux.Vars(r)["lineId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid line ID", h.logger)
		return
	}

	h.update(w, r, func(s cart.State) (cart.State, error) {
		return s.RemoveLine(lineID)
	})
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, func(s cart.State) (cart.State, error) {
		return s.ClearCart(), nil
	})
}

func (h *CartHandler) update(w http.ResponseWriter, r *http.Request, fn session.UpdateFunc) {
	ctx := r.Context()
	state, err := h.store.Update(ctx, session.IDFromContext(ctx), fn)
	if err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			writeError(w, http.StatusNotFound, "cart line not found", h.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update cart", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(state, h.gate))
}

func (h *CartHandler) findProduct(r *http.Request, id int64) (model.Product, bool) {
	for _, p := range h.products.Products(r.Context()).Data {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}
