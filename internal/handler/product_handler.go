package handler

import (
	"errors"
	"net/http"
	"strconv"

	"qr-menu/internal/model"
	"qr-menu/internal/repository"
	"qr-menu/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// GetAll handles GET /api/products. Without query parameters it returns the
// whole catalogue; categoryId, limit and offset narrow it.
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	var filter repository.ProductFilter
	query := r.URL.Query()

	if v := query.Get("categoryId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid categoryId parameter", h.logger)
			return
		}
		filter.CategoryID = id
	}

	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit parameter", h.logger)
			return
		}
		filter.Limit = limit
	}

	if v := query.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid offset parameter", h.logger)
			return
		}
		filter.Offset = offset
	}

	products, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, toDTOs(products))
}

// GetTop handles GET /api/products/top.
func (h *ProductHandler) GetTop(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.GetTop(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, toDTOs(products))
}

// GetByID handles GET /api/products/{id}.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product ID", h.logger)
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product not found", h.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to retrieve product", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product.ToDTO())
}

func toDTOs(products []model.Product) []model.ProductDTO {
	dtos := make([]model.ProductDTO, len(products))
	for i, p := range products {
		dtos[i] = p.ToDTO()
	}
	return dtos
}
