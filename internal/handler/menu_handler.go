package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"qr-menu/internal/cart"
	"qr-menu/internal/catalog"
	"qr-menu/internal/i18n"
	"qr-menu/internal/model"
	"qr-menu/internal/session"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProductSource serves the current product list with its fetch flag.
type ProductSource interface {
	Products(ctx context.Context) catalog.Result[[]model.Product]
}

// SessionView is the client state plus what the table gate derives from it.
type SessionView struct {
	cart.State
	Phase       session.Phase   `json:"phase"`
	Dismissible bool            `json:"dismissible"`
	Tables      []int           `json:"tables"`
	TotalItems  int             `json:"totalItems"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

func newSessionView(state cart.State, gate *session.Gate) SessionView {
	return SessionView{
		State:       state,
		Phase:       gate.Phase(state),
		Dismissible: gate.Dismissible(state),
		Tables:      gate.Tables(),
		TotalItems:  state.TotalItems(),
		TotalPrice:  state.TotalPrice(),
	}
}

// CategoryView is a category with the number of products it holds.
type CategoryView struct {
	model.Category
	ProductCount int `json:"productCount"`
}

// HomeView is the landing page.
type HomeView struct {
	Cafe             model.CafeInfo  `json:"cafe"`
	Categories       []CategoryView  `json:"categories"`
	Popular          []model.Product `json:"popular"`
	CatalogAvailable bool            `json:"catalogAvailable"`
	Session          SessionView     `json:"session"`
}

// MenuView is the product list, optionally narrowed to a category or a search.
type MenuView struct {
	Categories       []CategoryView  `json:"categories"`
	Category         *model.Category `json:"category,omitempty"`
	Query            string          `json:"query,omitempty"`
	Popular          []model.Product `json:"popular,omitempty"`
	Products         []model.Product `json:"products"`
	CatalogAvailable bool            `json:"catalogAvailable"`
	Message          string          `json:"message,omitempty"`
	Session          SessionView     `json:"session"`
}

// MenuHandler renders the customer-facing views and session settings.
type MenuHandler struct {
	catalog  catalog.Service
	products ProductSource
	store    session.Store
	gate     *session.Gate
	logger   zerolog.Logger
}

// NewMenuHandler creates a menu handler.
func NewMenuHandler(svc catalog.Service, products ProductSource, store session.Store, gate *session.Gate, logger zerolog.Logger) *MenuHandler {
	return &MenuHandler{
		catalog:  svc,
		products: products,
		store:    store,
		gate:     gate,
		logger:   logger.With().Str("handler", "menu").Logger(),
	}
}

// Home handles GET /.
func (h *MenuHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.store.Load(ctx, session.IDFromContext(ctx))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load session", h.logger)
		return
	}

	products := h.products.Products(ctx)
	categories := h.catalog.GetCategories(ctx).Data

	writeJSON(w, http.StatusOK, HomeView{
		Cafe:             h.catalog.GetCafeInfo(ctx).Data,
		Categories:       countByCategory(categories, products.Data),
		Popular:          popular(products.Data),
		CatalogAvailable: products.Success,
		Session:          newSessionView(state, h.gate),
	})
}

// Menu handles GET /menu and GET /menu/{categorySlug}. A table query
// parameter, as printed on the table QR codes, binds the session at once.
func (h *MenuHandler) Menu(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := session.IDFromContext(ctx)

	state, err := h.store.Load(ctx, sid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load session", h.logger)
		return
	}

	if v := r.URL.Query().Get("table"); v != "" {
		if n, convErr := strconv.Atoi(v); convErr == nil {
			if selected, selErr := h.gate.SelectNow(ctx, sid, n); selErr == nil {
				state = selected
			} else {
				h.logger.Warn().Err(selErr).Str("table", v).Msg("ignoring table link")
			}
		} else {
			h.logger.Warn().Str("table", v).Msg("ignoring malformed table link")
		}
	}

	categories := h.catalog.GetCategories(ctx).Data
	view := MenuView{
		Query:   strings.TrimSpace(r.URL.Query().Get("q")),
		Session: newSessionView(state, h.gate),
	}

	if slug, ok := mux.Vars(r)["categorySlug"]; ok {
		category, found := catalog.CategoryBySlug(categories, slug)
		if !found {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		view.Category = &category
	}

	products := h.products.Products(ctx)
	view.CatalogAvailable = products.Success
	view.Categories = countByCategory(categories, products.Data)

	filtered := products.Data
	if view.Category != nil {
		filtered = inCategory(filtered, view.Category.ID)
	}
	if view.Query != "" {
		filtered = search(filtered, view.Query)
	}
	if filtered == nil {
		filtered = []model.Product{}
	}
	view.Products = filtered

	if view.Category == nil && view.Query == "" {
		view.Popular = popular(products.Data)
	}

	lang := string(state.Language)
	switch {
	case !products.Success:
		view.Message = i18n.T(lang, i18n.KeyCatalogOffline)
	case len(filtered) == 0:
		view.Message = i18n.T(lang, i18n.KeyNoResults)
	}

	writeJSON(w, http.StatusOK, view)
}

// Session handles GET /api/session.
func (h *MenuHandler) Session(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.store.Load(ctx, session.IDFromContext(ctx))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load session", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(state, h.gate))
}

// LanguageRequest is the body of PUT /api/session/language.
type LanguageRequest struct {
	Language cart.Language `json:"language"`
}

// SetLanguage handles PUT /api/session/language.
func (h *MenuHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	var req LanguageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	ctx := r.Context()
	state, err := h.store.Update(ctx, session.IDFromContext(ctx), func(s cart.State) (cart.State, error) {
		return s.SetLanguage(req.Language)
	})
	if err != nil {
		if errors.Is(err, cart.ErrUnknownLanguage) {
			writeError(w, http.StatusBadRequest, "language must be tr or en", h.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update session", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, newSessionView(state, h.gate))
}

// ToggleLanguage handles POST /api/session/language/toggle.
func (h *MenuHandler) ToggleLanguage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.store.Update(ctx, session.IDFromContext(ctx), func(s cart.State) (cart.State, error) {
		return s.ToggleLanguage(), nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update session", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(state, h.gate))
}

// TableRequest is the body of PUT /api/session/table.
type TableRequest struct {
	TableNumber int `json:"tableNumber"`
}

// SelectTable handles PUT /api/session/table. The response is held back by
// the gate's confirmation delay.
func (h *MenuHandler) SelectTable(w http.ResponseWriter, r *http.Request) {
	var req TableRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	ctx := r.Context()
	state, err := h.gate.Select(ctx, session.IDFromContext(ctx), req.TableNumber)
	if err != nil {
		if errors.Is(err, model.ErrInvalidTable) {
			writeDomainError(w, err, "failed to select table", h.logger)
			return
		}
		if ctx.Err() != nil {
			h.logger.Debug().Err(err).Msg("table selection abandoned")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to select table", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, newSessionView(state, h.gate))
}

// NotFound redirects unknown pages home. Unknown API paths get a JSON 404.
func NotFound(logger zerolog.Logger) http.HandlerFunc {
	api := NotFoundJSON(logger)
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			api(w, r)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func countByCategory(categories []model.Category, products []model.Product) []CategoryView {
	counts := make(map[int64]int, len(categories))
	for _, p := range products {
		counts[p.CategoryID]++
	}
	views := make([]CategoryView, len(categories))
	for i, c := range categories {
		views[i] = CategoryView{Category: c, ProductCount: counts[c.ID]}
	}
	return views
}

func popular(products []model.Product) []model.Product {
	out := []model.Product{}
	for _, p := range products {
		if p.IsPopular {
			out = append(out, p)
		}
	}
	return out
}

func inCategory(products []model.Product, categoryID int64) []model.Product {
	out := []model.Product{}
	for _, p := range products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out
}

// search matches q case-insensitively against both names and descriptions.
func search(products []model.Product, q string) []model.Product {
	q = strings.ToLower(q)
	out := []model.Product{}
	for _, p := range products {
		for _, field := range []string{p.Name, p.NameEN, p.Description, p.DescriptionEN} {
			if strings.Contains(strings.ToLower(field), q) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
