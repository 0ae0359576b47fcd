package router

import (
	"context"
	"net/http"

	"qr-menu/internal/handler"
	"qr-menu/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// New creates the menu backend router: the public catalogue, the table QR
// codes and the API-key protected order endpoints.
func New(
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	tableHandler *handler.TableHandler,
	healthCheck func(ctx context.Context) error,
	apiKey string,
	allowedOrigins []string,
	logger zerolog.Logger,
) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = handler.NotFoundJSON(logger)
	r.MethodNotAllowedHandler = handler.MethodNotAllowed(logger)

	r.HandleFunc("/health", handler.Health(healthCheck, logger)).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// top must be registered before the {id} pattern
	api.HandleFunc("/products", productHandler.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/products/top", productHandler.GetTop).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", productHandler.GetByID).Methods(http.MethodGet)

	api.HandleFunc("/tables", tableHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/tables/{n}/qrcode", tableHandler.QRCode).Methods(http.MethodGet)

	orders := api.PathPrefix("/orders").Subrouter()
	orders.Use(middleware.APIKeyAuth(apiKey, logger))
	orders.HandleFunc("", orderHandler.Create).Methods(http.MethodPost)
	orders.HandleFunc("", orderHandler.List).Methods(http.MethodGet)
	orders.HandleFunc("/{id}", orderHandler.GetByID).Methods(http.MethodGet)
	orders.HandleFunc("/{id}", orderHandler.UpdateStatus).Methods(http.MethodPatch)

	// Apply middleware in order: Recovery -> Logging -> CORS
	var h http.Handler = r
	h = middleware.CORS(allowedOrigins)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}

// NewMenu creates the ordering service router. Every request runs inside a
// cookie-backed session.
func NewMenu(
	menuHandler *handler.MenuHandler,
	cartHandler *handler.CartHandler,
	checkoutHandler *handler.CheckoutHandler,
	adminHandler *handler.AdminHandler,
	allowedOrigins []string,
	logger zerolog.Logger,
) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = handler.NotFound(logger)
	r.MethodNotAllowedHandler = handler.MethodNotAllowed(logger)

	r.HandleFunc("/health", handler.Health(nil, logger)).Methods(http.MethodGet)

	r.HandleFunc("/", menuHandler.Home).Methods(http.MethodGet)
	r.HandleFunc("/menu", menuHandler.Menu).Methods(http.MethodGet)
	r.HandleFunc("/menu/{categorySlug}", menuHandler.Menu).Methods(http.MethodGet)
	r.HandleFunc("/admin", adminHandler.Dashboard).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/session", menuHandler.Session).Methods(http.MethodGet)
	api.HandleFunc("/session/language", menuHandler.SetLanguage).Methods(http.MethodPut)
	api.HandleFunc("/session/language/toggle", menuHandler.ToggleLanguage).Methods(http.MethodPost)
	api.HandleFunc("/session/table", menuHandler.SelectTable).Methods(http.MethodPut)

	api.HandleFunc("/cart", cartHandler.Clear).Methods(http.MethodDelete)
	api.HandleFunc("/cart/items", cartHandler.AddItem).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{lineId}", cartHandler.UpdateItem).Methods(http.MethodPatch)
	api.HandleFunc("/cart/items/{lineId}", cartHandler.RemoveItem).Methods(http.MethodDelete)

	api.HandleFunc("/checkout", checkoutHandler.Checkout).Methods(http.MethodPost)
	api.HandleFunc("/order/tracking", checkoutHandler.Tracking).Methods(http.MethodGet)
	api.HandleFunc("/order/tracking", checkoutHandler.DismissTracking).Methods(http.MethodDelete)

	api.HandleFunc("/admin/login", adminHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/admin/logout", adminHandler.Logout).Methods(http.MethodPost)
	api.HandleFunc("/admin/orders", adminHandler.Orders).Methods(http.MethodGet)
	api.HandleFunc("/admin/orders/{id}", adminHandler.UpdateStatus).Methods(http.MethodPatch)

	// Apply middleware in order: Recovery -> Logging -> CORS -> Session
	var h http.Handler = r
	h = middleware.Session(logger)(h)
	h = middleware.CORS(allowedOrigins)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
