package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"qr-menu/internal/cart"
	"qr-menu/internal/catalog"
	"qr-menu/internal/model"
	"qr-menu/internal/ordering"
	"qr-menu/internal/session"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// stubCatalog serves a fixed product list and the built-in categories.
type stubCatalog struct {
	products []model.Product
	online   bool
}

func (s *stubCatalog) Products(ctx context.Context) catalog.Result[[]model.Product] {
	return catalog.Result[[]model.Product]{Data: s.products, Success: s.online}
}

func (s *stubCatalog) GetCategories(ctx context.Context) catalog.Result[[]model.Category] {
	return catalog.Result[[]model.Category]{Data: catalog.DefaultDataset().Categories, Success: true}
}

func (s *stubCatalog) GetAllProducts(ctx context.Context) catalog.Result[[]model.Product] {
	return s.Products(ctx)
}

func (s *stubCatalog) GetProductsByCategory(ctx context.Context, categoryID int64) catalog.Result[[]model.Product] {
	return catalog.Result[[]model.Product]{Data: inCategory(s.products, categoryID), Success: s.online}
}

func (s *stubCatalog) GetProductByID(ctx context.Context, id int64) catalog.Result[*model.Product] {
	for _, p := range s.products {
		if p.ID == id {
			return catalog.Result[*model.Product]{Data: &p, Success: s.online}
		}
	}
	return catalog.Result[*model.Product]{Success: s.online}
}

func (s *stubCatalog) GetPopularProducts(ctx context.Context) catalog.Result[[]model.Product] {
	return catalog.Result[[]model.Product]{Data: popular(s.products), Success: s.online}
}

func (s *stubCatalog) GetCafeInfo(ctx context.Context) catalog.Result[model.CafeInfo] {
	return catalog.Result[model.CafeInfo]{Data: catalog.DefaultDataset().Cafe, Success: true}
}

// MockOrderClient is a mock implementation of ordering.OrderClient.
type MockOrderClient struct {
	mock.Mock
}

func (m *MockOrderClient) SubmitOrder(ctx context.Context, req model.OrderRequest) (model.OrderAck, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.OrderAck), args.Error(1)
}

func (m *MockOrderClient) ListOrders(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderClient) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	args := m.Called(ctx, orderID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func menuProducts() []model.Product {
	return []model.Product{
		{ID: 1, Name: "Türk Kahvesi", NameEN: "Turkish Coffee", Price: decimal.NewFromInt(45), CategoryID: 1, IsAvailable: true},
		{ID: 2, Name: "Cheesecake", Price: decimal.RequireFromString("85.50"), CategoryID: 3, Featured: true, IsPopular: true, IsAvailable: true},
		{ID: 3, Name: "Limonata", NameEN: "Lemonade", Price: decimal.NewFromInt(40), CategoryID: 2, IsAvailable: false},
	}
}

type menuFixture struct {
	store   *session.MemoryStore
	gate    *session.Gate
	catalog *stubCatalog
	client  *MockOrderClient
	flow    *ordering.Flow
	sid     string
}

func newMenuFixture(t *testing.T) *menuFixture {
	t.Helper()
	logger := zerolog.Nop()
	store := session.NewMemoryStore(cart.LanguageTR)
	gate := session.NewGate(store, 20, 0, logger)
	client := new(MockOrderClient)
	tracker := ordering.NewTracker(time.Hour, 2*time.Hour, logger)
	t.Cleanup(tracker.Stop)

	return &menuFixture{
		store:   store,
		gate:    gate,
		catalog: &stubCatalog{products: menuProducts(), online: true},
		client:  client,
		flow:    ordering.NewFlow(store, gate, client, tracker, logger),
		sid:     session.NewID(),
	}
}

func (f *menuFixture) seed(t *testing.T, fn session.UpdateFunc) {
	t.Helper()
	_, err := f.store.Update(context.Background(), f.sid, fn)
	require.NoError(t, err)
}

func (f *menuFixture) state(t *testing.T) cart.State {
	t.Helper()
	state, err := f.store.Load(context.Background(), f.sid)
	require.NoError(t, err)
	return state
}

func (f *menuFixture) request(method, target, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	return req.WithContext(session.WithID(req.Context(), f.sid))
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
