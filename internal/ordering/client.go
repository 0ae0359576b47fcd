// Package ordering submits carts as orders and simulates their progress
// for the customer.
package ordering

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"qr-menu/internal/model"

	"github.com/rs/zerolog"
)

// OrderClient is the backend the ordering service submits to.
type OrderClient interface {
	SubmitOrder(ctx context.Context, req model.OrderRequest) (model.OrderAck, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error)
}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("order backend returned %d: %s", e.StatusCode, e.Message)
}

// httpClient implements OrderClient against the backend REST API.
type httpClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewHTTPClient creates an OrderClient for the backend at baseURL. Every
// request carries apiKey in the X-API-Key header.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger zerolog.Logger) OrderClient {
	return &httpClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "order-client").Logger(),
	}
}

// SubmitOrder posts req to /api/orders.
func (c *httpClient) SubmitOrder(ctx context.Context, req model.OrderRequest) (model.OrderAck, error) {
	var ack model.OrderAck
	if err := c.do(ctx, http.MethodPost, "/api/orders", req, http.StatusCreated, &ack); err != nil {
		return model.OrderAck{}, err
	}

	c.logger.Info().
		Str("order_id", ack.OrderID).
		Int("table", req.TableNumber).
		Msg("order submitted")
	return ack, nil
}

// ListOrders fetches every order, newest first.
func (c *httpClient) ListOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, http.StatusOK, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus patches the status of one order.
func (c *httpClient) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	var order model.Order
	body := model.StatusUpdateRequest{Status: status}
	if err := c.do(ctx, http.MethodPatch, "/api/orders/"+url.PathEscape(orderID), body, http.StatusOK, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *httpClient) do(ctx context.Context, method, path string, in any, want int, out any) error {
	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("order backend unreachable")
		return fmt.Errorf("failed to reach order backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Error == "" {
			errBody.Error = http.StatusText(resp.StatusCode)
		}
		c.logger.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("error", errBody.Error).
			Msg("order backend rejected request")
		return &APIError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode order backend response: %w", err)
	}
	return nil
}
