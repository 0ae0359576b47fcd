package ordering

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"qr-menu/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DemoMessage is the acknowledgement text of the demo backend.
const DemoMessage = "Order Received (Demo)"

// DemoClient is an in-memory OrderClient that accepts every order. It
// starts with two sample orders so the staff dashboard has something to show.
type DemoClient struct {
	mu               sync.Mutex
	orders           map[uuid.UUID]*model.Order
	estimatedMinutes int
	now              func() time.Time
}

// NewDemoClient creates a demo backend that promises estimatedMinutes for every order.
func NewDemoClient(estimatedMinutes int) *DemoClient {
	c := &DemoClient{
		orders:           make(map[uuid.UUID]*model.Order),
		estimatedMinutes: estimatedMinutes,
		now:              time.Now,
	}
	for _, o := range sampleOrders() {
		c.orders[o.ID] = o
	}
	return c
}

// sampleOrderID gives the sample orders stable identifiers derived from
// their dashboard number.
func sampleOrderID(n int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("qr-menu/order/"+strconv.Itoa(n)))
}

func sampleOrders() []*model.Order {
	at := func(hour, minute int) time.Time {
		return time.Date(2026, 1, 1, hour, minute, 0, 0, time.Local)
	}
	return []*model.Order{
		{
			ID:           sampleOrderID(1001),
			TableNumber:  5,
			Status:       model.OrderStatusPending,
			TotalPrice:   decimal.RequireFromString("215.00"),
			CustomerNote: "Az şekerli olsun",
			CreatedAt:    at(11, 30),
			UpdatedAt:    at(11, 30),
			Items: []model.OrderItem{
				{ProductID: 2, ProductName: "Cappuccino", Quantity: 2, Price: decimal.RequireFromString("65.00")},
			},
		},
		{
			ID:          sampleOrderID(1002),
			TableNumber: 3,
			Status:      model.OrderStatusPreparing,
			TotalPrice:  decimal.RequireFromString("415.00"),
			CreatedAt:   at(11, 45),
			UpdatedAt:   at(11, 45),
			Items: []model.OrderItem{
				{ProductID: 20, ProductName: "Cheeseburger", Quantity: 2, Price: decimal.RequireFromString("145.00")},
			},
		},
	}
}

// SubmitOrder records req and acknowledges it.
func (c *DemoClient) SubmitOrder(ctx context.Context, req model.OrderRequest) (model.OrderAck, error) {
	if err := ctx.Err(); err != nil {
		return model.OrderAck{}, err
	}

	now := c.now()
	order := &model.Order{
		ID:               uuid.New(),
		TableNumber:      req.TableNumber,
		Status:           model.OrderStatusPending,
		TotalPrice:       req.TotalPrice,
		EstimatedMinutes: c.estimatedMinutes,
		CreatedAt:        now,
		UpdatedAt:        now,
		Items:            make([]model.OrderItem, len(req.Items)),
	}
	for i, item := range req.Items {
		order.Items[i] = model.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Note:        item.Note,
		}
	}

	c.mu.Lock()
	c.orders[order.ID] = order
	c.mu.Unlock()

	return model.OrderAck{
		OrderID:       order.ID.String(),
		EstimatedTime: c.estimatedMinutes,
		Status:        order.Status,
		Message:       DemoMessage,
	}, nil
}

// ListOrders returns every known order, newest first.
func (c *DemoClient) ListOrders(ctx context.Context) ([]model.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	orders := make([]model.Order, 0, len(c.orders))
	for _, o := range c.orders {
		orders = append(orders, *o)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// UpdateStatus sets the status of one order.
func (c *DemoClient) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, model.ErrInvalidStatus
	}
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, model.ErrOrderNotFound
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	order, ok := c.orders[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	order.Status = status
	order.UpdatedAt = c.now()

	updated := *order
	return &updated, nil
}
