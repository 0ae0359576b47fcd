package catalog

import (
	"context"
	"sync"
	"time"

	"qr-menu/internal/model"

	"github.com/rs/zerolog"
)

// Cache keeps the last product load in memory and refreshes it in the
// background. A load that completes after Stop is discarded.
type Cache struct {
	svc      Service
	interval time.Duration
	logger   zerolog.Logger

	mu       sync.RWMutex
	active   bool
	loaded   bool
	products Result[[]model.Product]

	cancel context.CancelFunc
	done   chan struct{}
}

// NewCache wraps svc. An interval of zero disables background refresh.
func NewCache(svc Service, interval time.Duration, logger zerolog.Logger) *Cache {
	return &Cache{
		svc:      svc,
		interval: interval,
		active:   true,
		logger:   logger.With().Str("component", "catalog-cache").Logger(),
	}
}

// Start performs the first load and begins periodic refresh.
func (c *Cache) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.done = make(chan struct{})
	c.mu.Unlock()

	go c.run(ctx)
}

func (c *Cache) run(ctx context.Context) {
	defer close(c.done)

	c.Refresh(ctx)
	if c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Refresh(ctx)
		}
	}
}

// Refresh loads products now and stores the result if the cache is still active.
// It reports whether the result was applied.
func (c *Cache) Refresh(ctx context.Context) bool {
	return c.apply(c.svc.GetAllProducts(ctx))
}

func (c *Cache) apply(result Result[[]model.Product]) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		c.logger.Debug().Msg("discarding catalog load after stop")
		return false
	}
	c.products = result
	c.loaded = true
	return true
}

// Products returns the cached products, loading them synchronously on first use.
func (c *Cache) Products(ctx context.Context) Result[[]model.Product] {
	c.mu.RLock()
	products, loaded := c.products, c.loaded
	c.mu.RUnlock()

	if loaded {
		return products
	}

	result := c.svc.GetAllProducts(ctx)
	c.apply(result)
	return result
}

// Stop deactivates the cache and waits for the refresh loop to exit.
func (c *Cache) Stop() {
	c.mu.Lock()
	c.active = false
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	c.logger.Info().Msg("catalog cache stopped")
}
