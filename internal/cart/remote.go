package cart

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/shopfront/shopfront/internal/domain"
)

// Backend is the slice of the API client the remote cart needs.
// Consumers define this interface, not the HTTP implementation.
type Backend interface {
	Cart(ctx context.Context) ([]domain.CartItem, error)
	AddToCart(ctx context.Context, productID string, quantity int) ([]domain.CartItem, error)
	UpdateCart(ctx context.Context, productID string, quantity int) ([]domain.CartItem, error)
	RemoveFromCart(ctx context.Context, productID string) ([]domain.CartItem, error)
	CreateOrder(ctx context.Context) (domain.Order, error)
}

// Remote is the server-authoritative cart. Reads serve from an
// in-memory snapshot for instant feedback; mutations apply
// optimistically, then reconcile from the server's response. A
// rejected call restores the pre-mutation snapshot. Responses are
// folded in completion order, so two mutations racing each other end
// with whichever response arrived last — the server's cart is the
// source of truth either way.
type Remote struct {
	mu      sync.Mutex
	backend Backend
	sfg     singleflight.Group // collapses concurrent cart fetches
	items   []domain.CartItem
}

func NewRemote(backend Backend) *Remote {
	return &Remote{backend: backend}
}

// Refresh fetches the server cart. Concurrent refreshes share one
// request.
func (c *Remote) Refresh(ctx context.Context) error {
	v, err, _ := c.sfg.Do("cart", func() (interface{}, error) {
		return c.backend.Cart(ctx)
	})
	if err != nil {
		return err
	}
	c.setItems(v.([]domain.CartItem))
	return nil
}

func (c *Remote) AddItem(ctx context.Context, p domain.Product) error {
	if p.ID == "" {
		return ErrInvalidProduct
	}

	prev := c.optimistic(func(items []domain.CartItem) []domain.CartItem {
		return addToItems(items, p)
	})

	items, err := c.backend.AddToCart(ctx, p.ID, 1)
	if err != nil {
		c.restore(prev)
		return err
	}
	c.setItems(items)
	return nil
}

func (c *Remote) RemoveItem(ctx context.Context, productID string) error {
	prev := c.optimistic(func(items []domain.CartItem) []domain.CartItem {
		return removeFromItems(items, productID)
	})

	items, err := c.backend.RemoveFromCart(ctx, productID)
	if err != nil {
		c.restore(prev)
		return err
	}
	c.setItems(items)
	return nil
}

func (c *Remote) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return c.RemoveItem(ctx, productID)
	}

	prev := c.optimistic(func(items []domain.CartItem) []domain.CartItem {
		for i := range items {
			if items[i].ProductID == productID {
				items[i].Quantity = quantity
			}
		}
		return items
	})

	items, err := c.backend.UpdateCart(ctx, productID, quantity)
	if err != nil {
		c.restore(prev)
		return err
	}
	c.setItems(items)
	return nil
}

// Clear empties the container. There is no bulk-clear endpoint; the
// server cart drains through checkout, and item-wise removal covers
// the rest.
func (c *Remote) Clear(ctx context.Context) error {
	for _, it := range c.Items() {
		if _, err := c.backend.RemoveFromCart(ctx, it.ProductID); err != nil {
			return err
		}
	}
	c.setItems(nil)
	return nil
}

// Checkout turns the server cart into an order and empties the local
// snapshot on success.
func (c *Remote) Checkout(ctx context.Context) (domain.Order, error) {
	order, err := c.backend.CreateOrder(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	c.setItems(nil)
	return order, nil
}

// optimistic applies a local mutation and returns the prior snapshot
// for rollback.
func (c *Remote) optimistic(mutate func([]domain.CartItem) []domain.CartItem) []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := snapshotItems(c.items)
	c.items = mutate(snapshotItems(c.items))
	return prev
}

func (c *Remote) restore(items []domain.CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
}

func (c *Remote) setItems(items []domain.CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if items == nil {
		items = []domain.CartItem{}
	}
	c.items = items
}

func (c *Remote) Items() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshotItems(c.items)
}

func (c *Remote) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.Cart{Items: c.items}.TotalItems()
}

func (c *Remote) TotalPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.Cart{Items: c.items}.TotalPrice()
}

func (c *Remote) IsInCart(productID string) bool {
	_, ok := c.CartItem(productID)
	return ok
}

func (c *Remote) CartItem(productID string) (domain.CartItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.Cart{Items: c.items}.Find(productID)
}
