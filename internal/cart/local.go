package cart

import (
	"context"
	"sync"

	"github.com/shopfront/shopfront/internal/domain"
	"github.com/shopfront/shopfront/internal/localstore"
)

// Local is the guest cart: purely client-side state, persisted in full
// to the local store after every mutation. Mutations are synchronous;
// a read right after a mutation always sees it.
type Local struct {
	mu    sync.Mutex
	store localstore.Store
	items []domain.CartItem
}

// NewLocal hydrates the cart from the local store; corrupt persisted
// data comes back as an empty cart.
func NewLocal(store localstore.Store) *Local {
	return &Local{
		store: store,
		items: localstore.LoadCart(store),
	}
}

// Refresh re-reads the persisted item list.
func (c *Local) Refresh(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = localstore.LoadCart(c.store)
	return nil
}

func (c *Local) AddItem(_ context.Context, p domain.Product) error {
	if p.ID == "" {
		return ErrInvalidProduct
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = addToItems(c.items, p)
	return c.persist()
}

func (c *Local) RemoveItem(_ context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = removeFromItems(c.items, productID)
	return c.persist()
}

func (c *Local) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return c.RemoveItem(ctx, productID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity = quantity
			return c.persist()
		}
	}
	return ErrNotInCart
}

func (c *Local) Clear(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = []domain.CartItem{}
	return c.persist()
}

// persist writes the whole list; callers hold the lock.
func (c *Local) persist() error {
	return localstore.SaveCart(c.store, c.items)
}

func (c *Local) Items() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshotItems(c.items)
}

func (c *Local) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.Cart{Items: c.items}.TotalItems()
}

func (c *Local) TotalPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.Cart{Items: c.items}.TotalPrice()
}

func (c *Local) IsInCart(productID string) bool {
	_, ok := c.CartItem(productID)
	return ok
}

func (c *Local) CartItem(productID string) (domain.CartItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.Cart{Items: c.items}.Find(productID)
}
