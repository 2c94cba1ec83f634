// Package cart holds the cart state containers. One Store interface
// replaces the two competing designs of the original client: Local is
// the guest cart persisted to the local store, Remote is the
// server-authoritative cart with an optimistic in-memory cache.
package cart

import (
	"context"
	"errors"

	"github.com/shopfront/shopfront/internal/domain"
)

var (
	ErrNotInCart      = errors.New("cart: product not in cart")
	ErrInvalidProduct = errors.New("cart: product has no id")
)

// Store is the single cart abstraction the view layer works against.
// Every mutation is visible to a subsequent read on the same instance
// once the call returns.
type Store interface {
	// Refresh re-hydrates the container from its source of truth.
	Refresh(ctx context.Context) error

	AddItem(ctx context.Context, p domain.Product) error
	RemoveItem(ctx context.Context, productID string) error
	// UpdateQuantity with quantity <= 0 behaves as RemoveItem.
	UpdateQuantity(ctx context.Context, productID string, quantity int) error
	Clear(ctx context.Context) error

	Items() []domain.CartItem
	TotalItems() int
	TotalPrice() float64
	IsInCart(productID string) bool
	CartItem(productID string) (domain.CartItem, bool)
}

// addToItems applies the add-item rule shared by both stores: an
// existing line item gains quantity 1, otherwise a new line item with
// quantity 1 is appended. ProductID stays unique within the list.
func addToItems(items []domain.CartItem, p domain.Product) []domain.CartItem {
	for i := range items {
		if items[i].ProductID == p.ID {
			items[i].Quantity++
			return items
		}
	}
	return append(items, domain.CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  1,
	})
}

func removeFromItems(items []domain.CartItem, productID string) []domain.CartItem {
	out := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	return out
}

func snapshotItems(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}
