package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopfront/shopfront/internal/domain"
)

type cartMutationRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart fetches the server cart and normalizes it to line items.
func (c *Client) Cart(ctx context.Context) ([]domain.CartItem, error) {
	data, err := c.do(ctx, http.MethodGet, "/cart", nil)
	if err != nil {
		return nil, err
	}
	return normalizeCartItems(data), nil
}

// AddToCart adds quantity units of a product; the response carries the
// full post-mutation cart, which is the authoritative state.
func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) ([]domain.CartItem, error) {
	data, err := c.do(ctx, http.MethodPost, "/cart/add", cartMutationRequest{ProductID: productID, Quantity: quantity})
	if err != nil {
		return nil, err
	}
	return normalizeCartItems(data), nil
}

// UpdateCart overwrites the quantity of an existing line item.
func (c *Client) UpdateCart(ctx context.Context, productID string, quantity int) ([]domain.CartItem, error) {
	data, err := c.do(ctx, http.MethodPut, "/cart/update", cartMutationRequest{ProductID: productID, Quantity: quantity})
	if err != nil {
		return nil, err
	}
	return normalizeCartItems(data), nil
}

// RemoveFromCart deletes the whole line item for productID.
func (c *Client) RemoveFromCart(ctx context.Context, productID string) ([]domain.CartItem, error) {
	data, err := c.do(ctx, http.MethodDelete, "/cart/remove/"+url.PathEscape(productID), nil)
	if err != nil {
		return nil, err
	}
	return normalizeCartItems(data), nil
}
