package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopfront/shopfront/internal/domain"
)

// Orders fetches the current user's order history. A nil, error-free
// result means the endpoint answered with an unrecognized shape (it is
// known to sometimes return {products: [], pagination}); callers
// should keep whatever list they already hold in that case.
func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	data, err := c.do(ctx, http.MethodGet, "/orders", nil)
	if err != nil {
		return nil, err
	}
	return normalizeOrderList(data), nil
}

// Order fetches a single order by id.
func (c *Client) Order(ctx context.Context, id string) (domain.Order, error) {
	data, err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil)
	if err != nil {
		return domain.Order{}, err
	}
	return normalizeOrder(data)
}

// CreateOrder checks out the server cart into a new order. The backend
// derives the order contents from the cart, so the request has no body.
func (c *Client) CreateOrder(ctx context.Context) (domain.Order, error) {
	data, err := c.do(ctx, http.MethodPost, "/orders", nil)
	if err != nil {
		return domain.Order{}, err
	}
	if len(data) == 0 {
		return domain.Order{}, nil
	}
	order, err := normalizeOrder(data)
	if err != nil {
		// Some backend versions answer with only a message; checkout
		// still succeeded.
		return domain.Order{}, nil
	}
	return order, nil
}
