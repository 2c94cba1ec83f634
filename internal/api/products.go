package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopfront/shopfront/internal/domain"
)

// Products fetches one page of the catalog. The endpoint answers with
// a bare array or a {products, pagination} wrapper depending on
// backend version; both normalize the same way.
func (c *Client) Products(ctx context.Context, page int) ([]domain.Product, domain.Pagination, error) {
	if page < 1 {
		page = 1
	}
	data, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products?page=%d", page), nil)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return normalizeProductList(data)
}

// Product fetches a single catalog entry by id.
func (c *Client) Product(ctx context.Context, id string) (domain.Product, error) {
	data, err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil)
	if err != nil {
		return domain.Product{}, err
	}
	var wire wireProduct
	if err := unmarshalProduct(data, &wire); err != nil {
		return domain.Product{}, err
	}
	return wire.toDomain(), nil
}

// MyProducts fetches the products listed by the current user.
func (c *Client) MyProducts(ctx context.Context) ([]domain.Product, error) {
	data, err := c.do(ctx, http.MethodGet, "/products/user/my-products", nil)
	if err != nil {
		return nil, err
	}
	products, _, err := normalizeProductList(data)
	return products, err
}

type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
}

// CreateProduct lists a new product owned by the current user.
func (c *Client) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	req := productRequest{Name: p.Name, Description: p.Description, Price: p.Price, Image: p.Image}
	data, err := c.do(ctx, http.MethodPost, "/products", req)
	if err != nil {
		return domain.Product{}, err
	}
	var wire wireProduct
	if err := unmarshalProduct(data, &wire); err != nil {
		return domain.Product{}, err
	}
	return wire.toDomain(), nil
}

// UpdateProduct overwrites an existing listing.
func (c *Client) UpdateProduct(ctx context.Context, id string, p domain.Product) (domain.Product, error) {
	req := productRequest{Name: p.Name, Description: p.Description, Price: p.Price, Image: p.Image}
	data, err := c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(id), req)
	if err != nil {
		return domain.Product{}, err
	}
	var wire wireProduct
	if err := unmarshalProduct(data, &wire); err != nil {
		return domain.Product{}, err
	}
	return wire.toDomain(), nil
}

// DeleteProduct removes a listing.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil)
	return err
}
