package domain

import "time"

// Product is a catalog entry. Owner is the id of the user that listed
// the product; it drives the purchases/sales split on the orders page.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Image       string    `json:"image,omitempty"`
	Owner       string    `json:"owner,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Pagination describes the page window of a product listing.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}
