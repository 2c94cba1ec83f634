package domain

// CartItem is one product-and-quantity pair within a cart. Display
// fields are denormalized so a guest cart can render without a catalog
// round trip; the server cart fills them from the product reference in
// each response.
type CartItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
}

// Subtotal is price times quantity for this line item.
func (i CartItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Cart is an ordered sequence of line items. Totals are computed on
// read, never stored, so they always reflect the latest mutation.
type Cart struct {
	Items []CartItem `json:"items"`
}

// TotalItems is the sum of quantities across all line items.
func (c Cart) TotalItems() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// TotalPrice is the sum of price*quantity across all line items.
func (c Cart) TotalPrice() float64 {
	sum := 0.0
	for _, it := range c.Items {
		sum += it.Subtotal()
	}
	return sum
}

// Find returns the line item for productID, if present.
func (c Cart) Find(productID string) (CartItem, bool) {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return CartItem{}, false
}

// Contains reports whether productID has a line item in the cart.
func (c Cart) Contains(productID string) bool {
	_, ok := c.Find(productID)
	return ok
}
