package api

import (
	"bytes"
	"encoding/json"

	"github.com/shopfront/shopfront/internal/domain"
)

// One normalizer per endpoint family. Each one maps whatever the
// backend actually sends onto the internal entity shape, so shape
// drift (bare arrays vs wrapped objects, owner vs seller, extended
// JSON ids) stays out of the rest of the codebase.

type wireProduct struct {
	ID          ID      `json:"_id"`
	AltID       ID      `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Owner       ID      `json:"owner"`
	Seller      ID      `json:"seller"`
	CreatedAt   Time    `json:"createdAt"`
}

func (p wireProduct) toDomain() domain.Product {
	id := string(p.ID)
	if id == "" {
		id = string(p.AltID)
	}
	// "owner" is the canonical ownership field; older payloads
	// populate "seller" instead, which the ID type already collapses
	// to the referenced id.
	owner := string(p.Owner)
	if owner == "" {
		owner = string(p.Seller)
	}
	return domain.Product{
		ID:          id,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		Owner:       owner,
		CreatedAt:   p.CreatedAt.Std(),
	}
}

func toProducts(wire []wireProduct) []domain.Product {
	out := make([]domain.Product, 0, len(wire))
	for _, p := range wire {
		out = append(out, p.toDomain())
	}
	return out
}

type wirePagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

// normalizeProductList tolerates a bare array, {products, pagination}
// and {data, pagination}.
func normalizeProductList(raw []byte) ([]domain.Product, domain.Pagination, error) {
	var arr []wireProduct
	if err := json.Unmarshal(raw, &arr); err == nil {
		products := toProducts(arr)
		return products, domain.Pagination{Total: len(products), Page: 1, Pages: 1}, nil
	}

	var wrapped struct {
		Products   []wireProduct   `json:"products"`
		Data       []wireProduct   `json:"data"`
		Pagination *wirePagination `json:"pagination"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, domain.Pagination{}, err
	}
	list := wrapped.Products
	if list == nil {
		list = wrapped.Data
	}
	products := toProducts(list)
	page := domain.Pagination{Total: len(products), Page: 1, Pages: 1}
	if wrapped.Pagination != nil {
		page = domain.Pagination(*wrapped.Pagination)
	}
	return products, page, nil
}

// normalizeCartItems maps a cart payload onto line items. Entries come
// either as {product, quantity} pairs or as a bare product (implied
// quantity 1); the whole list may be wrapped in {products: [...]}.
// Anything unrecognizable normalizes to an empty cart rather than an
// error, matching how the client has always treated cart payloads.
func normalizeCartItems(raw []byte) []domain.CartItem {
	if len(raw) == 0 || string(raw) == "null" {
		return []domain.CartItem{}
	}

	var entries []json.RawMessage
	var wrapped struct {
		Products []json.RawMessage `json:"products"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Products != nil {
		entries = wrapped.Products
	} else if err := json.Unmarshal(raw, &entries); err != nil {
		return []domain.CartItem{}
	}

	items := make([]domain.CartItem, 0, len(entries))
	for _, entry := range entries {
		var pair struct {
			Product  *wireProduct `json:"product"`
			Quantity *int         `json:"quantity"`
		}
		if err := json.Unmarshal(entry, &pair); err != nil {
			continue
		}

		var wire wireProduct
		quantity := 1
		if pair.Product != nil {
			wire = *pair.Product
			if pair.Quantity != nil {
				quantity = *pair.Quantity
			}
		} else if err := json.Unmarshal(entry, &wire); err != nil {
			continue
		}

		p := wire.toDomain()
		if p.ID == "" {
			continue
		}
		items = append(items, domain.CartItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.Image,
			Quantity:  quantity,
		})
	}
	return items
}

// unmarshalProduct accepts a bare product document or a {product: ...}
// wrapper.
func unmarshalProduct(raw []byte, out *wireProduct) error {
	var wrapped struct {
		Product *wireProduct `json:"product"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Product != nil {
		*out = *wrapped.Product
		return nil
	}
	return json.Unmarshal(raw, out)
}

type wireOrder struct {
	ID         ID                `json:"_id"`
	Buyer      ID                `json:"buyer"`
	Products   []json.RawMessage `json:"products"`
	TotalPrice float64           `json:"totalPrice"`
	Status     string            `json:"status"`
	CreatedAt  Time              `json:"createdAt"`
}

func (o wireOrder) toDomain() domain.Order {
	products := make([]domain.Product, 0, len(o.Products))
	for _, raw := range o.Products {
		// Entries are bare id strings, {"$oid": ...} references, or
		// populated product documents.
		entry := bytes.TrimSpace(raw)
		if len(entry) == 0 {
			continue
		}
		if entry[0] == '"' {
			var id ID
			if err := json.Unmarshal(entry, &id); err == nil && id != "" {
				products = append(products, domain.Product{ID: string(id)})
			}
			continue
		}
		var p wireProduct
		if err := json.Unmarshal(entry, &p); err == nil && (p.ID != "" || p.AltID != "" || p.Name != "") {
			products = append(products, p.toDomain())
			continue
		}
		var id ID
		if err := json.Unmarshal(entry, &id); err == nil && id != "" {
			products = append(products, domain.Product{ID: string(id)})
		}
	}
	return domain.Order{
		ID:         string(o.ID),
		Buyer:      string(o.Buyer),
		Products:   products,
		TotalPrice: o.TotalPrice,
		Status:     domain.OrderStatus(o.Status),
		CreatedAt:  o.CreatedAt.Std(),
	}
}

// normalizeOrderList recognizes a bare array and {orders: [...]}. The
// /orders endpoint sometimes answers {products: [], pagination} — an
// unrecognized shape — and returning nil there lets the caller keep
// its previously fetched list instead of clobbering it with nothing.
func normalizeOrderList(raw []byte) []domain.Order {
	var arr []wireOrder
	if err := json.Unmarshal(raw, &arr); err == nil {
		return toOrders(arr)
	}

	var wrapped struct {
		Orders []wireOrder `json:"orders"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Orders != nil {
		return toOrders(wrapped.Orders)
	}
	return nil
}

func toOrders(wire []wireOrder) []domain.Order {
	out := make([]domain.Order, 0, len(wire))
	for _, o := range wire {
		out = append(out, o.toDomain())
	}
	return out
}

func normalizeOrder(raw []byte) (domain.Order, error) {
	// Some responses wrap the order as {order: {...}}.
	var wrapped struct {
		Order *wireOrder `json:"order"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Order != nil {
		return wrapped.Order.toDomain(), nil
	}
	var o wireOrder
	if err := json.Unmarshal(raw, &o); err != nil {
		return domain.Order{}, err
	}
	return o.toDomain(), nil
}
