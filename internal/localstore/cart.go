package localstore

import (
	"encoding/json"
	"strings"

	"github.com/shopfront/shopfront/internal/domain"
)

// LoadCart reads the persisted line-item list. Corrupt data is
// self-healing: a missing payload, the literal strings "undefined" or
// "null", invalid JSON, or anything that is not an array all reset the
// key and come back as an empty cart. Nothing here ever surfaces to
// the user.
func LoadCart(s Store) []domain.CartItem {
	raw, err := s.Get(KeyCart)
	if err != nil {
		return []domain.CartItem{}
	}

	payload := strings.TrimSpace(string(raw))
	if payload == "" || payload == "undefined" || payload == "null" {
		_ = s.Delete(KeyCart)
		return []domain.CartItem{}
	}

	var items []domain.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		_ = s.Delete(KeyCart)
		return []domain.CartItem{}
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	return items
}

// SaveCart serializes and rewrites the full item list. There are no
// partial writes; every mutation persists the whole cart.
func SaveCart(s Store, items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.Set(KeyCart, data)
}
