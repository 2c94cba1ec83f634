// Package orders is the order-history state container, including the
// purchases/sales split shown on the account page.
package orders

import (
	"context"
	"sync"

	"github.com/shopfront/shopfront/internal/domain"
	"github.com/shopfront/shopfront/internal/ops"
)

// Backend is the orders slice of the API client. Orders may return
// (nil, nil) when the endpoint answers with an unrecognized shape; the
// manager keeps its prior list in that case.
type Backend interface {
	Orders(ctx context.Context) ([]domain.Order, error)
	Order(ctx context.Context, id string) (domain.Order, error)
	CreateOrder(ctx context.Context) (domain.Order, error)
}

type Manager struct {
	mu      sync.Mutex
	backend Backend
	tracker *ops.Tracker

	orders  []domain.Order
	current *domain.Order
}

func NewManager(backend Backend, tracker *ops.Tracker) *Manager {
	return &Manager{backend: backend, tracker: tracker}
}

// Fetch loads the order history. An unrecognized response shape leaves
// the previously fetched list untouched instead of clobbering it.
func (m *Manager) Fetch(ctx context.Context) error {
	return m.tracker.Track(ops.FetchOrders, func() error {
		list, err := m.backend.Orders(ctx)
		if err != nil {
			return err
		}
		if list == nil {
			return nil
		}
		m.mu.Lock()
		m.orders = list
		m.mu.Unlock()
		return nil
	})
}

// FetchByID loads one order into the container and returns it.
func (m *Manager) FetchByID(ctx context.Context, id string) (domain.Order, error) {
	order, err := m.backend.Order(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	m.mu.Lock()
	m.current = &order
	m.mu.Unlock()
	return order, nil
}

// Create checks the current cart out into a new order.
func (m *Manager) Create(ctx context.Context) (domain.Order, error) {
	var order domain.Order
	err := m.tracker.Track(ops.CreateOrder, func() error {
		var err error
		order, err = m.backend.CreateOrder(ctx)
		if err != nil {
			return err
		}
		m.mu.Lock()
		if order.ID != "" {
			m.orders = append(m.orders, order)
		}
		m.mu.Unlock()
		return nil
	})
	return order, err
}

func (m *Manager) Orders() []domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Order(nil), m.orders...)
}

func (m *Manager) Current() (domain.Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return domain.Order{}, false
	}
	return *m.current, true
}

// Purchases are orders the given user placed.
func (m *Manager) Purchases(userID string) []domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if o.Buyer == userID {
			out = append(out, o)
		}
	}
	return out
}

// Sales are orders containing at least one product the given user
// owns. Ownership compares the product's owner field against the user
// id; the wire layer already folds seller-shaped payloads into owner.
func (m *Manager) Sales(userID string) []domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		for _, p := range o.Products {
			if p.Owner == userID && userID != "" {
				out = append(out, o)
				break
			}
		}
	}
	return out
}
