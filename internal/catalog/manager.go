// Package catalog is the product-browsing state container: the current
// page of the catalog, the currently viewed product, and the user's
// own listings.
package catalog

import (
	"context"
	"sync"

	"github.com/shopfront/shopfront/internal/domain"
	"github.com/shopfront/shopfront/internal/ops"
)

// Backend is the product slice of the API client.
type Backend interface {
	Products(ctx context.Context, page int) ([]domain.Product, domain.Pagination, error)
	Product(ctx context.Context, id string) (domain.Product, error)
	MyProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, id string, p domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type Manager struct {
	mu      sync.Mutex
	backend Backend
	tracker *ops.Tracker

	products   []domain.Product
	pagination domain.Pagination
	current    *domain.Product
	mine       []domain.Product
}

func NewManager(backend Backend, tracker *ops.Tracker) *Manager {
	return &Manager{backend: backend, tracker: tracker}
}

// FetchPage loads one catalog page, replacing the held list.
func (m *Manager) FetchPage(ctx context.Context, page int) error {
	return m.tracker.Track(ops.FetchProducts, func() error {
		products, pagination, err := m.backend.Products(ctx, page)
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.products = products
		m.pagination = pagination
		m.mu.Unlock()
		return nil
	})
}

// FetchProduct loads a single product into the container and returns it.
func (m *Manager) FetchProduct(ctx context.Context, id string) (domain.Product, error) {
	p, err := m.backend.Product(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	m.mu.Lock()
	m.current = &p
	m.mu.Unlock()
	return p, nil
}

// FetchMine loads the current user's listings.
func (m *Manager) FetchMine(ctx context.Context) error {
	mine, err := m.backend.MyProducts(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.mine = mine
	m.mu.Unlock()
	return nil
}

func (m *Manager) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	created, err := m.backend.CreateProduct(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}
	m.mu.Lock()
	m.mine = append(m.mine, created)
	m.mu.Unlock()
	return created, nil
}

func (m *Manager) Update(ctx context.Context, id string, p domain.Product) (domain.Product, error) {
	updated, err := m.backend.UpdateProduct(ctx, id, p)
	if err != nil {
		return domain.Product{}, err
	}
	m.mu.Lock()
	for i := range m.mine {
		if m.mine[i].ID == id {
			m.mine[i] = updated
		}
	}
	m.mu.Unlock()
	return updated, nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.backend.DeleteProduct(ctx, id); err != nil {
		return err
	}
	m.mu.Lock()
	out := m.mine[:0]
	for _, p := range m.mine {
		if p.ID != id {
			out = append(out, p)
		}
	}
	m.mine = out
	m.mu.Unlock()
	return nil
}

func (m *Manager) Products() []domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Product(nil), m.products...)
}

func (m *Manager) Pagination() domain.Pagination {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pagination
}

func (m *Manager) Current() (domain.Product, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return domain.Product{}, false
	}
	return *m.current, true
}

func (m *Manager) Mine() []domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Product(nil), m.mine...)
}
