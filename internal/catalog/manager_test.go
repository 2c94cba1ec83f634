package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/shopfront/internal/domain"
	"github.com/shopfront/shopfront/internal/ops"
)

type mockBackend struct {
	products   []domain.Product
	pagination domain.Pagination
	fetchErr   error
	product    domain.Product
	mine       []domain.Product

	lastPage int
}

func (m *mockBackend) Products(_ context.Context, page int) ([]domain.Product, domain.Pagination, error) {
	m.lastPage = page
	return m.products, m.pagination, m.fetchErr
}

func (m *mockBackend) Product(context.Context, string) (domain.Product, error) {
	return m.product, nil
}

func (m *mockBackend) MyProducts(context.Context) ([]domain.Product, error) {
	return m.mine, nil
}

func (m *mockBackend) CreateProduct(_ context.Context, p domain.Product) (domain.Product, error) {
	p.ID = "created"
	return p, nil
}

func (m *mockBackend) UpdateProduct(_ context.Context, id string, p domain.Product) (domain.Product, error) {
	p.ID = id
	return p, nil
}

func (m *mockBackend) DeleteProduct(context.Context, string) error { return nil }

func TestManager_FetchPage(t *testing.T) {
	backend := &mockBackend{
		products:   []domain.Product{{ID: "p1", Name: "Lamp"}},
		pagination: domain.Pagination{Total: 31, Page: 2, Pages: 4},
	}
	tracker := ops.NewTracker()
	m := NewManager(backend, tracker)

	require.NoError(t, m.FetchPage(context.Background(), 2))

	assert.Equal(t, 2, backend.lastPage)
	require.Len(t, m.Products(), 1)
	assert.Equal(t, 4, m.Pagination().Pages)
	assert.Equal(t, ops.StatusFulfilled, tracker.State(ops.FetchProducts).Status)
}

func TestManager_FetchPageErrorKeepsPriorPage(t *testing.T) {
	backend := &mockBackend{products: []domain.Product{{ID: "p1"}}}
	tracker := ops.NewTracker()
	m := NewManager(backend, tracker)
	require.NoError(t, m.FetchPage(context.Background(), 1))

	backend.fetchErr = errors.New("connection refused")
	require.Error(t, m.FetchPage(context.Background(), 2))

	require.Len(t, m.Products(), 1)
	assert.Equal(t, ops.StatusRejected, tracker.State(ops.FetchProducts).Status)
}

func TestManager_FetchProduct(t *testing.T) {
	backend := &mockBackend{product: domain.Product{ID: "p1", Name: "Lamp"}}
	m := NewManager(backend, ops.NewTracker())

	_, ok := m.Current()
	assert.False(t, ok)

	p, err := m.FetchProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Lamp", p.Name)

	current, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, "p1", current.ID)
}

func TestManager_MineLifecycle(t *testing.T) {
	ctx := context.Background()
	backend := &mockBackend{mine: []domain.Product{{ID: "p1", Name: "Lamp"}}}
	m := NewManager(backend, ops.NewTracker())

	require.NoError(t, m.FetchMine(ctx))
	require.Len(t, m.Mine(), 1)

	created, err := m.Create(ctx, domain.Product{Name: "Mug", Price: 12.5})
	require.NoError(t, err)
	assert.Equal(t, "created", created.ID)
	require.Len(t, m.Mine(), 2)

	updated, err := m.Update(ctx, "p1", domain.Product{Name: "Desk Lamp", Price: 120})
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", updated.Name)
	assert.Equal(t, "Desk Lamp", m.Mine()[0].Name)

	require.NoError(t, m.Delete(ctx, "p1"))
	mine := m.Mine()
	require.Len(t, mine, 1)
	assert.Equal(t, "created", mine[0].ID)
}
