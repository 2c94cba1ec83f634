package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/shopfront/internal/domain"
)

// mockBackend plays the server cart: mutations apply to its state and
// every response carries the full post-mutation item list.
type mockBackend struct {
	mu      sync.Mutex
	items   []domain.CartItem
	err     error
	calls   map[string]int
	entered chan struct{}        // closed-ish signal: one send per call, if set
	release chan struct{}        // calls block here, if set
}

func newMockBackend() *mockBackend {
	return &mockBackend{calls: make(map[string]int)}
}

func (m *mockBackend) begin(method string) {
	m.mu.Lock()
	m.calls[method]++
	entered, release := m.entered, m.release
	m.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if release != nil {
		<-release
	}
}

func (m *mockBackend) snapshot() []domain.CartItem {
	out := make([]domain.CartItem, len(m.items))
	copy(out, m.items)
	return out
}

func (m *mockBackend) Cart(context.Context) ([]domain.CartItem, error) {
	m.begin("cart")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshot(), nil
}

func (m *mockBackend) AddToCart(_ context.Context, productID string, quantity int) ([]domain.CartItem, error) {
	m.begin("add")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.items {
		if m.items[i].ProductID == productID {
			m.items[i].Quantity += quantity
			return m.snapshot(), nil
		}
	}
	m.items = append(m.items, domain.CartItem{ProductID: productID, Quantity: quantity})
	return m.snapshot(), nil
}

func (m *mockBackend) UpdateCart(_ context.Context, productID string, quantity int) ([]domain.CartItem, error) {
	m.begin("update")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.items {
		if m.items[i].ProductID == productID {
			m.items[i].Quantity = quantity
		}
	}
	return m.snapshot(), nil
}

func (m *mockBackend) RemoveFromCart(_ context.Context, productID string) ([]domain.CartItem, error) {
	m.begin("remove")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := m.items[:0]
	for _, it := range m.items {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	m.items = out
	return m.snapshot(), nil
}

func (m *mockBackend) CreateOrder(context.Context) (domain.Order, error) {
	m.begin("checkout")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Order{}, m.err
	}
	order := domain.Order{ID: "o1", Status: domain.OrderStatusPending}
	m.items = nil
	return order, nil
}

func TestRemote_AddReconcilesFromResponse(t *testing.T) {
	ctx := context.Background()
	backend := newMockBackend()
	sut := NewRemote(backend)

	require.NoError(t, sut.AddItem(ctx, lamp))
	require.NoError(t, sut.AddItem(ctx, lamp))

	items := sut.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 2, backend.calls["add"])
}

func TestRemote_RejectedMutationRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	backend := newMockBackend()
	sut := NewRemote(backend)
	require.NoError(t, sut.AddItem(ctx, lamp))

	backend.mu.Lock()
	backend.err = errors.New("insufficient stock")
	backend.mu.Unlock()

	err := sut.AddItem(ctx, mug)
	require.Error(t, err)

	items := sut.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.False(t, sut.IsInCart("p2"))
}

func TestRemote_OptimisticMutationVisibleBeforeResponse(t *testing.T) {
	backend := newMockBackend()
	backend.entered = make(chan struct{}, 1)
	backend.release = make(chan struct{})
	sut := NewRemote(backend)

	done := make(chan error, 1)
	go func() { done <- sut.AddItem(context.Background(), lamp) }()

	<-backend.entered
	// the call is in flight; the optimistic write is already readable
	assert.True(t, sut.IsInCart("p1"))
	assert.Equal(t, 1, sut.TotalItems())

	close(backend.release)
	require.NoError(t, <-done)
	assert.True(t, sut.IsInCart("p1"))
}

func TestRemote_UpdateQuantityZeroRemoves(t *testing.T) {
	ctx := context.Background()
	backend := newMockBackend()
	sut := NewRemote(backend)
	require.NoError(t, sut.AddItem(ctx, lamp))

	require.NoError(t, sut.UpdateQuantity(ctx, "p1", 0))

	assert.Empty(t, sut.Items())
	assert.Equal(t, 1, backend.calls["remove"])
	assert.Zero(t, backend.calls["update"])
}

func TestRemote_RefreshSharesOneRequest(t *testing.T) {
	backend := newMockBackend()
	backend.mu.Lock()
	backend.items = []domain.CartItem{{ProductID: "p1", Quantity: 3}}
	backend.mu.Unlock()
	backend.entered = make(chan struct{}, 4)
	backend.release = make(chan struct{})
	sut := NewRemote(backend)

	done := make(chan error, 3)
	go func() { done <- sut.Refresh(context.Background()) }()
	<-backend.entered // first fetch is in flight

	go func() { done <- sut.Refresh(context.Background()) }()
	go func() { done <- sut.Refresh(context.Background()) }()
	// give the joiners a moment to attach to the in-flight call
	time.Sleep(20 * time.Millisecond)
	close(backend.release)

	for i := 0; i < 3; i++ {
		require.NoError(t, <-done)
	}
	assert.Equal(t, 1, backend.calls["cart"])
	assert.Equal(t, 3, sut.TotalItems())
}

func TestRemote_Checkout(t *testing.T) {
	ctx := context.Background()
	backend := newMockBackend()
	sut := NewRemote(backend)
	require.NoError(t, sut.AddItem(ctx, lamp))

	order, err := sut.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
	assert.Empty(t, sut.Items())
}

func TestRemote_ClearRemovesEveryItem(t *testing.T) {
	ctx := context.Background()
	backend := newMockBackend()
	sut := NewRemote(backend)
	require.NoError(t, sut.AddItem(ctx, lamp))
	require.NoError(t, sut.AddItem(ctx, mug))

	require.NoError(t, sut.Clear(ctx))

	assert.Empty(t, sut.Items())
	assert.Equal(t, 2, backend.calls["remove"])
}

// racingBackend answers each add with a canned response released by
// the test, reproducing two mutations whose responses arrive out of
// issue order.
type racingBackend struct {
	mu        sync.Mutex
	responses map[string]chan []domain.CartItem
}

func (b *racingBackend) Cart(context.Context) ([]domain.CartItem, error) { return nil, nil }
func (b *racingBackend) UpdateCart(context.Context, string, int) ([]domain.CartItem, error) {
	return nil, nil
}
func (b *racingBackend) RemoveFromCart(context.Context, string) ([]domain.CartItem, error) {
	return nil, nil
}
func (b *racingBackend) CreateOrder(context.Context) (domain.Order, error) {
	return domain.Order{}, nil
}

func (b *racingBackend) AddToCart(_ context.Context, productID string, _ int) ([]domain.CartItem, error) {
	b.mu.Lock()
	ch := b.responses[productID]
	b.mu.Unlock()
	return <-ch, nil
}

func TestRemote_ConcurrentAddsLastResponseWins(t *testing.T) {
	backend := &racingBackend{responses: map[string]chan []domain.CartItem{
		"p1": make(chan []domain.CartItem, 1),
		"p2": make(chan []domain.CartItem, 1),
	}}
	sut := NewRemote(backend)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = sut.AddItem(context.Background(), lamp) }()
	go func() { defer wg.Done(); _ = sut.AddItem(context.Background(), mug) }()

	// The add-p2 response arrives first and reflects both items; the
	// add-p1 response arrives last and only knows about p1. Last
	// response wins, so p2's addition is lost.
	backend.responses["p2"] <- []domain.CartItem{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 1},
	}
	time.Sleep(20 * time.Millisecond)
	backend.responses["p1"] <- []domain.CartItem{
		{ProductID: "p1", Quantity: 1},
	}
	wg.Wait()

	items := sut.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
}
