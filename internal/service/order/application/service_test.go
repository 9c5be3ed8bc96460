package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"atelier/internal/service/order/domain"
	"atelier/internal/service/order/port"
)

type memoryOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *memoryOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

func (r *memoryOrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *memoryOrderRepo) UpdateState(ctx context.Context, id string, from, to domain.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if order.State != from {
		return domain.ErrStateConflict
	}
	order.State = to
	return nil
}

func (r *memoryOrderRepo) FindStalePending(ctx context.Context, before time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, order := range r.orders {
		if order.State == domain.StatePending && order.CreatedAt.Before(before) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type capturingProducer struct {
	mu     sync.Mutex
	events []*domain.OrderEvent
	err    error
}

func (p *capturingProducer) Publish(ctx context.Context, event *domain.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *capturingProducer) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType)
	}
	return types
}

type stubCart struct {
	snapshot *port.CartSnapshot
	err      error
	cleared  []string
}

func (c *stubCart) GetSnapshot(ctx context.Context, cartID string) (*port.CartSnapshot, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.snapshot, nil
}

func (c *stubCart) Clear(ctx context.Context, cartID string) error {
	c.cleared = append(c.cleared, cartID)
	return nil
}

func testSnapshot() *port.CartSnapshot {
	return &port.CartSnapshot{
		CartID: "cart-1",
		Lines: []port.SnapshotLine{
			{LineID: "line-1", ProductID: 1001, Quantity: 2, UnitPrice: 11500},
			{LineID: "line-2", ProductID: 1002, Quantity: 1, UnitPrice: 1200},
		},
		CouponCode: "SPRING10",
		Subtotal:   24200,
		Discount:   2420,
		Total:      21780,
	}
}

func newTestOrderService(repo domain.OrderRepository, producer domain.OrderProducer, cart port.CartService) *OrderApplicationService {
	return NewOrderApplicationService(repo, producer, cart, otel.Tracer("order-service-test"))
}

func TestCheckout_AdoptsSnapshotVerbatim(t *testing.T) {
	repo := newMemoryOrderRepo()
	producer := &capturingProducer{}
	cart := &stubCart{snapshot: testSnapshot()}
	svc := newTestOrderService(repo, producer, cart)

	resp, err := svc.Checkout(context.Background(), &CheckoutRequest{CartID: "cart-1", CustomerID: "customer-1"})
	require.NoError(t, err)
	require.Equal(t, string(domain.StatePending), resp.State)
	require.Equal(t, 24200.0, resp.Subtotal)
	require.Equal(t, 2420.0, resp.Discount)
	require.Equal(t, 21780.0, resp.Total)

	stored, err := repo.FindByID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 2)
	require.Equal(t, 11500.0, stored.Lines[0].UnitPrice)
	require.Equal(t, "SPRING10", stored.CouponCode)

	require.Equal(t, []string{domain.EventOrderCreated}, producer.eventTypes())
	require.Equal(t, []string{"cart-1"}, cart.cleared)
}

func TestCheckout_EmptyCartRejected(t *testing.T) {
	cart := &stubCart{snapshot: &port.CartSnapshot{CartID: "cart-1"}}
	svc := newTestOrderService(newMemoryOrderRepo(), &capturingProducer{}, cart)

	_, err := svc.Checkout(context.Background(), &CheckoutRequest{CartID: "cart-1"})
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	require.Empty(t, cart.cleared)
}

func TestCheckout_SnapshotFailurePropagated(t *testing.T) {
	cart := &stubCart{err: errors.New("cart service unreachable")}
	svc := newTestOrderService(newMemoryOrderRepo(), &capturingProducer{}, cart)

	_, err := svc.Checkout(context.Background(), &CheckoutRequest{CartID: "cart-1"})
	require.Error(t, err)
}

func TestCheckout_PublishFailureDoesNotFailOrder(t *testing.T) {
	repo := newMemoryOrderRepo()
	producer := &capturingProducer{err: errors.New("kafka down")}
	svc := newTestOrderService(repo, producer, &stubCart{snapshot: testSnapshot()})

	resp, err := svc.Checkout(context.Background(), &CheckoutRequest{CartID: "cart-1"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.OrderID)
}

func TestConfirm_PublishesConfirmedEvent(t *testing.T) {
	repo := newMemoryOrderRepo()
	producer := &capturingProducer{}
	svc := newTestOrderService(repo, producer, &stubCart{snapshot: testSnapshot()})
	ctx := context.Background()

	resp, err := svc.Checkout(ctx, &CheckoutRequest{CartID: "cart-1"})
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(ctx, resp.OrderID))

	require.Equal(t, []string{domain.EventOrderCreated, domain.EventOrderConfirmed}, producer.eventTypes())

	// 确认事件必须带上优惠券码，核销端依赖它
	confirmed := producer.events[len(producer.events)-1]
	require.Equal(t, "SPRING10", confirmed.CouponCode)
	require.Equal(t, resp.OrderID, confirmed.OrderID)
}

func TestTransition_IllegalTransitionRejected(t *testing.T) {
	repo := newMemoryOrderRepo()
	producer := &capturingProducer{}
	svc := newTestOrderService(repo, producer, &stubCart{snapshot: testSnapshot()})
	ctx := context.Background()

	resp, err := svc.Checkout(ctx, &CheckoutRequest{CartID: "cart-1"})
	require.NoError(t, err)

	err = svc.MarkShipped(ctx, resp.OrderID)
	var invalid *domain.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)

	// 失败的流转不发事件、不改状态
	require.Equal(t, []string{domain.EventOrderCreated}, producer.eventTypes())
	order, err := svc.GetOrder(ctx, resp.OrderID)
	require.NoError(t, err)
	require.Equal(t, string(domain.StatePending), order.State)
}

func TestTransition_UnknownOrder(t *testing.T) {
	svc := newTestOrderService(newMemoryOrderRepo(), &capturingProducer{}, &stubCart{})
	err := svc.Confirm(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

// staleReadRepo 让读到的订单停留在一个过期快照上，
// 模拟两个并发流转都在对方落库前完成读取的时序。
type staleReadRepo struct {
	*memoryOrderRepo
	stale *domain.Order
}

func (r *staleReadRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	if r.stale != nil && r.stale.ID == id {
		copied := *r.stale
		return &copied, nil
	}
	return r.memoryOrderRepo.FindByID(ctx, id)
}

func TestConfirm_ConcurrentConfirmRedeemsOnce(t *testing.T) {
	repo := newMemoryOrderRepo()
	producer := &capturingProducer{}
	stale := &staleReadRepo{memoryOrderRepo: repo}
	svc := newTestOrderService(stale, producer, &stubCart{snapshot: testSnapshot()})
	ctx := context.Background()

	resp, err := svc.Checkout(ctx, &CheckoutRequest{CartID: "cart-1"})
	require.NoError(t, err)

	// 两次确认都基于同一个 PENDING 快照读
	pending, err := repo.FindByID(ctx, resp.OrderID)
	require.NoError(t, err)
	stale.stale = pending

	require.NoError(t, svc.Confirm(ctx, resp.OrderID))
	err = svc.Confirm(ctx, resp.OrderID)
	require.ErrorIs(t, err, domain.ErrStateConflict)

	// 只有一次确认落库，确认事件也只发一次，核销端不会重复计数
	require.Equal(t, []string{domain.EventOrderCreated, domain.EventOrderConfirmed}, producer.eventTypes())
	stored, err := repo.FindByID(ctx, resp.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.StateConfirmed, stored.State)
}

func TestConfirm_RacingGoroutinesConfirmOnce(t *testing.T) {
	repo := newMemoryOrderRepo()
	producer := &capturingProducer{}
	svc := newTestOrderService(repo, producer, &stubCart{snapshot: testSnapshot()})
	ctx := context.Background()

	resp, err := svc.Checkout(ctx, &CheckoutRequest{CartID: "cart-1"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Confirm(ctx, resp.OrderID)
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, []string{domain.EventOrderCreated, domain.EventOrderConfirmed}, producer.eventTypes())
}

func TestCancelExpiredPending(t *testing.T) {
	repo := newMemoryOrderRepo()
	producer := &capturingProducer{}
	svc := newTestOrderService(repo, producer, &stubCart{snapshot: testSnapshot()})
	ctx := context.Background()

	expired, err := svc.Checkout(ctx, &CheckoutRequest{CartID: "cart-1"})
	require.NoError(t, err)
	fresh, err := svc.Checkout(ctx, &CheckoutRequest{CartID: "cart-1"})
	require.NoError(t, err)

	// 把第一单的创建时间拨回到支付时限之外
	repo.mu.Lock()
	repo.orders[expired.OrderID].CreatedAt = time.Now().Add(-time.Hour)
	repo.mu.Unlock()

	cancelled, err := svc.CancelExpiredPending(ctx, 15*time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, cancelled)

	stale, err := svc.GetOrder(ctx, expired.OrderID)
	require.NoError(t, err)
	require.Equal(t, string(domain.StateCancelled), stale.State)

	kept, err := svc.GetOrder(ctx, fresh.OrderID)
	require.NoError(t, err)
	require.Equal(t, string(domain.StatePending), kept.State)

	types := producer.eventTypes()
	require.Equal(t, domain.EventOrderCancelled, types[len(types)-1])
}

func TestFullLifecycleTransitions(t *testing.T) {
	repo := newMemoryOrderRepo()
	producer := &capturingProducer{}
	svc := newTestOrderService(repo, producer, &stubCart{snapshot: testSnapshot()})
	ctx := context.Background()

	resp, err := svc.Checkout(ctx, &CheckoutRequest{CartID: "cart-1"})
	require.NoError(t, err)

	require.NoError(t, svc.Confirm(ctx, resp.OrderID))
	require.NoError(t, svc.MarkProcessing(ctx, resp.OrderID))
	require.NoError(t, svc.MarkShipped(ctx, resp.OrderID))
	require.NoError(t, svc.MarkDelivered(ctx, resp.OrderID))
	require.NoError(t, svc.Refund(ctx, resp.OrderID))

	order, err := svc.GetOrder(ctx, resp.OrderID)
	require.NoError(t, err)
	require.Equal(t, string(domain.StateRefunded), order.State)
	require.Equal(t, []string{
		domain.EventOrderCreated,
		domain.EventOrderConfirmed,
		domain.EventOrderProcessing,
		domain.EventOrderShipped,
		domain.EventOrderDelivered,
		domain.EventOrderRefunded,
	}, producer.eventTypes())
}
