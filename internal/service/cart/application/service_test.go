package application

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	catalogdomain "atelier/internal/service/catalog/domain"
	"atelier/internal/service/cart/domain"
	"atelier/internal/service/cart/port"
)

// memoryStore 在内存中模拟带版本检查的存储。
type memoryStore struct {
	mu        sync.Mutex
	carts     map[string][]byte
	versions  map[string]int64
	saveCalls int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{carts: make(map[string][]byte), versions: make(map[string]int64)}
}

func (s *memoryStore) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.carts[cartID]
	if !ok {
		return domain.NewCart(cartID), nil
	}
	cart := &domain.Cart{}
	if err := json.Unmarshal(data, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *memoryStore) Save(ctx context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	if s.versions[cart.ID] != cart.Version {
		return domain.ErrCartConflict
	}
	cart.Version++
	data, err := json.Marshal(cart)
	if err != nil {
		cart.Version--
		return err
	}
	s.carts[cart.ID] = data
	s.versions[cart.ID] = cart.Version
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, cartID)
	delete(s.versions, cartID)
	return nil
}

// memoryLocker 用互斥锁模拟按购物车串行化。
type memoryLocker struct {
	mu sync.Mutex
}

func (l *memoryLocker) WithLock(ctx context.Context, cartID string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(ctx)
}

// fixedPricing 返回预先配置的单价。
type fixedPricing struct {
	prices map[int64]float64
	err    error
}

func (p *fixedPricing) QuoteUnitPrice(ctx context.Context, productID int64, config *catalogdomain.Configuration) (float64, error) {
	if p.err != nil {
		return 0, p.err
	}
	return p.prices[productID], nil
}

// stubPromotion 返回预先配置的评估结果。
type stubPromotion struct {
	eval *port.CouponEvaluation
	err  error
}

func (p *stubPromotion) EvaluateCoupon(ctx context.Context, code string, subtotal float64, itemCount int) (*port.CouponEvaluation, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.eval, nil
}

func newTestService(store domain.CartStore, promotion port.PromotionService) *CartService {
	pricing := &fixedPricing{prices: map[int64]float64{1001: 11500, 1002: 1200}}
	return NewCartService(store, &memoryLocker{}, pricing, promotion, otel.Tracer("cart-service-test"))
}

func TestAddItem_FreezesUnitPriceAndBuildsView(t *testing.T) {
	svc := newTestService(newMemoryStore(), &stubPromotion{})

	view, err := svc.AddItem(context.Background(), &AddItemRequest{
		CartID: "cart-1", ProductID: 1001, Quantity: 2,
	})
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	require.Equal(t, 11500.0, view.Lines[0].UnitPrice)
	require.Equal(t, 23000.0, view.Totals.Subtotal)
	require.Equal(t, 23000.0, view.Totals.Total)
}

func TestAddItem_MergesAgainstLatestStoredState(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, &stubPromotion{})
	ctx := context.Background()

	_, err := svc.AddItem(ctx, &AddItemRequest{CartID: "cart-1", ProductID: 1001, Quantity: 1})
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, &AddItemRequest{CartID: "cart-1", ProductID: 1001, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, view.Lines, 1)
	require.Equal(t, 3, view.Lines[0].Quantity)
}

func TestAddItem_PricingFailureWritesNothing(t *testing.T) {
	store := newMemoryStore()
	pricing := &fixedPricing{err: errors.New("catalog unavailable")}
	svc := NewCartService(store, &memoryLocker{}, pricing, &stubPromotion{}, otel.Tracer("cart-service-test"))

	_, err := svc.AddItem(context.Background(), &AddItemRequest{CartID: "cart-1", ProductID: 1001, Quantity: 1})
	require.Error(t, err)
	require.Zero(t, store.saveCalls)
}

func TestUpdateItemQuantity_ZeroRemovesLine(t *testing.T) {
	svc := newTestService(newMemoryStore(), &stubPromotion{})
	ctx := context.Background()

	view, err := svc.AddItem(ctx, &AddItemRequest{CartID: "cart-1", ProductID: 1001, Quantity: 2})
	require.NoError(t, err)

	view, err = svc.UpdateItemQuantity(ctx, &UpdateQuantityRequest{
		CartID: "cart-1", LineID: view.Lines[0].LineID, Quantity: 0,
	})
	require.NoError(t, err)
	require.Empty(t, view.Lines)
	require.Equal(t, 0.0, view.Totals.Subtotal)
}

func TestRemoveItem_UnknownLine(t *testing.T) {
	svc := newTestService(newMemoryStore(), &stubPromotion{})

	_, err := svc.RemoveItem(context.Background(), &RemoveItemRequest{CartID: "cart-1", LineID: "missing"})
	require.ErrorIs(t, err, domain.ErrLineNotFound)
}

func TestApplyCoupon_AppliedAndDiscountDerivedOnRead(t *testing.T) {
	promotion := &stubPromotion{eval: &port.CouponEvaluation{Applicable: true, DiscountAmount: 270}}
	svc := newTestService(newMemoryStore(), promotion)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, &AddItemRequest{CartID: "cart-1", ProductID: 1002, Quantity: 1})
	require.NoError(t, err)

	resp, err := svc.ApplyCoupon(ctx, &ApplyCouponRequest{CartID: "cart-1", CouponCode: "SPRING10"})
	require.NoError(t, err)
	require.True(t, resp.Applied)
	require.Equal(t, 270.0, resp.View.Totals.Discount)

	view, err := svc.GetCart(ctx, "cart-1")
	require.NoError(t, err)
	require.Equal(t, "SPRING10", view.CouponCode)
	require.Equal(t, 930.0, view.Totals.Total)
}

func TestApplyCoupon_RejectedCouponDoesNotTouchCart(t *testing.T) {
	promotion := &stubPromotion{eval: &port.CouponEvaluation{Applicable: false, Reason: "expired"}}
	store := newMemoryStore()
	svc := newTestService(store, promotion)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, &AddItemRequest{CartID: "cart-1", ProductID: 1002, Quantity: 1})
	require.NoError(t, err)
	savesBefore := store.saveCalls

	resp, err := svc.ApplyCoupon(ctx, &ApplyCouponRequest{CartID: "cart-1", CouponCode: "EXPIRED10"})
	require.NoError(t, err)
	require.False(t, resp.Applied)
	require.Equal(t, "expired", resp.Reason)
	require.Equal(t, savesBefore, store.saveCalls)

	view, err := svc.GetCart(ctx, "cart-1")
	require.NoError(t, err)
	require.Empty(t, view.CouponCode)
}

func TestGetCart_CouponReevaluatedOnEveryRead(t *testing.T) {
	promotion := &stubPromotion{eval: &port.CouponEvaluation{Applicable: true, DiscountAmount: 120}}
	svc := newTestService(newMemoryStore(), promotion)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, &AddItemRequest{CartID: "cart-1", ProductID: 1002, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.ApplyCoupon(ctx, &ApplyCouponRequest{CartID: "cart-1", CouponCode: "SPRING10"})
	require.NoError(t, err)

	// 券在挂上之后用尽：读取时折扣消失，原因透出，券码保留
	promotion.eval = &port.CouponEvaluation{Applicable: false, Reason: "usage_limit"}
	view, err := svc.GetCart(ctx, "cart-1")
	require.NoError(t, err)
	require.Equal(t, "SPRING10", view.CouponCode)
	require.Equal(t, "usage_limit", view.CouponReason)
	require.Equal(t, 0.0, view.Totals.Discount)
}

func TestGetCart_PromotionOutageDegradesToNoDiscount(t *testing.T) {
	promotion := &stubPromotion{eval: &port.CouponEvaluation{Applicable: true, DiscountAmount: 120}}
	svc := newTestService(newMemoryStore(), promotion)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, &AddItemRequest{CartID: "cart-1", ProductID: 1002, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.ApplyCoupon(ctx, &ApplyCouponRequest{CartID: "cart-1", CouponCode: "SPRING10"})
	require.NoError(t, err)

	promotion.err = errors.New("promotion service unreachable")
	view, err := svc.GetCart(ctx, "cart-1")
	require.NoError(t, err)
	require.Equal(t, "evaluation_failed", view.CouponReason)
	require.Equal(t, 0.0, view.Totals.Discount)
	require.Equal(t, 1200.0, view.Totals.Total)
}

func TestClear_RemovesCart(t *testing.T) {
	svc := newTestService(newMemoryStore(), &stubPromotion{})
	ctx := context.Background()

	_, err := svc.AddItem(ctx, &AddItemRequest{CartID: "cart-1", ProductID: 1002, Quantity: 2})
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "cart-1"))

	view, err := svc.GetCart(ctx, "cart-1")
	require.NoError(t, err)
	require.Empty(t, view.Lines)
}

func TestMutate_RetriesOnVersionConflict(t *testing.T) {
	store := &conflictOnceStore{memoryStore: newMemoryStore()}
	svc := newTestService(store, &stubPromotion{})

	view, err := svc.AddItem(context.Background(), &AddItemRequest{CartID: "cart-1", ProductID: 1001, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	require.Equal(t, 1, store.conflicts)
}

// conflictOnceStore 第一次保存强制返回冲突，模拟锁失效下的并发写。
type conflictOnceStore struct {
	*memoryStore
	conflicts int
}

func (s *conflictOnceStore) Save(ctx context.Context, cart *domain.Cart) error {
	if s.conflicts == 0 {
		s.conflicts++
		return domain.ErrCartConflict
	}
	return s.memoryStore.Save(ctx, cart)
}
