package application

import (
	"context"
	"errors"
	"time"

	"atelier/internal/pkg/logger"
	"atelier/internal/service/order/domain"
	"atelier/internal/service/order/port"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	checkoutCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_checkouts_total",
		Help: "Orders created from cart checkouts.",
	})

	transitionCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_state_transitions_total",
		Help: "Order state transitions grouped by target state.",
	}, []string{"state"})
)

// OrderApplicationService 负责订单用例的编排。
type OrderApplicationService struct {
	orderRepo domain.OrderRepository
	producer  domain.OrderProducer
	cartSvc   port.CartService
	tracer    trace.Tracer
}

// NewOrderApplicationService 创建一个新的订单服务实例。
func NewOrderApplicationService(orderRepo domain.OrderRepository, producer domain.OrderProducer, cartSvc port.CartService, tracer trace.Tracer) *OrderApplicationService {
	return &OrderApplicationService{
		orderRepo: orderRepo,
		producer:  producer,
		cartSvc:   cartSvc,
		tracer:    tracer,
	}
}

// Checkout 将购物车快照转化为一个待确认订单。
//
// 关键约束：快照中的单价与金额逐字采用。
// 下单阶段绝不根据当前目录状态重新计算价格，
// 价格在商品加入购物车时就已定格。
func (s *OrderApplicationService) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.Checkout")
	defer span.End()
	span.SetAttributes(
		attribute.String("cart.id", req.CartID),
		attribute.String("customer.id", req.CustomerID),
	)

	snapshot, err := s.cartSvc.GetSnapshot(ctx, req.CartID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load cart snapshot")
		return nil, err
	}

	lines := make([]domain.OrderLine, 0, len(snapshot.Lines))
	for _, l := range snapshot.Lines {
		lines = append(lines, domain.OrderLine{
			LineID:        l.LineID,
			ProductID:     l.ProductID,
			VariantID:     l.VariantID,
			Configuration: l.Configuration,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
		})
	}

	order, err := domain.NewOrder(uuid.NewString(), req.CartID, req.CustomerID,
		lines, snapshot.Subtotal, snapshot.Discount, snapshot.Total, snapshot.CouponCode)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist order")
		return nil, err
	}

	s.publish(ctx, order, domain.EventOrderCreated)

	// 清空购物车失败不回滚订单：购物车残留只是体验问题，订单已经成立
	if err := s.cartSvc.Clear(ctx, req.CartID); err != nil {
		logger.Ctx(ctx).Warn().Err(err).
			Str("cart_id", req.CartID).
			Str("order_id", order.ID).
			Msg("failed to clear cart after checkout")
	}

	checkoutCounter.Inc()
	logger.Ctx(ctx).Info().
		Str("order_id", order.ID).
		Float64("total", order.Total).
		Msg("Order created from cart checkout.")

	return &CheckoutResponse{
		OrderID:  order.ID,
		State:    string(order.State),
		Subtotal: order.Subtotal,
		Discount: order.Discount,
		Total:    order.Total,
	}, nil
}

// Confirm 确认订单（支付完成）。
// 确认事件携带优惠券码，优惠服务据此核销使用计数。
// 这是计数唯一允许增加的时机，评估阶段从不计数。
func (s *OrderApplicationService) Confirm(ctx context.Context, orderID string) error {
	return s.transition(ctx, orderID, domain.StateConfirmed, domain.EventOrderConfirmed)
}

// Cancel 取消订单（确认前后均可）。
func (s *OrderApplicationService) Cancel(ctx context.Context, orderID string) error {
	return s.transition(ctx, orderID, domain.StateCancelled, domain.EventOrderCancelled)
}

// MarkProcessing 进入备货。
func (s *OrderApplicationService) MarkProcessing(ctx context.Context, orderID string) error {
	return s.transition(ctx, orderID, domain.StateProcessing, domain.EventOrderProcessing)
}

// MarkShipped 标记发货。
func (s *OrderApplicationService) MarkShipped(ctx context.Context, orderID string) error {
	return s.transition(ctx, orderID, domain.StateShipped, domain.EventOrderShipped)
}

// MarkDelivered 标记送达。
func (s *OrderApplicationService) MarkDelivered(ctx context.Context, orderID string) error {
	return s.transition(ctx, orderID, domain.StateDelivered, domain.EventOrderDelivered)
}

// Refund 退款（仅限已送达订单）。
func (s *OrderApplicationService) Refund(ctx context.Context, orderID string) error {
	return s.transition(ctx, orderID, domain.StateRefunded, domain.EventOrderRefunded)
}

// CancelExpiredPending 取消超过支付时限仍未确认的订单，返回成功取消的数量。
// 走常规的 Cancel 流转，因此取消事件照常发布；
// 扫描到流转之间订单可能刚好被支付，CAS 落败按正常并发处理，不算失败。
func (s *OrderApplicationService) CancelExpiredPending(ctx context.Context, timeout time.Duration) (int, error) {
	ctx, span := s.tracer.Start(ctx, "app.CancelExpiredPending")
	defer span.End()

	ids, err := s.orderRepo.FindStalePending(ctx, time.Now().Add(-timeout))
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	var cancelled int
	for _, id := range ids {
		err := s.Cancel(ctx, id)
		switch {
		case err == nil:
			cancelled++
		case errors.Is(err, domain.ErrStateConflict), errors.Is(err, domain.ErrOrderNotFound):
			continue
		default:
			var invalid *domain.InvalidTransitionError
			if errors.As(err, &invalid) {
				continue
			}
			logger.Ctx(ctx).Error().Err(err).
				Str("order_id", id).
				Msg("failed to cancel expired order")
		}
	}

	if cancelled > 0 {
		logger.Ctx(ctx).Info().
			Int("cancelled", cancelled).
			Dur("payment_timeout", timeout).
			Msg("Expired pending orders cancelled.")
	}
	span.SetAttributes(attribute.Int("order.expired_cancelled", cancelled))
	return cancelled, nil
}

// GetOrder 查询订单详情。
func (s *OrderApplicationService) GetOrder(ctx context.Context, orderID string) (*OrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.GetOrder")
	defer span.End()

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	resp := &OrderResponse{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		State:      string(order.State),
		Subtotal:   order.Subtotal,
		Discount:   order.Discount,
		Total:      order.Total,
		CouponCode: order.CouponCode,
	}
	for _, l := range order.Lines {
		resp.Lines = append(resp.Lines, OrderLineResponse{
			ProductID: l.ProductID,
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return resp, nil
}

// transition 是所有状态流转的统一骨架：
// 加载、领域校验、持久化、发布事件。
func (s *OrderApplicationService) transition(ctx context.Context, orderID string, target domain.State, eventType string) error {
	ctx, span := s.tracer.Start(ctx, "app.OrderTransition")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.target_state", string(target)),
	)

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	from := order.State
	if err := order.TransitionTo(target); err != nil {
		span.RecordError(err)
		return err
	}

	// CAS 写入：并发流转同一订单时只有一方落库，落败方不发布事件。
	// 否则两个并发 Confirm 会各发一次确认事件，优惠券被核销两次。
	if err := s.orderRepo.UpdateState(ctx, order.ID, from, order.State); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist state transition")
		return err
	}

	s.publish(ctx, order, eventType)
	transitionCounter.WithLabelValues(string(target)).Inc()

	logger.Ctx(ctx).Info().
		Str("order_id", order.ID).
		Str("state", string(order.State)).
		Msg("Order state transition applied.")
	return nil
}

// publish 发布订单事件。发布失败记录后放行：
// 事件流是旁路（核销、看板），不应阻塞主流程。
func (s *OrderApplicationService) publish(ctx context.Context, order *domain.Order, eventType string) {
	event := &domain.OrderEvent{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		CouponCode: order.CouponCode,
		Total:      order.Total,
		OccurredAt: time.Now(),
	}
	if err := s.producer.Publish(ctx, event); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("order_id", order.ID).
			Str("event_type", eventType).
			Msg("failed to publish order event")
	}
}
