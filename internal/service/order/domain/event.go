// internal/service/order/domain/event.go
package domain

import "time"

// 订单事件类型。确认事件驱动优惠券核销，全部事件喂给后台看板。
const (
	EventOrderCreated    = "ORDER_CREATED"
	EventOrderConfirmed  = "ORDER_CONFIRMED"
	EventOrderProcessing = "ORDER_PROCESSING"
	EventOrderShipped    = "ORDER_SHIPPED"
	EventOrderDelivered  = "ORDER_DELIVERED"
	EventOrderCancelled  = "ORDER_CANCELLED"
	EventOrderRefunded   = "ORDER_REFUNDED"
)

// OrderEvent 是发布到订单事件主题上的载荷。
type OrderEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	OrderID    string    `json:"order_id"`
	CustomerID string    `json:"customer_id,omitempty"`
	CouponCode string    `json:"coupon_code,omitempty"`
	Total      float64   `json:"total"`
	OccurredAt time.Time `json:"occurred_at"`
}
