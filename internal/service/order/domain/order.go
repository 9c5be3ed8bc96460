// internal/service/order/domain/order.go
package domain

import (
	"errors"
	"fmt"
	"time"

	catalogdomain "atelier/internal/service/catalog/domain"
)

var (
	// ErrOrderNotFound 表示订单不存在。
	ErrOrderNotFound = errors.New("order not found")

	// ErrEmptyCart 表示尝试对空购物车结算。
	ErrEmptyCart = errors.New("cannot checkout an empty cart")

	// ErrStateConflict 表示持久化状态流转时发现订单已被并发修改。
	// 本次流转未生效，调用方不得发布对应事件。
	ErrStateConflict = errors.New("order state changed concurrently")
)

// InvalidTransitionError 表示一次非法的状态流转请求。
type InvalidTransitionError struct {
	From State
	To   State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

// OrderLine 是订单上的一行，从购物车快照原样拷贝。
// UnitPrice 是加入购物车时定格的价格，下单阶段绝不根据
// 当前目录状态重新计算，这是历史订单可复现的关键约束。
type OrderLine struct {
	LineID        string
	ProductID     int64
	VariantID     string
	Configuration *catalogdomain.Configuration
	Quantity      int
	UnitPrice     float64
}

// Order 是订单聚合的根实体。
// 金额字段逐字来自结算时的 CartTotals，订单侧不再派生。
type Order struct {
	ID         string
	CartID     string
	CustomerID string
	Lines      []OrderLine
	Subtotal   float64
	Discount   float64
	Total      float64
	CouponCode string
	State      State
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewOrder 从购物车快照创建一个待确认订单。
func NewOrder(id, cartID, customerID string, lines []OrderLine, subtotal, discount, total float64, couponCode string) (*Order, error) {
	if id == "" || cartID == "" {
		return nil, errors.New("cannot create order with empty required fields")
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	now := time.Now()
	return &Order{
		ID:         id,
		CartID:     cartID,
		CustomerID: customerID,
		Lines:      lines,
		Subtotal:   subtotal,
		Discount:   discount,
		Total:      total,
		CouponCode: couponCode,
		State:      StatePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// TransitionTo 执行一次状态流转，非法流转返回 InvalidTransitionError。
func (o *Order) TransitionTo(target State) error {
	if !CanTransition(o.State, target) {
		return &InvalidTransitionError{From: o.State, To: target}
	}
	o.State = target
	o.UpdatedAt = time.Now()
	return nil
}

// Confirm 确认订单（对应支付完成）。
// 优惠券的使用计数只允许在这次流转成功后核销。
func (o *Order) Confirm() error {
	return o.TransitionTo(StateConfirmed)
}

// Cancel 取消订单，仅允许在确认前后。
func (o *Order) Cancel() error {
	return o.TransitionTo(StateCancelled)
}

// Refund 退款，仅允许已送达的订单。
func (o *Order) Refund() error {
	return o.TransitionTo(StateRefunded)
}
