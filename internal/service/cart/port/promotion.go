// internal/service/cart/port/promotion.go
package port

import "context"

// CouponEvaluation 是优惠券评估的结果。
type CouponEvaluation struct {
	Applicable     bool
	DiscountAmount float64
	Reason         string
}

// PromotionService 是购物车对优惠券评估能力的出站端口。
// 只评估，从不核销：使用计数由订单确认事件驱动。
type PromotionService interface {
	EvaluateCoupon(ctx context.Context, code string, subtotal float64, itemCount int) (*CouponEvaluation, error)
}
