package application

import (
	catalogdomain "atelier/internal/service/catalog/domain"
	"atelier/internal/service/cart/domain"
)

// AddItemRequest 是向购物车添加商品的请求体
type AddItemRequest struct {
	CartID        string                       `json:"cart_id"`
	ProductID     int64                        `json:"product_id"`
	VariantID     string                       `json:"variant_id,omitempty"`
	Configuration *catalogdomain.Configuration `json:"configuration,omitempty"`
	Quantity      int                          `json:"quantity"`
}

// UpdateQuantityRequest 是修改行数量的请求体
type UpdateQuantityRequest struct {
	CartID   string `json:"cart_id"`
	LineID   string `json:"line_id"`
	Quantity int    `json:"quantity"`
}

// RemoveItemRequest 是删除行的请求体
type RemoveItemRequest struct {
	CartID string `json:"cart_id"`
	LineID string `json:"line_id"`
}

// ApplyCouponRequest 是应用优惠券的请求体
type ApplyCouponRequest struct {
	CartID     string `json:"cart_id"`
	CouponCode string `json:"coupon_code"`
}

// CartView 是购物车的完整读模型：行数据加上每次读取都重新派生的金额。
type CartView struct {
	CartID       string            `json:"cart_id"`
	Lines        []domain.LineItem `json:"lines"`
	CouponCode   string            `json:"coupon_code,omitempty"`
	CouponReason string            `json:"coupon_reason,omitempty"` // 已挂的券当前不可用时的原因
	Totals       domain.CartTotals `json:"totals"`
}

// ApplyCouponResponse 是应用优惠券的响应体
type ApplyCouponResponse struct {
	Applied bool      `json:"applied"`
	Reason  string    `json:"reason,omitempty"`
	View    *CartView `json:"cart,omitempty"`
}
