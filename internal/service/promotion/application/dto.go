package application

// EvaluateCouponRequest 是评估优惠券的请求体
type EvaluateCouponRequest struct {
	CouponCode string  `json:"coupon_code"`
	Subtotal   float64 `json:"subtotal"`
	ItemCount  int     `json:"item_count"`
	UserID     string  `json:"user_id,omitempty"`
}

// EvaluateCouponResponse 是评估优惠券的响应体
type EvaluateCouponResponse struct {
	Applicable     bool    `json:"applicable"`
	DiscountAmount float64 `json:"discount_amount"`
	Reason         string  `json:"reason,omitempty"`
}
