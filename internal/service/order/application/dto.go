package application

// CheckoutRequest 是发起结算的请求体
type CheckoutRequest struct {
	CartID     string `json:"cart_id"`
	CustomerID string `json:"customer_id"`
}

// CheckoutResponse 是结算成功的响应体
type CheckoutResponse struct {
	OrderID  string  `json:"order_id"`
	State    string  `json:"state"`
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// TransitionRequest 是订单状态流转的请求体
type TransitionRequest struct {
	OrderID string `json:"order_id"`
}

// OrderResponse 是订单查询的响应体
type OrderResponse struct {
	OrderID    string              `json:"order_id"`
	CustomerID string              `json:"customer_id,omitempty"`
	State      string              `json:"state"`
	Lines      []OrderLineResponse `json:"lines"`
	Subtotal   float64             `json:"subtotal"`
	Discount   float64             `json:"discount"`
	Total      float64             `json:"total"`
	CouponCode string              `json:"coupon_code,omitempty"`
}

// OrderLineResponse 是订单行的响应体
type OrderLineResponse struct {
	ProductID int64   `json:"product_id"`
	VariantID string  `json:"variant_id,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}
