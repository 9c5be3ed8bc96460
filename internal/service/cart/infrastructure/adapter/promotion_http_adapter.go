// internal/service/cart/infrastructure/adapter/promotion_http_adapter.go
package adapter

import (
	"context"
	"fmt"

	"atelier/internal/pkg/httpclient"
	"atelier/internal/service/cart/port"
)

// PromotionHTTPAdapter 是 port.PromotionService 接口的 HTTP 实现。
type PromotionHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
}

// NewPromotionHTTPAdapter 创建一个新的优惠服务适配器实例。
func NewPromotionHTTPAdapter(client *httpclient.Client, baseURL string) *PromotionHTTPAdapter {
	return &PromotionHTTPAdapter{client: client, baseURL: baseURL}
}

type evaluateRequest struct {
	CouponCode string  `json:"coupon_code"`
	Subtotal   float64 `json:"subtotal"`
	ItemCount  int     `json:"item_count"`
}

type evaluateResponse struct {
	Applicable     bool    `json:"applicable"`
	DiscountAmount float64 `json:"discount_amount"`
	Reason         string  `json:"reason,omitempty"`
}

// EvaluateCoupon 实现 port.PromotionService。
func (a *PromotionHTTPAdapter) EvaluateCoupon(ctx context.Context, code string, subtotal float64, itemCount int) (*port.CouponEvaluation, error) {
	var resp evaluateResponse
	err := a.client.PostJSON(ctx, a.baseURL+"/coupons/evaluate", &evaluateRequest{
		CouponCode: code,
		Subtotal:   subtotal,
		ItemCount:  itemCount,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("coupon evaluation failed for %s: %w", code, err)
	}
	return &port.CouponEvaluation{
		Applicable:     resp.Applicable,
		DiscountAmount: resp.DiscountAmount,
		Reason:         resp.Reason,
	}, nil
}

var _ port.PromotionService = (*PromotionHTTPAdapter)(nil)
