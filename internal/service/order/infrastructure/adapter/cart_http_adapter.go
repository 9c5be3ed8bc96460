package adapter

import (
	"context"
	"fmt"
	"net/url"

	catalogdomain "atelier/internal/service/catalog/domain"
	"atelier/internal/pkg/httpclient"
	"atelier/internal/service/order/port"
)

// CartHTTPAdapter 通过 HTTP 调用 cart-service，实现 port.CartService
type CartHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
}

func NewCartHTTPAdapter(client *httpclient.Client, baseURL string) *CartHTTPAdapter {
	return &CartHTTPAdapter{client: client, baseURL: baseURL}
}

// cartViewResponse 对应 cart-service GET /cart 的响应体
type cartViewResponse struct {
	CartID     string `json:"cart_id"`
	Lines      []struct {
		LineID        string                       `json:"line_id"`
		ProductID     int64                        `json:"product_id"`
		VariantID     string                       `json:"variant_id"`
		Configuration *catalogdomain.Configuration `json:"configuration"`
		Quantity      int                          `json:"quantity"`
		UnitPrice     float64                      `json:"unit_price"`
	} `json:"lines"`
	CouponCode string `json:"coupon_code"`
	Totals     struct {
		Subtotal float64 `json:"subtotal"`
		Discount float64 `json:"discount"`
		Total    float64 `json:"total"`
	} `json:"totals"`
}

// GetSnapshot 读取购物车当前视图并原样转为下单快照。
// 金额直接取自 cart-service 的派生结果，不在本服务重算。
func (a *CartHTTPAdapter) GetSnapshot(ctx context.Context, cartID string) (*port.CartSnapshot, error) {
	reqURL := fmt.Sprintf("%s/cart?cart_id=%s", a.baseURL, url.QueryEscape(cartID))

	var view cartViewResponse
	if err := a.client.GetJSON(ctx, reqURL, &view); err != nil {
		return nil, fmt.Errorf("get cart snapshot: %w", err)
	}

	snapshot := &port.CartSnapshot{
		CartID:     view.CartID,
		CouponCode: view.CouponCode,
		Subtotal:   view.Totals.Subtotal,
		Discount:   view.Totals.Discount,
		Total:      view.Totals.Total,
	}
	for _, line := range view.Lines {
		snapshot.Lines = append(snapshot.Lines, port.SnapshotLine{
			LineID:        line.LineID,
			ProductID:     line.ProductID,
			VariantID:     line.VariantID,
			Configuration: line.Configuration,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
		})
	}
	return snapshot, nil
}

// Clear 下单成功后清空购物车
func (a *CartHTTPAdapter) Clear(ctx context.Context, cartID string) error {
	reqURL := fmt.Sprintf("%s/cart/clear?cart_id=%s", a.baseURL, url.QueryEscape(cartID))
	if err := a.client.PostJSON(ctx, reqURL, nil, nil); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
