// internal/service/cart/infrastructure/adapter/catalog_http_adapter.go
package adapter

import (
	"context"
	"fmt"

	"atelier/internal/pkg/httpclient"
	"atelier/internal/service/cart/port"
	catalogdomain "atelier/internal/service/catalog/domain"
)

// CatalogHTTPAdapter 是 port.PricingService 接口的 HTTP 实现，
// 通过目录服务的配置器报价接口取得定格单价。
type CatalogHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
}

// NewCatalogHTTPAdapter 创建一个新的目录服务适配器实例。
func NewCatalogHTTPAdapter(client *httpclient.Client, baseURL string) *CatalogHTTPAdapter {
	return &CatalogHTTPAdapter{client: client, baseURL: baseURL}
}

type quoteRequest struct {
	ProductID     int64                        `json:"product_id"`
	Configuration *catalogdomain.Configuration `json:"configuration"`
}

type quoteResponse struct {
	Quote struct {
		FinalPrice float64 `json:"finalPrice"`
	} `json:"quote"`
}

// QuoteUnitPrice 实现 port.PricingService。
func (a *CatalogHTTPAdapter) QuoteUnitPrice(ctx context.Context, productID int64, config *catalogdomain.Configuration) (float64, error) {
	var resp quoteResponse
	err := a.client.PostJSON(ctx, a.baseURL+"/configurator/quote", &quoteRequest{
		ProductID:     productID,
		Configuration: config,
	}, &resp)
	if err != nil {
		return 0, fmt.Errorf("catalog quote failed for product %d: %w", productID, err)
	}
	return resp.Quote.FinalPrice, nil
}

var _ port.PricingService = (*CatalogHTTPAdapter)(nil)
