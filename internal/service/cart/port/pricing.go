// internal/service/cart/port/pricing.go
package port

import (
	"context"

	catalogdomain "atelier/internal/service/catalog/domain"
)

// PricingService 是购物车对目录定价能力的出站端口。
// 单价只在商品加入购物车时取一次，之后定格在行上。
type PricingService interface {
	QuoteUnitPrice(ctx context.Context, productID int64, config *catalogdomain.Configuration) (float64, error)
}
