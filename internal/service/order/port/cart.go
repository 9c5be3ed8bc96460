// internal/service/order/port/cart.go
package port

import (
	"context"

	catalogdomain "atelier/internal/service/catalog/domain"
)

// SnapshotLine 是购物车快照中的一行。
type SnapshotLine struct {
	LineID        string
	ProductID     int64
	VariantID     string
	Configuration *catalogdomain.Configuration
	Quantity      int
	UnitPrice     float64
}

// CartSnapshot 是结算时从购物车服务取得的完整快照。
// 金额已由购物车侧派生，订单侧逐字采用，不重新计算。
type CartSnapshot struct {
	CartID     string
	Lines      []SnapshotLine
	CouponCode string
	Subtotal   float64
	Discount   float64
	Total      float64
}

// CartService 是订单对购物车能力的出站端口。
type CartService interface {
	GetSnapshot(ctx context.Context, cartID string) (*CartSnapshot, error)
	Clear(ctx context.Context, cartID string) error
}
