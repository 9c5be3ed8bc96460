// internal/service/promotion/domain/repository.go
package domain

import "context"

// CouponRepository 定义了优惠券数据的持久化接口
// 这是领域层与基础设施层之间的"插座"
type CouponRepository interface {
	// FindByCode 按券码查找（大小写不敏感）。
	FindByCode(ctx context.Context, code string) (*Coupon, error)

	// Redeem 原子地将使用计数加一。
	// 必须在单条带守卫的 UPDATE 中完成：计数已达 MaxUses 时返回 ErrUsageExhausted，
	// 保证并发确认订单时计数不会超卖。
	Redeem(ctx context.Context, code string) error
}
