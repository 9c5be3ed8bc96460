package infrastructure

import (
	"context"
	"errors"

	"atelier/internal/service/promotion/domain"

	"gorm.io/gorm"
)

// GormCouponRepository 是 CouponRepository 的 GORM 实现
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository 创建一个新的 GORM 仓储实例
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// FindByCode 按券码查找优惠券，比较时大小写不敏感
func (r *GormCouponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	var model CouponModel
	err := r.db.WithContext(ctx).
		Where("UPPER(code) = ?", domain.NormalizeCode(code)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, err
	}
	return ToDomainCoupon(&model), nil
}

// Redeem 原子地将使用计数加一。
// 守卫条件放在同一条 UPDATE 里，由数据库保证并发确认时不会超过 MaxUses。
func (r *GormCouponRepository) Redeem(ctx context.Context, code string) error {
	result := r.db.WithContext(ctx).
		Model(&CouponModel{}).
		Where("UPPER(code) = ? AND is_active = ? AND (max_uses = 0 OR uses_count < max_uses)",
			domain.NormalizeCode(code), true).
		UpdateColumn("uses_count", gorm.Expr("uses_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// 区分"券不存在"和"次数用尽"
		var count int64
		if err := r.db.WithContext(ctx).Model(&CouponModel{}).
			Where("UPPER(code) = ?", domain.NormalizeCode(code)).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrCouponNotFound
		}
		return domain.ErrUsageExhausted
	}
	return nil
}
