package infrastructure

import (
	"atelier/internal/service/promotion/domain"
)

// ToDomainCoupon 将数据库模型转换为领域模型
func ToDomainCoupon(model *CouponModel) *domain.Coupon {
	if model == nil {
		return nil
	}
	return &domain.Coupon{
		ID:              int64(model.ID),
		Code:            domain.NormalizeCode(model.Code),
		DiscountType:    domain.DiscountType(model.DiscountType),
		DiscountValue:   model.DiscountValue,
		MaxDiscount:     model.MaxDiscount,
		MinOrderAmount:  model.MinOrderAmount,
		MaxUses:         model.MaxUses,
		UsesCount:       model.UsesCount,
		ValidFrom:       model.ValidFrom,
		ValidUntil:      model.ValidUntil,
		IsActive:        model.IsActive,
		EligibilityRule: model.EligibilityRule,
	}
}
