package infrastructure

import (
	"time"

	"gorm.io/gorm"
)

// CouponModel 对应数据库中的 coupon 表
type CouponModel struct {
	gorm.Model
	Code            string  `gorm:"uniqueIndex;size:64"`
	DiscountType    string  `gorm:"size:16"`
	DiscountValue   float64 `gorm:"type:decimal(10,2)"`
	MaxDiscount     float64 `gorm:"type:decimal(10,2)"`
	MinOrderAmount  float64 `gorm:"type:decimal(10,2)"`
	MaxUses         int64
	UsesCount       int64
	ValidFrom       time.Time
	ValidUntil      time.Time
	IsActive        bool
	EligibilityRule string `gorm:"type:text"`
}

// TableName 指定 GORM 应该使用的表名
func (CouponModel) TableName() string {
	return "coupon"
}
