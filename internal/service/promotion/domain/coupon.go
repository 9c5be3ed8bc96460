// internal/service/promotion/domain/coupon.go
package domain

import (
	"errors"
	"strings"
	"time"
)

// DiscountType 定义了优惠券的折扣方式。
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage" // 按小计百分比
	DiscountFixed      DiscountType = "fixed"      // 固定金额
)

// Reason 是优惠券不可用时返回给调用方的原因。
// 不可用是高频的正常业务结果，因此用数据而不是 error 表达。
type Reason string

const (
	ReasonInactive     Reason = "inactive"
	ReasonExpired      Reason = "expired"
	ReasonUsageLimit   Reason = "usage_limit"
	ReasonBelowMinimum Reason = "below_minimum"
	ReasonNotEligible  Reason = "not_eligible" // 未通过额外的资格规则
)

// ErrCouponNotFound 表示优惠券码不存在。
var ErrCouponNotFound = errors.New("coupon not found")

// ErrUsageExhausted 表示核销时使用次数已达上限（并发下单竞争同一张券）。
var ErrUsageExhausted = errors.New("coupon usage limit reached")

// Coupon 是一张优惠券的领域模型。
// Code 全局唯一且大小写不敏感。
type Coupon struct {
	ID             int64
	Code           string
	DiscountType   DiscountType
	DiscountValue  float64
	MaxDiscount    float64 // 百分比券的折扣上限，0 表示不设上限
	MinOrderAmount float64 // 0 表示无门槛
	MaxUses        int64   // 0 表示不限次数
	UsesCount      int64
	ValidFrom      time.Time
	ValidUntil     time.Time
	IsActive       bool

	// 可选的 CEL 资格规则表达式，空串表示无额外限制。
	// 表达式在 Fact 上求值，例如 `fact.item_count >= 2`。
	EligibilityRule string
}

// NormalizeCode 统一优惠券码的比较形式。
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// EvaluationResult 是一次优惠券评估的结果。
// 评估本身绝不修改使用计数；计数只在订单真正确认时核销。
type EvaluationResult struct {
	Applicable     bool    `json:"applicable"`
	DiscountAmount float64 `json:"discount_amount"`
	Reason         Reason  `json:"reason,omitempty"`
}

// Evaluate 判断优惠券对给定小计是否可用，并计算折扣金额。
//
// 检查顺序固定，第一个不满足的原因即为结果（短路）：
// isActive -> 有效期窗口 -> 使用次数上限 -> 最低订单金额。
// 纯函数，now 由调用方传入以便测试。
func (c *Coupon) Evaluate(subtotal float64, now time.Time) EvaluationResult {
	if !c.IsActive {
		return EvaluationResult{Reason: ReasonInactive}
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return EvaluationResult{Reason: ReasonExpired}
	}
	if c.MaxUses > 0 && c.UsesCount >= c.MaxUses {
		return EvaluationResult{Reason: ReasonUsageLimit}
	}
	if c.MinOrderAmount > 0 && subtotal < c.MinOrderAmount {
		return EvaluationResult{Reason: ReasonBelowMinimum}
	}

	return EvaluationResult{
		Applicable:     true,
		DiscountAmount: c.discountFor(subtotal),
	}
}

// discountFor 计算折扣金额，结果永远不超过小计（不产生负总价）。
func (c *Coupon) discountFor(subtotal float64) float64 {
	var discount float64
	switch c.DiscountType {
	case DiscountPercentage:
		discount = subtotal * (c.DiscountValue / 100)
		if c.MaxDiscount > 0 && discount > c.MaxDiscount {
			discount = c.MaxDiscount
		}
	case DiscountFixed:
		discount = c.DiscountValue
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
