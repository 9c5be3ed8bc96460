package application

import (
	"context"
	"fmt"
	"time"

	"atelier/internal/pkg/bootstrap"
	"atelier/internal/pkg/logger"
	"atelier/internal/service/promotion/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	evaluationCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promotion_coupon_evaluations_total",
		Help: "Coupon evaluations grouped by outcome reason.",
	}, []string{"reason"})

	redemptionCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "promotion_coupon_redemptions_total",
		Help: "Successful coupon usage-counter increments.",
	})
)

// PromotionService 定义了优惠服务提供的所有业务用例
type PromotionService struct {
	couponRepo domain.CouponRepository
	ruleEngine domain.RuleEngine
	tracer     trace.Tracer
}

// NewPromotionService 创建一个新的优惠服务实例
func NewPromotionService(repo domain.CouponRepository, ruleEngine domain.RuleEngine, tracer trace.Tracer) *PromotionService {
	return &PromotionService{
		couponRepo: repo,
		ruleEngine: ruleEngine,
		tracer:     tracer,
	}
}

// EvaluateCoupon 评估一张优惠券对订单小计是否可用。
// 只读操作：评估永远不会改变使用计数，
// 防止放弃结算的流量把计数"用"掉。
func (s *PromotionService) EvaluateCoupon(ctx context.Context, req *EvaluateCouponRequest) (*EvaluateCouponResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.EvaluateCoupon")
	defer span.End()

	span.SetAttributes(
		attribute.String("coupon.code", req.CouponCode),
		attribute.Float64("order.subtotal", req.Subtotal),
	)

	// 全局优惠开关关闭时所有券都不可用
	if !bootstrap.GetCurrentConfig().App.EnablePromotions {
		evaluationCounter.WithLabelValues(string(domain.ReasonInactive)).Inc()
		return &EvaluateCouponResponse{Applicable: false, Reason: string(domain.ReasonInactive)}, nil
	}

	coupon, err := s.couponRepo.FindByCode(ctx, req.CouponCode)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	result := coupon.Evaluate(req.Subtotal, time.Now())

	// 基础检查通过后再执行可选的 CEL 资格规则
	if result.Applicable && coupon.EligibilityRule != "" {
		ok, err := s.ruleEngine.Evaluate(coupon.EligibilityRule, domain.Fact{
			Subtotal:  req.Subtotal,
			ItemCount: req.ItemCount,
			UserID:    req.UserID,
		})
		if err != nil {
			// 规则本身有问题按数据质量处理：放行基础结果，但记录告警
			logger.Ctx(ctx).Warn().Err(err).
				Str("coupon_code", coupon.Code).
				Msg("eligibility rule evaluation failed, skipping rule")
		} else if !ok {
			result = domain.EvaluationResult{Reason: domain.ReasonNotEligible}
		}
	}

	if result.Applicable {
		evaluationCounter.WithLabelValues("applicable").Inc()
	} else {
		evaluationCounter.WithLabelValues(string(result.Reason)).Inc()
	}
	span.SetAttributes(attribute.Bool("coupon.applicable", result.Applicable))

	return &EvaluateCouponResponse{
		Applicable:     result.Applicable,
		DiscountAmount: result.DiscountAmount,
		Reason:         string(result.Reason),
	}, nil
}

// RedeemCoupon 在订单确认后核销一张优惠券（使用计数加一）。
// 由订单确认事件驱动，绝不在评估阶段调用。
func (s *PromotionService) RedeemCoupon(ctx context.Context, code, orderID string) error {
	ctx, span := s.tracer.Start(ctx, "service.RedeemCoupon")
	defer span.End()

	span.SetAttributes(
		attribute.String("coupon.code", code),
		attribute.String("order.id", orderID),
	)

	if err := s.couponRepo.Redeem(ctx, code); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to redeem coupon %s for order %s: %w", code, orderID, err)
	}

	redemptionCounter.Inc()
	logger.Ctx(ctx).Info().
		Str("coupon_code", code).
		Str("order_id", orderID).
		Msg("Coupon redeemed after order confirmation.")
	return nil
}
