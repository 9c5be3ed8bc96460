package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"atelier/internal/pkg/bootstrap"
	"atelier/internal/service/promotion/domain"
	"atelier/internal/service/promotion/infrastructure/rule"
)

type memoryCouponRepo struct {
	coupons map[string]*domain.Coupon
	redeems int
}

func newMemoryCouponRepo(coupons ...*domain.Coupon) *memoryCouponRepo {
	repo := &memoryCouponRepo{coupons: make(map[string]*domain.Coupon)}
	for _, c := range coupons {
		repo.coupons[domain.NormalizeCode(c.Code)] = c
	}
	return repo
}

func (r *memoryCouponRepo) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	coupon, ok := r.coupons[domain.NormalizeCode(code)]
	if !ok {
		return nil, domain.ErrCouponNotFound
	}
	copied := *coupon
	return &copied, nil
}

func (r *memoryCouponRepo) Redeem(ctx context.Context, code string) error {
	coupon, ok := r.coupons[domain.NormalizeCode(code)]
	if !ok {
		return domain.ErrCouponNotFound
	}
	if coupon.MaxUses > 0 && coupon.UsesCount >= coupon.MaxUses {
		return domain.ErrUsageExhausted
	}
	coupon.UsesCount++
	r.redeems++
	return nil
}

func springCoupon() *domain.Coupon {
	return &domain.Coupon{
		ID:            1,
		Code:          "SPRING10",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 10,
		ValidFrom:     time.Now().AddDate(0, -1, 0),
		ValidUntil:    time.Now().AddDate(0, 1, 0),
		IsActive:      true,
	}
}

func newTestPromotionService(t *testing.T, repo domain.CouponRepository) *PromotionService {
	t.Helper()
	engine, err := rule.NewCELRuleEngineAdapter()
	require.NoError(t, err)
	return NewPromotionService(repo, engine, otel.Tracer("promotion-service-test"))
}

func TestEvaluateCoupon_Applicable(t *testing.T) {
	svc := newTestPromotionService(t, newMemoryCouponRepo(springCoupon()))

	resp, err := svc.EvaluateCoupon(context.Background(), &EvaluateCouponRequest{
		CouponCode: "spring10", Subtotal: 2700, ItemCount: 3,
	})
	require.NoError(t, err)
	require.True(t, resp.Applicable)
	require.Equal(t, 270.0, resp.DiscountAmount)
}

func TestEvaluateCoupon_UnknownCode(t *testing.T) {
	svc := newTestPromotionService(t, newMemoryCouponRepo())

	_, err := svc.EvaluateCoupon(context.Background(), &EvaluateCouponRequest{CouponCode: "NOPE", Subtotal: 100})
	require.ErrorIs(t, err, domain.ErrCouponNotFound)
}

func TestEvaluateCoupon_EligibilityRuleRejects(t *testing.T) {
	coupon := springCoupon()
	coupon.EligibilityRule = `fact.item_count >= 2`
	svc := newTestPromotionService(t, newMemoryCouponRepo(coupon))

	resp, err := svc.EvaluateCoupon(context.Background(), &EvaluateCouponRequest{
		CouponCode: "SPRING10", Subtotal: 2700, ItemCount: 1,
	})
	require.NoError(t, err)
	require.False(t, resp.Applicable)
	require.Equal(t, string(domain.ReasonNotEligible), resp.Reason)
}

func TestEvaluateCoupon_BrokenRuleSkipped(t *testing.T) {
	coupon := springCoupon()
	coupon.EligibilityRule = `fact.item_count >=`
	svc := newTestPromotionService(t, newMemoryCouponRepo(coupon))

	// 规则编译失败按数据质量问题处理，基础评估结果放行
	resp, err := svc.EvaluateCoupon(context.Background(), &EvaluateCouponRequest{
		CouponCode: "SPRING10", Subtotal: 2700, ItemCount: 1,
	})
	require.NoError(t, err)
	require.True(t, resp.Applicable)
}

func TestEvaluateCoupon_DisabledByGlobalSwitch(t *testing.T) {
	cfg := bootstrap.GetCurrentConfig()
	cfg.App.EnablePromotions = false
	t.Cleanup(func() { cfg.App.EnablePromotions = true })

	repo := newMemoryCouponRepo(springCoupon())
	svc := newTestPromotionService(t, repo)

	resp, err := svc.EvaluateCoupon(context.Background(), &EvaluateCouponRequest{
		CouponCode: "SPRING10", Subtotal: 2700, ItemCount: 3,
	})
	require.NoError(t, err)
	require.False(t, resp.Applicable)
	require.Equal(t, string(domain.ReasonInactive), resp.Reason)
}

func TestEvaluateCoupon_NeverMutatesUsage(t *testing.T) {
	repo := newMemoryCouponRepo(springCoupon())
	svc := newTestPromotionService(t, repo)

	for i := 0; i < 5; i++ {
		_, err := svc.EvaluateCoupon(context.Background(), &EvaluateCouponRequest{
			CouponCode: "SPRING10", Subtotal: 2700, ItemCount: 3,
		})
		require.NoError(t, err)
	}
	require.Zero(t, repo.redeems)
}

func TestRedeemCoupon(t *testing.T) {
	coupon := springCoupon()
	coupon.MaxUses = 1
	repo := newMemoryCouponRepo(coupon)
	svc := newTestPromotionService(t, repo)

	require.NoError(t, svc.RedeemCoupon(context.Background(), "SPRING10", "order-1"))
	require.Equal(t, 1, repo.redeems)

	err := svc.RedeemCoupon(context.Background(), "SPRING10", "order-2")
	require.ErrorIs(t, err, domain.ErrUsageExhausted)
}
