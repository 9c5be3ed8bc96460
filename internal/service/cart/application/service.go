package application

import (
	"context"
	"errors"

	"atelier/internal/pkg/logger"
	"atelier/internal/service/cart/domain"
	"atelier/internal/service/cart/port"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// 锁保护下冲突本不该出现，留少量重试兜底锁失效的场景
const maxSaveRetries = 3

// CartService 负责购物车用例的编排：
// 加锁、加载最新状态、调用领域逻辑、带版本检查保存。
type CartService struct {
	store     domain.CartStore
	locker    domain.Locker
	pricing   port.PricingService
	promotion port.PromotionService
	tracer    trace.Tracer
}

// NewCartService 创建一个新的购物车服务实例。
func NewCartService(store domain.CartStore, locker domain.Locker, pricing port.PricingService, promotion port.PromotionService, tracer trace.Tracer) *CartService {
	return &CartService{
		store:     store,
		locker:    locker,
		pricing:   pricing,
		promotion: promotion,
		tracer:    tracer,
	}
}

// mutate 是所有购物车写操作的统一骨架。
// 锁内重新加载保证合并检测基于最新存储状态，而不是调用方手里的过期副本。
func (s *CartService) mutate(ctx context.Context, cartID string, fn func(cart *domain.Cart) error) (*domain.Cart, error) {
	var result *domain.Cart
	err := s.locker.WithLock(ctx, cartID, func(ctx context.Context) error {
		for attempt := 0; attempt < maxSaveRetries; attempt++ {
			cart, err := s.store.Get(ctx, cartID)
			if err != nil {
				return err
			}
			if err := fn(cart); err != nil {
				return err
			}
			if err := s.store.Save(ctx, cart); err != nil {
				if errors.Is(err, domain.ErrCartConflict) {
					logger.Ctx(ctx).Warn().
						Str("cart_id", cartID).
						Int("attempt", attempt+1).
						Msg("cart version conflict under lock, reloading")
					continue
				}
				return err
			}
			result = cart
			return nil
		}
		return domain.ErrCartConflict
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddItem 向购物车添加商品。
// 单价在此刻通过目录服务定格；无效配置直接拒绝，不会写入任何状态。
func (s *CartService) AddItem(ctx context.Context, req *AddItemRequest) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "service.AddItem")
	defer span.End()
	span.SetAttributes(
		attribute.String("cart.id", req.CartID),
		attribute.Int64("product.id", req.ProductID),
		attribute.Int("quantity", req.Quantity),
	)

	if req.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	// 定价是纯读操作，放在锁外执行，缩短锁持有时间
	unitPrice, err := s.pricing.QuoteUnitPrice(ctx, req.ProductID, req.Configuration)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	cart, err := s.mutate(ctx, req.CartID, func(cart *domain.Cart) error {
		_, err := cart.AddLine(req.ProductID, req.VariantID, req.Configuration, req.Quantity, unitPrice)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return s.buildView(ctx, cart), nil
}

// UpdateItemQuantity 修改行数量；数量小于等于零等价于删除该行。
func (s *CartService) UpdateItemQuantity(ctx context.Context, req *UpdateQuantityRequest) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "service.UpdateItemQuantity")
	defer span.End()
	span.SetAttributes(attribute.String("cart.id", req.CartID), attribute.String("cart.line_id", req.LineID))

	cart, err := s.mutate(ctx, req.CartID, func(cart *domain.Cart) error {
		return cart.UpdateQuantity(req.LineID, req.Quantity)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return s.buildView(ctx, cart), nil
}

// RemoveItem 删除一行。
func (s *CartService) RemoveItem(ctx context.Context, req *RemoveItemRequest) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "service.RemoveItem")
	defer span.End()
	span.SetAttributes(attribute.String("cart.id", req.CartID), attribute.String("cart.line_id", req.LineID))

	cart, err := s.mutate(ctx, req.CartID, func(cart *domain.Cart) error {
		return cart.RemoveLine(req.LineID)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return s.buildView(ctx, cart), nil
}

// ApplyCoupon 评估并在可用时把优惠券挂到购物车上。
// 评估不改变券的使用计数；不可用时返回原因，不修改购物车。
func (s *CartService) ApplyCoupon(ctx context.Context, req *ApplyCouponRequest) (*ApplyCouponResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.ApplyCoupon")
	defer span.End()
	span.SetAttributes(attribute.String("cart.id", req.CartID), attribute.String("coupon.code", req.CouponCode))

	cart, err := s.store.Get(ctx, req.CartID)
	if err != nil {
		return nil, err
	}

	eval, err := s.promotion.EvaluateCoupon(ctx, req.CouponCode, cart.Subtotal(), cart.ItemCount())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !eval.Applicable {
		span.SetAttributes(attribute.String("coupon.reason", eval.Reason))
		return &ApplyCouponResponse{Applied: false, Reason: eval.Reason}, nil
	}

	cart, err = s.mutate(ctx, req.CartID, func(cart *domain.Cart) error {
		cart.CouponCode = req.CouponCode
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	view := s.buildView(ctx, cart)
	return &ApplyCouponResponse{Applied: true, View: view}, nil
}

// RemoveCoupon 从购物车上摘掉优惠券。
func (s *CartService) RemoveCoupon(ctx context.Context, cartID string) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "service.RemoveCoupon")
	defer span.End()

	cart, err := s.mutate(ctx, cartID, func(cart *domain.Cart) error {
		cart.CouponCode = ""
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return s.buildView(ctx, cart), nil
}

// GetCart 返回购物车的完整读模型。
// 金额每次读取都重新派生，绝不缓存过期值。
func (s *CartService) GetCart(ctx context.Context, cartID string) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "service.GetCart")
	defer span.End()
	span.SetAttributes(attribute.String("cart.id", cartID))

	cart, err := s.store.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, cart), nil
}

// Clear 清空购物车（结算完成后由订单服务调用）。
func (s *CartService) Clear(ctx context.Context, cartID string) error {
	ctx, span := s.tracer.Start(ctx, "service.ClearCart")
	defer span.End()
	return s.locker.WithLock(ctx, cartID, func(ctx context.Context) error {
		return s.store.Delete(ctx, cartID)
	})
}

// buildView 基于最新行数据派生金额。
// 挂了券时每次都重新评估：券可能在加入购物车之后过期或用尽。
func (s *CartService) buildView(ctx context.Context, cart *domain.Cart) *CartView {
	view := &CartView{
		CartID:     cart.ID,
		Lines:      cart.Lines,
		CouponCode: cart.CouponCode,
	}

	var discount float64
	if cart.CouponCode != "" && !cart.Empty() {
		eval, err := s.promotion.EvaluateCoupon(ctx, cart.CouponCode, cart.Subtotal(), cart.ItemCount())
		switch {
		case err != nil:
			// 优惠服务不可达时按无折扣展示，不阻塞购物车读取
			logger.Ctx(ctx).Warn().Err(err).
				Str("cart_id", cart.ID).
				Msg("coupon evaluation failed while building cart view")
			view.CouponReason = "evaluation_failed"
		case eval.Applicable:
			discount = eval.DiscountAmount
		default:
			view.CouponReason = eval.Reason
		}
	}

	view.Totals = domain.ComputeTotals(cart, discount)
	return view
}
