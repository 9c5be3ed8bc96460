// internal/service/promotion/infrastructure/kafka_consumer.go
package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"atelier/internal/pkg/logger"
	"atelier/internal/pkg/mq"
	"atelier/internal/service/promotion/application"
	"atelier/internal/service/promotion/domain"

	"github.com/segmentio/kafka-go"
)

// orderEvent 是订单事件在 Kafka 上的载荷。
// 这里只解出核销需要的字段，其余字段忽略。
type orderEvent struct {
	EventType  string `json:"event_type"`
	OrderID    string `json:"order_id"`
	CouponCode string `json:"coupon_code,omitempty"`
}

const eventOrderConfirmed = "ORDER_CONFIRMED"

// RedemptionConsumerAdapter 是一个驱动适配器：
// 监听订单事件流，在订单进入 CONFIRMED 时核销对应的优惠券。
// 把计数增加挂在确认事件上，而不是评估阶段，避免放弃结算导致的计数漂移。
type RedemptionConsumerAdapter struct {
	reader  *kafka.Reader
	appSvc  *application.PromotionService
	wg      sync.WaitGroup
	stopped bool
}

// NewRedemptionConsumerAdapter 创建一个新的 Kafka 消费者适配器。
func NewRedemptionConsumerAdapter(reader *kafka.Reader, appSvc *application.PromotionService) *RedemptionConsumerAdapter {
	return &RedemptionConsumerAdapter{
		reader: reader,
		appSvc: appSvc,
	}
}

// Start 开始监听订单事件主题。这是一个长期运行的方法。
func (a *RedemptionConsumerAdapter) Start(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		logger.Logger.Info().Msgf("Redemption consumer started for topic '%s'.", a.reader.Config().Topic)
		for {
			if a.stopped {
				return
			}
			// 使用 FetchMessage 而不是 ReadMessage，以便手动控制 offset 提交
			msg, err := a.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Logger.Info().Msg("Redemption consumer shutting down.")
					return
				}
				logger.Logger.Error().Err(err).Msg("could not read message, retrying")
				time.Sleep(1 * time.Second)
				continue
			}

			a.processMessage(ctx, msg)

			if err := a.reader.CommitMessages(ctx, msg); err != nil {
				logger.Logger.Error().Err(err).Msg("failed to commit messages")
			}
		}
	}()
}

// Stop 优雅地停止消费者。
func (a *RedemptionConsumerAdapter) Stop() {
	a.stopped = true
	a.reader.Close()
	a.wg.Wait()
	logger.Logger.Info().Msg("Redemption consumer stopped.")
}

func (a *RedemptionConsumerAdapter) processMessage(parentCtx context.Context, msg kafka.Message) {
	ctx := mq.ExtractTraceContext(parentCtx, msg)

	var event orderEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal order event, skipping")
		return
	}

	if event.EventType != eventOrderConfirmed || event.CouponCode == "" {
		return
	}

	if err := a.appSvc.RedeemCoupon(ctx, event.CouponCode, event.OrderID); err != nil {
		// 次数用尽说明确认与核销之间存在并发竞争，记录后人工对账；
		// 其他错误依赖消息重投
		if errors.Is(err, domain.ErrUsageExhausted) {
			logger.Ctx(ctx).Warn().
				Str("coupon_code", event.CouponCode).
				Str("order_id", event.OrderID).
				Msg("coupon usage exhausted at redemption time")
			return
		}
		logger.Ctx(ctx).Error().Err(err).
			Str("order_id", event.OrderID).
			Msg("failed to redeem coupon for confirmed order")
	}
}
