// cmd/promotion-service/main.go
package main

import (
	"context"

	"atelier/internal/pkg/bootstrap"
	"atelier/internal/pkg/db"
	"atelier/internal/pkg/logger"
	"atelier/internal/pkg/mq"
	"atelier/internal/service/promotion/application"
	"atelier/internal/service/promotion/infrastructure"
	"atelier/internal/service/promotion/infrastructure/rule"
	"atelier/internal/service/promotion/interfaces"

	"go.opentelemetry.io/otel"
)

const (
	serviceName     = "promotion-service"
	servicePort     = 8083
	consumerGroupID = "promotion-redemption-group"
)

// main 函数是应用的"组装根" (Composition Root)
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	gormDB, err := db.NewMysqlDB(cfg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to mysql")
	}

	ruleEngine, err := rule.NewCELRuleEngineAdapter()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to initialize rule engine")
	}

	couponRepo := infrastructure.NewGormCouponRepository(gormDB)
	promotionService := application.NewPromotionService(couponRepo, ruleEngine, otel.Tracer(serviceName))
	handler := interfaces.NewPromotionHandler(promotionService)

	// 订阅订单事件流：ORDER_CONFIRMED 驱动优惠券核销
	reader := mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, mq.TopicOrderEvents, consumerGroupID)
	consumer := infrastructure.NewRedemptionConsumerAdapter(reader, promotionService)
	consumer.Start(context.Background())

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			consumer.Stop()
		},
	})
}
