// cmd/order-service/main.go
package main

import (
	"context"
	"time"

	"atelier/internal/pkg/bootstrap"
	"atelier/internal/pkg/db"
	"atelier/internal/pkg/httpclient"
	"atelier/internal/pkg/logger"
	"atelier/internal/pkg/mq"
	"atelier/internal/service/order/application"
	"atelier/internal/service/order/infrastructure"
	"atelier/internal/service/order/infrastructure/adapter"
	"atelier/internal/service/order/interfaces"

	"go.opentelemetry.io/otel"
)

const (
	serviceName = "order-service"
	servicePort = 8084
)

// main 函数是应用的"组装根" (Composition Root)
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	gormDB, err := db.NewMysqlDB(cfg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to mysql")
	}

	tracer := otel.Tracer(serviceName)

	orderRepo := infrastructure.NewGormOrderRepository(gormDB)
	producer := infrastructure.NewOrderProducerAdapter(
		mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, mq.TopicOrderEvents))
	cartAdapter := adapter.NewCartHTTPAdapter(httpclient.NewClient(tracer), cfg.Services.CartURL)

	orderService := application.NewOrderApplicationService(orderRepo, producer, cartAdapter, tracer)
	handler := interfaces.NewOrderHandler(orderService)

	// 超过支付时限仍未确认的订单由后台扫描自动取消
	paymentTimeout := time.Duration(cfg.App.PaymentTimeoutSeconds) * time.Second
	expiry := infrastructure.NewExpiryWorker(orderService, paymentTimeout, time.Minute)
	expiry.Start(context.Background())

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			expiry.Stop()
			if err := producer.Close(); err != nil {
				logger.Logger.Error().Err(err).Msg("Error closing kafka producer")
			}
		},
	})
}
