// cmd/cart-service/main.go
package main

import (
	"context"

	"atelier/internal/pkg/bootstrap"
	"atelier/internal/pkg/httpclient"
	"atelier/internal/pkg/logger"
	"atelier/internal/pkg/redis"
	"atelier/internal/service/cart/application"
	"atelier/internal/service/cart/infrastructure"
	"atelier/internal/service/cart/infrastructure/adapter"
	"atelier/internal/service/cart/interfaces"
	"atelier/internal/zookeeper"

	"go.opentelemetry.io/otel"
)

const (
	serviceName = "cart-service"
	servicePort = 8082
)

// main 函数是应用的"组装根" (Composition Root)
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	redisClient, err := redis.NewClient(cfg.Infra.Redis.Addr)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to redis")
	}

	cartStore, err := infrastructure.NewRedisCartStore(redisClient)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to initialize cart store")
	}

	zkConn, err := zookeeper.Connect(cfg.Infra.Zookeeper.Servers)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to zookeeper")
	}
	locker := infrastructure.NewZkCartLocker(zkConn)

	tracer := otel.Tracer(serviceName)
	httpClient := httpclient.NewClient(tracer)
	pricingAdapter := adapter.NewCatalogHTTPAdapter(httpClient, cfg.Services.CatalogURL)
	promotionAdapter := adapter.NewPromotionHTTPAdapter(httpClient, cfg.Services.PromotionURL)

	cartService := application.NewCartService(cartStore, locker, pricingAdapter, promotionAdapter, tracer)
	handler := interfaces.NewCartHandler(cartService)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			zkConn.Close()
			if err := redisClient.Close(); err != nil {
				logger.Logger.Error().Err(err).Msg("Error closing redis client")
			}
		},
	})
}
