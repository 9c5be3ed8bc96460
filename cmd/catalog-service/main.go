// cmd/catalog-service/main.go
package main

import (
	"atelier/internal/pkg/bootstrap"
	"atelier/internal/pkg/db"
	"atelier/internal/pkg/logger"
	"atelier/internal/service/catalog/application"
	"atelier/internal/service/catalog/infrastructure"
	"atelier/internal/service/catalog/interfaces"

	"go.opentelemetry.io/otel"
)

const (
	serviceName = "catalog-service"
	servicePort = 8081
)

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	gormDB, err := db.NewMysqlDB(cfg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to mysql")
	}

	productRepo := infrastructure.NewGormProductRepository(gormDB)
	catalogService := application.NewCatalogService(productRepo, otel.Tracer(serviceName))
	handler := interfaces.NewCatalogHandler(catalogService)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
	})
}
