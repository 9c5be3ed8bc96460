// cmd/dashboard-gateway/main.go
package main

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"atelier/internal/pkg/bootstrap"
	"atelier/internal/pkg/mq"
	"atelier/internal/service/dashboard"
)

const (
	serviceName = "dashboard-gateway"
	servicePort = 8090
)

// main 函数是应用的"组装根" (Composition Root)。
// 每个网关节点使用带随机后缀的独立消费组，
// 因此多个节点各自收到全量订单事件，看板连到哪个节点都一样。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	nodeID := serviceName + "-" + uuid.New().String()[:8]

	hub := dashboard.NewHub()
	reader := mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, mq.TopicOrderEvents, nodeID)
	feed := dashboard.NewFeed(reader, hub)
	feed.Start()

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			appCtx.Mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
				dashboard.ServeWs(hub, w, r)
			})
		},
		OnShutdown: func(ctx context.Context) {
			feed.Stop()
		},
	})
}
