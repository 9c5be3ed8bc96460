package infrastructure

import (
	"context"
	"sync"
	"time"

	"atelier/internal/pkg/logger"
	"atelier/internal/service/order/application"
)

// ExpiryWorker 周期性取消超过支付时限仍未确认的订单。
// 这是一个驱动适配器：定时器触发应用层用例，本身不含业务规则。
type ExpiryWorker struct {
	appSvc   *application.OrderApplicationService
	timeout  time.Duration
	interval time.Duration
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewExpiryWorker 创建一个新的超时扫描器。
// timeout 是订单的支付时限，interval 是扫描周期。
func NewExpiryWorker(appSvc *application.OrderApplicationService, timeout, interval time.Duration) *ExpiryWorker {
	return &ExpiryWorker{
		appSvc:   appSvc,
		timeout:  timeout,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start 启动扫描循环。这是一个长期运行的方法。
func (w *ExpiryWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		logger.Logger.Info().
			Dur("payment_timeout", w.timeout).
			Dur("interval", w.interval).
			Msg("Order expiry worker started.")

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := w.appSvc.CancelExpiredPending(ctx, w.timeout); err != nil {
					logger.Logger.Error().Err(err).Msg("expired order sweep failed")
				}
			case <-w.stop:
				return
			}
		}
	}()
}

// Stop 优雅地停止扫描器。
func (w *ExpiryWorker) Stop() {
	close(w.stop)
	w.wg.Wait()
	logger.Logger.Info().Msg("Order expiry worker stopped.")
}
