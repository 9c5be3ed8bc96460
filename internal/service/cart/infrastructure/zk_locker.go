// internal/service/cart/infrastructure/zk_locker.go
package infrastructure

import (
	"context"
	"fmt"

	"atelier/internal/pkg/logger"
	"atelier/internal/service/cart/domain"
	"atelier/internal/zookeeper"
)

// ZkCartLocker 基于 ZooKeeper 分布式锁实现 domain.Locker。
// 多个服务实例并发修改同一购物车时，锁保证 load-modify-save 串行执行。
type ZkCartLocker struct {
	conn *zookeeper.Conn
}

// NewZkCartLocker 创建一个新的锁工厂。
func NewZkCartLocker(conn *zookeeper.Conn) *ZkCartLocker {
	return &ZkCartLocker{conn: conn}
}

// WithLock 在持有 cartID 对应的锁期间执行 fn。
func (l *ZkCartLocker) WithLock(ctx context.Context, cartID string, fn func(ctx context.Context) error) error {
	lock := zookeeper.NewDistributedLock(l.conn, "cart-"+cartID)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire cart lock for %s: %w", cartID, err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("cart_id", cartID).
				Msg("failed to release cart lock")
		}
	}()

	// 等锁期间请求可能已被调用方放弃
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fn(ctx)
}

var _ domain.Locker = (*ZkCartLocker)(nil)
