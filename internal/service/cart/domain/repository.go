// internal/service/cart/domain/repository.go
package domain

import "context"

// CartStore 定义了购物车的持久化接口。
type CartStore interface {
	// Get 加载购物车；不存在时返回一个空购物车而不是错误。
	Get(ctx context.Context, cartID string) (*Cart, error)

	// Save 以乐观并发检查保存购物车：
	// 存储中的版本与 cart.Version 不一致时返回 ErrCartConflict，不落盘。
	Save(ctx context.Context, cart *Cart) error

	// Delete 删除购物车（结算完成后清空）。
	Delete(ctx context.Context, cartID string) error
}

// Locker 对同一购物车的修改做串行化。
// 合并检测必须永远基于最新存储状态运行，锁内 load-modify-save 保证了这一点；
// 乐观版本检查是锁失效（如会话过期）时的兜底。
type Locker interface {
	WithLock(ctx context.Context, cartID string, fn func(ctx context.Context) error) error
}
