// internal/service/order/domain/repository.go
package domain

import (
	"context"
	"time"
)

// OrderRepository 定义了订单聚合的持久化接口。
// 它位于领域层，但由基础设施层实现。
type OrderRepository interface {
	// Create 持久化一个新订单。
	Create(ctx context.Context, order *Order) error

	// FindByID 根据 ID 查找一个订单聚合。
	FindByID(ctx context.Context, id string) (*Order, error)

	// UpdateState 以 CAS 方式持久化一次状态流转：
	// 仅当存储中的状态仍是 from 时写入 to，否则返回 ErrStateConflict。
	// 并发流转同一订单时只有一方成功，事件也只发布一次。
	UpdateState(ctx context.Context, id string, from, to State) error

	// FindStalePending 返回创建时间早于 before 且仍处于 PENDING 的订单 ID。
	FindStalePending(ctx context.Context, before time.Time) ([]string, error)
}

// OrderProducer 定义了订单事件发布的出站端口。
type OrderProducer interface {
	Publish(ctx context.Context, event *OrderEvent) error
}
