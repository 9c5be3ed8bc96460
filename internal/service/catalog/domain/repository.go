// internal/service/catalog/domain/repository.go
package domain

import "context"

// ProductRepository 定义了商品目录的持久化接口。
// 它位于领域层，但由基础设施层实现。
type ProductRepository interface {
	// FindByID 加载商品及其全部可配置选项。
	FindByID(ctx context.Context, id int64) (*Product, error)

	// List 返回在售商品列表（不含选项明细）。
	List(ctx context.Context, limit, offset int) ([]*Product, error)
}
