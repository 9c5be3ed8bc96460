package infrastructure

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"atelier/internal/service/order/domain"
)

// GormOrderRepository 是 domain.OrderRepository 的 GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create 在一个事务内写入订单与订单行
func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	model, err := ToOrderModel(order)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID 根据 ID 查询订单，包含订单行
func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Preload("Lines").First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return ToDomainOrder(&model)
}

// UpdateState 以单条带守卫的 UPDATE 持久化状态变更（CAS）。
// WHERE 里带上流转前的状态，并发流转同一订单时只有一方能写成功。
func (r *GormOrderRepository) UpdateState(ctx context.Context, id string, from, to domain.State) error {
	result := r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("id = ? AND state = ?", id, string(from)).
		Updates(map[string]interface{}{
			"state":      string(to),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// 区分"订单不存在"和"状态已被并发修改"
		var count int64
		if err := r.db.WithContext(ctx).Model(&OrderModel{}).
			Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrOrderNotFound
		}
		return domain.ErrStateConflict
	}
	return nil
}

// FindStalePending 查询超过支付时限仍未确认的订单。
func (r *GormOrderRepository) FindStalePending(ctx context.Context, before time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("state = ? AND created_at < ?", string(domain.StatePending), before).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
