package infrastructure

import (
	"context"
	"errors"

	"atelier/internal/service/catalog/domain"

	"gorm.io/gorm"
)

// GormProductRepository 是 ProductRepository 的 GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository 创建一个新的 GORM 仓储实例
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID 使用 GORM 加载商品及其全部选项
func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var model ProductModel
	err := r.db.WithContext(ctx).Preload("Options").First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return ToDomainProduct(&model), nil
}

// List 返回商品列表，不加载选项明细
func (r *GormProductRepository) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	var models []ProductModel
	err := r.db.WithContext(ctx).Limit(limit).Offset(offset).Order("id").Find(&models).Error
	if err != nil {
		return nil, err
	}
	products := make([]*domain.Product, 0, len(models))
	for i := range models {
		products = append(products, ToDomainProduct(&models[i]))
	}
	return products, nil
}
