package infrastructure

import (
	"atelier/internal/service/catalog/domain"
)

// ToDomainProduct 将数据库模型转换为领域模型
func ToDomainProduct(model *ProductModel) *domain.Product {
	if model == nil {
		return nil
	}
	product := &domain.Product{
		ID:          int64(model.ID),
		SKU:         model.SKU,
		Name:        model.Name,
		Description: model.Description,
		BasePrice:   model.BasePrice,
	}
	if model.Customizable {
		product.Surcharge = &domain.SurchargeRule{
			BaselineLength: model.BaselineLength,
			BaselineWidth:  model.BaselineWidth,
			BaselineHeight: model.BaselineHeight,
			RatePerLength:  model.RatePerLength,
			RatePerWidth:   model.RatePerWidth,
			RatePerHeight:  model.RatePerHeight,
		}
	}
	for _, opt := range model.Options {
		product.Options = append(product.Options, domain.ConfigurableOption{
			ID:            int64(opt.ID),
			Part:          domain.PartCategory(opt.PartCategory),
			Name:          opt.Name,
			PriceModifier: opt.PriceModifier,
		})
	}
	return product
}
