package infrastructure

import (
	"encoding/json"

	catalogdomain "atelier/internal/service/catalog/domain"
	"atelier/internal/service/order/domain"
)

// ToOrderModel 将领域订单转换为持久化模型
func ToOrderModel(order *domain.Order) (*OrderModel, error) {
	model := &OrderModel{
		ID:         order.ID,
		CartID:     order.CartID,
		CustomerID: order.CustomerID,
		Subtotal:   order.Subtotal,
		Discount:   order.Discount,
		Total:      order.Total,
		CouponCode: order.CouponCode,
		State:      string(order.State),
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
	for _, line := range order.Lines {
		var configJSON string
		if line.Configuration != nil {
			raw, err := json.Marshal(line.Configuration)
			if err != nil {
				return nil, err
			}
			configJSON = string(raw)
		}
		model.Lines = append(model.Lines, OrderLineModel{
			OrderID:       order.ID,
			LineID:        line.LineID,
			ProductID:     line.ProductID,
			VariantID:     line.VariantID,
			Configuration: configJSON,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
		})
	}
	return model, nil
}

// ToDomainOrder 将持久化模型转换为领域订单
func ToDomainOrder(model *OrderModel) (*domain.Order, error) {
	order := &domain.Order{
		ID:         model.ID,
		CartID:     model.CartID,
		CustomerID: model.CustomerID,
		Subtotal:   model.Subtotal,
		Discount:   model.Discount,
		Total:      model.Total,
		CouponCode: model.CouponCode,
		State:      domain.State(model.State),
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
	for _, line := range model.Lines {
		var config *catalogdomain.Configuration
		if line.Configuration != "" {
			config = &catalogdomain.Configuration{}
			if err := json.Unmarshal([]byte(line.Configuration), config); err != nil {
				return nil, err
			}
		}
		order.Lines = append(order.Lines, domain.OrderLine{
			LineID:        line.LineID,
			ProductID:     line.ProductID,
			VariantID:     line.VariantID,
			Configuration: config,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
		})
	}
	return order, nil
}
