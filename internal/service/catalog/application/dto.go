package application

import "atelier/internal/service/catalog/domain"

// QuoteRequest 是 3D 配置器请求报价的请求体。
type QuoteRequest struct {
	ProductID     int64                 `json:"product_id"`
	Configuration *domain.Configuration `json:"configuration"`
}

// QuoteResponse 是配置器报价的响应体。
type QuoteResponse struct {
	ProductID int64              `json:"product_id"`
	Quote     *domain.PriceQuote `json:"quote"`
}

// ProductResponse 是商品详情的响应体。
type ProductResponse struct {
	ID           int64            `json:"id"`
	SKU          string           `json:"sku"`
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	BasePrice    float64          `json:"base_price"`
	Options      []OptionResponse `json:"options,omitempty"`
	Customizable bool             `json:"customizable"`
}

// OptionResponse 是单个可配置选项的响应体。
type OptionResponse struct {
	Part          string  `json:"part"`
	Name          string  `json:"name"`
	PriceModifier float64 `json:"price_modifier"`
}
