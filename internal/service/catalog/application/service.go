package application

import (
	"context"

	"atelier/internal/pkg/logger"
	"atelier/internal/service/catalog/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CatalogService 提供商品目录查询与配置报价两个用例。
type CatalogService struct {
	productRepo domain.ProductRepository
	tracer      trace.Tracer
}

// NewCatalogService 创建一个新的目录服务实例。
func NewCatalogService(repo domain.ProductRepository, tracer trace.Tracer) *CatalogService {
	return &CatalogService{
		productRepo: repo,
		tracer:      tracer,
	}
}

// GetProduct 返回商品详情及其全部可配置选项。
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.GetProduct")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", id))

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	resp := &ProductResponse{
		ID:           product.ID,
		SKU:          product.SKU,
		Name:         product.Name,
		Description:  product.Description,
		BasePrice:    product.BasePrice,
		Customizable: product.Surcharge != nil,
	}
	for _, opt := range product.Options {
		resp.Options = append(resp.Options, OptionResponse{
			Part:          string(opt.Part),
			Name:          opt.Name,
			PriceModifier: opt.PriceModifier,
		})
	}
	return resp, nil
}

// QuoteConfiguration 为一份顾客配置计算最终单价。
// 定价本身是纯函数，这里负责加载目录数据并记录数据质量警告。
func (s *CatalogService) QuoteConfiguration(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.QuoteConfiguration")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", req.ProductID))

	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	quote, err := domain.ComputePrice(product, req.Configuration)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 负价被钳位属于目录数据质量问题：不阻塞请求，但必须可观测
	for _, w := range quote.Warnings {
		logger.Ctx(ctx).Warn().
			Int64("product_id", req.ProductID).
			Msg(w)
	}
	span.SetAttributes(attribute.Float64("pricing.final_price", quote.FinalPrice))

	return &QuoteResponse{ProductID: req.ProductID, Quote: quote}, nil
}
