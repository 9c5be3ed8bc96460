// internal/service/catalog/domain/pricing.go
package domain

import "fmt"

// SurchargeRule 描述某个商品的尺寸加价规则：
// 相对基准尺寸的每个维度增量乘以各自费率后线性叠加。
// 费率和基准都是商品目录配置数据，不是定价逻辑本身。
type SurchargeRule struct {
	BaselineLength float64
	BaselineWidth  float64
	BaselineHeight float64
	RatePerLength  float64
	RatePerWidth   float64
	RatePerHeight  float64
}

// Apply 计算一组定制尺寸相对基准的加价金额。
func (r *SurchargeRule) Apply(dims *Dimensions) float64 {
	if r == nil || dims == nil {
		return 0
	}
	return (dims.Length-r.BaselineLength)*r.RatePerLength +
		(dims.Width-r.BaselineWidth)*r.RatePerWidth +
		(dims.Height-r.BaselineHeight)*r.RatePerHeight
}

// PriceQuote 是一次定价计算的结果。
type PriceQuote struct {
	BasePrice          float64            `json:"basePrice"`
	OptionModifiers    map[string]float64 `json:"optionModifiers"`
	DimensionSurcharge float64            `json:"dimensionSurcharge"`
	FinalPrice         float64            `json:"finalPrice"`
	// 非致命的数据质量问题（例如价格被钳位到零），由调用方记录日志
	Warnings []string `json:"warnings,omitempty"`
}

// ComputePrice 根据基础价、选项目录和顾客的选择计算最终单价。
//
// 纯函数：无副作用，相同输入必然得到相同输出。
// 这是缓存和复现历史订单价格的前提。
//
// 失败语义：
//   - 目录中存在的部件没有给出选择        => IncompleteConfigurationError
//   - 给出的选项名在该部件目录中不存在    => InvalidOptionError
//   - 为目录中不存在的部件给出了选择      => InvalidOptionError
//
// 计算结果为负时钳位到零并附带 warning，不作为错误返回：
// 目录配置错误不应该阻塞下单，但必须可观测。
func ComputePrice(product *Product, config *Configuration) (*PriceQuote, error) {
	quote := &PriceQuote{
		BasePrice:       product.BasePrice,
		OptionModifiers: make(map[string]float64),
	}

	var selections map[PartCategory]string
	if config != nil {
		selections = config.Selections
	}

	// 目录中的每个部件都必须有选择，且选择必须能在目录中找到
	total := product.BasePrice
	for _, part := range product.RequiredParts() {
		name, ok := selections[part]
		if !ok {
			return nil, &IncompleteConfigurationError{Part: part}
		}
		opt, found := product.FindOption(part, name)
		if !found {
			return nil, &InvalidOptionError{Part: part, Value: name}
		}
		quote.OptionModifiers[string(part)] = opt.PriceModifier
		total += opt.PriceModifier
	}

	// 不允许为目录之外的部件传选择，这通常意味着前端与目录不同步
	for part, name := range selections {
		if !product.HasPart(part) {
			return nil, &InvalidOptionError{Part: part, Value: name}
		}
	}

	if config != nil && config.Dimensions != nil && product.Surcharge != nil {
		quote.DimensionSurcharge = product.Surcharge.Apply(config.Dimensions)
		total += quote.DimensionSurcharge
	}

	if total < 0 {
		quote.Warnings = append(quote.Warnings,
			fmt.Sprintf("computed price %.2f for product %d is negative, clamped to 0", total, product.ID))
		total = 0
	}
	quote.FinalPrice = total
	return quote, nil
}
