// internal/service/catalog/domain/product.go
package domain

// Product 是商品聚合根。
// 对于可配置商品，Options 按部件分组给出全部可选变体，
// RequiredParts 列出报价前必须选定的部件。
type Product struct {
	ID          int64
	SKU         string
	Name        string
	Description string
	BasePrice   float64
	Options     []ConfigurableOption
	Surcharge   *SurchargeRule // 可选的尺寸加价规则，nil 表示不支持定制尺寸
}

// Configurable 返回该商品是否存在可配置部件。
func (p *Product) Configurable() bool {
	return len(p.Options) > 0
}

// RequiredParts 返回该商品目录中出现过的所有部件类型。
// 每个在目录中提供了选项的部件都必须被选择。
func (p *Product) RequiredParts() []PartCategory {
	seen := make(map[PartCategory]bool)
	var parts []PartCategory
	for _, opt := range p.Options {
		if !seen[opt.Part] {
			seen[opt.Part] = true
			parts = append(parts, opt.Part)
		}
	}
	return parts
}

// FindOption 在目录中查找某部件下指定名字的选项。
func (p *Product) FindOption(part PartCategory, name string) (ConfigurableOption, bool) {
	for _, opt := range p.Options {
		if opt.Part == part && opt.Name == name {
			return opt, true
		}
	}
	return ConfigurableOption{}, false
}

// HasPart 返回目录中是否存在该部件。
func (p *Product) HasPart(part PartCategory) bool {
	for _, opt := range p.Options {
		if opt.Part == part {
			return true
		}
	}
	return false
}
