// internal/service/catalog/domain/option.go
package domain

// PartCategory 定义了一件家具上可配置的部件类型。
type PartCategory string

const (
	PartFrame        PartCategory = "frame"        // 框架
	PartLegType      PartCategory = "legType"      // 桌腿样式
	PartTabletopType PartCategory = "tabletopType" // 桌面材质
	PartFinish       PartCategory = "finish"       // 表面处理
)

// ConfigurableOption 是选项目录中的一条不可变记录：
// 某个部件下的一个具名变体，以及选中它时在基础价上叠加的价格修正量。
// PriceModifier 允许为负（例如更便宜的材质）。
type ConfigurableOption struct {
	ID            int64
	Part          PartCategory
	Name          string
	PriceModifier float64
}

// Dimensions 是顾客在配置器中输入的定制尺寸。
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

// Configuration 是顾客的一次完整选择：每个部件一个选项名，外加可选的定制尺寸。
// 它会原样存储在购物车行与订单行上，保证历史价格可复现。
type Configuration struct {
	Selections map[PartCategory]string `json:"selections"`
	Dimensions *Dimensions             `json:"dimensions,omitempty"`
}

// Equal 判断两份配置是否结构相等（深比较，而非指针比较）。
// 购物车合并同一商品的相同配置时依赖这里的语义。
func (c *Configuration) Equal(other *Configuration) bool {
	if c == nil || other == nil {
		return c == other
	}
	if len(c.Selections) != len(other.Selections) {
		return false
	}
	for part, name := range c.Selections {
		if other.Selections[part] != name {
			return false
		}
	}
	if (c.Dimensions == nil) != (other.Dimensions == nil) {
		return false
	}
	if c.Dimensions != nil && *c.Dimensions != *other.Dimensions {
		return false
	}
	return true
}
