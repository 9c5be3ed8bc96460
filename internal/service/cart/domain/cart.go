// internal/service/cart/domain/cart.go
package domain

import (
	"time"

	catalogdomain "atelier/internal/service/catalog/domain"

	"github.com/google/uuid"
)

// LineItem 是购物车中的一行：一个商品+变体+配置+数量的组合。
// UnitPrice 在商品加入购物车时定格，之后目录或基础价的变更
// 不会追溯影响它（复现历史订单价格依赖这一点）。
type LineItem struct {
	LineID        string                       `json:"line_id"`
	ProductID     int64                        `json:"product_id"`
	VariantID     string                       `json:"variant_id,omitempty"`
	Configuration *catalogdomain.Configuration `json:"configuration,omitempty"`
	Quantity      int                          `json:"quantity"`
	UnitPrice     float64                      `json:"unit_price"`
	AddedAt       time.Time                    `json:"added_at"`
}

// matches 判断另一行是否代表完全相同的选择（结构相等，而非指针相等）。
func (l *LineItem) matches(productID int64, variantID string, config *catalogdomain.Configuration) bool {
	if l.ProductID != productID || l.VariantID != variantID {
		return false
	}
	if (l.Configuration == nil) != (config == nil) {
		return false
	}
	if l.Configuration == nil {
		return true
	}
	return l.Configuration.Equal(config)
}

// Cart 是购物车聚合根。
// Version 用于持久化层的乐观并发检查：每次成功保存加一，
// 保存时版本不匹配说明有并发修改，返回可重试的冲突。
type Cart struct {
	ID         string     `json:"id"`
	Lines      []LineItem `json:"lines"`
	CouponCode string     `json:"coupon_code,omitempty"`
	Version    int64      `json:"version"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewCart 创建一个空购物车。
func NewCart(id string) *Cart {
	return &Cart{ID: id, UpdatedAt: time.Now()}
}

// AddLine 向购物车添加一个商品。
// 当 productID、variantID、configuration 全部结构相等时与既有行合并
// （数量累加，保留首次加入时定格的单价），否则追加新行。
// 返回受影响行的 LineID。
func (c *Cart) AddLine(productID int64, variantID string, config *catalogdomain.Configuration, quantity int, unitPrice float64) (string, error) {
	if quantity <= 0 {
		return "", ErrInvalidQuantity
	}

	for i := range c.Lines {
		if c.Lines[i].matches(productID, variantID, config) {
			c.Lines[i].Quantity += quantity
			c.touch()
			return c.Lines[i].LineID, nil
		}
	}

	line := LineItem{
		LineID:        uuid.NewString(),
		ProductID:     productID,
		VariantID:     variantID,
		Configuration: config,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		AddedAt:       time.Now(),
	}
	c.Lines = append(c.Lines, line)
	c.touch()
	return line.LineID, nil
}

// UpdateQuantity 修改某一行的数量。
// 数量小于等于零等价于删除该行，这是显式的策略决定。
func (c *Cart) UpdateQuantity(lineID string, quantity int) error {
	if quantity <= 0 {
		return c.RemoveLine(lineID)
	}
	for i := range c.Lines {
		if c.Lines[i].LineID == lineID {
			c.Lines[i].Quantity = quantity
			c.touch()
			return nil
		}
	}
	return ErrLineNotFound
}

// RemoveLine 删除某一行。
func (c *Cart) RemoveLine(lineID string) error {
	for i := range c.Lines {
		if c.Lines[i].LineID == lineID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.touch()
			return nil
		}
	}
	return ErrLineNotFound
}

// Subtotal 返回所有行的单价×数量之和。纯计算，无副作用。
func (c *Cart) Subtotal() float64 {
	var subtotal float64
	for i := range c.Lines {
		subtotal += c.Lines[i].UnitPrice * float64(c.Lines[i].Quantity)
	}
	return subtotal
}

// ItemCount 返回购物车内商品总件数。
func (c *Cart) ItemCount() int {
	var n int
	for i := range c.Lines {
		n += c.Lines[i].Quantity
	}
	return n
}

// Empty 返回购物车是否为空。
func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
}
