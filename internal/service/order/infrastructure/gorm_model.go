package infrastructure

import (
	"time"
)

// OrderModel 对应数据库中的 customer_order 表
type OrderModel struct {
	ID         string  `gorm:"primaryKey;size:36"`
	CartID     string  `gorm:"size:64;index"`
	CustomerID string  `gorm:"size:64;index"`
	Subtotal   float64 `gorm:"type:decimal(10,2)"`
	Discount   float64 `gorm:"type:decimal(10,2)"`
	Total      float64 `gorm:"type:decimal(10,2)"`
	CouponCode string  `gorm:"size:64"`
	State      string  `gorm:"size:16;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// 关联关系
	Lines []OrderLineModel `gorm:"foreignKey:OrderID"`
}

// TableName 指定 GORM 应该使用的表名
func (OrderModel) TableName() string {
	return "customer_order"
}

// OrderLineModel 对应数据库中的 order_line 表。
// Configuration 以 JSON 原样存储，保证历史配置可复现。
type OrderLineModel struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	OrderID       string `gorm:"size:36;index"`
	LineID        string `gorm:"size:36"`
	ProductID     int64
	VariantID     string `gorm:"size:64"`
	Configuration string `gorm:"type:text"`
	Quantity      int
	UnitPrice     float64 `gorm:"type:decimal(10,2)"`
}

// TableName 指定 GORM 应该使用的表名
func (OrderLineModel) TableName() string {
	return "order_line"
}
