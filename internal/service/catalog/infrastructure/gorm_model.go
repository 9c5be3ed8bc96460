package infrastructure

import (
	"gorm.io/gorm"
)

// ProductModel 对应数据库中的 product 表
type ProductModel struct {
	gorm.Model
	SKU         string `gorm:"uniqueIndex;size:64"`
	Name        string `gorm:"size:255"`
	Description string `gorm:"type:text"`
	BasePrice   float64 `gorm:"type:decimal(10,2)"`

	// 尺寸加价规则直接平铺在商品行上，全为零等价于不支持定制尺寸
	Customizable   bool
	BaselineLength float64 `gorm:"type:decimal(10,2)"`
	BaselineWidth  float64 `gorm:"type:decimal(10,2)"`
	BaselineHeight float64 `gorm:"type:decimal(10,2)"`
	RatePerLength  float64 `gorm:"type:decimal(10,4)"`
	RatePerWidth   float64 `gorm:"type:decimal(10,4)"`
	RatePerHeight  float64 `gorm:"type:decimal(10,4)"`

	// 关联关系
	Options []ProductOptionModel `gorm:"foreignKey:ProductID"`
}

// TableName 指定 GORM 应该使用的表名
func (ProductModel) TableName() string {
	return "product"
}

// ProductOptionModel 对应数据库中的 product_option 表
type ProductOptionModel struct {
	gorm.Model
	ProductID     uint   `gorm:"index"`
	PartCategory  string `gorm:"size:32;index"`
	Name          string `gorm:"size:128"`
	PriceModifier float64 `gorm:"type:decimal(10,2)"`
}

// TableName 指定 GORM 应该使用的表名
func (ProductOptionModel) TableName() string {
	return "product_option"
}
