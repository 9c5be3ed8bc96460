// internal/service/cart/domain/totals.go
package domain

// CartTotals 是购物车金额的派生结果。
// 它从不独立存储：每次读取都基于最新的行数据重新计算，不会缓存过期值。
type CartTotals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// ComputeTotals 纯函数地推导购物车金额。
// 折扣被钳位在 [0, subtotal] 区间内，总价不可能为负。
// 对同一份输入重复调用结果逐字节相同（幂等）。
func ComputeTotals(cart *Cart, discount float64) CartTotals {
	subtotal := cart.Subtotal()
	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}
	return CartTotals{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal - discount,
	}
}
