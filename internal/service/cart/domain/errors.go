// internal/service/cart/domain/errors.go
package domain

import "errors"

var (
	// ErrCartConflict 表示保存时发现并发修改（版本不匹配）。
	// 这是可重试的信号，不是致命错误：调用方基于最新状态重放操作即可。
	ErrCartConflict = errors.New("cart was modified concurrently, retry")

	// ErrLineNotFound 表示购物车中不存在指定的行。
	ErrLineNotFound = errors.New("cart line not found")

	// ErrInvalidQuantity 表示添加时数量不是正整数。
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrEmptyCart 表示对空购物车发起结算。
	ErrEmptyCart = errors.New("cart is empty")
)
