// internal/service/promotion/domain/rule.go
package domain

// Fact 是资格规则求值时可见的订单事实。
type Fact struct {
	Subtotal  float64 `json:"subtotal"`
	ItemCount int     `json:"item_count"`
	UserID    string  `json:"user_id"`
}

// RuleEngine 定义了资格规则求值的端口。
// 领域层只关心"这份事实是否满足规则"，具体的表达式语言由基础设施层适配。
type RuleEngine interface {
	Evaluate(ruleDefinition string, fact Fact) (bool, error)
}
