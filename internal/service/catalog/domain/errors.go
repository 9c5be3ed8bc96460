// internal/service/catalog/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// ErrProductNotFound 表示商品不存在。
var ErrProductNotFound = errors.New("product not found")

// InvalidOptionError 表示顾客为某个部件选择了目录中不存在的选项。
// 绝不静默回退到默认选项，直接拒绝请求并指出出错的部件和值。
type InvalidOptionError struct {
	Part  PartCategory
	Value string
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid option %q for part %q", e.Value, e.Part)
}

// IncompleteConfigurationError 表示可配置商品缺少某个必选部件的选择。
// 在补全配置之前不允许进入结算。
type IncompleteConfigurationError struct {
	Part PartCategory
}

func (e *IncompleteConfigurationError) Error() string {
	return fmt.Sprintf("configuration is missing a selection for part %q", e.Part)
}
