// internal/service/promotion/infrastructure/rule/cel_engine.go
package rule

import (
	"encoding/json"
	"fmt"
	"sync"

	"atelier/internal/service/promotion/domain"

	"github.com/google/cel-go/cel"
)

// CELRuleEngineAdapter 是 domain.RuleEngine 接口的一个具体实现。
// 它把优惠券上配置的资格规则当作 CEL 表达式求值。
// 这是一个典型的适配器模式应用：把第三方规则引擎的 API 适配到我们自己的领域接口。
type CELRuleEngineAdapter struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program // 按表达式缓存编译结果
}

// NewCELRuleEngineAdapter 创建一个新的规则引擎适配器实例。
func NewCELRuleEngineAdapter() (*CELRuleEngineAdapter, error) {
	env, err := cel.NewEnv(
		cel.Variable("fact", cel.MapType(cel.StringType, cel.DynType)),
		// fact 经过 JSON 编解码后数字统一是 double，表达式里常写整数字面量
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &CELRuleEngineAdapter{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Evaluate 实现了 domain.RuleEngine 接口。
func (a *CELRuleEngineAdapter) Evaluate(ruleDefinition string, fact domain.Fact) (bool, error) {
	prg, err := a.compile(ruleDefinition)
	if err != nil {
		return false, err
	}

	// 经过一轮 JSON 编解码把领域对象转成规则引擎可见的 map，
	// 这样表达式里的字段名和对外的 JSON 契约保持一致。
	factData, err := json.Marshal(fact)
	if err != nil {
		return false, err
	}
	var factMap map[string]interface{}
	if err := json.Unmarshal(factData, &factMap); err != nil {
		return false, err
	}

	out, _, err := prg.Eval(map[string]interface{}{"fact": factMap})
	if err != nil {
		return false, fmt.Errorf("rule evaluation failed: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule %q did not evaluate to a boolean", ruleDefinition)
	}
	return result, nil
}

func (a *CELRuleEngineAdapter) compile(ruleDefinition string) (cel.Program, error) {
	a.mu.RLock()
	prg, ok := a.programs[ruleDefinition]
	a.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, issues := a.env.Compile(ruleDefinition)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid rule definition: %w", issues.Err())
	}
	prg, err := a.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule program: %w", err)
	}

	a.mu.Lock()
	a.programs[ruleDefinition] = prg
	a.mu.Unlock()
	return prg, nil
}
