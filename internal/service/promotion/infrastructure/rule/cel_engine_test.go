package rule

import (
	"testing"

	"github.com/stretchr/testify/require"

	"atelier/internal/service/promotion/domain"
)

func TestEvaluate_ItemCountRule(t *testing.T) {
	engine, err := NewCELRuleEngineAdapter()
	require.NoError(t, err)

	fact := domain.Fact{Subtotal: 2700, ItemCount: 3, UserID: "user-1"}

	ok, err := engine.Evaluate(`fact.item_count >= 2`, fact)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = engine.Evaluate(`fact.item_count >= 5`, fact)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEvaluate_CombinedConditions(t *testing.T) {
	engine, err := NewCELRuleEngineAdapter()
	require.NoError(t, err)

	fact := domain.Fact{Subtotal: 5200.5, ItemCount: 1, UserID: "vip-42"}

	ok, err := engine.Evaluate(`fact.subtotal > 5000.0 && fact.user_id.startsWith("vip-")`, fact)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEvaluate_InvalidExpression(t *testing.T) {
	engine, err := NewCELRuleEngineAdapter()
	require.NoError(t, err)

	_, err = engine.Evaluate(`fact.item_count >=`, domain.Fact{})
	require.Error(t, err)
}

func TestEvaluate_NonBooleanResult(t *testing.T) {
	engine, err := NewCELRuleEngineAdapter()
	require.NoError(t, err)

	_, err = engine.Evaluate(`fact.subtotal`, domain.Fact{Subtotal: 100})
	require.Error(t, err)
}

// 编译缓存命中时结果保持一致。
func TestEvaluate_RepeatedEvaluationUsesCache(t *testing.T) {
	engine, err := NewCELRuleEngineAdapter()
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		ok, err := engine.Evaluate(`fact.item_count >= 2`, domain.Fact{ItemCount: i})
		require.NoError(t, err)
		require.Equal(t, i >= 2, ok)
	}
}
