package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	catalogdomain "atelier/internal/service/catalog/domain"
)

func oakMatteConfig() *catalogdomain.Configuration {
	return &catalogdomain.Configuration{
		Selections: map[catalogdomain.PartCategory]string{
			catalogdomain.PartTabletopType: "Oak",
			catalogdomain.PartFinish:       "Matte",
		},
	}
}

func TestAddLine_MergesStructurallyEqualConfigurations(t *testing.T) {
	cart := NewCart("cart-1")

	lineID, err := cart.AddLine(1001, "", oakMatteConfig(), 1, 11500)
	require.NoError(t, err)

	// 相同选择（不同指针）合并到同一行并累加数量
	mergedID, err := cart.AddLine(1001, "", oakMatteConfig(), 2, 11500)
	require.NoError(t, err)
	require.Equal(t, lineID, mergedID)
	require.Len(t, cart.Lines, 1)
	require.Equal(t, 3, cart.Lines[0].Quantity)
}

func TestAddLine_MergeKeepsFrozenUnitPrice(t *testing.T) {
	cart := NewCart("cart-1")

	_, err := cart.AddLine(1001, "", oakMatteConfig(), 1, 11500)
	require.NoError(t, err)

	// 目录价已变，但合并行保留首次加入时的单价
	_, err = cart.AddLine(1001, "", oakMatteConfig(), 1, 12000)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	require.Equal(t, 11500.0, cart.Lines[0].UnitPrice)
}

func TestAddLine_DifferentConfigurationCreatesNewLine(t *testing.T) {
	cart := NewCart("cart-1")

	_, err := cart.AddLine(1001, "", oakMatteConfig(), 1, 11500)
	require.NoError(t, err)

	gloss := oakMatteConfig()
	gloss.Selections[catalogdomain.PartFinish] = "Gloss"
	_, err = cart.AddLine(1001, "", gloss, 1, 12300)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)
}

func TestAddLine_NilConfigurationsMerge(t *testing.T) {
	cart := NewCart("cart-1")

	first, err := cart.AddLine(2001, "VAR-RED", nil, 1, 750)
	require.NoError(t, err)
	second, err := cart.AddLine(2001, "VAR-RED", nil, 1, 750)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Len(t, cart.Lines, 1)

	// nil 与非 nil 配置不合并
	_, err = cart.AddLine(2001, "VAR-RED", oakMatteConfig(), 1, 900)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)
}

func TestAddLine_DimensionsComparedByValue(t *testing.T) {
	cart := NewCart("cart-1")

	withDims := func() *catalogdomain.Configuration {
		c := oakMatteConfig()
		c.Dimensions = &catalogdomain.Dimensions{Length: 240, Width: 110, Height: 75, Unit: "cm"}
		return c
	}

	_, err := cart.AddLine(1001, "", withDims(), 1, 11950)
	require.NoError(t, err)
	_, err = cart.AddLine(1001, "", withDims(), 1, 11950)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)

	longer := withDims()
	longer.Dimensions.Length = 260
	_, err = cart.AddLine(1001, "", longer, 1, 12150)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)
}

func TestAddLine_RejectsNonPositiveQuantity(t *testing.T) {
	cart := NewCart("cart-1")

	_, err := cart.AddLine(1001, "", nil, 0, 100)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = cart.AddLine(1001, "", nil, -2, 100)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	cart := NewCart("cart-1")
	lineID, err := cart.AddLine(1001, "", nil, 2, 500)
	require.NoError(t, err)

	require.NoError(t, cart.UpdateQuantity(lineID, 0))
	require.True(t, cart.Empty())

	require.ErrorIs(t, cart.UpdateQuantity("missing", 1), ErrLineNotFound)
	require.ErrorIs(t, cart.RemoveLine(lineID), ErrLineNotFound)
}

func TestSubtotalAndItemCount(t *testing.T) {
	cart := NewCart("cart-1")
	_, err := cart.AddLine(1001, "", nil, 3, 500)
	require.NoError(t, err)
	_, err = cart.AddLine(1002, "", nil, 1, 1200)
	require.NoError(t, err)

	require.Equal(t, 2700.0, cart.Subtotal())
	require.Equal(t, 4, cart.ItemCount())
}

func TestComputeTotals(t *testing.T) {
	cart := NewCart("cart-1")
	_, err := cart.AddLine(1001, "", nil, 3, 500)
	require.NoError(t, err)
	_, err = cart.AddLine(1002, "", nil, 1, 1200)
	require.NoError(t, err)

	totals := ComputeTotals(cart, 270)
	require.Equal(t, CartTotals{Subtotal: 2700, Discount: 270, Total: 2430}, totals)

	// 幂等：同一输入重复计算结果完全一致
	require.Equal(t, totals, ComputeTotals(cart, 270))
}

func TestComputeTotals_DiscountClamped(t *testing.T) {
	cart := NewCart("cart-1")
	_, err := cart.AddLine(1001, "", nil, 1, 1500)
	require.NoError(t, err)

	over := ComputeTotals(cart, 2000)
	require.Equal(t, 1500.0, over.Discount)
	require.Equal(t, 0.0, over.Total)

	negative := ComputeTotals(cart, -50)
	require.Equal(t, 0.0, negative.Discount)
	require.Equal(t, 1500.0, negative.Total)
}
