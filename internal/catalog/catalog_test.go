package catalog

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/printledger/internal/apperr"
	"github.com/Simplici0/printledger/internal/testutil"
)

func benchy() NewProduct {
	return NewProduct{Name: "Benchy", PrintTimeHours: 5, FilamentWeightGrams: 50, UnitSalePrice: 25}
}

func TestAddAndGet(t *testing.T) {
	ctx := context.Background()
	c := New(testutil.OpenDB(t))

	id, err := c.Add(ctx, NewProduct{Name: "  Vase  ", PrintTimeHours: 2.5, FilamentWeightGrams: 120, UnitSalePrice: 40})
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, Product{ID: id, Name: "Vase", PrintTimeHours: 2.5, FilamentWeightGrams: 120, UnitSalePrice: 40}, got)
}

func TestGet_NotFound(t *testing.T) {
	c := New(testutil.OpenDB(t))

	_, err := c.Get(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestList_InsertionOrderAndDuplicateNames(t *testing.T) {
	ctx := context.Background()
	c := New(testutil.OpenDB(t))

	first, err := c.Add(ctx, benchy())
	require.NoError(t, err)
	second, err := c.Add(ctx, NewProduct{Name: "Gear", PrintTimeHours: 1, FilamentWeightGrams: 10, UnitSalePrice: 5})
	require.NoError(t, err)
	third, err := c.Add(ctx, benchy())
	require.NoError(t, err)

	products, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, []int64{first, second, third}, []int64{products[0].ID, products[1].ID, products[2].ID})
	assert.Equal(t, products[0].Name, products[2].Name)

	again, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, products, again)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	products, err := New(testutil.OpenDB(t)).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestAdd_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	c := New(testutil.OpenDB(t))

	cases := map[string]func(p *NewProduct){
		"blank name":     func(p *NewProduct) { p.Name = "   " },
		"zero hours":     func(p *NewProduct) { p.PrintTimeHours = 0 },
		"negative grams": func(p *NewProduct) { p.FilamentWeightGrams = -1 },
		"zero price":     func(p *NewProduct) { p.UnitSalePrice = 0 },
		"nan hours":      func(p *NewProduct) { p.PrintTimeHours = math.NaN() },
		"infinite grams": func(p *NewProduct) { p.FilamentWeightGrams = math.Inf(1) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := benchy()
			mutate(&p)

			_, err := c.Add(ctx, p)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.InvalidParameter))
		})
	}

	products, err := c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestProduct_CostInput(t *testing.T) {
	p := Product{ID: 1, Name: "Benchy", PrintTimeHours: 5, FilamentWeightGrams: 50, UnitSalePrice: 25}
	in := p.CostInput()

	assert.Equal(t, 5.0, in.PrintTimeHours)
	assert.Equal(t, 50.0, in.FilamentWeightGrams)
	assert.Equal(t, 25.0, in.UnitSalePrice)
}
