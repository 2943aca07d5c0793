package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogShape(t *testing.T) {
	c := Default()

	assert.Len(t, c.All(), 15)
	assert.Len(t, c.ByTier(TierRaw), 6)
	assert.Len(t, c.ByTier(TierSemiRaw), 4)
	assert.Len(t, c.ByTier(TierManufactured), 5)

	steel := c.Get("steel")
	require.NotNil(t, steel)
	assert.Equal(t, 14.0, steel.BasePrice)
	assert.Equal(t, map[string]float64{"iron_ore": 2, "coal": 1}, steel.Inputs)

	assert.Nil(t, c.Get("plutonium"))
}

func TestRecipeInputsAllResolve(t *testing.T) {
	c := Default()
	for _, p := range c.All() {
		if p.Tier == TierRaw {
			assert.Empty(t, p.Inputs, "%s is raw but has inputs", p.ID)
			continue
		}
		require.NotEmpty(t, p.Inputs, "%s has no recipe", p.ID)
		for inputID := range p.Inputs {
			input := c.Get(inputID)
			require.NotNil(t, input, "%s requires unknown input %s", p.ID, inputID)
			assert.Less(t, input.Tier, p.Tier, "%s consumes a same-or-higher tier input", p.ID)
		}
	}
}

func TestAllReturnsStableIDOrder(t *testing.T) {
	c := Default()
	all := c.All()
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
}

func TestNewIgnoresDuplicateIDs(t *testing.T) {
	c := New([]Product{
		{ID: "widget", Name: "Widget", BasePrice: 10},
		{ID: "widget", Name: "Widget Mk II", BasePrice: 99},
	})
	require.Len(t, c.All(), 1)
	assert.Equal(t, 10.0, c.Get("widget").BasePrice, "first registration wins")
}

func TestSearchFindsFuzzyMatches(t *testing.T) {
	c := Default()

	hits := c.Search("lux", 5)
	require.NotEmpty(t, hits)
	assert.Equal(t, "luxury_goods", hits[0].ID)

	assert.Len(t, c.Search("o", 3), 3, "limit caps results")
	assert.Empty(t, c.Search("zzzzz", 5))
}
