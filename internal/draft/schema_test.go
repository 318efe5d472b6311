package draft

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyPatchMergesIntoSection(t *testing.T) {
	var bp BusinessPlan
	bp.MarketAnalysis.TargetMarket = "families"

	ok := bp.ApplyPatch("marketAnalysis", map[string]string{"competition": "two diners nearby"})
	require.True(t, ok)
	require.Equal(t, "two diners nearby", bp.MarketAnalysis.Competition)
	require.Equal(t, "families", bp.MarketAnalysis.TargetMarket)
}

func TestApplyPatchUnknownSection(t *testing.T) {
	var bp BusinessPlan
	require.False(t, bp.ApplyPatch("noSuchSection", map[string]string{"x": "y"}))
}

func TestApplyPatchIgnoresUnknownFields(t *testing.T) {
	var fd FinancialData
	ok := fd.ApplyPatch("revenue", map[string]float64{"foodSales": 1000, "bogus": 7})
	require.True(t, ok)
	require.Equal(t, 1000.0, fd.Revenue.FoodSales)
}

func TestSchemaFieldPointersWriteThrough(t *testing.T) {
	var fd FinancialData
	c, ok := fd.Category("cogs")
	require.True(t, ok)
	for _, f := range c.Fields {
		if f.Name == "foodCostPercent" {
			*f.Value = 0.3
		}
	}
	require.Equal(t, 0.3, fd.COGS.FoodCostPercent)
}

func TestCloneIsDeep(t *testing.T) {
	d := New("original")
	d.Vendors = append(d.Vendors, Vendor{ID: "v1", Name: "Sal"})

	cp := d.Clone()
	cp.Vendors[0].Name = "changed"
	cp.BusinessPlan.Ideation.Concept = "changed"

	require.Equal(t, "Sal", d.Vendors[0].Name)
	require.Empty(t, d.BusinessPlan.Ideation.Concept)
}

func TestVendorKey(t *testing.T) {
	require.Equal(t, "v1", Vendor{ID: "v1", Name: "Sal", Company: "Sal's"}.Key())
	require.Equal(t, "Sal|Sal's", Vendor{Name: "Sal", Company: "Sal's"}.Key())
}

func TestNewIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		require.False(t, seen[id])
		seen[id] = true
	}
}
