package swmm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swmm-toolbox/internal/parser"
	"github.com/swmm-toolbox/internal/testutil"
)

func TestStore_Catalog(t *testing.T) {
	s := mustOpen(t, testutil.Frutal())

	all := s.Catalog()
	assert.Contains(t, all, CatalogEntry{Category: Link, Name: "222", Variable: "Flow_rate"})
	assert.Contains(t, all, CatalogEntry{Category: Node, Name: "222", Variable: "TSS"})
	assert.Contains(t, all, CatalogEntry{Category: System, Name: "Rainfall", Variable: "Rainfall"})

	// 2*9 + 4*7 + 3*6 + 15
	assert.Len(t, all, 79)

	prev := Subcatchment
	for _, e := range all {
		assert.NotEqual(t, Pollutant, e.Category)
		assert.GreaterOrEqual(t, int(e.Category), int(prev))
		prev = e.Category
	}

	t.Run("filtered", func(t *testing.T) {
		links := s.Catalog(Link)
		require.Len(t, links, 18)
		assert.Equal(t, CatalogEntry{Category: Link, Name: "222", Variable: "Flow_rate"}, links[0])
		assert.Equal(t, CatalogEntry{Category: Link, Name: "P1", Variable: "TSS"}, links[17])

		assert.Empty(t, s.Catalog(Pollutant))
		assert.Len(t, s.Catalog(System, Subcatchment), 18+15)
	})
}

func TestStore_ListVariables(t *testing.T) {
	s := mustOpen(t, testutil.Frutal())

	vars := s.ListVariables()
	assert.Len(t, vars, 9+7+6+15)
	assert.Equal(t, VariableEntry{Category: Subcatchment, Label: "Rainfall", Index: 0}, vars[0])
	assert.Contains(t, vars, VariableEntry{Category: Link, Label: "TSS", Index: 5})
	assert.Equal(t, VariableEntry{Category: System, Label: "Potential_PET", Index: 14}, vars[len(vars)-1])

	legacy := mustOpen(t, testutil.Legacy()).ListVariables()
	assert.NotContains(t, legacy, VariableEntry{Category: Subcatchment, Label: "Infiltration_loss", Index: 3})
	assert.Contains(t, legacy, VariableEntry{Category: Subcatchment, Label: "TSS", Index: 6})
}

func TestStore_ListDetail(t *testing.T) {
	s := mustOpen(t, testutil.Frutal())

	t.Run("links", func(t *testing.T) {
		table, err := s.ListDetail(Link)
		require.NoError(t, err)
		assert.Equal(t, []string{"#Name", "Type", "Max_depth", "Inv_offset", "Inv_offset.1", "Length"}, table.Header)
		require.Len(t, table.Rows, 3)
		assert.Equal(t, "Conduit", table.Rows[0].Properties[0].String())
		assert.Equal(t, "Pump", table.Rows[2].Properties[0].String())
		assert.Equal(t, "120.00", table.Rows[0].Properties[4].String())
	})

	t.Run("single node", func(t *testing.T) {
		table, err := s.ListDetail(Node, "J3")
		require.NoError(t, err)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, "J3", table.Rows[0].Name)
		assert.Equal(t, "Storage", table.Rows[0].Properties[0].TypeLabel)
		assert.Equal(t, float32(97), table.Rows[0].Properties[1].Value)
	})

	t.Run("subcatchments", func(t *testing.T) {
		table, err := s.ListDetail(Subcatchment)
		require.NoError(t, err)
		assert.Equal(t, []string{"#Name", "Area"}, table.Header)
		assert.False(t, table.Rows[1].Properties[0].IsType())
		assert.Equal(t, "12.25", table.Rows[1].Properties[0].String())
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := s.ListDetail(Node, "nope")
		assert.ErrorIs(t, err, parser.ErrNameNotFound)
	})

	t.Run("no property table", func(t *testing.T) {
		_, err := s.ListDetail(System)
		assert.ErrorIs(t, err, parser.ErrNoProperties)
		_, err = s.ListDetail(Category(12))
		assert.ErrorIs(t, err, parser.ErrUnknownCategory)
	})
}

func TestStore_ListDetailTypeFallback(t *testing.T) {
	for _, f := range []*testutil.OutFile{testutil.Frutal(), testutil.Legacy()} {
		f.NodeProps.Values[0][0] = 9
		f.NodeProps.Values[1][0] = -4
		f.NodeProps.Values[2][0] = 2.5
		s := mustOpen(t, f)

		table, err := s.ListDetail(Node)
		require.NoError(t, err)
		known := TypeLabels(Node)
		for _, row := range table.Rows {
			assert.Contains(t, known, row.Properties[0].TypeLabel, "version %d row %s", f.Version, row.Name)
		}
		assert.Equal(t, "Junction", table.Rows[0].Properties[0].TypeLabel)
		assert.Equal(t, "Junction", table.Rows[1].Properties[0].TypeLabel)
		assert.Equal(t, "Junction", table.Rows[2].Properties[0].TypeLabel)
		assert.Equal(t, "Outfall", table.Rows[3].Properties[0].TypeLabel)
	}
}

func TestDetailHeader(t *testing.T) {
	assert.Equal(t,
		[]string{"#Name", "Type", "Property_9", "Property_9.1", "Property_9.2"},
		detailHeader(Node, []int32{0, 9, 9, 9}))
}
