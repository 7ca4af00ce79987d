package swmm

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swmm-toolbox/internal/parser"
	"github.com/swmm-toolbox/internal/testutil"
	apperrors "github.com/swmm-toolbox/pkg/errors"
)

func TestResolveCategory(t *testing.T) {
	tests := []struct {
		token string
		want  Category
	}{
		{"0", Subcatchment},
		{"1", Node},
		{"2", Link},
		{"3", Pollutant},
		{"4", System},
		{"subcatchment", Subcatchment},
		{"Node", Node},
		{"LINK", Link},
		{"pollutant", Pollutant},
		{"System", System},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ResolveCategory(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"5", "-1", "", "links", "sub", " node", "+1", "01", "-0", "1.0"} {
		t.Run("reject "+bad, func(t *testing.T) {
			_, err := ResolveCategory(bad)
			require.Error(t, err)
			assert.ErrorIs(t, err, parser.ErrUnknownCategory)
			assert.True(t, apperrors.IsLookupError(err))
			assert.Contains(t, err.Error(), "0, 1, 2, 3, 4, subcatchment, node, link, pollutant, system")
		})
	}
}

func TestStore_ResolveObjectIndex(t *testing.T) {
	s := mustOpen(t, testutil.Frutal())

	for _, c := range []Category{Subcatchment, Node, Link, Pollutant} {
		for want, name := range s.Names(c) {
			got, err := s.ResolveObjectIndex(c, name)
			require.NoError(t, err)
			assert.Equal(t, want, got, "%s %q", c, name)
		}
	}

	_, err := s.ResolveObjectIndex(Node, "C2")
	require.Error(t, err)
	assert.ErrorIs(t, err, parser.ErrNameNotFound)
	assert.Contains(t, err.Error(), `"C2"`)
	assert.Contains(t, err.Error(), "node")
}

func TestStore_ResolveVariable(t *testing.T) {
	s := mustOpen(t, testutil.Frutal())

	tests := []struct {
		name     string
		category Category
		token    string
		want     int
		wantErr  bool
	}{
		{"label", Link, "Flow_rate", 0, false},
		{"pollutant label", Link, "TSS", 5, false},
		{"index", Node, "3", 3, false},
		{"system label", System, "Potential_PET", 14, false},
		{"index past table", Link, "6", 0, true},
		{"unknown label", Link, "Flow", 0, true},
		{"label from other category", Link, "Hydraulic_head", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ResolveVariable(tt.category, tt.token)
			if tt.wantErr {
				assert.ErrorIs(t, err, parser.ErrVariableNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_GetResult(t *testing.T) {
	f := testutil.Frutal()
	s := mustOpen(t, f)

	flow, err := s.ResolveVariable(Link, "Flow_rate")
	require.NoError(t, err)

	t.Run("golden link 222", func(t *testing.T) {
		r, err := s.GetResult(Link, "222", flow, 0)
		require.NoError(t, err)
		assert.Equal(t, f.PeriodStamp(0), r.Stamp)
		assert.Equal(t, float32(2000), r.Value)
		assert.Equal(t, time.Date(2023, 1, 1, 0, 5, 0, 0, time.UTC), r.Time())
	})

	t.Run("deterministic", func(t *testing.T) {
		a, err := s.GetResult(Link, "222", flow, 7)
		require.NoError(t, err)
		b, err := s.GetResult(Link, "222", flow, 7)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("every field", func(t *testing.T) {
		blocks := []struct {
			category Category
			ordinal  int
		}{
			{Subcatchment, testutil.SubcatchmentBlock},
			{Node, testutil.NodeBlock},
			{Link, testutil.LinkBlock},
		}
		for _, p := range []int{0, 17, 35} {
			for _, b := range blocks {
				for o, name := range s.Names(b.category) {
					for v := 0; v < s.VariableCount(b.category); v++ {
						r, err := s.GetResult(b.category, name, v, p)
						require.NoError(t, err)
						require.Equal(t, testutil.ResultValue(b.ordinal, o, v, p), r.Value,
							"%s %s var %d period %d", b.category, name, v, p)
					}
				}
			}
			for v := 0; v < s.VariableCount(System); v++ {
				r, err := s.GetResult(System, "ignored", v, p)
				require.NoError(t, err)
				require.Equal(t, testutil.ResultValue(testutil.SystemBlock, 0, v, p), r.Value)
			}
		}
	})

	t.Run("same name in node and link", func(t *testing.T) {
		node, err := s.GetResult(Node, "222", 0, 3)
		require.NoError(t, err)
		link, err := s.GetResult(Link, "222", 0, 3)
		require.NoError(t, err)
		assert.Equal(t, testutil.ResultValue(testutil.NodeBlock, 1, 0, 3), node.Value)
		assert.Equal(t, testutil.ResultValue(testutil.LinkBlock, 0, 0, 3), link.Value)
	})

	t.Run("stamps non-decreasing", func(t *testing.T) {
		prev := 0.0
		for p := 0; p < s.Periods(); p++ {
			r, err := s.GetResult(System, "", 0, p)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, r.Stamp, prev)
			prev = r.Stamp
		}
	})
}

func TestStore_GetResultErrors(t *testing.T) {
	s := mustOpen(t, testutil.Frutal())

	tests := []struct {
		name     string
		category Category
		object   string
		variable int
		period   int
		want     error
	}{
		{"pollutant target", Pollutant, "TSS", 0, 0, parser.ErrNotLookupTarget},
		{"invalid category", Category(9), "x", 0, 0, parser.ErrUnknownCategory},
		{"unknown name", Link, "404", 0, 0, parser.ErrNameNotFound},
		{"variable too large", Link, "222", 6, 0, parser.ErrVariableNotFound},
		{"negative variable", Node, "222", -1, 0, parser.ErrVariableNotFound},
		{"period too large", Link, "222", 0, 36, parser.ErrPeriodOutOfRange},
		{"negative period", System, "", 0, -1, parser.ErrPeriodOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.GetResult(tt.category, tt.object, tt.variable, tt.period)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, apperrors.IsLookupError(err))
		})
	}

	_, err := s.GetResultAt(Node, 4, 0, 0)
	assert.ErrorIs(t, err, parser.ErrNameNotFound)
}

func TestStore_GetResultConcurrent(t *testing.T) {
	s := mustOpen(t, testutil.Frutal())

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for p := 0; p < s.Periods(); p++ {
				r, err := s.GetResultAt(Node, g%4, 2, p)
				if assert.NoError(t, err) {
					assert.Equal(t, testutil.ResultValue(testutil.NodeBlock, g%4, 2, p), r.Value)
				}
			}
		}(g)
	}
	wg.Wait()
}

func TestStore_Dates(t *testing.T) {
	s := mustOpen(t, testutil.Frutal())

	first, last, err := s.DateRange()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 5, 0, 0, time.UTC), first)
	assert.Equal(t, time.Date(2023, 1, 1, 3, 0, 0, 0, time.UTC), last)

	times := s.PeriodTimes()
	require.Len(t, times, 36)
	assert.Equal(t, first, times[0])
	assert.Equal(t, last, times[35])

	for p := range times {
		stamp, err := s.PeriodStamp(p)
		require.NoError(t, err)
		assert.Equal(t, times[p], FromSpreadsheet(stamp))
	}
}
