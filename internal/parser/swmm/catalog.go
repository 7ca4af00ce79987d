package swmm

import (
	"strconv"

	"github.com/swmm-toolbox/internal/parser"
)

// Catalog enumerates every addressable (category, name, variable) triple of
// the requested categories, or of all categories when none are given. The
// triples follow category ordinal order, then name order, then variable order.
// Pollutant contributes nothing; System triples repeat the label as the name.
func (s *Store) Catalog(categories ...Category) []CatalogEntry {
	want := make(map[Category]bool, len(categories))
	for _, c := range categories {
		want[c] = true
	}

	var out []CatalogEntry
	for _, c := range Categories {
		if !c.HasResults() || (len(want) > 0 && !want[c]) {
			continue
		}
		if c == System {
			for _, label := range s.names[System] {
				out = append(out, CatalogEntry{Category: System, Name: label, Variable: label})
			}
			continue
		}
		for _, name := range s.names[c] {
			for _, code := range s.varIndex[c] {
				out = append(out, CatalogEntry{Category: c, Name: name, Variable: s.variableLabel(c, int(code))})
			}
		}
	}
	return out
}

// ListVariables enumerates the variables recorded for each result-bearing
// category, mapping the on-disk variable codes through the working tables.
func (s *Store) ListVariables() []VariableEntry {
	var out []VariableEntry
	for _, c := range Categories {
		if !c.HasResults() {
			continue
		}
		for _, code := range s.varIndex[c] {
			out = append(out, VariableEntry{Category: c, Label: s.variableLabel(c, int(code)), Index: int(code)})
		}
	}
	return out
}

// ListDetail returns the property table of every object in a category, or of
// the named objects only. Type codes outside the known range fall back to the
// category's default type.
func (s *Store) ListDetail(c Category, names ...string) (*DetailTable, error) {
	if !c.hasObjects() {
		if !c.Valid() {
			return nil, s.notLookupTarget(c)
		}
		return nil, lookupError(parser.ErrNoProperties, "%s has no property table", c)
	}

	indices := make([]int, 0, len(s.names[c]))
	if len(names) == 0 {
		for i := range s.names[c] {
			indices = append(indices, i)
		}
	} else {
		for _, name := range names {
			i, err := s.ResolveObjectIndex(c, name)
			if err != nil {
				return nil, err
			}
			indices = append(indices, i)
		}
	}

	table := &DetailTable{
		Category: c,
		Header:   detailHeader(c, s.propCodes[c]),
		Rows:     make([]ObjectDetail, 0, len(indices)),
	}
	for _, i := range indices {
		row := ObjectDetail{Name: s.names[c][i], Properties: make([]PropertyValue, len(s.props[c][i]))}
		for j, p := range s.props[c][i] {
			v := PropertyValue{Code: p.Code, Value: p.Value}
			if p.Code == TypeCodeProperty {
				v.TypeLabel, _ = TypeLabel(c, p.TypeCode)
			}
			row.Properties[j] = v
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// detailHeader labels each property column, suffixing repeats as label.1, label.2.
func detailHeader(c Category, codes []int32) []string {
	header := make([]string, 0, len(codes)+1)
	header = append(header, "#Name")
	seen := make(map[string]int, len(codes))
	for _, code := range codes {
		label := PropertyLabel(c, code)
		n := seen[label]
		seen[label] = n + 1
		if n > 0 {
			label = label + "." + strconv.Itoa(n)
		}
		header = append(header, label)
	}
	return header
}
