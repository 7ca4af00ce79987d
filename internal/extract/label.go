// Package extract turns "TYPE,NAME,VAR" labels into time series read from an
// output file.
package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/swmm-toolbox/internal/parser"
	"github.com/swmm-toolbox/internal/parser/swmm"
	apperrors "github.com/swmm-toolbox/pkg/errors"
)

// Source is the part of a decoded output file the extractor reads from.
type Source interface {
	Catalog(categories ...swmm.Category) []swmm.CatalogEntry
	ResolveVariable(c swmm.Category, token string) (int, error)
	VariableLabel(c swmm.Category, index int) (string, error)
	GetResult(c swmm.Category, name string, variable, period int) (swmm.Result, error)
	PeriodStamp(period int) (float64, error)
	Periods() int
}

// Label is a parsed "TYPE,NAME,VAR" request. Empty parts are wildcards.
type Label struct {
	Raw      string
	Type     string
	Name     string
	Variable string
}

// ParseLabel splits a label on its two commas. Parts are not trimmed.
func ParseLabel(raw string) (Label, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return Label{}, apperrors.Newf(apperrors.CodeInvalidInput,
			"label %q must have exactly three comma separated parts TYPE,NAME,VAR", raw)
	}
	return Label{Raw: raw, Type: parts[0], Name: parts[1], Variable: parts[2]}, nil
}

// IsExact reports whether no part is a wildcard.
func (l Label) IsExact() bool {
	return l.Type != "" && l.Name != "" && l.Variable != ""
}

// Series identifies one resolved (category, object, variable) triple.
type Series struct {
	Category swmm.Category
	Name     string
	Variable string
	// VarIndex is the position of the variable in the category's records.
	VarIndex int
}

// ColumnName returns "<type>_<name>_<variable>". System series have no name part.
func (s Series) ColumnName() string {
	name := s.Name
	if s.Category == swmm.System {
		name = ""
	}
	return fmt.Sprintf("%s_%s_%s", s.Category, name, s.Variable)
}

// Resolve expands labels into series, in label order and then catalog order.
// A series selected by more than one label is returned once.
func Resolve(src Source, raws ...string) ([]Series, error) {
	var out []Series
	seen := make(map[string]bool)
	for _, raw := range raws {
		label, err := ParseLabel(raw)
		if err != nil {
			return nil, err
		}
		series, err := resolveLabel(src, label)
		if err != nil {
			return nil, err
		}
		for _, s := range series {
			key := s.ColumnName()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, s)
		}
	}
	return out, nil
}

func resolveLabel(src Source, label Label) ([]Series, error) {
	var category *swmm.Category
	if label.Type != "" {
		c, err := swmm.ResolveCategory(label.Type)
		if err != nil {
			return nil, err
		}
		category = &c
	}

	if label.IsExact() {
		return resolveExact(src, *category, label)
	}

	varIndex, numericVar := -1, false
	if n, err := strconv.Atoi(label.Variable); err == nil {
		varIndex, numericVar = n, true
	}

	var entries []swmm.CatalogEntry
	if category != nil {
		entries = src.Catalog(*category)
	} else {
		entries = src.Catalog()
	}

	var out []Series
	for _, e := range entries {
		if label.Name != "" && e.Name != label.Name {
			continue
		}
		if label.Variable != "" {
			want := label.Variable
			if numericVar {
				l, err := src.VariableLabel(e.Category, varIndex)
				if err != nil {
					continue
				}
				want = l
			}
			if e.Variable != want {
				continue
			}
		}
		idx, err := src.ResolveVariable(e.Category, e.Variable)
		if err != nil {
			return nil, err
		}
		out = append(out, Series{Category: e.Category, Name: e.Name, Variable: e.Variable, VarIndex: idx})
	}

	if len(out) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeLookup,
			fmt.Sprintf("label %q matched nothing in the catalog", label.Raw), parser.ErrNoMatch)
	}
	return out, nil
}

// resolveExact skips the catalog search; the store validates the name when it is read.
func resolveExact(src Source, c swmm.Category, label Label) ([]Series, error) {
	idx, err := src.ResolveVariable(c, label.Variable)
	if err != nil {
		return nil, err
	}
	variable, err := src.VariableLabel(c, idx)
	if err != nil {
		return nil, err
	}
	name := label.Name
	if c == swmm.System {
		name = variable
	}
	return []Series{{Category: c, Name: name, Variable: variable, VarIndex: idx}}, nil
}
