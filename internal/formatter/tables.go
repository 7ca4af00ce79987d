package formatter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/swmm-toolbox/internal/parser/swmm"
	"github.com/swmm-toolbox/pkg/model"
)

// TimeLayout is the layout of the Datetime index column.
const TimeLayout = "2006-01-02 15:04:05"

// Default headers of the listing commands.
var (
	CatalogHeader   = []string{"TYPE", "NAME", "VARIABLE"}
	VariablesHeader = []string{"TYPE", "DESCRIPTION", "VARINDEX"}
)

// CatalogTable renders catalog triples.
func CatalogTable(entries []swmm.CatalogEntry) *Table {
	t := &Table{Header: CatalogHeader, Rows: make([][]string, len(entries))}
	for i, e := range entries {
		t.Rows[i] = []string{e.Category.String(), e.Name, e.Variable}
	}
	return t
}

// VariablesTable renders the variable listing.
func VariablesTable(vars []swmm.VariableEntry) *Table {
	t := &Table{Header: VariablesHeader, Rows: make([][]string, len(vars))}
	for i, v := range vars {
		t.Rows[i] = []string{v.Category.String(), v.Label, strconv.Itoa(v.Index)}
	}
	return t
}

// DetailTable renders a property detail table.
func DetailTable(d *swmm.DetailTable) *Table {
	t := &Table{Header: d.Header, Rows: make([][]string, len(d.Rows))}
	for i, row := range d.Rows {
		cells := make([]string, 0, len(row.Properties)+1)
		cells = append(cells, row.Name)
		for _, p := range row.Properties {
			cells = append(cells, p.String())
		}
		t.Rows[i] = cells
	}
	return t
}

// FloatFormatter renders one value. A nil FloatFormatter is ShortestFloat.
type FloatFormatter func(v float32) string

// ShortestFloat renders the shortest decimal that reads back as the same float32.
func ShortestFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

// PrintfFloat renders values with a printf verb such as "%.3f".
func PrintfFloat(format string) FloatFormatter {
	return func(v float32) string {
		return fmt.Sprintf(format, v)
	}
}

// FrameTable renders a frame with a leading Datetime column.
func FrameTable(f *model.Frame, format FloatFormatter) *Table {
	if format == nil {
		format = ShortestFloat
	}
	header := make([]string, 0, len(f.Columns)+1)
	header = append(header, "Datetime")
	header = append(header, f.ColumnNames()...)

	t := &Table{Header: header, Rows: make([][]string, f.Len())}
	for p, ts := range f.Index {
		row := make([]string, 0, len(f.Columns)+1)
		row = append(row, ts.UTC().Format(TimeLayout))
		for _, c := range f.Columns {
			row = append(row, format(c.Values[p]))
		}
		t.Rows[p] = row
	}
	return t
}

// DatesTable renders a single Datetime column.
func DatesTable(dates []time.Time) *Table {
	t := &Table{Header: []string{"Datetime"}, Rows: make([][]string, len(dates))}
	for i, d := range dates {
		t.Rows[i] = []string{d.UTC().Format(TimeLayout)}
	}
	return t
}
