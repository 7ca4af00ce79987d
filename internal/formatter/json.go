package formatter

import (
	"io"

	"github.com/swmm-toolbox/pkg/writer"
)

// JSONFormatter writes the table as {"header": [...], "rows": [[...], ...]}.
type JSONFormatter struct {
	Pretty bool
}

type jsonTable struct {
	Header []string   `json:"header,omitempty"`
	Rows   [][]string `json:"rows"`
}

// Name returns "json".
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format writes the table.
func (f *JSONFormatter) Format(w io.Writer, t *Table) error {
	jw := writer.NewJSONWriter[jsonTable]()
	if f.Pretty {
		jw = writer.NewPrettyJSONWriter[jsonTable]()
	}
	rows := t.Rows
	if rows == nil {
		rows = [][]string{}
	}
	return jw.Write(jsonTable{Header: t.Header, Rows: rows}, w)
}
