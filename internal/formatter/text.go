package formatter

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// CSVFormatter writes delimiter separated rows. Cells containing the bare
// delimiter character, a quote or a newline are quoted.
type CSVFormatter struct {
	Separator string
	name      string
}

// Name returns "csv" unless the formatter was registered under another name.
func (f *CSVFormatter) Name() string {
	if f.name == "" {
		return "csv"
	}
	return f.name
}

// Format writes the table.
func (f *CSVFormatter) Format(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)
	write := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				bw.WriteString(f.Separator)
			}
			bw.WriteString(f.quote(c))
		}
		bw.WriteByte('\n')
	}
	if len(t.Header) > 0 {
		write(t.Header)
	}
	for _, row := range t.Rows {
		write(row)
	}
	return bw.Flush()
}

func (f *CSVFormatter) quote(cell string) string {
	sep := strings.TrimSpace(f.Separator)
	if sep == "" {
		sep = f.Separator
	}
	if !strings.Contains(cell, sep) && !strings.ContainsAny(cell, "\"\r\n") {
		return cell
	}
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

// SimpleFormatter writes space aligned columns with a dashed rule under the
// header. Columns whose cells all parse as numbers are right aligned.
type SimpleFormatter struct{}

// Name returns "simple".
func (f *SimpleFormatter) Name() string {
	return "simple"
}

// Format writes the table.
func (f *SimpleFormatter) Format(w io.Writer, t *Table) error {
	ncols := len(t.Header)
	for _, row := range t.Rows {
		if len(row) > ncols {
			ncols = len(row)
		}
	}
	widths := make([]int, ncols)
	numeric := make([]bool, ncols)
	for i := range numeric {
		numeric[i] = len(t.Rows) > 0
	}
	measure := func(cells []string) {
		for i, c := range cells {
			if n := utf8.RuneCountInString(c); n > widths[i] {
				widths[i] = n
			}
		}
	}
	measure(t.Header)
	for _, row := range t.Rows {
		measure(row)
		for i := range numeric {
			if i >= len(row) || !isNumber(row[i]) {
				numeric[i] = false
			}
		}
	}

	bw := bufio.NewWriter(w)
	write := func(cells []string) {
		var line strings.Builder
		for i := 0; i < ncols; i++ {
			c := ""
			if i < len(cells) {
				c = cells[i]
			}
			if i > 0 {
				line.WriteString("  ")
			}
			pad := strings.Repeat(" ", widths[i]-utf8.RuneCountInString(c))
			if numeric[i] {
				line.WriteString(pad + c)
			} else {
				line.WriteString(c + pad)
			}
		}
		bw.WriteString(strings.TrimRight(line.String(), " "))
		bw.WriteByte('\n')
	}
	if len(t.Header) > 0 {
		write(t.Header)
		rule := make([]string, ncols)
		for i, n := range widths {
			rule[i] = strings.Repeat("-", n)
		}
		write(rule)
	}
	for _, row := range t.Rows {
		write(row)
	}
	return bw.Flush()
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
