// Package convert rewrites toolbox-standard CSV time series as SWMM 5
// time series text.
package convert

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/swmm-toolbox/pkg/errors"
)

// Options bound the converted rows. Zero bounds are open; both are inclusive.
type Options struct {
	Start time.Time
	End   time.Time
}

// Accepted layouts of the Datetime column, tried in order.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC3339,
}

// ParseTime parses a Datetime cell.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.Newf(apperrors.CodeInvalidInput, "cannot parse date %q", s)
}

// StdToSWMM5 reads a CSV whose first column is a date and whose remaining
// columns are values, and writes
//
//	;Datetime, col1, col2
//	MM/DD/YYYY HH:MM:SS v1 v2
//
// Values are written with %g; blank or NaN cells are left empty.
func StdToSWMM5(r io.Reader, w io.Writer, opts Options) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return apperrors.New(apperrors.CodeInvalidInput, "input has no header row")
	}
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "failed to read header", err)
	}
	if len(header) < 2 {
		return apperrors.New(apperrors.CodeInvalidInput, "input needs a Datetime column and at least one value column")
	}
	cols := make([]string, len(header)-1)
	for i, h := range header[1:] {
		cols[i] = strings.TrimSpace(h)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, ";Datetime, %s\n", strings.Join(cols, ", "))

	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("line %d", line), err)
		}
		if len(rec) != len(header) {
			return apperrors.Newf(apperrors.CodeInvalidInput, "line %d has %d fields, header has %d", line, len(rec), len(header))
		}

		ts, err := ParseTime(rec[0])
		if err != nil {
			return err
		}
		if (!opts.Start.IsZero() && ts.Before(opts.Start)) || (!opts.End.IsZero() && ts.After(opts.End)) {
			continue
		}

		bw.WriteString(ts.Format("01/02/2006 15:04:05"))
		for _, cell := range rec[1:] {
			bw.WriteByte(' ')
			v, err := formatValue(cell)
			if err != nil {
				return apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("line %d", line), err)
			}
			bw.WriteString(v)
		}
		bw.WriteByte('\n')
	}

	if err := bw.Flush(); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to write output", err)
	}
	return nil
}

func formatValue(cell string) (string, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return "", nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return "", fmt.Errorf("bad value %q: %w", cell, err)
	}
	if math.IsNaN(v) {
		return "", nil
	}
	return fmt.Sprintf("%g", v), nil
}
