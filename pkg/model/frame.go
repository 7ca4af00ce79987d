// Package model defines the data structures shared by extraction, formatting,
// persistence and the CLI.
package model

import (
	"fmt"
	"time"
)

// Column is one extracted series.
type Column struct {
	// Name is "<type>_<name>_<variable>"; system columns have an empty name part.
	Name   string
	Values []float32
}

// Frame is a set of series sharing one time index.
type Frame struct {
	Index   []time.Time
	Columns []Column
}

// NewFrame creates an empty frame over index.
func NewFrame(index []time.Time) *Frame {
	return &Frame{Index: index}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Index)
}

// ColumnNames returns the column names in order.
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

// AddColumn appends a series. Its length must match the index.
func (f *Frame) AddColumn(name string, values []float32) error {
	if len(values) != len(f.Index) {
		return fmt.Errorf("column %s has %d values, index has %d rows", name, len(values), len(f.Index))
	}
	f.Columns = append(f.Columns, Column{Name: name, Values: values})
	return nil
}

// Column returns the series with the given name.
func (f *Frame) Column(name string) (Column, bool) {
	for _, c := range f.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Row returns the values of row i across all columns.
func (f *Frame) Row(i int) []float32 {
	row := make([]float32, len(f.Columns))
	for j, c := range f.Columns {
		row[j] = c.Values[i]
	}
	return row
}

// Between returns the rows whose time lies in [start, end]. A zero bound is open.
func (f *Frame) Between(start, end time.Time) *Frame {
	lo, hi := 0, len(f.Index)
	for lo < hi && !start.IsZero() && f.Index[lo].Before(start) {
		lo++
	}
	for hi > lo && !end.IsZero() && f.Index[hi-1].After(end) {
		hi--
	}
	out := &Frame{Index: f.Index[lo:hi], Columns: make([]Column, len(f.Columns))}
	for j, c := range f.Columns {
		out.Columns[j] = Column{Name: c.Name, Values: c.Values[lo:hi]}
	}
	return out
}
