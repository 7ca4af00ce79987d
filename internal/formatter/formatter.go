// Package formatter renders catalog listings, detail tables and extracted
// series as text tables.
package formatter

import (
	"io"
	"sort"
	"strings"

	apperrors "github.com/swmm-toolbox/pkg/errors"
)

// Table is a rectangular grid of rendered cells with an optional header.
type Table struct {
	Header []string
	Rows   [][]string
}

// HeaderNone suppresses the header row.
const HeaderNone = "none"

// Options control how a table is rendered.
type Options struct {
	// Format names a registered formatter. Empty means DefaultFormat.
	Format string
	// Header replaces the default header with a comma separated list, or
	// suppresses it when set to HeaderNone. Empty keeps the default.
	Header string
}

// DefaultFormat is used when Options.Format is empty.
const DefaultFormat = "csv_nos"

// TableFormatter writes a table in one output format.
type TableFormatter interface {
	// Format writes t to w.
	Format(w io.Writer, t *Table) error

	// Name returns the format name used in Options.Format.
	Name() string
}

// Registry manages formatter instances.
type Registry struct {
	formatters map[string]TableFormatter
}

// NewRegistry creates a registry holding the built-in formats.
func NewRegistry() *Registry {
	r := &Registry{formatters: make(map[string]TableFormatter)}
	r.Register(&CSVFormatter{Separator: ", "})
	r.Register(&CSVFormatter{Separator: ",", name: "csv_nos"})
	r.Register(&SimpleFormatter{})
	r.Register(&JSONFormatter{})
	return r
}

// Register registers a formatter under its name.
func (r *Registry) Register(f TableFormatter) {
	r.formatters[f.Name()] = f
}

// Names returns the registered format names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the formatter for a format name.
func (r *Registry) Get(name string) (TableFormatter, error) {
	if name == "" {
		name = DefaultFormat
	}
	f, ok := r.formatters[name]
	if !ok {
		return nil, apperrors.Newf(apperrors.CodeInvalidInput,
			"unknown table format %q (valid: %s)", name, strings.Join(r.Names(), ", "))
	}
	return f, nil
}

// Render applies the header option and writes t with the selected formatter.
func (r *Registry) Render(w io.Writer, t *Table, opts Options) error {
	f, err := r.Get(opts.Format)
	if err != nil {
		return err
	}
	out := *t
	switch opts.Header {
	case "":
	case HeaderNone:
		out.Header = nil
	default:
		out.Header = strings.Split(opts.Header, ",")
	}
	if err := f.Format(w, &out); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to write table", err)
	}
	return nil
}

var defaultRegistry = NewRegistry()

// Render writes t using the built-in formats.
func Render(w io.Writer, t *Table, opts Options) error {
	return defaultRegistry.Render(w, t, opts)
}
