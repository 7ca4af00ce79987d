// Package writer writes JSON documents, optionally compressed, to streams.
package writer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/swmm-toolbox/pkg/compression"
)

// JSONWriter writes data as JSON.
type JSONWriter[T any] struct {
	// Indent specifies the indentation for pretty printing.
	// Empty string means compact output.
	Indent string
	// Compression is applied to everything written. Zero means none.
	Compression compression.Type
}

// NewJSONWriter creates a new JSON writer with compact output.
func NewJSONWriter[T any]() *JSONWriter[T] {
	return &JSONWriter[T]{}
}

// NewPrettyJSONWriter creates a JSON writer with pretty printing.
func NewPrettyJSONWriter[T any]() *JSONWriter[T] {
	return &JSONWriter[T]{Indent: "  "}
}

// Write writes the data as JSON to the writer.
func (w *JSONWriter[T]) Write(data T, writer io.Writer) error {
	cw, err := compression.NewWriter(writer, w.Compression, compression.LevelDefault)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(cw)
	if w.Indent != "" {
		encoder.SetIndent("", w.Indent)
	}
	if err := encoder.Encode(data); err != nil {
		_ = cw.Close()
		return fmt.Errorf("failed to encode data: %w", err)
	}
	return cw.Close()
}
