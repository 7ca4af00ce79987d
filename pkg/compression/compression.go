// Package compression compresses rendered toolbox output and decompresses
// compressed model inputs.
package compression

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Type represents the compression algorithm used.
type Type uint8

const (
	// TypeNone leaves data unchanged.
	TypeNone Type = iota
	// TypeGzip uses gzip, readable everywhere.
	TypeGzip
	// TypeZstd uses zstd.
	TypeZstd
)

// String returns the name accepted by ParseType.
func (t Type) String() string {
	switch t {
	case TypeGzip:
		return "gzip"
	case TypeZstd:
		return "zstd"
	default:
		return "none"
	}
}

// Extension returns the conventional file suffix, including the dot.
func (t Type) Extension() string {
	switch t {
	case TypeGzip:
		return ".gz"
	case TypeZstd:
		return ".zst"
	default:
		return ""
	}
}

// ParseType maps a configuration value to a Type. Empty means none.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return TypeNone, nil
	case "gzip", "gz":
		return TypeGzip, nil
	case "zstd", "zst":
		return TypeZstd, nil
	default:
		return TypeNone, fmt.Errorf("unknown compression type %q (valid: none, gzip, zstd)", name)
	}
}

// Level represents the compression level.
type Level int

const (
	LevelFastest Level = 1
	LevelDefault Level = 3
	LevelBest    Level = 9
)

func (l Level) gzip() int {
	switch l {
	case LevelFastest:
		return gzip.BestSpeed
	case LevelBest:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func (l Level) zstd() zstd.EncoderLevel {
	switch l {
	case LevelFastest:
		return zstd.SpeedFastest
	case LevelBest:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// NewWriter wraps w so that everything written is compressed with t.
// Close flushes the compressed stream but does not close w.
func NewWriter(w io.Writer, t Type, level Level) (io.WriteCloser, error) {
	switch t {
	case TypeNone:
		return nopWriteCloser{w}, nil
	case TypeGzip:
		gw, err := gzip.NewWriterLevel(w, level.gzip())
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip writer: %w", err)
		}
		return gw, nil
	case TypeZstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(level.zstd()))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return zw, nil
	default:
		return nil, fmt.Errorf("unknown compression type: %d", t)
	}
}

// Compress compresses data in one shot.
func Compress(data []byte, t Type, level Level) ([]byte, error) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, t, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to write %s data: %w", t, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s writer: %w", t, err)
	}
	return buf.Bytes(), nil
}

// DetectType detects the compression type from magic bytes. Data without a
// known magic is reported as TypeNone.
func DetectType(data []byte) Type {
	if len(data) >= 4 && data[0] == 0x28 && data[1] == 0xb5 && data[2] == 0x2f && data[3] == 0xfd {
		return TypeZstd
	}
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		return TypeGzip
	}
	return TypeNone
}

// NewReader returns a reader that decompresses r according to its magic
// bytes. Uncompressed input is passed through.
func NewReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(4)
	switch DetectType(head) {
	case TypeGzip:
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gr, nil
	case TypeZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return io.NopCloser(br), nil
	}
}

// DetectFile reports the compression type of the file at path.
func DetectFile(path string) (Type, error) {
	f, err := os.Open(path)
	if err != nil {
		return TypeNone, err
	}
	defer f.Close()

	head := make([]byte, 4)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return TypeNone, err
	}
	return DetectType(head[:n]), nil
}

// DecompressFile writes the decompressed content of src to dst and returns
// the detected type. Uncompressed sources are left alone: dst is not created
// and TypeNone is returned. A partial dst is removed on failure.
func DecompressFile(src, dst string) (t Type, err error) {
	in, err := os.Open(src)
	if err != nil {
		return TypeNone, err
	}
	defer in.Close()

	br := bufio.NewReader(in)
	head, _ := br.Peek(4)
	if t = DetectType(head); t == TypeNone {
		return TypeNone, nil
	}

	r, err := NewReader(br)
	if err != nil {
		return t, err
	}
	defer r.Close()

	out, err := os.Create(dst)
	if err != nil {
		return t, err
	}
	defer func() {
		if err != nil {
			os.Remove(dst)
		}
	}()
	if _, err = io.Copy(out, r); err != nil {
		out.Close()
		return t, fmt.Errorf("failed to decompress %s data: %w", t, err)
	}
	return t, out.Close()
}
