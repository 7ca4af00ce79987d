package swmm

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/swmm-toolbox/internal/parser"
	apperrors "github.com/swmm-toolbox/pkg/errors"
)

// Reader is a bounds-checked little-endian cursor over an output file.
// Every read first checks that the requested bytes lie inside the file, so a
// short file surfaces as ErrTruncated rather than a silent zero value.
type Reader struct {
	src  io.ReaderAt
	size int64
	pos  int64
	r    *bufio.Reader
	buf  []byte
}

// NewReader creates a reader over size bytes of src, positioned at offset 0.
func NewReader(src io.ReaderAt, size int64) *Reader {
	rd := &Reader{
		src:  src,
		size: size,
		buf:  make([]byte, 8),
	}
	rd.r = bufio.NewReaderSize(io.NewSectionReader(src, 0, size), 64*1024)
	return rd
}

// Size returns the total length of the underlying file.
func (r *Reader) Size() int64 {
	return r.size
}

// Pos returns the current cursor offset.
func (r *Reader) Pos() int64 {
	return r.pos
}

// Remaining returns the number of bytes between the cursor and end of file.
func (r *Reader) Remaining() int64 {
	return r.size - r.pos
}

// Seek moves the cursor to an absolute offset.
func (r *Reader) Seek(offset int64) error {
	if offset < 0 || offset > r.size {
		return truncated(fmt.Sprintf("seek to offset %d outside file of %d bytes", offset, r.size))
	}
	if offset == r.pos {
		return nil
	}
	r.pos = offset
	r.r.Reset(io.NewSectionReader(r.src, offset, r.size-offset))
	return nil
}

// SeekFromEnd moves the cursor to size-back.
func (r *Reader) SeekFromEnd(back int64) error {
	return r.Seek(r.size - back)
}

func (r *Reader) need(n int64, what string) error {
	if n < 0 || n > r.Remaining() {
		return truncated(fmt.Sprintf("reading %s needs %d bytes at offset %d, %d remain", what, n, r.pos, r.Remaining()))
	}
	return nil
}

func (r *Reader) fill(p []byte, what string) error {
	if err := r.need(int64(len(p)), what); err != nil {
		return err
	}
	if _, err := io.ReadFull(r.r, p); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("failed to read %s at offset %d", what, r.pos), err)
	}
	r.pos += int64(len(p))
	return nil
}

// ReadInt32 reads one little-endian int32.
func (r *Reader) ReadInt32(what string) (int32, error) {
	if err := r.fill(r.buf[:4], what); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(r.buf[:4])), nil
}

// ReadCount reads an int32 that must not be negative.
func (r *Reader) ReadCount(what string) (int, error) {
	n, err := r.ReadInt32(what)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, apperrors.Wrap(apperrors.CodeStructural, fmt.Sprintf("%s is %d", what, n), parser.ErrNegativeCount)
	}
	return int(n), nil
}

// ReadFloat64 reads one little-endian IEEE 754 double.
func (r *Reader) ReadFloat64(what string) (float64, error) {
	if err := r.fill(r.buf[:8], what); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(r.buf[:8])), nil
}

// ReadWords reads n raw 4-byte words.
func (r *Reader) ReadWords(n int, what string) ([]uint32, error) {
	if err := r.need(int64(n)*RecordSize, what); err != nil {
		return nil, err
	}
	raw := make([]byte, n*RecordSize)
	if err := r.fill(raw, what); err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(raw[i*RecordSize:])
	}
	return out, nil
}

// ReadInt32s reads n little-endian int32 values.
func (r *Reader) ReadInt32s(n int, what string) ([]int32, error) {
	words, err := r.ReadWords(n, what)
	if err != nil {
		return nil, err
	}
	out := make([]int32, n)
	for i, w := range words {
		out[i] = int32(w)
	}
	return out, nil
}

// ReadString reads an int32 length followed by that many bytes, decoded as
// permissive ASCII.
func (r *Reader) ReadString(what string) (string, error) {
	n, err := r.ReadCount(what + " length")
	if err != nil {
		return "", err
	}
	if err := r.need(int64(n), what); err != nil {
		return "", err
	}
	raw := make([]byte, n)
	if err := r.fill(raw, what); err != nil {
		return "", err
	}
	return decodeASCII(raw), nil
}

// decodeASCII maps every byte above 0x7f to U+FFFD and keeps the rest.
func decodeASCII(raw []byte) string {
	out := make([]rune, len(raw))
	for i, b := range raw {
		if b > 0x7f {
			out[i] = '\uFFFD'
		} else {
			out[i] = rune(b)
		}
	}
	return string(out)
}

func truncated(msg string) error {
	return apperrors.Wrap(apperrors.CodeStructural, msg, parser.ErrTruncated)
}
