package compression

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []byte(strings.Repeat("Datetime, link_222_Flow_rate\n2023-01-01 00:05:00, 2000\n", 50))

func TestCompress_RoundTrip(t *testing.T) {
	for _, typ := range []Type{TypeNone, TypeGzip, TypeZstd} {
		for _, level := range []Level{LevelFastest, LevelDefault, LevelBest} {
			t.Run(typ.String(), func(t *testing.T) {
				compressed, err := Compress(sample, typ, level)
				require.NoError(t, err)
				assert.Equal(t, typ, DetectType(compressed))
				if typ != TypeNone {
					assert.Less(t, len(compressed), len(sample))
				}

				r, err := NewReader(bytes.NewReader(compressed))
				require.NoError(t, err)
				defer r.Close()
				out, err := io.ReadAll(r)
				require.NoError(t, err)
				assert.Equal(t, sample, out)
			})
		}
	}
}

func TestNewWriter_DoesNotCloseTarget(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, TypeZstd, LevelDefault)
	require.NoError(t, err)
	_, err = w.Write(sample)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	buf.WriteString("trailing")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("trailing")))
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"", TypeNone, false},
		{"none", TypeNone, false},
		{"GZIP", TypeGzip, false},
		{"gz", TypeGzip, false},
		{" zstd ", TypeZstd, false},
		{"zst", TypeZstd, false},
		{"bzip2", TypeNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestType_Extension(t *testing.T) {
	assert.Equal(t, ".gz", TypeGzip.Extension())
	assert.Equal(t, ".zst", TypeZstd.Extension())
	assert.Equal(t, "", TypeNone.Extension())
}

func TestDetectType(t *testing.T) {
	assert.Equal(t, TypeNone, DetectType(nil))
	assert.Equal(t, TypeNone, DetectType([]byte{0x5a, 0x3b, 0xc3, 0x1e}))
	assert.Equal(t, TypeGzip, DetectType([]byte{0x1f, 0x8b}))
	assert.Equal(t, TypeZstd, DetectType([]byte{0x28, 0xb5, 0x2f, 0xfd, 0x00}))
}

func TestNewReader_PassThrough(t *testing.T) {
	r, err := NewReader(bytes.NewReader([]byte("ab")))
	require.NoError(t, err)
	defer r.Close()

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)
	assert.Equal(t, "ab", buf.String())
}

func TestDecompressFile(t *testing.T) {
	dir := t.TempDir()

	for _, typ := range []Type{TypeGzip, TypeZstd} {
		t.Run(typ.String(), func(t *testing.T) {
			compressed, err := Compress(sample, typ, LevelDefault)
			require.NoError(t, err)
			src := filepath.Join(dir, "frutal.out"+typ.Extension())
			require.NoError(t, os.WriteFile(src, compressed, 0644))

			dst := filepath.Join(dir, "plain-"+typ.String())
			got, err := DecompressFile(src, dst)
			require.NoError(t, err)
			assert.Equal(t, typ, got)

			out, err := os.ReadFile(dst)
			require.NoError(t, err)
			assert.Equal(t, sample, out)
		})
	}

	t.Run("plain source", func(t *testing.T) {
		src := filepath.Join(dir, "plain.out")
		require.NoError(t, os.WriteFile(src, sample, 0644))
		dst := filepath.Join(dir, "unused")

		got, err := DecompressFile(src, dst)
		require.NoError(t, err)
		assert.Equal(t, TypeNone, got)
		assert.NoFileExists(t, dst)
	})

	t.Run("corrupt stream", func(t *testing.T) {
		compressed, err := Compress(sample, TypeGzip, LevelDefault)
		require.NoError(t, err)
		src := filepath.Join(dir, "cut.out.gz")
		require.NoError(t, os.WriteFile(src, compressed[:len(compressed)/2], 0644))
		dst := filepath.Join(dir, "cut.out")

		_, err = DecompressFile(src, dst)
		require.Error(t, err)
		assert.NoFileExists(t, dst)
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := DecompressFile(filepath.Join(dir, "missing.gz"), filepath.Join(dir, "x"))
		assert.Error(t, err)
	})
}
