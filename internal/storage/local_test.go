package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swmm-toolbox/pkg/config"
	apperrors "github.com/swmm-toolbox/pkg/errors"
)

func newLocal(t *testing.T) *LocalStorage {
	t.Helper()
	st, err := NewLocalStorage(filepath.Join(t.TempDir(), "storage"))
	require.NoError(t, err)
	return st
}

func TestNewLocalStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "storage")
	st, err := NewLocalStorage(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, st.GetBasePath())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLocalStorage_UploadDownload(t *testing.T) {
	st := newLocal(t)
	ctx := context.Background()
	content := []byte("Datetime,link_222_Flow_rate\n2023-01-01 00:05:00,2000\n")

	require.NoError(t, st.Upload(ctx, "runs/run-1/flow.csv", bytes.NewReader(content)))

	rc, err := st.Download(ctx, "runs/run-1/flow.csv")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, content, got)

	ok, err := st.Exists(ctx, "runs/run-1/flow.csv")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(st.GetBasePath(), "runs", "run-1", "flow.csv"), st.GetURL("runs/run-1/flow.csv"))
}

func TestLocalStorage_Files(t *testing.T) {
	st := newLocal(t)
	ctx := context.Background()
	src := filepath.Join(t.TempDir(), "frutal.out")
	require.NoError(t, os.WriteFile(src, []byte{1, 2, 3, 4}, 0644))

	require.NoError(t, st.UploadFile(ctx, "inputs/frutal.out", src))

	dst := filepath.Join(t.TempDir(), "nested", "copy.out")
	require.NoError(t, st.DownloadFile(ctx, "inputs/frutal.out", dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)

	err = st.UploadFile(ctx, "x", filepath.Join(t.TempDir(), "missing"))
	assert.True(t, apperrors.IsStorageError(err))
}

func TestLocalStorage_Missing(t *testing.T) {
	st := newLocal(t)
	ctx := context.Background()

	_, err := st.Download(ctx, "nope.out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
	assert.True(t, apperrors.IsStorageError(err))

	assert.Error(t, st.DownloadFile(ctx, "nope.out", filepath.Join(t.TempDir(), "x")))

	ok, err := st.Exists(ctx, "nope.out")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, st.Delete(ctx, "nope.out"))
}

func TestLocalStorage_Delete(t *testing.T) {
	st := newLocal(t)
	ctx := context.Background()
	require.NoError(t, st.Upload(ctx, "a.csv", bytes.NewReader([]byte("x"))))

	require.NoError(t, st.Delete(ctx, "a.csv"))
	ok, err := st.Exists(ctx, "a.csv")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStorage_InvalidKeys(t *testing.T) {
	st := newLocal(t)
	ctx := context.Background()

	for _, key := range []string{"", "..", "../escape.csv", "/etc/passwd"} {
		err := st.Upload(ctx, key, bytes.NewReader(nil))
		require.Error(t, err, key)
		assert.Contains(t, err.Error(), "invalid storage key")
	}
}

func TestLocalStorage_CanceledContext(t *testing.T) {
	st := newLocal(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, st.Upload(ctx, "a", bytes.NewReader(nil)), context.Canceled)
	_, err := st.Download(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = st.Exists(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewStorage_Local(t *testing.T) {
	st, err := NewStorage(&config.StorageConfig{Type: "local", LocalPath: t.TempDir()})
	require.NoError(t, err)
	_, ok := st.(*LocalStorage)
	assert.True(t, ok)
}
