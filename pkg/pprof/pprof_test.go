package pprof

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/swmm-toolbox/pkg/errors"
)

func TestParseProfileTypes(t *testing.T) {
	types, err := ParseProfileTypes("")
	require.NoError(t, err)
	assert.Equal(t, DefaultProfileTypes(), types)

	types, err = ParseProfileTypes("CPU, goroutine,allocs")
	require.NoError(t, err)
	assert.Equal(t, []ProfileType{ProfileCPU, ProfileGoroutine, ProfileAllocs}, types)

	_, err = ParseProfileTypes("cpu,trace")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetErrorCode(err))
}

func TestSession(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profiles")
	s, err := Start(dir, []ProfileType{ProfileCPU, ProfileHeap, ProfileMutex})
	require.NoError(t, err)

	paths, err := s.Stop()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "cpu.pprof"),
		filepath.Join(dir, "heap.pprof"),
		filepath.Join(dir, "mutex.pprof"),
	}, paths)
	for _, p := range paths {
		assert.FileExists(t, p)
	}

	again, err := s.Stop()
	require.NoError(t, err)
	assert.Equal(t, paths, again)
}
