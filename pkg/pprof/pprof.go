// Package pprof captures runtime profiles of a single command run.
//
// Basic usage:
//
//	types, _ := pprof.ParseProfileTypes("cpu,heap")
//	session, err := pprof.Start("./pprof", types)
//	if err != nil {
//	    return err
//	}
//	defer session.Stop()
package pprof

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"sync"

	apperrors "github.com/swmm-toolbox/pkg/errors"
)

// ProfileType defines the type of profile to collect.
type ProfileType string

const (
	ProfileCPU       ProfileType = "cpu"
	ProfileHeap      ProfileType = "heap"
	ProfileGoroutine ProfileType = "goroutine"
	ProfileBlock     ProfileType = "block"
	ProfileMutex     ProfileType = "mutex"
	ProfileAllocs    ProfileType = "allocs"
)

// AllProfileTypes returns all supported profile types.
func AllProfileTypes() []ProfileType {
	return []ProfileType{
		ProfileCPU,
		ProfileHeap,
		ProfileGoroutine,
		ProfileBlock,
		ProfileMutex,
		ProfileAllocs,
	}
}

// DefaultProfileTypes returns the profile types used when none are named.
func DefaultProfileTypes() []ProfileType {
	return []ProfileType{ProfileCPU, ProfileHeap}
}

// ParseProfileTypes parses a comma-separated string into profile types.
func ParseProfileTypes(s string) ([]ProfileType, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultProfileTypes(), nil
	}

	valid := make(map[ProfileType]bool)
	for _, pt := range AllProfileTypes() {
		valid[pt] = true
	}

	parts := strings.Split(s, ",")
	types := make([]ProfileType, 0, len(parts))
	for _, p := range parts {
		pt := ProfileType(strings.TrimSpace(strings.ToLower(p)))
		if !valid[pt] {
			return nil, apperrors.Newf(apperrors.CodeInvalidInput, "unknown profile type: %q", p)
		}
		types = append(types, pt)
	}
	return types, nil
}

// Session is a running profile capture. CPU profiling runs from Start to
// Stop; the other profiles are snapshotted at Stop.
type Session struct {
	dir     string
	types   []ProfileType
	cpuFile *os.File
	once    sync.Once
	paths   []string
	err     error
}

// Start creates dir and begins capturing. Files are named <type>.pprof.
func Start(dir string, types []ProfileType) (*Session, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIO, "failed to create profile directory", err)
	}

	s := &Session{dir: dir, types: types}
	for _, pt := range types {
		switch pt {
		case ProfileBlock:
			runtime.SetBlockProfileRate(1)
		case ProfileMutex:
			runtime.SetMutexProfileFraction(1)
		case ProfileCPU:
			f, err := os.Create(s.path(pt))
			if err != nil {
				return nil, apperrors.Wrap(apperrors.CodeIO, "failed to create cpu profile", err)
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				return nil, apperrors.Wrap(apperrors.CodeIO, "failed to start cpu profile", err)
			}
			s.cpuFile = f
		}
	}
	return s, nil
}

func (s *Session) path(pt ProfileType) string {
	return filepath.Join(s.dir, string(pt)+".pprof")
}

// Stop ends CPU profiling, writes the remaining snapshots and returns the
// written file paths. Later calls return the first result.
func (s *Session) Stop() ([]string, error) {
	s.once.Do(func() {
		if s.cpuFile != nil {
			pprof.StopCPUProfile()
			if err := s.cpuFile.Close(); err != nil {
				s.err = apperrors.Wrap(apperrors.CodeIO, "failed to close cpu profile", err)
				return
			}
			s.paths = append(s.paths, s.cpuFile.Name())
		}

		for _, pt := range s.types {
			if pt == ProfileCPU {
				continue
			}
			if err := s.snapshot(pt); err != nil {
				s.err = err
				return
			}
			s.paths = append(s.paths, s.path(pt))
		}
		runtime.SetBlockProfileRate(0)
		runtime.SetMutexProfileFraction(0)
	})
	return s.paths, s.err
}

func (s *Session) snapshot(pt ProfileType) error {
	p := pprof.Lookup(string(pt))
	if p == nil {
		return apperrors.Newf(apperrors.CodeInvalidInput, "%s profile not found", pt)
	}
	if pt == ProfileHeap {
		runtime.GC()
	}

	f, err := os.Create(s.path(pt))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to create "+string(pt)+" profile", err)
	}
	if err := p.WriteTo(f, 0); err != nil {
		f.Close()
		return apperrors.Wrap(apperrors.CodeIO, "failed to write "+string(pt)+" profile", err)
	}
	return f.Close()
}
