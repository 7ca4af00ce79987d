package storage

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// URI schemes accepted wherever a file path is.
const (
	SchemeCOS     = "cos://"     // cos://bucket/key
	SchemeStorage = "storage://" // storage://key on the configured backend
)

// Location is a file reference that is either a local path or an object key.
type Location struct {
	Raw    string
	Remote bool
	Bucket string // cos:// only
	Key    string
}

// ParseLocation splits s into a remote key or a local path.
func ParseLocation(s string) (Location, error) {
	loc := Location{Raw: s}
	switch {
	case strings.HasPrefix(s, SchemeCOS):
		rest := strings.TrimPrefix(s, SchemeCOS)
		bucket, key, ok := strings.Cut(rest, "/")
		if !ok || bucket == "" || key == "" {
			return loc, storageErrorf("invalid COS location %q, want cos://bucket/key", s)
		}
		loc.Remote, loc.Bucket, loc.Key = true, bucket, key
	case strings.HasPrefix(s, SchemeStorage):
		key := strings.TrimPrefix(s, SchemeStorage)
		if key == "" {
			return loc, storageErrorf("invalid storage location %q", s)
		}
		loc.Remote, loc.Key = true, key
	default:
		loc.Key = s
	}
	return loc, nil
}

// Name returns the last element of the key.
func (l Location) Name() string {
	return path.Base(l.Key)
}

type bucketed interface {
	Bucket() string
}

// Fetch makes loc available on local disk. Local paths are returned as is;
// remote keys are downloaded into dir.
func Fetch(ctx context.Context, st Storage, loc Location, dir string) (string, error) {
	if !loc.Remote {
		return loc.Key, nil
	}
	if st == nil {
		return "", storageErrorf("no storage configured for %s", loc.Raw)
	}
	if loc.Bucket != "" {
		b, ok := st.(bucketed)
		if !ok || b.Bucket() != loc.Bucket {
			return "", storageErrorf("bucket %s is not the configured storage", loc.Bucket)
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", storageError("failed to create download directory", err)
	}
	local := filepath.Join(dir, loc.Name())
	if err := st.DownloadFile(ctx, loc.Key, local); err != nil {
		return "", err
	}
	return local, nil
}
