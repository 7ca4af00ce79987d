package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/tencentyun/cos-go-sdk-v5"
)

// COSConfig holds COS-specific configuration.
type COSConfig struct {
	Bucket    string
	Region    string
	SecretID  string
	SecretKey string
	Domain    string // default "myqcloud.com"
	Scheme    string // default "https"
}

// COSStorage keeps output files and exported tables in a Tencent Cloud COS bucket.
type COSStorage struct {
	client  *cos.Client
	bucket  string
	baseURL string
}

// NewCOSStorage creates a new COSStorage instance.
func NewCOSStorage(cfg *COSConfig) (*COSStorage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, storageErrorf("bucket and region are required for COS storage")
	}
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return nil, storageErrorf("credentials are required for COS storage")
	}

	domain := cfg.Domain
	if domain == "" {
		domain = "myqcloud.com"
	}
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "https"
	}

	base := fmt.Sprintf("%s://%s.cos.%s.%s", scheme, cfg.Bucket, cfg.Region, domain)
	bucketURL, err := url.Parse(base)
	if err != nil {
		return nil, storageError("failed to parse bucket URL", err)
	}
	serviceURL, err := url.Parse(fmt.Sprintf("%s://cos.%s.%s", scheme, cfg.Region, domain))
	if err != nil {
		return nil, storageError("failed to parse service URL", err)
	}

	client := cos.NewClient(&cos.BaseURL{
		BucketURL:  bucketURL,
		ServiceURL: serviceURL,
	}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
		},
	})

	return &COSStorage{client: client, bucket: cfg.Bucket, baseURL: base}, nil
}

// objectKey drops the leading slash COS would otherwise keep as part of the key.
func objectKey(key string) string {
	return strings.TrimLeft(key, "/")
}

// ContentType guesses the MIME type of an uploaded object from its key.
// Compressed exports keep the compression type, not the table type.
func ContentType(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	case ".txt", ".dat":
		return "text/plain"
	case ".gz":
		return "application/gzip"
	case ".zst":
		return "application/zstd"
	default:
		return "application/octet-stream"
	}
}

func (s *COSStorage) wrap(op, key string, err error) error {
	if cos.IsNotFoundError(err) {
		return storageErrorf("object not found: cos://%s/%s", s.bucket, key)
	}
	return storageError(fmt.Sprintf("failed to %s cos://%s/%s", op, s.bucket, key), err)
}

// Upload uploads data from reader to the specified key.
func (s *COSStorage) Upload(ctx context.Context, key string, reader io.Reader) error {
	key = objectKey(key)
	opt := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{ContentType: ContentType(key)},
	}
	if _, err := s.client.Object.Put(ctx, key, reader, opt); err != nil {
		return s.wrap("upload", key, err)
	}
	return nil
}

// UploadFile uploads a local file to the specified key.
func (s *COSStorage) UploadFile(ctx context.Context, key string, localPath string) error {
	key = objectKey(key)
	opt := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{ContentType: ContentType(key)},
	}
	if _, err := s.client.Object.PutFromFile(ctx, key, localPath, opt); err != nil {
		return s.wrap("upload", key, err)
	}
	return nil
}

// Download downloads data from the specified key.
func (s *COSStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	key = objectKey(key)
	resp, err := s.client.Object.Get(ctx, key, nil)
	if err != nil {
		return nil, s.wrap("download", key, err)
	}
	return resp.Body, nil
}

// DownloadFile downloads an object to localPath. A partial file is removed
// when the transfer fails.
func (s *COSStorage) DownloadFile(ctx context.Context, key string, localPath string) error {
	key = objectKey(key)
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return storageError("failed to create directory", err)
	}
	if _, err := s.client.Object.GetToFile(ctx, key, localPath, nil); err != nil {
		os.Remove(localPath)
		return s.wrap("download", key, err)
	}
	return nil
}

// Delete deletes the object at the specified key.
func (s *COSStorage) Delete(ctx context.Context, key string) error {
	key = objectKey(key)
	if _, err := s.client.Object.Delete(ctx, key, nil); err != nil {
		return s.wrap("delete", key, err)
	}
	return nil
}

// Exists checks if an object exists at the specified key.
func (s *COSStorage) Exists(ctx context.Context, key string) (bool, error) {
	key = objectKey(key)
	ok, err := s.client.Object.IsExist(ctx, key)
	if err != nil {
		return false, s.wrap("stat", key, err)
	}
	return ok, nil
}

// GetURL returns the object URL for the specified key.
func (s *COSStorage) GetURL(key string) string {
	return s.baseURL + "/" + objectKey(key)
}

// Bucket returns the configured bucket name.
func (s *COSStorage) Bucket() string {
	return s.bucket
}
