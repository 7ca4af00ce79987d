package mock

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of the storage.Storage interface.
// Uploads accepted through ExpectUpload are kept and can be read back with Uploaded.
type MockStorage struct {
	mock.Mock

	mu       sync.Mutex
	uploaded map[string][]byte
}

// Upload mocks the Upload method.
func (m *MockStorage) Upload(ctx context.Context, key string, reader io.Reader) error {
	args := m.Called(ctx, key, reader)
	return args.Error(0)
}

// UploadFile mocks the UploadFile method.
func (m *MockStorage) UploadFile(ctx context.Context, key string, localPath string) error {
	args := m.Called(ctx, key, localPath)
	return args.Error(0)
}

// Download mocks the Download method.
func (m *MockStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// DownloadFile mocks the DownloadFile method.
func (m *MockStorage) DownloadFile(ctx context.Context, key string, localPath string) error {
	args := m.Called(ctx, key, localPath)
	return args.Error(0)
}

// Delete mocks the Delete method.
func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Exists mocks the Exists method.
func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// GetURL mocks the GetURL method.
func (m *MockStorage) GetURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

// ExpectUpload expects an Upload of key. On success the body is kept for Uploaded.
func (m *MockStorage) ExpectUpload(key string, err error) *mock.Call {
	return m.On("Upload", mock.Anything, key, mock.Anything).
		Run(func(args mock.Arguments) {
			if err != nil {
				return
			}
			data, _ := io.ReadAll(args.Get(2).(io.Reader))
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.uploaded == nil {
				m.uploaded = make(map[string][]byte)
			}
			m.uploaded[key] = data
		}).
		Return(err)
}

// Uploaded returns the body of a successful Upload of key.
func (m *MockStorage) Uploaded(key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploaded[key]
}

// ExpectURL expects a GetURL call for key.
func (m *MockStorage) ExpectURL(key, url string) *mock.Call {
	return m.On("GetURL", key).Return(url)
}

// ExpectFetch sets up a DownloadFile expectation for key that writes data
// to whatever local path the caller asks for.
func (m *MockStorage) ExpectFetch(key string, data []byte) *mock.Call {
	return m.On("DownloadFile", mock.Anything, key, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			_ = os.WriteFile(args.String(2), data, 0644)
		}).
		Return(nil)
}

// ExpectFetchError sets up a failing DownloadFile expectation for key.
func (m *MockStorage) ExpectFetchError(key string, err error) *mock.Call {
	return m.On("DownloadFile", mock.Anything, key, mock.AnythingOfType("string")).Return(err)
}
