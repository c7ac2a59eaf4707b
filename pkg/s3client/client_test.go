package s3client

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klanec/pic2pin/pkg/common"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockObjectStore is a mock implementation of ObjectStore
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *MockObjectStore) FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, filePath, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

// Compile-time interface check
var _ ObjectStore = (*MockObjectStore)(nil)

func writeReport(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("report body\n"), 0644))
	return path
}

func TestNewClientVerifiesBucket(t *testing.T) {
	store := &MockObjectStore{}
	store.On("BucketExists", mock.Anything, "reports").Return(true, nil)

	client, err := newClient(context.Background(), store, Config{Bucket: "reports"})
	require.NoError(t, err)
	assert.NotNil(t, client)
	store.AssertExpectations(t)
}

func TestNewClientMissingBucket(t *testing.T) {
	store := &MockObjectStore{}
	store.On("BucketExists", mock.Anything, "absent").Return(false, nil)

	_, err := newClient(context.Background(), store, Config{Bucket: "absent"})
	require.Error(t, err)
	var pubErr *common.PublishError
	assert.ErrorAs(t, err, &pubErr)
}

func TestPublishReportObjectNaming(t *testing.T) {
	path := writeReport(t, "trip.kml")

	store := &MockObjectStore{}
	store.On("BucketExists", mock.Anything, "reports").Return(true, nil)
	store.On("FPutObject", mock.Anything, "reports", "2024/trip.kml", path,
		mock.MatchedBy(func(opts minio.PutObjectOptions) bool {
			return opts.ContentType == "application/vnd.google-earth.kml+xml"
		})).Return(minio.UploadInfo{}, nil)

	client, err := newClient(context.Background(), store, Config{Bucket: "reports", Prefix: "2024"})
	require.NoError(t, err)

	key, err := client.PublishReport(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "2024/trip.kml", key)
	store.AssertExpectations(t)
}

func TestPublishReportWithoutPrefix(t *testing.T) {
	path := writeReport(t, "trip.json")

	store := &MockObjectStore{}
	store.On("BucketExists", mock.Anything, "reports").Return(true, nil)
	store.On("FPutObject", mock.Anything, "reports", "trip.json", path,
		mock.MatchedBy(func(opts minio.PutObjectOptions) bool {
			return opts.ContentType == "application/json"
		})).Return(minio.UploadInfo{}, nil)

	client, err := newClient(context.Background(), store, Config{Bucket: "reports"})
	require.NoError(t, err)

	key, err := client.PublishReport(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "trip.json", key)
	store.AssertExpectations(t)
}

func TestPublishReportMissingFile(t *testing.T) {
	store := &MockObjectStore{}
	store.On("BucketExists", mock.Anything, "reports").Return(true, nil)

	client, err := newClient(context.Background(), store, Config{Bucket: "reports"})
	require.NoError(t, err)

	_, err = client.PublishReport(context.Background(), filepath.Join(t.TempDir(), "absent.kml"))
	require.Error(t, err)
	store.AssertNotCalled(t, "FPutObject",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDetectContentType(t *testing.T) {
	for _, tc := range []struct {
		path string
		want string
	}{
		{"report.kml", "application/vnd.google-earth.kml+xml"},
		{"report.KML", "application/vnd.google-earth.kml+xml"},
		{"report.json", "application/json"},
		{"report.txt", "text/plain"},
		{"report.bin", "application/octet-stream"},
		{"report", "application/octet-stream"},
	} {
		assert.Equal(t, tc.want, DetectContentType(tc.path), tc.path)
	}
}
