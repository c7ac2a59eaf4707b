package s3client

import (
	"context"

	"github.com/minio/minio-go/v7"
)

// ObjectStore defines the storage operations the client uses. *minio.Client
// satisfies it; tests substitute a mock.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}
