package s3client

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/klanec/pic2pin/internal/logger"
	"github.com/klanec/pic2pin/pkg/common"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds the connection settings for an S3-compatible endpoint.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Prefix    string
}

// Client publishes rendered reports to S3-compatible storage.
type Client struct {
	store  ObjectStore
	bucket string
	prefix string
}

// New creates a client and verifies the bucket is reachable.
func New(ctx context.Context, cfg Config) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating S3 client: %w", err)
	}
	return newClient(ctx, mc, cfg)
}

func newClient(ctx context.Context, store ObjectStore, cfg Config) (*Client, error) {
	exists, err := store.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		return nil, common.NewPublishError(fmt.Sprintf("bucket %s does not exist", cfg.Bucket))
	}

	return &Client{
		store:  store,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// PublishReport uploads a rendered report file. The object name is the
// report's base name under the configured prefix.
func (c *Client) PublishReport(ctx context.Context, localPath string) (string, error) {
	objectName := path.Base(localPath)
	if c.prefix != "" {
		objectName = path.Join(c.prefix, objectName)
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return "", fmt.Errorf("reading report %s: %w", localPath, err)
	}

	contentType := DetectContentType(localPath)
	logger.Debug("Uploading %s (%d bytes, %s) to s3://%s/%s",
		localPath, info.Size(), contentType, c.bucket, objectName)

	_, err = c.store.FPutObject(ctx, c.bucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("uploading report: %w", err)
	}

	return objectName, nil
}
