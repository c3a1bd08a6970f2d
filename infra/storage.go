package infra

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/tnqbao/gau-box-service/config"
)

// MaxPhotoSize caps a single photo upload at 50MB.
const MaxPhotoSize = 52428800

// StorageClient wraps the object store holding photo blobs. Photos for a box
// live under the "<boxID>/" prefix inside a single public bucket.
type StorageClient struct {
	Client    *minio.Client
	Bucket    string
	PublicURL string
}

func InitStorageClient(cfg *config.EnvConfig) *StorageClient {
	endpoint := cfg.Storage.Endpoint
	if endpoint == "" {
		panic("STORAGE_ENDPOINT is not configured")
	}
	if cfg.Storage.AccessKey == "" {
		panic("STORAGE_ACCESS_KEY is not configured")
	}
	if cfg.Storage.SecretKey == "" {
		panic("STORAGE_SECRET_KEY is not configured")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize storage client: %v", err))
	}

	publicURL := cfg.Storage.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.Storage.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, endpoint)
	}

	return &StorageClient{
		Client:    client,
		Bucket:    cfg.Storage.Bucket,
		PublicURL: publicURL,
	}
}

// EnsurePhotosBucket creates the photos bucket with a public-read policy if
// it does not exist yet.
func (s *StorageClient) EnsurePhotosBucket(ctx context.Context) error {
	exists, err := s.Client.BucketExists(ctx, s.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if exists {
		return nil
	}

	if err := s.Client.MakeBucket(ctx, s.Bucket, minio.MakeBucketOptions{Region: "us-east-1"}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	policyJSON := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [
			{
				"Effect": "Allow",
				"Principal": {"AWS": ["*"]},
				"Action": ["s3:GetObject"],
				"Resource": ["arn:aws:s3:::%s/*"]
			}
		]
	}`, s.Bucket)
	if err := s.Client.SetBucketPolicy(ctx, s.Bucket, policyJSON); err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}

	return nil
}

// Upload stores one blob under the given storage-relative path.
func (s *StorageClient) Upload(ctx context.Context, path string, reader io.Reader, size int64, contentType string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.Client.PutObject(ctx, s.Bucket, path, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", path, err)
	}
	return nil
}

// PublicObjectURL returns the stable public URL for a stored path.
func (s *StorageClient) PublicObjectURL(path string) string {
	return fmt.Sprintf("%s/%s/%s", s.PublicURL, s.Bucket, path)
}

// ParsePublicURL recovers the storage-relative path from a public URL. The
// second return is false when the URL does not match the public prefix.
func (s *StorageClient) ParsePublicURL(url string) (string, bool) {
	prefix := s.PublicURL + "/" + s.Bucket + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	path := strings.TrimPrefix(url, prefix)
	if path == "" {
		return "", false
	}
	return path, true
}

// ListPrefix lists all object paths under a prefix.
func (s *StorageClient) ListPrefix(ctx context.Context, prefix string) ([]string, error) {
	objectCh := s.Client.ListObjects(ctx, s.Bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var paths []string
	for obj := range objectCh {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		paths = append(paths, obj.Key)
	}
	return paths, nil
}

// Remove deletes the given object paths. A failure on any path aborts with
// that path's error.
func (s *StorageClient) Remove(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	objectsCh := make(chan minio.ObjectInfo)
	go func() {
		defer close(objectsCh)
		for _, path := range paths {
			objectsCh <- minio.ObjectInfo{Key: path}
		}
	}()

	errorCh := s.Client.RemoveObjects(ctx, s.Bucket, objectsCh, minio.RemoveObjectsOptions{})
	for err := range errorCh {
		if err.Err != nil {
			return fmt.Errorf("failed to remove object %s: %w", err.ObjectName, err.Err)
		}
	}
	return nil
}
