package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"resumesync/internal/config"
)

const bucketCheckTimeout = 5 * time.Second

// ArchiveStore keeps archived document versions as JSON objects in one
// MinIO/S3 bucket.
type ArchiveStore struct {
	client *minio.Client
	bucket string
}

// NewArchiveStore 连接 MinIO 并确认归档 Bucket 可用；AutoCreateBucket 为 true 时会自动创建。
func NewArchiveStore(cfg config.MinIOConfig) (*ArchiveStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), bucketCheckTimeout)
	defer cancel()
	if err := ensureBucket(ctx, client, cfg); err != nil {
		return nil, err
	}

	return &ArchiveStore{client: client, bucket: cfg.Bucket}, nil
}

func ensureBucket(ctx context.Context, client *minio.Client, cfg config.MinIOConfig) error {
	ok, err := client.BucketExists(ctx, cfg.Bucket)
	switch {
	case err != nil:
		return fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	case ok:
		return nil
	case !cfg.AutoCreateBucket:
		return fmt.Errorf("bucket %q not found and auto create is off", cfg.Bucket)
	}
	if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
		return fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
	}
	return nil
}

// Put writes one archive object.
func (s *ArchiveStore) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("put archive %q: %w", key, err)
	}
	return nil
}

// RemovePrefix deletes every object under prefix with batched removals and
// returns how many were removed. Objects already gone count as removed.
func (s *ArchiveStore) RemovePrefix(ctx context.Context, prefix string) (int, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return 0, errors.New("remove archives: empty prefix")
	}

	var listed atomic.Int64
	listErr := make(chan error, 1)
	objects := make(chan minio.ObjectInfo)
	go func() {
		defer close(objects)
		for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
			if obj.Err != nil {
				listErr <- obj.Err
				return
			}
			listed.Add(1)
			select {
			case objects <- obj:
			case <-ctx.Done():
				return
			}
		}
	}()

	var errs []error
	for rerr := range s.client.RemoveObjects(ctx, s.bucket, objects, minio.RemoveObjectsOptions{}) {
		if notFound(rerr.Err) {
			continue
		}
		errs = append(errs, fmt.Errorf("%s: %w", rerr.ObjectName, rerr.Err))
	}

	select {
	case err := <-listErr:
		errs = append(errs, fmt.Errorf("list %q: %w", prefix, err))
	default:
	}

	removed := int(listed.Load()) - len(errs)
	if removed < 0 {
		removed = 0
	}
	if len(errs) > 0 {
		return removed, fmt.Errorf("remove archives under %q: %w", prefix, errors.Join(errs...))
	}
	return removed, nil
}

// notFound reports whether err is the S3 "object does not exist" response.
func notFound(err error) bool {
	var resp minio.ErrorResponse
	if !errors.As(err, &resp) {
		return false
	}
	return resp.Code == "NoSuchKey" || resp.Code == "NotFound"
}
