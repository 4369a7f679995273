package minio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mask-drawing/internal/config"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Adapter is an adapter for minio
type Adapter struct {
	client *minio.Client
	config config.MinioConfig
	logger *slog.Logger
}

// NewAdapter returns Adapter, creating the bucket when it does not exist
func NewAdapter(ctx context.Context, cfg config.MinioConfig, logger *slog.Logger) (*Adapter, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("bucket created", slog.String("bucket", cfg.BucketName))
	}

	// public URLs are built client side, objects must be anonymously readable
	if cfg.PublicRead {
		if err := client.SetBucketPolicy(ctx, cfg.BucketName, publicReadPolicy(cfg.BucketName)); err != nil {
			return nil, fmt.Errorf("failed to set bucket policy: %w", err)
		}
	}

	return &Adapter{client: client, config: cfg, logger: logger}, nil
}

// GeneratePresignedPost signs a POST policy allowing exactly one object at fileKey,
// no larger than maxBytes, until expiresAt
func (a *Adapter) GeneratePresignedPost(ctx context.Context, fileKey string, maxBytes int64, expiresAt time.Time) (string, map[string]string, error) {
	policy := minio.NewPostPolicy()
	if err := policy.SetBucket(a.config.BucketName); err != nil {
		return "", nil, fmt.Errorf("failed to set policy bucket: %w", err)
	}
	if err := policy.SetKey(fileKey); err != nil {
		return "", nil, fmt.Errorf("failed to set policy key: %w", err)
	}
	if err := policy.SetExpires(expiresAt.UTC()); err != nil {
		return "", nil, fmt.Errorf("failed to set policy expiry: %w", err)
	}
	if err := policy.SetContentLengthRange(0, maxBytes); err != nil {
		return "", nil, fmt.Errorf("failed to set policy size range: %w", err)
	}

	presignedURL, formData, err := a.client.PresignedPostPolicy(ctx, policy)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate presigned post: %w", err)
	}

	return presignedURL.String(), formData, nil
}

// GetObjectInfo retrieves obj info
func (a *Adapter) GetObjectInfo(ctx context.Context, fileKey string) (*minio.ObjectInfo, error) {
	info, err := a.client.StatObject(ctx, a.config.BucketName, fileKey, minio.StatObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object info: %w", err)
	}
	return &info, nil
}

// GetHeaderBytes reads at most the first n bytes of an object
func (a *Adapter) GetHeaderBytes(ctx context.Context, fileKey string, n int64) ([]byte, error) {
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(0, n-1); err != nil {
		return nil, fmt.Errorf("failed to set range: %w", err)
	}

	object, err := a.client.GetObject(ctx, a.config.BucketName, fileKey, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get partial object: %w", err)
	}
	defer object.Close()

	buffer, err := io.ReadAll(io.LimitReader(object, n))
	if err != nil {
		return nil, fmt.Errorf("failed to read header bytes: %w", err)
	}
	return buffer, nil
}

// DeleteObject deletes an object from storage
func (a *Adapter) DeleteObject(ctx context.Context, fileKey string) error {
	err := a.client.RemoveObject(ctx, a.config.BucketName, fileKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	a.logger.Info("object deleted",
		slog.String("fileKey", fileKey),
		slog.String("bucket", a.config.BucketName))

	return nil
}

func publicReadPolicy(bucket string) string {
	policy := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{
			{
				"Effect":    "Allow",
				"Principal": map[string]any{"AWS": []string{"*"}},
				"Action":    []string{"s3:GetObject"},
				"Resource":  []string{fmt.Sprintf("arn:aws:s3:::%s/*", bucket)},
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
