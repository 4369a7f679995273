package port

import (
	"context"
	"time"

	"github.com/minio/minio-go/v7"
)

// ObjectStorage is an interface to define object storage interactions
type ObjectStorage interface {
	GeneratePresignedPost(ctx context.Context, fileKey string, maxBytes int64, expiresAt time.Time) (string, map[string]string, error)
	GetObjectInfo(ctx context.Context, fileKey string) (*minio.ObjectInfo, error)
	GetHeaderBytes(ctx context.Context, fileKey string, n int64) ([]byte, error)
	DeleteObject(ctx context.Context, fileKey string) error
}
