package port

import (
	"context"
	"io"
	"mask-drawing/internal/core/domain"
)

// Uploader stores a binary file through a credential endpoint and returns where it lives
type Uploader interface {
	Upload(ctx context.Context, role domain.AssetRole, filename string, file io.Reader, credentialEndpoint string) (*domain.UploadResult, error)
}

// KeyRecorder keeps an auxiliary trace of the last storage key per role
type KeyRecorder interface {
	Record(ctx context.Context, role domain.AssetRole, key string) error
}

// TraceRepository is an interface to interact with persisted key traces
type TraceRepository interface {
	KeyRecorder
	FindByRole(ctx context.Context, role domain.AssetRole) (*domain.TraceEntry, error)
	List(ctx context.Context) ([]domain.TraceEntry, error)
}
