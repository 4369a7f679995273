package port

import (
	"context"
	"mask-drawing/internal/core/domain"
)

// CredentialService issues scoped upload credentials
type CredentialService interface {
	Issue(ctx context.Context, role domain.AssetRole) (*domain.UploadCredential, error)
	RoleForKey(key string) (domain.AssetRole, error)
}
