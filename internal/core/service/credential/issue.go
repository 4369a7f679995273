package credential

import (
	"context"
	"fmt"
	"mask-drawing/internal/core/domain"
	"time"

	"github.com/google/uuid"
)

// Issue generates a fresh storage key for the role and signs a single-object upload policy for it
func (c *credentialService) Issue(ctx context.Context, role domain.AssetRole) (*domain.UploadCredential, error) {
	prefix, objectName, err := c.layout(role)
	if err != nil {
		return nil, err
	}

	// uuid v4 keeps concurrent issuances from colliding
	storageKey := fmt.Sprintf("%s/%s/%s", prefix, uuid.New().String(), objectName)
	expiresAt := time.Now().Add(c.uploadCfg.CredentialTTL)

	endpointURL, fields, err := c.storage.GeneratePresignedPost(ctx, storageKey, c.uploadCfg.MaxSizeBytes, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIssuerUnavailable, err)
	}

	if fields["key"] != storageKey {
		return nil, fmt.Errorf("%w: signed policy does not carry key %s", domain.ErrIssuerUnavailable, storageKey)
	}

	return &domain.UploadCredential{
		EndpointURL: endpointURL,
		Fields:      domain.FormFieldsFromMap(fields),
		Key:         storageKey,
		ExpiresAt:   expiresAt,
		Constraints: domain.CredentialConstraints{
			MaxBytes:         c.uploadCfg.MaxSizeBytes,
			AllowedKeyPrefix: prefix + "/",
		},
	}, nil
}
