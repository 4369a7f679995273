package credential

import (
	"fmt"
	"mask-drawing/internal/config"
	"mask-drawing/internal/core/domain"
	"mask-drawing/internal/core/port"
	"strings"
)

type credentialService struct {
	storage   port.ObjectStorage
	uploadCfg config.UploadConfig
}

// NewCredentialService creates a new credential service
func NewCredentialService(storage port.ObjectStorage, cfg config.UploadConfig) port.CredentialService {
	return &credentialService{storage: storage, uploadCfg: cfg}
}

// RoleForKey resolves the asset role a storage key was issued for
func (c *credentialService) RoleForKey(key string) (domain.AssetRole, error) {
	for _, role := range []domain.AssetRole{domain.AssetRoleOriginal, domain.AssetRoleMask} {
		prefix, _, err := c.layout(role)
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(key, prefix+"/") {
			return role, nil
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrUnknownObject, key)
}

// layout returns the key prefix and object name used for a role
func (c *credentialService) layout(role domain.AssetRole) (string, string, error) {
	switch role {
	case domain.AssetRoleOriginal:
		return strings.TrimRight(c.uploadCfg.OriginalPrefix, "/"), c.uploadCfg.OriginalObjectName, nil
	case domain.AssetRoleMask:
		return strings.TrimRight(c.uploadCfg.MaskPrefix, "/"), c.uploadCfg.MaskObjectName, nil
	default:
		return "", "", fmt.Errorf("%w: unknown asset role %q", domain.ErrInvalidInputData, role)
	}
}
