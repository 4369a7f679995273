package storageevent

import (
	"log/slog"
	"mask-drawing/internal/core/domain"
	"mask-drawing/internal/core/port"
)

// sniffBytes is how much of an object is read to detect its content type
const sniffBytes = 512

// allowedTypes lists the sniffed content types accepted per role
var allowedTypes = map[domain.AssetRole][]string{
	domain.AssetRoleOriginal: {"image/jpeg", "image/png"},
	domain.AssetRoleMask:     {"image/png"},
}

type storageEventService struct {
	storage     port.ObjectStorage
	credentials port.CredentialService
	traces      port.KeyRecorder
	logger      *slog.Logger
}

// NewStorageEventService creates the handler verifying objects reported by bucket notifications
func NewStorageEventService(storage port.ObjectStorage, credentials port.CredentialService, traces port.KeyRecorder, logger *slog.Logger) port.MessageService {
	return &storageEventService{
		storage:     storage,
		credentials: credentials,
		traces:      traces,
		logger:      logger,
	}
}
