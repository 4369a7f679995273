package storageevent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mask-drawing/internal/core/domain"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

const objectCreatedPrefix = "s3:ObjectCreated:"

// HandleMessage verifies every created object in a MinIO notification and
// records its key. Objects outside the upload prefixes are ignored. An object
// whose content does not match its role is deleted.
func (s *storageEventService) HandleMessage(ctx context.Context, data []byte) error {
	var event domain.MinIOEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("%w: could not unmarshal bucket event: %w", domain.ErrInvalidInputData, err)
	}
	if len(event.Records) == 0 {
		return fmt.Errorf("%w: no records in bucket event", domain.ErrInvalidInputData)
	}

	for _, record := range event.Records {
		if !strings.HasPrefix(record.EventName, objectCreatedPrefix) {
			s.logger.Debug("skipping event", "eventtype", record.EventName)
			continue
		}

		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			return fmt.Errorf("%w: bad object key %q: %w", domain.ErrInvalidInputData, record.S3.Object.Key, err)
		}

		if err := s.verify(ctx, key); err != nil {
			if errors.Is(err, domain.ErrUnknownObject) {
				s.logger.Info("ignoring object outside upload prefixes", "key", key)
				continue
			}
			return err
		}
	}
	return nil
}

func (s *storageEventService) verify(ctx context.Context, key string) error {
	role, err := s.credentials.RoleForKey(key)
	if err != nil {
		return err
	}

	info, err := s.storage.GetObjectInfo(ctx, key)
	if err != nil {
		return err
	}

	header, err := s.storage.GetHeaderBytes(ctx, key, sniffBytes)
	if err != nil {
		return err
	}

	detected := http.DetectContentType(header)
	if !slices.Contains(allowedTypes[role], detected) {
		s.logger.Warn("content type mismatch, deleting object", "key", key, "role", role, "detected", detected)
		if delErr := s.storage.DeleteObject(ctx, key); delErr != nil {
			// not permanent until the object is gone
			return fmt.Errorf("failed to delete %s: %w", key, delErr)
		}
		return fmt.Errorf("%w: %s stored as %s", domain.ErrContentTypeMismatch, key, detected)
	}

	if err := s.traces.Record(ctx, role, key); err != nil {
		return fmt.Errorf("failed to record %s: %w", key, err)
	}

	s.logger.Info("upload verified", "key", key, "role", role, "size", info.Size, "contenttype", detected)
	return nil
}
