package storageevent_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mask-drawing/internal/adapters/repository"
	"mask-drawing/internal/adapters/storage"
	"mask-drawing/internal/core/domain"
	"mask-drawing/internal/core/service/credential"
	"mask-drawing/internal/core/service/storageevent"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
	textHeader = []byte("hello, this is not an image")
)

const (
	maskKey     = "fiver/mask/7b0c/mask.png"
	originalKey = "fiver/original/7b0c/image.jpg"
)

func event(name, escapedKey string) []byte {
	return []byte(fmt.Sprintf(`{"EventName":%q,"Key":"masks/%s","Records":[{"eventName":%q,"s3":{"bucket":{"name":"masks"},"object":{"key":%q,"size":42}}}]}`,
		name, escapedKey, name, escapedKey))
}

type fixture struct {
	storage     *storage.MockStorage
	credentials *credential.MockCredentialService
	traces      *repository.MockTraceRepository
}

func newFixture() (*fixture, func([]byte) error) {
	f := &fixture{
		storage:     storage.NewMockStorage(),
		credentials: credential.NewMockCredentialService(),
		traces:      repository.NewMockTraceRepository(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := storageevent.NewStorageEventService(f.storage, f.credentials, f.traces, logger)
	return f, func(data []byte) error { return svc.HandleMessage(context.Background(), data) }
}

func TestHandleMessage(t *testing.T) {
	t.Run("mask verified and recorded", func(t *testing.T) {
		//Arrange
		f, handle := newFixture()
		f.credentials.On("RoleForKey", maskKey).Return(domain.AssetRoleMask, nil)
		f.storage.On("GetObjectInfo", mock.Anything, maskKey).Return(&minio.ObjectInfo{Key: maskKey, Size: 42}, nil)
		f.storage.On("GetHeaderBytes", mock.Anything, maskKey, int64(512)).Return(pngHeader, nil)
		f.traces.On("Record", mock.Anything, domain.AssetRoleMask, maskKey).Return(nil)

		//Act
		err := handle(event("s3:ObjectCreated:Post", maskKey))

		//Assert
		require.NoError(t, err)
		f.traces.AssertExpectations(t)
		f.storage.AssertNotCalled(t, "DeleteObject", mock.Anything, mock.Anything)
	})

	t.Run("escaped key is decoded", func(t *testing.T) {
		f, handle := newFixture()
		key := "fiver/original/a b/image.jpg"
		f.credentials.On("RoleForKey", key).Return(domain.AssetRoleOriginal, nil)
		f.storage.On("GetObjectInfo", mock.Anything, key).Return(&minio.ObjectInfo{Key: key}, nil)
		f.storage.On("GetHeaderBytes", mock.Anything, key, int64(512)).Return(jpegHeader, nil)
		f.traces.On("Record", mock.Anything, domain.AssetRoleOriginal, key).Return(nil)

		err := handle(event("s3:ObjectCreated:Put", "fiver%2Foriginal%2Fa+b%2Fimage.jpg"))

		require.NoError(t, err)
		f.traces.AssertExpectations(t)
	})

	t.Run("png original accepted", func(t *testing.T) {
		f, handle := newFixture()
		f.credentials.On("RoleForKey", originalKey).Return(domain.AssetRoleOriginal, nil)
		f.storage.On("GetObjectInfo", mock.Anything, originalKey).Return(&minio.ObjectInfo{Key: originalKey}, nil)
		f.storage.On("GetHeaderBytes", mock.Anything, originalKey, int64(512)).Return(pngHeader, nil)
		f.traces.On("Record", mock.Anything, domain.AssetRoleOriginal, originalKey).Return(nil)

		require.NoError(t, handle(event("s3:ObjectCreated:Post", originalKey)))
	})

	t.Run("jpeg mask deleted", func(t *testing.T) {
		f, handle := newFixture()
		f.credentials.On("RoleForKey", maskKey).Return(domain.AssetRoleMask, nil)
		f.storage.On("GetObjectInfo", mock.Anything, maskKey).Return(&minio.ObjectInfo{Key: maskKey}, nil)
		f.storage.On("GetHeaderBytes", mock.Anything, maskKey, int64(512)).Return(jpegHeader, nil)
		f.storage.On("DeleteObject", mock.Anything, maskKey).Return(nil)

		err := handle(event("s3:ObjectCreated:Post", maskKey))

		assert.ErrorIs(t, err, domain.ErrContentTypeMismatch)
		f.storage.AssertCalled(t, "DeleteObject", mock.Anything, maskKey)
		f.traces.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed delete is retryable", func(t *testing.T) {
		f, handle := newFixture()
		f.credentials.On("RoleForKey", originalKey).Return(domain.AssetRoleOriginal, nil)
		f.storage.On("GetObjectInfo", mock.Anything, originalKey).Return(&minio.ObjectInfo{Key: originalKey}, nil)
		f.storage.On("GetHeaderBytes", mock.Anything, originalKey, int64(512)).Return(textHeader, nil)
		f.storage.On("DeleteObject", mock.Anything, originalKey).Return(errors.New("connection reset"))

		err := handle(event("s3:ObjectCreated:Post", originalKey))

		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrContentTypeMismatch)
	})

	t.Run("object outside prefixes ignored", func(t *testing.T) {
		f, handle := newFixture()
		f.credentials.On("RoleForKey", "other/file.bin").Return(domain.AssetRole(""), domain.ErrUnknownObject)

		err := handle(event("s3:ObjectCreated:Put", "other/file.bin"))

		require.NoError(t, err)
		f.storage.AssertNotCalled(t, "GetObjectInfo", mock.Anything, mock.Anything)
	})

	t.Run("non create events skipped", func(t *testing.T) {
		f, handle := newFixture()

		err := handle(event("s3:ObjectRemoved:Delete", maskKey))

		require.NoError(t, err)
		f.credentials.AssertNotCalled(t, "RoleForKey", mock.Anything)
	})

	t.Run("stat failure surfaces", func(t *testing.T) {
		f, handle := newFixture()
		f.credentials.On("RoleForKey", maskKey).Return(domain.AssetRoleMask, nil)
		f.storage.On("GetObjectInfo", mock.Anything, maskKey).Return((*minio.ObjectInfo)(nil), errors.New("timeout"))

		err := handle(event("s3:ObjectCreated:Post", maskKey))

		require.Error(t, err)
		f.traces.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("recorder failure surfaces", func(t *testing.T) {
		f, handle := newFixture()
		f.credentials.On("RoleForKey", maskKey).Return(domain.AssetRoleMask, nil)
		f.storage.On("GetObjectInfo", mock.Anything, maskKey).Return(&minio.ObjectInfo{Key: maskKey}, nil)
		f.storage.On("GetHeaderBytes", mock.Anything, maskKey, int64(512)).Return(pngHeader, nil)
		f.traces.On("Record", mock.Anything, domain.AssetRoleMask, maskKey).Return(errors.New("db down"))

		err := handle(event("s3:ObjectCreated:Post", maskKey))

		require.Error(t, err)
	})

	t.Run("malformed payloads", func(t *testing.T) {
		_, handle := newFixture()
		for name, payload := range map[string]string{
			"not json":   "fail",
			"no records": `{"EventName":"s3:ObjectCreated:Post","Records":[]}`,
			"bad escape": `{"Records":[{"eventName":"s3:ObjectCreated:Post","s3":{"object":{"key":"fiver%zz"}}}]}`,
		} {
			t.Run(name, func(t *testing.T) {
				assert.ErrorIs(t, handle([]byte(payload)), domain.ErrInvalidInputData)
			})
		}
	})
}
