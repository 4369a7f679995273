package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mask-drawing/internal/adapters/uploader"
	"mask-drawing/internal/config"
	"mask-drawing/internal/core/domain"
	"mask-drawing/internal/core/service/pipeline"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const endpoint = "http://backend.test/presignedUrl"

var brush = config.BrushConfig{
	MinRadius:     5,
	MaxRadius:     50,
	DefaultRadius: 10,
	Step:          5,
	DisplayWidth:  800,
	DisplayHeight: 600,
}

func encodeImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newSession(up *uploader.MockUploader) *pipeline.Session {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return pipeline.NewSession(up, endpoint, brush, logger)
}

func originalResult() *domain.UploadResult {
	return &domain.UploadResult{Role: domain.AssetRoleOriginal, Key: "fiver/original/1/image.jpg", URL: "https://cdn/fiver/original/1/image.jpg"}
}

func maskResult() *domain.UploadResult {
	return &domain.UploadResult{Role: domain.AssetRoleMask, Key: "fiver/mask/2/mask.png", URL: "https://cdn/fiver/mask/2/mask.png"}
}

func TestSession_RoundTrip(t *testing.T) {
	//Arrange
	ctx := context.Background()
	up := uploader.NewMockUploader()
	var uploadedMask []byte
	up.On("Upload", mock.Anything, domain.AssetRoleOriginal, "photo.png", mock.Anything, endpoint+"?role=original").
		Return(originalResult(), nil).Once()
	up.On("Upload", mock.Anything, domain.AssetRoleMask, pipeline.MaskFilename, mock.Anything, endpoint+"?role=mask").
		Run(func(args mock.Arguments) {
			data, err := io.ReadAll(args.Get(3).(io.Reader))
			require.NoError(t, err)
			uploadedMask = data
		}).
		Return(maskResult(), nil).Once()
	session := newSession(up)
	assert.Equal(t, pipeline.StateNoAsset, session.State())

	//Act
	original, err := session.UploadOriginal(ctx, "photo.png", encodeImage(t, 200, 150))
	require.NoError(t, err)
	assert.Equal(t, pipeline.StateOriginalUploaded, session.State())

	surface := session.Surface()
	require.NotNil(t, surface)
	w, h := surface.Size()
	assert.Equal(t, 200, w)
	assert.Equal(t, 150, h)

	surface.BeginStrokeDisplay(domain.Point{X: 400, Y: 300})
	surface.ExtendStrokeDisplay(domain.Point{X: 600, Y: 300})
	surface.EndStroke()

	result, err := session.GenerateMask(ctx)

	//Assert
	require.NoError(t, err)
	assert.Equal(t, originalResult(), original)
	assert.Equal(t, maskResult(), result)
	assert.Equal(t, pipeline.StateMaskGenerated, session.State())
	assert.Equal(t, original, session.Original())
	assert.Equal(t, result, session.MaskResult())

	decoded, err := png.Decode(bytes.NewReader(uploadedMask))
	require.NoError(t, err)
	assert.Equal(t, 200, decoded.Bounds().Dx())
	assert.Equal(t, 150, decoded.Bounds().Dy())

	white, black := 0, 0
	for y := 0; y < 150; y++ {
		for x := 0; x < 200; x++ {
			r, g, b, a := decoded.At(x, y).RGBA()
			require.Equal(t, uint32(0xffff), a)
			require.True(t, r == g && g == b && (r == 0 || r == 0xffff))
			if r == 0 {
				black++
			} else {
				white++
			}
		}
	}
	assert.Positive(t, white)
	assert.Positive(t, black)
	r, _, _, _ := decoded.At(125, 75).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	r, _, _, _ = decoded.At(10, 10).RGBA()
	assert.Equal(t, uint32(0), r)

	var buf bytes.Buffer
	require.NoError(t, session.WriteMask(&buf))
	assert.Equal(t, uploadedMask, buf.Bytes())
	up.AssertExpectations(t)
}

func TestSession_GenerateMaskWithoutOriginal(t *testing.T) {
	up := uploader.NewMockUploader()
	session := newSession(up)

	_, err := session.GenerateMask(context.Background())

	assert.ErrorIs(t, err, domain.ErrNoOriginal)
	up.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_EmptyLayerMask(t *testing.T) {
	ctx := context.Background()
	up := uploader.NewMockUploader()
	up.On("Upload", mock.Anything, domain.AssetRoleOriginal, mock.Anything, mock.Anything, mock.Anything).Return(originalResult(), nil)
	up.On("Upload", mock.Anything, domain.AssetRoleMask, mock.Anything, mock.Anything, mock.Anything).Return(maskResult(), nil)
	session := newSession(up)
	_, err := session.UploadOriginal(ctx, "photo.png", encodeImage(t, 40, 30))
	require.NoError(t, err)

	_, err = session.GenerateMask(ctx)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, session.WriteMask(&buf))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			r, g, b, _ := decoded.At(x, y).RGBA()
			require.Zero(t, r+g+b)
		}
	}
}

func TestSession_UploadOriginalFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("upload error keeps previous original", func(t *testing.T) {
		up := uploader.NewMockUploader()
		up.On("Upload", mock.Anything, domain.AssetRoleOriginal, "first.png", mock.Anything, mock.Anything).Return(originalResult(), nil).Once()
		up.On("Upload", mock.Anything, domain.AssetRoleOriginal, "second.png", mock.Anything, mock.Anything).
			Return(nil, domain.ErrStorageUploadFailed).Once()
		session := newSession(up)
		_, err := session.UploadOriginal(ctx, "first.png", encodeImage(t, 20, 10))
		require.NoError(t, err)
		before := session.Surface()

		_, err = session.UploadOriginal(ctx, "second.png", encodeImage(t, 30, 30))

		assert.ErrorIs(t, err, domain.ErrStorageUploadFailed)
		assert.Equal(t, originalResult(), session.Original())
		assert.Same(t, before, session.Surface())
		assert.False(t, session.Busy())
	})

	t.Run("undecodable image", func(t *testing.T) {
		up := uploader.NewMockUploader()
		up.On("Upload", mock.Anything, domain.AssetRoleOriginal, mock.Anything, mock.Anything, mock.Anything).Return(originalResult(), nil)
		session := newSession(up)

		_, err := session.UploadOriginal(ctx, "notes.txt", []byte("plain text"))

		assert.ErrorIs(t, err, domain.ErrInvalidInputData)
		assert.Equal(t, pipeline.StateNoAsset, session.State())
		assert.Nil(t, session.Surface())
	})
}

func TestSession_MaskUploadFailureKeepsOriginal(t *testing.T) {
	ctx := context.Background()
	up := uploader.NewMockUploader()
	up.On("Upload", mock.Anything, domain.AssetRoleOriginal, mock.Anything, mock.Anything, mock.Anything).Return(originalResult(), nil)
	up.On("Upload", mock.Anything, domain.AssetRoleMask, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrCredentialRequestFailed)
	session := newSession(up)
	_, err := session.UploadOriginal(ctx, "photo.png", encodeImage(t, 20, 20))
	require.NoError(t, err)

	_, err = session.GenerateMask(ctx)

	assert.ErrorIs(t, err, domain.ErrCredentialRequestFailed)
	assert.Equal(t, pipeline.StateOriginalUploaded, session.State())
	assert.Equal(t, originalResult(), session.Original())
	assert.Nil(t, session.MaskResult())
	assert.NotNil(t, session.Surface().Mask())
}

func TestSession_Busy(t *testing.T) {
	//Arrange
	ctx := context.Background()
	up := uploader.NewMockUploader()
	started := make(chan struct{})
	release := make(chan struct{})
	up.On("Upload", mock.Anything, domain.AssetRoleOriginal, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(originalResult(), nil).Once()
	session := newSession(up)
	data := encodeImage(t, 10, 10)

	done := make(chan error, 1)
	go func() {
		_, err := session.UploadOriginal(ctx, "photo.png", data)
		done <- err
	}()
	<-started

	//Act
	_, errUpload := session.UploadOriginal(ctx, "photo.png", data)
	_, errGenerate := session.GenerateMask(ctx)
	busy := session.Busy()
	close(release)

	//Assert
	assert.True(t, busy)
	assert.ErrorIs(t, errUpload, domain.ErrBusy)
	assert.ErrorIs(t, errGenerate, domain.ErrBusy)
	require.NoError(t, <-done)
	assert.False(t, session.Busy())
	up.AssertNumberOfCalls(t, "Upload", 1)
}

func TestSession_Clear(t *testing.T) {
	ctx := context.Background()
	up := uploader.NewMockUploader()
	up.On("Upload", mock.Anything, domain.AssetRoleOriginal, mock.Anything, mock.Anything, mock.Anything).Return(originalResult(), nil)
	up.On("Upload", mock.Anything, domain.AssetRoleMask, mock.Anything, mock.Anything, mock.Anything).Return(maskResult(), nil)
	session := newSession(up)
	_, err := session.UploadOriginal(ctx, "photo.png", encodeImage(t, 20, 20))
	require.NoError(t, err)
	session.Surface().BeginStroke(domain.Point{X: 5, Y: 5})
	session.Surface().EndStroke()
	_, err = session.GenerateMask(ctx)
	require.NoError(t, err)

	session.Clear()

	assert.Equal(t, pipeline.StateOriginalUploaded, session.State())
	assert.True(t, session.Surface().Snapshot().IsEmpty())
	assert.ErrorIs(t, session.WriteMask(io.Discard), domain.ErrNoMask)
	assert.Equal(t, originalResult(), session.Original())
}

func TestSession_ExportMask(t *testing.T) {
	ctx := context.Background()

	t.Run("no mask yet", func(t *testing.T) {
		session := newSession(uploader.NewMockUploader())

		_, err := session.ExportMask(t.TempDir())

		assert.ErrorIs(t, err, domain.ErrNoMask)
	})

	t.Run("writes mask.png", func(t *testing.T) {
		up := uploader.NewMockUploader()
		up.On("Upload", mock.Anything, domain.AssetRoleOriginal, mock.Anything, mock.Anything, mock.Anything).Return(originalResult(), nil)
		up.On("Upload", mock.Anything, domain.AssetRoleMask, mock.Anything, mock.Anything, mock.Anything).Return(maskResult(), nil)
		session := newSession(up)
		_, err := session.UploadOriginal(ctx, "photo.png", encodeImage(t, 64, 48))
		require.NoError(t, err)
		_, err = session.GenerateMask(ctx)
		require.NoError(t, err)
		dir := t.TempDir()

		path, err := session.ExportMask(dir)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "mask.png"), path)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		cfg, err := png.DecodeConfig(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 64, cfg.Width)
		assert.Equal(t, 48, cfg.Height)
	})

	t.Run("unwritable dir", func(t *testing.T) {
		up := uploader.NewMockUploader()
		up.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(originalResult(), nil)
		session := newSession(up)
		_, err := session.UploadOriginal(ctx, "photo.png", encodeImage(t, 8, 8))
		require.NoError(t, err)
		_, err = session.GenerateMask(ctx)
		require.NoError(t, err)

		_, err = session.ExportMask(filepath.Join(t.TempDir(), "missing", "dir"))

		assert.Error(t, err)
		assert.False(t, errors.Is(err, domain.ErrNoMask))
	})
}

func TestSession_ClearDuringMaskUpload(t *testing.T) {
	//Arrange
	ctx := context.Background()
	up := uploader.NewMockUploader()
	up.On("Upload", mock.Anything, domain.AssetRoleOriginal, mock.Anything, mock.Anything, mock.Anything).Return(originalResult(), nil)
	session := newSession(up)
	up.On("Upload", mock.Anything, domain.AssetRoleMask, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { session.Clear() }).
		Return(maskResult(), nil)
	_, err := session.UploadOriginal(ctx, "photo.png", encodeImage(t, 20, 20))
	require.NoError(t, err)
	session.Surface().BeginStroke(domain.Point{X: 5, Y: 5})
	session.Surface().EndStroke()

	//Act
	result, err := session.GenerateMask(ctx)

	//Assert
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrDrawingCleared)
	assert.Equal(t, pipeline.StateOriginalUploaded, session.State())
	assert.Nil(t, session.MaskResult())
	assert.True(t, session.Surface().Snapshot().IsEmpty())
	assert.ErrorIs(t, session.WriteMask(io.Discard), domain.ErrNoMask)
	assert.False(t, session.Busy())
}

func TestSession_SurfaceClearDemotesMask(t *testing.T) {
	ctx := context.Background()
	up := uploader.NewMockUploader()
	up.On("Upload", mock.Anything, domain.AssetRoleOriginal, mock.Anything, mock.Anything, mock.Anything).Return(originalResult(), nil)
	up.On("Upload", mock.Anything, domain.AssetRoleMask, mock.Anything, mock.Anything, mock.Anything).Return(maskResult(), nil)
	session := newSession(up)
	_, err := session.UploadOriginal(ctx, "photo.png", encodeImage(t, 20, 20))
	require.NoError(t, err)
	_, err = session.GenerateMask(ctx)
	require.NoError(t, err)
	require.Equal(t, pipeline.StateMaskGenerated, session.State())

	session.Surface().Clear()

	assert.Equal(t, pipeline.StateOriginalUploaded, session.State())
	assert.Nil(t, session.MaskResult())
}
