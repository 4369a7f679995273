package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mask-drawing/internal/config"
	"mask-drawing/internal/core/domain"
	"mask-drawing/internal/core/port"
	"mask-drawing/internal/core/service/drawing"
	"mask-drawing/internal/core/service/mask"
	"net/url"
	"sync"
	"sync/atomic"
)

// MaskFilename is the name under which the mask is uploaded and exported
const MaskFilename = "mask.png"

// State is the progress of a Session through the upload pipeline
type State string

const (
	StateNoAsset          State = "no_asset"
	StateOriginalUploaded State = "original_uploaded"
	StateMaskGenerated    State = "mask_generated"
)

// Session drives one image through upload, drawing and mask generation.
// Only one upload or generation runs at a time, others get domain.ErrBusy.
type Session struct {
	uploader           port.Uploader
	credentialEndpoint string
	brush              config.BrushConfig
	logger             *slog.Logger

	busy atomic.Bool

	mu       sync.RWMutex
	source   *mask.Source
	surface  *drawing.Surface
	original *domain.UploadResult
	mask     *domain.UploadResult
	// surface generation the mask result was composed at
	maskGen uint64
}

func NewSession(uploader port.Uploader, credentialEndpoint string, brush config.BrushConfig, logger *slog.Logger) *Session {
	return &Session{
		uploader:           uploader,
		credentialEndpoint: credentialEndpoint,
		brush:              brush,
		logger:             logger,
	}
}

// State derives the pipeline state from the stored results
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.original == nil:
		return StateNoAsset
	case s.currentMask() == nil:
		return StateOriginalUploaded
	default:
		return StateMaskGenerated
	}
}

// Busy reports whether an upload or generation is in flight
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Surface returns the drawing surface of the current original, nil before one is uploaded
func (s *Session) Surface() *drawing.Surface {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.surface
}

func (s *Session) Original() *domain.UploadResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.original
}

// MaskResult returns the uploaded mask of the current drawing, nil once the
// drawing it was composed from has been cleared
func (s *Session) MaskResult() *domain.UploadResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentMask()
}

// currentMask must be called with s.mu held
func (s *Session) currentMask() *domain.UploadResult {
	if s.mask == nil || s.surface == nil || s.surface.Generation() != s.maskGen {
		return nil
	}
	return s.mask
}

// UploadOriginal uploads data as the original image while decoding it, then
// replaces the current surface with one sized to the decoded image. On any
// failure the previous original stays in place.
func (s *Session) UploadOriginal(ctx context.Context, filename string, data []byte) (*domain.UploadResult, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, domain.ErrBusy
	}
	defer s.busy.Store(false)

	source := mask.LoadSource(data)

	endpoint, err := s.endpointFor(domain.AssetRoleOriginal)
	if err != nil {
		return nil, err
	}

	result, err := s.uploader.Upload(ctx, domain.AssetRoleOriginal, filename, bytes.NewReader(data), endpoint)
	if err != nil {
		s.logger.Error("original upload failed", "filename", filename, "error", err)
		return nil, err
	}

	asset, err := source.Wait(ctx)
	if err != nil {
		s.logger.Error("original uploaded but not decodable", "key", result.Key, "error", err)
		return nil, err
	}

	surface, err := drawing.NewSurface(asset.Width, asset.Height, s.brush)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.source = source
	s.surface = surface
	s.original = result
	s.mask = nil
	s.mu.Unlock()

	s.logger.Info("original ready", "key", result.Key, "width", asset.Width, "height", asset.Height)
	return result, nil
}

// GenerateMask composes the current strokes at the original's dimensions,
// caches the mask on the surface and uploads it. A failed upload keeps both
// the original result and the cached mask. A Clear landing while the mask is
// composed or uploaded discards it and yields domain.ErrDrawingCleared.
func (s *Session) GenerateMask(ctx context.Context) (*domain.UploadResult, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, domain.ErrBusy
	}
	defer s.busy.Store(false)

	s.mu.RLock()
	source, surface, original := s.source, s.surface, s.original
	s.mu.RUnlock()

	if original == nil || surface == nil {
		return nil, domain.ErrNoOriginal
	}

	layer, gen := surface.SnapshotAt()
	img, err := mask.ComposeFor(ctx, source, layer)
	if err != nil {
		return nil, err
	}
	if !surface.SetMaskFor(gen, img) {
		return nil, domain.ErrDrawingCleared
	}

	endpoint, err := s.endpointFor(domain.AssetRoleMask)
	if err != nil {
		return nil, err
	}

	result, err := s.uploader.Upload(ctx, domain.AssetRoleMask, MaskFilename, bytes.NewReader(img.PNG), endpoint)
	if err != nil {
		s.logger.Error("mask upload failed", "original", original.Key, "error", err)
		return nil, err
	}

	s.mu.Lock()
	current := s.original == original && surface.Generation() == gen
	if current {
		s.mask = result
		s.maskGen = gen
	}
	s.mu.Unlock()

	if !current {
		s.logger.Warn("mask uploaded for a discarded drawing", "key", result.Key, "original", original.Key)
		return nil, domain.ErrDrawingCleared
	}

	s.logger.Info("mask uploaded", "key", result.Key, "original", original.Key)
	return result, nil
}

// Clear drops strokes, the cached mask and the mask result. The original stays.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.surface != nil {
		s.surface.Clear()
	}
	s.mask = nil
}

func (s *Session) endpointFor(role domain.AssetRole) (string, error) {
	u, err := url.Parse(s.credentialEndpoint)
	if err != nil {
		return "", fmt.Errorf("%w: credential endpoint: %w", domain.ErrCredentialRequestFailed, err)
	}
	q := u.Query()
	q.Set("role", string(role))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
