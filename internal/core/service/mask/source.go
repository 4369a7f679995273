package mask

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"mask-drawing/internal/core/domain"
)

// Source is an original image whose decoding happens in the background.
// Composition waits on it instead of racing the decoder.
type Source struct {
	done  chan struct{}
	asset *domain.ImageAsset
	err   error
}

// LoadSource starts decoding data (png or jpeg) and returns immediately
func LoadSource(data []byte) *Source {
	s := &Source{done: make(chan struct{})}
	buf := make([]byte, len(data))
	copy(buf, data)

	go func() {
		defer close(s.done)
		s.asset, s.err = decode(buf)
	}()
	return s
}

// Ready reports whether decoding has finished, successfully or not
func (s *Source) Ready() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Wait suspends until decoding completes or ctx is done
func (s *Source) Wait(ctx context.Context) (*domain.ImageAsset, error) {
	if !s.Ready() {
		select {
		case <-s.done:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", domain.ErrImageNotReady, ctx.Err())
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.asset, nil
}

func decode(data []byte) (*domain.ImageAsset, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidInputData)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read image header: %w", domain.ErrInvalidInputData, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("%w: decoded image is empty", domain.ErrImageNotReady)
	}
	// reject before the decoder allocates for the declared size
	if err := checkSize(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %w", domain.ErrInvalidInputData, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("%w: decoded image is empty", domain.ErrImageNotReady)
	}

	return &domain.ImageAsset{
		Data:     data,
		MimeType: "image/" + format,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}
