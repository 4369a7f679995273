package pipeline

import (
	"fmt"
	"io"
	"mask-drawing/internal/core/domain"
	"os"
	"path/filepath"
)

// WriteMask writes the cached mask PNG to w
func (s *Session) WriteMask(w io.Writer) error {
	img := s.cachedMask()
	if img == nil {
		return domain.ErrNoMask
	}
	if _, err := w.Write(img.PNG); err != nil {
		return fmt.Errorf("failed to write mask: %w", err)
	}
	return nil
}

// ExportMask writes the cached mask to dir/mask.png and returns the path
func (s *Session) ExportMask(dir string) (string, error) {
	img := s.cachedMask()
	if img == nil {
		return "", domain.ErrNoMask
	}

	path := filepath.Join(dir, MaskFilename)
	if err := os.WriteFile(path, img.PNG, 0o644); err != nil {
		return "", fmt.Errorf("failed to export mask: %w", err)
	}
	return path, nil
}

func (s *Session) cachedMask() *domain.MaskImage {
	surface := s.Surface()
	if surface == nil {
		return nil
	}
	return surface.Mask()
}
