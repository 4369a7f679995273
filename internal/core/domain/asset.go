package domain

import "fmt"

// AssetRole distinguishes the original image from assets derived from it
type AssetRole string

const (
	AssetRoleOriginal AssetRole = "original"
	AssetRoleMask     AssetRole = "mask"
)

// ParseAssetRole validates a role name, an empty name means original
func ParseAssetRole(s string) (AssetRole, error) {
	switch AssetRole(s) {
	case "", AssetRoleOriginal:
		return AssetRoleOriginal, nil
	case AssetRoleMask:
		return AssetRoleMask, nil
	default:
		return "", fmt.Errorf("%w: unknown asset role %q", ErrInvalidInputData, s)
	}
}

// ImageAsset is an image selected by the user or derived from one.
// It is never mutated, a re-upload produces a new asset.
type ImageAsset struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

// MaskImage is a rasterized snapshot of a drawing, sized like its source image
type MaskImage struct {
	PNG    []byte
	Width  int
	Height int
}

// UploadResult is what a successful upload returns
type UploadResult struct {
	Role AssetRole
	Key  string
	URL  string
}
