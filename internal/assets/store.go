// Package assets abstracts the external asset store that holds uploaded
// post images. The interaction service only depends on the Store interface;
// the concrete backend is wired at startup.
package assets

import (
	"context"
	"path"
	"strings"
)

// Store is the external asset store collaborator.
type Store interface {
	// Upload persists raw image data and returns a stable URL for it.
	Upload(ctx context.Context, data []byte) (string, error)
	// Destroy removes the asset identified by assetID. Missing assets are
	// not an error.
	Destroy(ctx context.Context, assetID string) error
}

// AssetIDFromURL derives the asset id from a stable URL: the last path
// segment minus its extension.
func AssetIDFromURL(rawURL string) string {
	base := path.Base(rawURL)
	if base == "." || base == "/" {
		return ""
	}
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return base
}
