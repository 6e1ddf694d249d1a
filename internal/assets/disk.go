package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"ripple/internal/middleware"
	"ripple/internal/observability"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	thumbnailMaxSize = 256
	webpQuality      = 70
)

var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DiskStore keeps uploaded assets on the local filesystem and serves them
// under a stable base URL. Each upload also gets a WebP thumbnail variant
// alongside the original, named <id>_thumb.webp.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore creates a DiskStore rooted at dir, served under baseURL.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create asset dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: baseURL}, nil
}

// Dir returns the directory assets are stored in.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Upload writes the image to disk and returns its stable URL.
func (s *DiskStore) Upload(_ context.Context, data []byte) (string, error) {
	contentType := http.DetectContentType(data)
	ext, ok := extByContentType[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}

	id := uuid.NewString()
	name := id + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		observability.AssetStoreErrors.WithLabelValues("upload").Inc()
		return "", fmt.Errorf("failed to write asset: %w", err)
	}

	// Thumbnail generation is best-effort; the original is already durable.
	if err := s.writeThumbnail(id, data); err != nil {
		middleware.Logger.Warn("thumbnail generation failed",
			slog.String("asset_id", id),
			slog.String("error", err.Error()))
	}

	return s.baseURL + "/" + name, nil
}

// Destroy removes the asset and any variants sharing its id.
func (s *DiskStore) Destroy(_ context.Context, assetID string) error {
	if assetID == "" {
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(s.dir, assetID+"*"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if rmErr := os.Remove(m); rmErr != nil && !os.IsNotExist(rmErr) {
			observability.AssetStoreErrors.WithLabelValues("destroy").Inc()
			return fmt.Errorf("failed to remove asset %s: %w", assetID, rmErr)
		}
	}
	return nil
}

func (s *DiskStore) writeThumbnail(id string, data []byte) error {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > thumbnailMaxSize || h > thumbnailMaxSize {
		if w >= h {
			h = h * thumbnailMaxSize / w
			w = thumbnailMaxSize
		} else {
			w = w * thumbnailMaxSize / h
			h = thumbnailMaxSize
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, dst, &webp.Options{Quality: webpQuality}); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, id+"_thumb.webp"), buf.Bytes(), 0o644)
}
