// Package imageutil prepares uploaded screenshots for the generator and
// turns generated dish photos into URLs the front end can display.
package imageutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"

	"chefsnap/internal/recipe"
)

// MaxWidth is the width images are downscaled to before use.
const MaxWidth = 800

// ErrUnsupportedFormat is returned for anything other than JPEG or PNG.
var ErrUnsupportedFormat = errors.New("unsupported image format")

var allowedExtensions = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
}

// AllowedExtension reports whether a file name has a JPEG or PNG extension.
func AllowedExtension(filename string) bool {
	_, ok := allowedExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Hash calculates the SHA256 hash of the image data.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Extension returns the file extension for a MIME type.
func Extension(mimeType string) (string, error) {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}
}

// Prepare decodes a JPEG or PNG, downscales it to MaxWidth if it is
// wider, and re-encodes it in its original format.
func Prepare(data []byte) (*recipe.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if img.Bounds().Dx() > MaxWidth {
		img = resize.Resize(MaxWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	var mimeType string
	switch format {
	case "jpeg":
		mimeType = "image/jpeg"
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	case "png":
		mimeType = "image/png"
		err = png.Encode(&buf, img)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &recipe.Image{MIMEType: mimeType, Data: buf.Bytes()}, nil
}
