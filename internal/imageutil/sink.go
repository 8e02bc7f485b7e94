package imageutil

import (
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"chefsnap/internal/recipe"
)

// DataURLSink inlines images as data URLs.
type DataURLSink struct{}

// Store returns a data: URL for img.
func (DataURLSink) Store(img recipe.Image) (string, error) {
	if len(img.Data) == 0 {
		return "", fmt.Errorf("empty image")
	}
	return fmt.Sprintf("data:%s;base64,%s", img.MIMEType, base64.StdEncoding.EncodeToString(img.Data)), nil
}

// DiskSink writes images into Dir, named by content hash, and returns a
// URL under URLPrefix.
type DiskSink struct {
	Dir       string
	URLPrefix string
}

// NewDiskSink creates a sink for dir served at urlPrefix.
func NewDiskSink(dir, urlPrefix string) *DiskSink {
	return &DiskSink{Dir: dir, URLPrefix: urlPrefix}
}

// Store downscales img and saves it. Saving the same image twice yields
// the same URL.
func (s *DiskSink) Store(img recipe.Image) (string, error) {
	prepared, err := Prepare(img.Data)
	if err != nil {
		return "", err
	}
	ext, err := Extension(prepared.MIMEType)
	if err != nil {
		return "", err
	}

	// Create the images directory if it doesn't exist
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create images directory: %w", err)
	}

	name := Hash(img.Data) + ext
	if err := os.WriteFile(filepath.Join(s.Dir, name), prepared.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return path.Join(s.URLPrefix, name), nil
}
