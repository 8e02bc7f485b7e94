package imageutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefsnap/internal/recipe"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

func TestAllowedExtension(t *testing.T) {
	assert.True(t, AllowedExtension("shot.PNG"))
	assert.True(t, AllowedExtension("shot.jpeg"))
	assert.True(t, AllowedExtension("a/b/shot.jpg"))
	assert.False(t, AllowedExtension("shot.gif"))
	assert.False(t, AllowedExtension("shot"))
}

func TestPrepareDownscalesWideImages(t *testing.T) {
	out, err := Prepare(pngBytes(t, 1600, 400))
	require.NoError(t, err)
	assert.Equal(t, "image/png", out.MIMEType)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, MaxWidth, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}

func TestPrepareKeepsSmallImages(t *testing.T) {
	out, err := Prepare(jpegBytes(t, 320, 240))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", out.MIMEType)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Width)
}

func TestPrepareRejectsGarbage(t *testing.T) {
	_, err := Prepare([]byte("definitely not an image"))
	assert.Error(t, err)
}

func TestDataURLSink(t *testing.T) {
	url, err := DataURLSink{}.Store(recipe.Image{MIMEType: "image/png", Data: []byte{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AQID", url)

	_, err = DataURLSink{}.Store(recipe.Image{MIMEType: "image/png"})
	assert.Error(t, err)
}

func TestDiskSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	sink := NewDiskSink(dir, "/images")
	data := pngBytes(t, 1000, 10)

	url, err := sink.Store(recipe.Image{MIMEType: "image/png", Data: data})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/images/"))
	assert.True(t, strings.HasSuffix(url, ".png"))
	assert.Equal(t, "/images/"+Hash(data)+".png", url)

	stored, err := os.ReadFile(filepath.Join(dir, Hash(data)+".png"))
	require.NoError(t, err)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, MaxWidth, cfg.Width)

	again, err := sink.Store(recipe.Image{MIMEType: "image/png", Data: data})
	require.NoError(t, err)
	assert.Equal(t, url, again)
}

func TestExtension(t *testing.T) {
	ext, err := Extension("image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, ".jpg", ext)
	_, err = Extension("image/webp")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
