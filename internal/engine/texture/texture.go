// Package texture decodes the raster formats asset images arrive in.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // registered decoders
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Decode decodes an image. Formats with a signature (PNG, JPEG, GIF, BMP,
// WebP) are detected from the data; TGA has none and is recognized by name
// or content type.
func Decode(data []byte, name, contentType string) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return img, format, nil
	}
	if !errors.Is(err, image.ErrFormat) || !isTGA(name, contentType) {
		return nil, "", err
	}
	tga, err := DecodeTGA(data)
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", name, err)
	}
	return tga, "tga", nil
}

func isTGA(name, contentType string) bool {
	switch strings.ToLower(contentType) {
	case "image/x-tga", "image/tga", "image/x-targa":
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tga", ".tpic", ".targa":
		return true
	}
	return false
}
