package images

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	_ "image/gif"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
)

// MaxDimension bounds the width and height of stored JPEG and PNG images.
const MaxDimension = 1024

// AllowedTypes are the accepted content types with their canonical extension.
var AllowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// sniff returns the allowed content type the bytes actually hold, or "".
func sniff(data []byte) string {
	m := mimetype.Detect(data)
	for t := range AllowedTypes {
		if m.Is(t) {
			return t
		}
	}
	return ""
}

// extension takes the uploaded file's extension when it is an image one,
// otherwise the canonical extension of the sniffed type.
func extension(filename, contentType string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "jpg", "jpeg", "png", "gif", "webp":
		return ext
	}
	return AllowedTypes[contentType]
}

// downscale shrinks JPEG and PNG images larger than MaxDimension in either
// direction, keeping the aspect ratio. Other formats, and anything that fails
// to decode, are returned unchanged.
func downscale(data []byte, contentType string) []byte {
	if contentType != "image/jpeg" && contentType != "image/png" {
		return data
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= MaxDimension && h <= MaxDimension {
		return data
	}
	if w >= h {
		h = max(1, h*MaxDimension/w)
		w = MaxDimension
	} else {
		w = max(1, w*MaxDimension/h)
		h = MaxDimension
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if contentType == "image/jpeg" {
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85})
	} else {
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return data
	}
	return buf.Bytes()
}
