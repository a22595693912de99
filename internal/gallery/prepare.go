package gallery

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // decoders for user uploads
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
)

const (
	MaxEdge     = 1024
	JPEGQuality = 85
)

// ErrUnsupportedImage is returned for uploads that are not a GIF, JPEG or PNG.
var ErrUnsupportedImage = errors.New("unsupported image")

// Prepare decodes an uploaded image, fits it inside MaxEdge x MaxEdge keeping
// the aspect ratio and re-encodes it as JPEG. Smaller images are only
// re-encoded.
func Prepare(r io.Reader) ([]byte, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	dst := image.Image(src)
	b := src.Bounds()
	if w, h := Fit(b.Dx(), b.Dy(), MaxEdge); w != b.Dx() || h != b.Dy() {
		rgba := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(rgba, rgba.Bounds(), src, b, draw.Src, nil)
		dst = rgba
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Fit scales w x h down to fit within edge x edge. It never scales up.
func Fit(w, h, edge int) (int, int) {
	if w <= edge && h <= edge {
		return w, h
	}
	if w >= h {
		nh := max(1, (h*edge+w/2)/w)
		return edge, nh
	}
	nw := max(1, (w*edge+h/2)/h)
	return nw, edge
}
