package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"

	_ "image/gif"
	_ "image/png"
)

const (
	maxImageWidth  = 1200
	contrastFactor = 1.3
	jpegQuality    = 70
)

type ImageNormalizer interface {
	Normalize(r io.Reader) (*NormalizedImage, error)
}

// NormalizedImage is the compact upload payload produced from a raw essay
// photo: grayscale, contrast-stretched, capped at 1200px wide and
// re-encoded as JPEG. Base64Data carries the payload only, without any
// data-URI prefix.
type NormalizedImage struct {
	Base64Data string
	Width      int
	Height     int
}

type imageNormalizer struct{}

func NewImageNormalizer() ImageNormalizer {
	return &imageNormalizer{}
}

// Normalize implements ImageNormalizer.
func (n *imageNormalizer) Normalize(r io.Reader) (*NormalizedImage, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > maxImageWidth {
		height = height * maxImageWidth / width
		width = maxImageWidth
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("failed to process image: empty dimensions")
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		srcY := bounds.Min.Y + y*bounds.Dy()/height
		for x := 0; x < width; x++ {
			srcX := bounds.Min.X + x*bounds.Dx()/width
			r32, g32, b32, _ := src.At(srcX, srcY).RGBA()

			gray := luminance(uint8(r32>>8), uint8(g32>>8), uint8(b32>>8))
			v := contrastStretch(gray)
			out.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &NormalizedImage{
		Base64Data: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:      width,
		Height:     height,
	}, nil
}

func luminance(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// contrastStretch applies a linear stretch around the 128 midpoint,
// clamped to [0,255]. Monotonic non-decreasing in the input.
func contrastStretch(gray float64) uint8 {
	v := (gray-128)*contrastFactor + 128
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v)
}
