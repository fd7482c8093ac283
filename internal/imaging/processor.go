// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging normalises images pasted into rich text before they are
// embedded in a document as data URIs.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// MIME types of the raster formats accepted for embedding.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// Errors returned by Processor.
var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrTooLarge          = errors.New("image too large")
)

// Config controls paste-image normalisation.
type Config struct {
	// MaxWidth is the widest image embedded as is. Wider images are scaled
	// down keeping their aspect ratio.
	MaxWidth int
	// Quality is the JPEG encoding quality.
	Quality int
	// MaxBytes rejects larger inputs before decoding.
	MaxBytes int
}

// DefaultConfig returns the default paste-image configuration.
func DefaultConfig() Config {
	return Config{MaxWidth: 1600, Quality: 85, MaxBytes: 10 << 20}
}

// Result is a normalised image.
type Result struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

// Processor handles image processing operations using pure Go libraries.
type Processor struct {
	config Config
}

// NewProcessor creates a new image processor.
func NewProcessor(config Config) *Processor {
	def := DefaultConfig()
	if config.MaxWidth <= 0 {
		config.MaxWidth = def.MaxWidth
	}
	if config.Quality <= 0 || config.Quality > 100 {
		config.Quality = def.Quality
	}
	if config.MaxBytes <= 0 {
		config.MaxBytes = def.MaxBytes
	}
	return &Processor{config: config}
}

// Process decodes an image, applies its EXIF orientation, scales it down to
// MaxWidth and re-encodes it without metadata. PNG and GIF input that needs
// no transformation is returned unchanged, which keeps GIF animation.
func (p *Processor) Process(data []byte) (*Result, error) {
	if len(data) > p.config.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	format := detectFormat(data)
	if format == "" {
		return nil, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	orientation := readExifOrientation(bytes.NewReader(data))
	transformed := orientation > 1 && orientation <= 8
	img = applyOrientation(img, orientation)

	if img.Bounds().Dx() > p.config.MaxWidth {
		img = imaging.Resize(img, p.config.MaxWidth, 0, imaging.Lanczos)
		transformed = true
	}
	bounds := img.Bounds()

	if !transformed && (format == "png" || format == "gif") {
		return &Result{Data: data, MimeType: formatToMimeType(format), Width: bounds.Dx(), Height: bounds.Dy()}, nil
	}

	// Pure Go has no WebP encoder.
	if format == "webp" {
		format = "jpeg"
	}
	processed, err := encodeImage(img, format, p.config.Quality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &Result{
		Data:     processed,
		MimeType: formatToMimeType(format),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

// Encode normalises a pasted image and returns it as a base64 data URI.
// Its signature matches richdoc.ImageEncoder.
func (p *Processor) Encode(data []byte, mimeType string) (string, error) {
	if mimeType != "" && !IsImage(mimeType) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}
	res, err := p.Process(data)
	if err != nil {
		return "", err
	}
	return "data:" + res.MimeType + ";base64," + base64.StdEncoding.EncodeToString(res.Data), nil
}

// IsImage checks if a MIME type represents an image that can be processed.
func IsImage(mimeType string) bool {
	mimeType, _, _ = strings.Cut(strings.ToLower(strings.TrimSpace(mimeType)), ";")
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	default:
		return false
	}
}

// DetectMimeType detects the MIME type of image data.
func DetectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return contentType
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
// Orientation values:
// 1: Normal
// 2: Flip horizontal
// 3: Rotate 180°
// 4: Flip vertical
// 5: Rotate 90° CW + flip horizontal
// 6: Rotate 90° CW
// 7: Rotate 90° CCW + flip horizontal
// 8: Rotate 90° CCW
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

func formatToMimeType(format string) string {
	switch format {
	case "jpeg", "jpg":
		return MimeTypeJPEG
	case "png":
		return MimeTypePNG
	case "gif":
		return MimeTypeGIF
	case "webp":
		return MimeTypeWebP
	default:
		return "application/octet-stream"
	}
}
