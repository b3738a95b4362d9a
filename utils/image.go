package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
)

const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"

	DefaultJpegQuality = 90
)

// NormalizeImageFormat lowercases the format and maps "jpg" to "jpeg".
// An empty format means png.
func NormalizeImageFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "", FormatPNG:
		return FormatPNG, nil
	case "jpg", FormatJPEG:
		return FormatJPEG, nil
	}
	return "", fmt.Errorf("invalid format '%s'. Supported formats are 'png' and 'jpeg'", format)
}

// EncodeImage encodes img in the given format. quality only applies to jpeg
// and falls back to DefaultJpegQuality when out of range.
func EncodeImage(img image.Image, format string, quality int) ([]byte, error) {
	format, err := NormalizeImageFormat(format)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if format == FormatJPEG {
		if quality < 1 || quality > 100 {
			quality = DefaultJpegQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MimeType returns the mime type for a normalized format.
func MimeType(format string) string {
	if format == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// FileExtension returns the file extension (without dot) for a normalized format.
func FileExtension(format string) string {
	if format == FormatJPEG {
		return "jpg"
	}
	return "png"
}
