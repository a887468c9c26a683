package service

import (
	"bytes"
	"fmt"
	"log"

	"github.com/disintegration/imaging"
)

const jpegQuality = 85

// DownscaleImage shrinks PNG and JPEG images whose width or height exceeds
// maxDim, keeping the aspect ratio and the original format. Other formats,
// small images and maxDim <= 0 return the input unchanged with resized=false.
func DownscaleImage(data []byte, mimeType string, maxDim int) (out []byte, resized bool, err error) {
	if maxDim <= 0 {
		return data, false, nil
	}

	var format imaging.Format
	switch mimeType {
	case "image/jpeg":
		format = imaging.JPEG
	case "image/png":
		format = imaging.PNG
	default:
		return data, false, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxDim && height <= maxDim {
		return data, false, nil
	}

	fitted := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	log.Printf("🔄 Resizing image: %dx%d -> %dx%d", width, height, fitted.Bounds().Dx(), fitted.Bounds().Dy())

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, format, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, false, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), true, nil
}
