package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	// Register the webp decoder with image.Decode.
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
)

// errSmallEnough means the source already fits the requested size.
var errSmallEnough = errors.New("image already fits")

// scaleToFit decodes data and resizes it so its longest edge is maxDim,
// keeping the aspect ratio.
func scaleToFit(data []byte, maxDim int) (image.Image, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return nil, errSmallEnough
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, h*maxDim/w)
	} else {
		newW = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst, nil
}

// writeThumbnail encodes img at path. PNG sources stay PNG; everything else,
// webp included, is written as JPEG.
func writeThumbnail(path string, img image.Image, mimeType string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating thumbnail file: %w", err)
	}

	if mimeType == "image/png" {
		err = png.Encode(f, img)
	} else {
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 85})
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("encoding thumbnail: %w", err)
	}
	return nil
}

// thumbnailExt is the extension writeThumbnail produces for mimeType.
func thumbnailExt(mimeType string) string {
	if mimeType == "image/png" {
		return ".png"
	}
	return ".jpg"
}

// validateMagicBytes checks that the file content's magic bytes match the
// declared MIME type, so a spoofed Content-Type cannot smuggle in other data.
func validateMagicBytes(data []byte, declaredMIME string) bool {
	switch declaredMIME {
	case "image/jpeg":
		return len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF
	case "image/png":
		return len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A})
	case "image/webp":
		return len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP"
	default:
		return false
	}
}
