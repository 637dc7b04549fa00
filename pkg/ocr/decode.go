package ocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
	_ "golang.org/x/image/webp"
)

// Decode turns uploaded bytes into an image. JPEG, PNG, GIF, WebP,
// HEIC/HEIF and PDF (first page) are understood; contentType is a hint and
// may be empty.
func Decode(data []byte, contentType string) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUnsupportedImage)
	}
	switch {
	case isPDF(data, contentType):
		doc, err := fitz.NewFromMemory(data)
		if err != nil {
			return nil, fmt.Errorf("%w: opening pdf: %v", ErrUnsupportedImage, err)
		}
		defer doc.Close()
		img, err := doc.Image(0)
		if err != nil {
			return nil, fmt.Errorf("%w: rendering pdf page: %v", ErrUnsupportedImage, err)
		}
		return img, nil
	case isHEIC(data, contentType):
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: decoding heic: %v", ErrUnsupportedImage, err)
		}
		return img, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return img, nil
}

// EncodePNG encodes img for the recognizer.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

func isPDF(data []byte, contentType string) bool {
	return bytes.HasPrefix(data, []byte("%PDF-")) || strings.EqualFold(strings.TrimSpace(contentType), "application/pdf")
}

// isHEIC checks the ISO BMFF ftyp brand at offset 4.
func isHEIC(data []byte, contentType string) bool {
	if len(data) >= 12 && string(data[4:8]) == "ftyp" {
		switch string(data[8:12]) {
		case "heic", "heix", "heif", "mif1", "msf1":
			return true
		}
	}
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "heic") || strings.Contains(ct, "heif")
}

// SupportedExt reports whether a file extension (".jpg", "PNG"...) is an
// input Decode can read.
func SupportedExt(ext string) bool {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png", "jpg", "jpeg", "gif", "webp", "heic", "heif", "pdf":
		return true
	}
	return false
}
