package ocr

import "errors"

var (
	// ErrRecognizerUnavailable is returned when the OCR engine cannot be
	// found or initialized at all.
	ErrRecognizerUnavailable = errors.New("ocr engine unavailable")
	// ErrNoTextDetected is returned when every page segmentation mode
	// produced empty text.
	ErrNoTextDetected = errors.New("no text detected")
	// ErrUnsupportedImage is returned when input bytes cannot be decoded.
	ErrUnsupportedImage = errors.New("unsupported image")
)
