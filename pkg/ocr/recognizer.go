// Package ocr reads text out of receipt images. It decodes and cleans the
// image, runs the recognizer under several page segmentation modes and keeps
// the most confident reading.
package ocr

import "context"

// Word is one recognized word with its confidence in 0..100. Tesseract
// reports -1 for boxes that carry no text.
type Word struct {
	Text       string
	Confidence float64
}

// Recognition is the output of one recognizer run.
type Recognition struct {
	Text  string
	Words []Word
}

// Recognizer runs OCR over an encoded image (PNG, JPEG...) using the given
// Tesseract page segmentation mode.
type Recognizer interface {
	Recognize(ctx context.Context, img []byte, psm int) (Recognition, error)
}

// MeanConfidence averages word confidences, skipping negative values. It is
// zero when no word carries a confidence.
func (r Recognition) MeanConfidence() float64 {
	var sum float64
	var n int
	for _, w := range r.Words {
		if w.Confidence < 0 {
			continue
		}
		sum += w.Confidence
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// DefaultPSMModes are tried in order: uniform block, fully automatic, single
// column, sparse text, sparse text with orientation detection.
var DefaultPSMModes = []int{6, 3, 4, 11, 12}

const (
	DefaultLanguage = "eng+ind"
	DefaultDPI      = 300
)
