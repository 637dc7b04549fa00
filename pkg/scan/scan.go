// Package scan wires image decoding, OCR selection, text cleanup and field
// extraction into one call that yields the receipt output record.
package scan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"strukscan/pkg/extract"
	"strukscan/pkg/ocr"
)

const (
	MsgRecognizerUnavailable = "Tesseract OCR not found. Please ensure it's installed and in your PATH."
	MsgNoText                = "OCR did not detect any text on the image."
	MsgPreprocess            = "Failed to preprocess the image."
	msgOCRPrefix             = "An error occurred during OCR: "
)

// Output is either an extraction Result or an error message, never both.
// OCRText, Confidence and PSM describe the winning OCR attempt and are not
// part of the JSON record.
type Output struct {
	Result *extract.Result
	Error  string

	OCRText    string
	Confidence float64
	PSM        int
	Attempts   []ocr.Attempt
}

// Failed reports whether the output carries an error instead of a record.
func (o Output) Failed() bool { return o.Result == nil }

// MarshalJSON emits the record, or {"error": "..."} on failure.
func (o Output) MarshalJSON() ([]byte, error) {
	if o.Result == nil {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{o.Error})
	}
	return json.Marshal(o.Result)
}

func failure(msg string) Output { return Output{Error: msg} }

// Scanner turns receipt images into output records. It is safe for
// concurrent use when its Recognizer is.
type Scanner struct {
	selector  *ocr.Selector
	extractor *extract.Extractor
	pre       ocr.PreprocessOptions
}

func New(sel *ocr.Selector, ext *extract.Extractor, pre ocr.PreprocessOptions) *Scanner {
	if ext == nil {
		ext = extract.NewExtractor()
	}
	return &Scanner{selector: sel, extractor: ext, pre: pre}
}

// WithPreprocess returns a copy of s that preprocesses with o.
func (s *Scanner) WithPreprocess(o ocr.PreprocessOptions) *Scanner {
	c := *s
	c.pre = o
	return &c
}

// Verbose toggles per-attempt OCR logging.
func (s *Scanner) Verbose(v bool) *Scanner {
	if s.selector != nil {
		s.selector.Verbose(v)
	}
	return s
}

// Text runs extraction alone over already recognized text.
func (s *Scanner) Text(text string) Output {
	res := s.extractor.Extract(extract.CleanText(text))
	return Output{Result: &res, OCRText: text}
}

// File reads path and scans it.
func (s *Scanner) File(ctx context.Context, path string) Output {
	data, err := os.ReadFile(path)
	if err != nil {
		return failure(MsgPreprocess)
	}
	return s.Bytes(ctx, data, "")
}

// Bytes decodes, preprocesses and recognizes an uploaded image and extracts
// the receipt fields from the best reading.
func (s *Scanner) Bytes(ctx context.Context, data []byte, contentType string) Output {
	img, err := ocr.Decode(data, contentType)
	if err != nil {
		log.Printf("WARN decode failed: %v", err)
		return failure(MsgPreprocess)
	}
	png, err := ocr.EncodePNG(ocr.Preprocess(img, s.pre))
	if err != nil {
		log.Printf("WARN preprocess failed: %v", err)
		return failure(MsgPreprocess)
	}
	cand, err := s.selector.Best(ctx, png)
	if err != nil {
		out := failure(ErrorMessage(err))
		out.Attempts = cand.Attempts
		return out
	}
	res := s.extractor.Extract(extract.CleanText(cand.Text))
	return Output{
		Result:     &res,
		OCRText:    cand.Text,
		Confidence: cand.Confidence,
		PSM:        cand.PSM,
		Attempts:   cand.Attempts,
	}
}

// ErrorMessage maps a scan error to the message shown to users.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ocr.ErrRecognizerUnavailable):
		return MsgRecognizerUnavailable
	case errors.Is(err, ocr.ErrNoTextDetected):
		return MsgNoText
	case errors.Is(err, ocr.ErrUnsupportedImage):
		return MsgPreprocess
	default:
		return fmt.Sprintf("%s%v", msgOCRPrefix, err)
	}
}
