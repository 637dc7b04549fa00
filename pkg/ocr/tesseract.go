package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractRecognizer runs the Tesseract library in-process through
// gosseract. A fresh client is created per call so one recognizer can serve
// concurrent scans.
type TesseractRecognizer struct {
	langs []string
	dpi   int
}

// NewTesseractRecognizer builds a recognizer for a "+"-joined language list
// such as "eng+ind". The engine always runs in its default (LSTM) mode.
func NewTesseractRecognizer(lang string, dpi int) *TesseractRecognizer {
	if lang == "" {
		lang = DefaultLanguage
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &TesseractRecognizer{langs: strings.Split(lang, "+"), dpi: dpi}
}

func (t *TesseractRecognizer) Recognize(ctx context.Context, img []byte, psm int) (Recognition, error) {
	if err := ctx.Err(); err != nil {
		return Recognition{}, err
	}
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.langs...); err != nil {
		return Recognition{}, fmt.Errorf("set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(psm)); err != nil {
		return Recognition{}, fmt.Errorf("set psm %d: %w", psm, err)
	}
	if err := client.SetVariable("user_defined_dpi", strconv.Itoa(t.dpi)); err != nil {
		return Recognition{}, fmt.Errorf("set dpi: %w", err)
	}
	if err := client.SetImageFromBytes(img); err != nil {
		return Recognition{}, fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return Recognition{}, classifyTesseractErr(err)
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return Recognition{}, classifyTesseractErr(err)
	}
	rec := Recognition{Text: text, Words: make([]Word, 0, len(boxes))}
	for _, b := range boxes {
		rec.Words = append(rec.Words, Word{Text: b.Word, Confidence: b.Confidence})
	}
	return rec, nil
}

// classifyTesseractErr marks engine initialization failures (missing
// library data or language files) as ErrRecognizerUnavailable.
func classifyTesseractErr(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "initialize") || strings.Contains(msg, "tessdata") {
		return fmt.Errorf("%w: %v", ErrRecognizerUnavailable, err)
	}
	return fmt.Errorf("tesseract: %w", err)
}
