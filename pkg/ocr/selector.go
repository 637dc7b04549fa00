package ocr

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

// Attempt records one recognizer run. Err is set when the run failed; a
// failed attempt never wins.
type Attempt struct {
	PSM        int
	Text       string
	Confidence float64
	Words      int
	Err        error
}

// OK reports whether the attempt produced usable text.
func (a Attempt) OK() bool { return a.Err == nil && a.Text != "" }

// Candidate is the winning attempt together with every attempt made.
type Candidate struct {
	Attempt
	Attempts []Attempt
}

// Selector runs a Recognizer once per page segmentation mode and keeps the
// reading with the highest mean word confidence.
type Selector struct {
	rec     Recognizer
	modes   []int
	verbose bool
}

// NewSelector returns a Selector over modes; DefaultPSMModes when empty.
func NewSelector(rec Recognizer, modes []int) *Selector {
	if len(modes) == 0 {
		modes = DefaultPSMModes
	}
	return &Selector{rec: rec, modes: append([]int(nil), modes...)}
}

// Verbose enables per-attempt logging.
func (s *Selector) Verbose(v bool) *Selector {
	s.verbose = v
	return s
}

// Modes returns the page segmentation modes in the order they are tried.
func (s *Selector) Modes() []int { return append([]int(nil), s.modes...) }

// Best recognizes img under every mode. Ties keep the earlier mode. It
// returns ErrRecognizerUnavailable as soon as the engine reports it cannot
// run, and ErrNoTextDetected when no mode produced text. A cancelled ctx
// stops the loop between attempts.
func (s *Selector) Best(ctx context.Context, img []byte) (Candidate, error) {
	var (
		cand    Candidate
		bestIdx = -1
	)
	for _, psm := range s.modes {
		if err := ctx.Err(); err != nil {
			return cand, fmt.Errorf("ocr cancelled before psm %d: %w", psm, err)
		}
		rec, err := s.rec.Recognize(ctx, img, psm)
		if err != nil {
			if errors.Is(err, ErrRecognizerUnavailable) {
				return cand, err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return cand, fmt.Errorf("ocr cancelled during psm %d: %w", psm, ctxErr)
			}
			log.Printf("WARN ocr psm=%d failed: %v", psm, err)
			cand.Attempts = append(cand.Attempts, Attempt{PSM: psm, Err: err})
			continue
		}
		a := Attempt{
			PSM:        psm,
			Text:       strings.TrimSpace(rec.Text),
			Confidence: rec.MeanConfidence(),
			Words:      len(rec.Words),
		}
		if s.verbose {
			log.Printf("OCR debug: psm=%d conf=%.2f words=%d text=%q", psm, a.Confidence, a.Words, snippet(a.Text, 80))
		}
		cand.Attempts = append(cand.Attempts, a)
		if !a.OK() {
			continue
		}
		if bestIdx < 0 || a.Confidence > cand.Attempts[bestIdx].Confidence {
			bestIdx = len(cand.Attempts) - 1
		}
	}
	if bestIdx < 0 {
		return cand, ErrNoTextDetected
	}
	cand.Attempt = cand.Attempts[bestIdx]
	return cand, nil
}
