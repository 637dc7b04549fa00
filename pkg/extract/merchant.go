package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const merchantHeaderLines = 10

var (
	priceShapedRE = regexp.MustCompile(`\d{3,}[.,]\d{2,}`)
	bareDateRE    = regexp.MustCompile(`^\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}$`)
	addressRE     = regexp.MustCompile(`jl\.|jalan|no\.|street|st\.|road|rd\.|kpm`)
)

// Merchant returns the store name. Known brands anywhere in the text win;
// otherwise the header lines are scored, favouring longer lines nearer the
// top and penalizing address-like and very short candidates.
func (e *Extractor) Merchant(text string) (string, bool) {
	for _, bp := range e.vocab.BrandPatterns {
		if m := bp.FindString(text); m != "" {
			if name, ok := e.vocab.NormalizeMerchantName(m); ok {
				return name, true
			}
		}
	}

	lines := splitLines(text)
	if len(lines) > merchantHeaderLines {
		lines = lines[:merchantHeaderLines]
	}
	var (
		best     string
		maxScore float64
	)
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if n := utf8.RuneCountInString(line); n < 5 || n > 50 {
			continue
		}
		if priceShapedRE.MatchString(line) || bareDateRE.MatchString(line) {
			continue
		}
		if containsAny(strings.ToLower(line), e.vocab.MerchantAvoid) {
			continue
		}
		name, ok := e.vocab.NormalizeMerchantName(line)
		if !ok {
			continue
		}
		n := utf8.RuneCountInString(name)
		score := float64(n * (merchantHeaderLines - i))
		if addressRE.MatchString(strings.ToLower(name)) {
			score *= 0.5
		}
		if len(strings.Fields(name)) <= 2 && n <= 7 {
			score *= 0.7
		}
		if score > maxScore {
			best, maxScore = name, score
		}
	}
	return best, best != ""
}
