package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// step is one pure rewrite in a normalization pipeline.
type step func(string) string

func apply(s string, steps ...step) string {
	for _, st := range steps {
		s = st(s)
	}
	return s
}

func remove(re *regexp.Regexp) step {
	return func(s string) string { return re.ReplaceAllString(s, "") }
}

var (
	trailingDateTimeRE = regexp.MustCompile(`\b(?:\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4}-\d{2}-\d{2}|\d{2}:\d{2})\b$`)
	edgeSymbolsRE      = regexp.MustCompile(`^[^\p{L}\p{N}_\s]+|[^\p{L}\p{N}_\s]+$`)
	merchantCharsRE    = regexp.MustCompile(`[^\p{L}\p{N}\s&'.]`)
	spacesRE           = regexp.MustCompile(`\s+`)
	digitsOnlyRE       = regexp.MustCompile(`^\d+$`)

	itemQtyRE           = regexp.MustCompile(`^\s*\d+(?:\s*[xX]\s*)?|\s+[xX]\s*\d+\s*$`)
	itemLeadingNumberRE = regexp.MustCompile(`^(?:\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4}-\d{2}-\d{2}|\d{2,})\b`)
	itemTrailingNumRE   = regexp.MustCompile(`\b(?:\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4}-\d{2}-\d{2}|\d{2,})$`)
)

func trim(s string) string { return strings.TrimSpace(s) }

func collapseSpaces(s string) string { return spacesRE.ReplaceAllString(s, " ") }

// titleCase upper-cases the first letter of every word. A Caser keeps state,
// so one is built per call.
func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

// NormalizeMerchantName cleans a merchant candidate with the default
// vocabulary.
func NormalizeMerchantName(s string) (string, bool) {
	return defaultVocabulary.NormalizeMerchantName(s)
}

// NormalizeMerchantName strips dates, boilerplate tokens and stray symbols
// from s, title-cases it and applies the brand corrections. Generic,
// too-short and numeric results are reported absent.
func (v *Vocabulary) NormalizeMerchantName(s string) (string, bool) {
	name := apply(s,
		trim,
		remove(trailingDateTimeRE), trim,
		remove(v.Boilerplate), trim,
		remove(edgeSymbolsRE), trim,
		remove(merchantCharsRE), trim,
		collapseSpaces,
		titleCase,
		v.correct, trim,
	)
	if _, generic := v.GenericNames[strings.ToLower(name)]; generic {
		return "", false
	}
	if utf8.RuneCountInString(name) < 3 || digitsOnlyRE.MatchString(name) {
		return "", false
	}
	return name, true
}

func (v *Vocabulary) correct(s string) string {
	for _, c := range v.Corrections {
		s = c.Pattern.ReplaceAllLiteralString(s, c.Replacement)
	}
	return collapseSpaces(s)
}

// NormalizeItemName removes quantity markers, leading or trailing dates and
// number runs and edge symbols from a line-item name, then title-cases it.
// Names shorter than two characters are absent.
func NormalizeItemName(s string) (string, bool) {
	name := apply(s,
		trim,
		remove(itemQtyRE), trim,
		remove(itemLeadingNumberRE), trim,
		remove(itemTrailingNumRE), trim,
		remove(edgeSymbolsRE), trim,
		collapseSpaces,
		titleCase,
	)
	if utf8.RuneCountInString(name) < 2 {
		return "", false
	}
	return name, true
}
