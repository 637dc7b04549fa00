package extract

import (
	"regexp"
	"strings"
)

// amountRule is one tier of a total, subtotal or tax search. Rules run in
// order and the first positive value wins.
type amountRule struct {
	name string
	find func(text string, lines []string) (int64, bool)
}

const (
	amountSep   = `[:=\- \t]*`
	amountPrice = `(?P<price>(?:rp\.?|idr|\$)?[ \t]*\d(?:[.,][ \t]+\d|[\d.,])*)`
	percentMark = `(?:\d{1,2}(?:[.,]\d+)?[ \t]*%` + amountSep + `)?`
)

var (
	// trailingAmountRE matches a price-shaped number ending a line.
	trailingAmountRE = regexp.MustCompile(`(?i)(?:rp\.?|idr|\$)?[ \t]*(\d{1,3}(?:[., ]\d{3})*(?:[., ]\d{1,2})?|\d{3,}(?:[., ]\d{1,2})?)$`)
	// trailingWideAmountRE is the subtotal/tax variant: grouped thousands or
	// at least two digits.
	trailingWideAmountRE = regexp.MustCompile(`(?i)(?:rp\.?|idr|\$)?[ \t]*(\d{1,3}(?:[., ]\d{3})+(?:[., ]\d{1,2})?|\d{2,}(?:[., ]\d{1,2})?)$`)
	dateOrTimeRE         = regexp.MustCompile(`\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}|\d{1,2}:\d{2}`)

	totalLineRE       = regexp.MustCompile(`(?i)total|jumlah|jml`)
	subtotalAnchorRE  = regexp.MustCompile(`(?i)tax|ppn|pajak|total`)
	taxLineRE         = regexp.MustCompile(`(?i)tax|ppn|pajak|vat|service|gst|levy`)
	preTaxLineRE      = regexp.MustCompile(`(?i)before[ \t\-]?tax|sebelum`)
	totalScanLastRows = 8
)

// keywordMatcher finds "<keyword><separators><price>" on a single line. The
// kw group is checked against notAfter so that, for example, "sub total" is
// not taken as a total.
type keywordMatcher struct {
	re       *regexp.Regexp
	notAfter []string
}

func newKeywordMatcher(keywords string, notAfter ...string) keywordMatcher {
	return keywordMatcher{
		re:       regexp.MustCompile(`(?i)` + keywords + amountSep + amountPrice),
		notAfter: notAfter,
	}
}

func (m keywordMatcher) find(text string, _ []string) (int64, bool) {
	kw := m.re.SubexpIndex("kw")
	price := m.re.SubexpIndex("price")
	for _, loc := range m.re.FindAllStringSubmatchIndex(text, -1) {
		if kw >= 0 && loc[2*kw] >= 0 && m.rejected(text[:loc[2*kw]]) {
			continue
		}
		if v, ok := NormalizePrice(text[loc[2*price]:loc[2*price+1]]); ok && v > 0 {
			return v, true
		}
	}
	return 0, false
}

func (m keywordMatcher) rejected(before string) bool {
	before = strings.ToLower(strings.TrimRight(before, " \t-"))
	for _, w := range m.notAfter {
		if strings.HasSuffix(before, w) {
			return true
		}
	}
	return false
}

func defaultTotalRules() []amountRule {
	return []amountRule{
		{"total-keyword", newKeywordMatcher(`(?P<kw>grand[ \t]*total|total[ \t]*bayar|total[ \t]*amount|amount[ \t]*due|jumlah[ \t]*bayar|jml[ \t]*bayar|total[ \t]*jual|final[ \t]*total)`).find},
		{"total-generic", newKeywordMatcher(`\b(?P<kw>total|jumlah|jml)\b`, "sub").find},
		{"total-next-line", totalOnNextLine},
		{"total-largest-tail", largestTrailingAmount},
	}
}

func defaultSubtotalRules() []amountRule {
	return []amountRule{
		{"subtotal-keyword", newKeywordMatcher(`(?P<kw>sub[ \t\-]?total|sub[ \t\-]?amt|subtotalan)`).find},
		{"subtotal-pretax", newKeywordMatcher(`(?P<kw>nett?[ \t\-]?sales?|before[ \t\-]?tax|jumlah[ \t]*sebelum[ \t]*pajak|jml[ \t]*blm[ \t]*pjk|total[ \t]*jual)`).find},
		{"subtotal-above-tax", subtotalAboveAnchor},
	}
}

func defaultTaxRules() []amountRule {
	return []amountRule{
		{"tax-keyword", newKeywordMatcher(`\b(?P<kw>tax|vat|ppn|pajak|service[ \t\-]?charge|gst|pph|levy|service)\b`+amountSep+percentMark, "before", "sebelum").find},
		{"tax-percent-first", newKeywordMatcher(`\b\d{1,2}(?:[.,]\d+)?[ \t]*%[ \t]*(?P<kw>tax|vat|ppn|pajak)\b`).find},
		{"tax-line", taxOnLine},
	}
}

func firstAmount(rules []amountRule, text string) (int64, bool) {
	lines := splitLines(text)
	for _, r := range rules {
		if v, ok := r.find(text, lines); ok {
			return v, true
		}
	}
	return 0, false
}

func trailingAmount(re *regexp.Regexp, line string) (int64, bool) {
	m := re.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, false
	}
	v, ok := NormalizePrice(m[1])
	return v, ok && v > 0
}

func totalOnNextLine(_ string, lines []string) (int64, bool) {
	for i := 0; i+1 < len(lines); i++ {
		if !totalLineRE.MatchString(lines[i]) {
			continue
		}
		if v, ok := trailingAmount(trailingAmountRE, lines[i+1]); ok {
			return v, true
		}
	}
	return 0, false
}

func largestTrailingAmount(_ string, lines []string) (int64, bool) {
	start := len(lines) - totalScanLastRows
	if start < 0 {
		start = 0
	}
	var best int64
	for i := len(lines) - 1; i >= start; i-- {
		if v, ok := trailingAmount(trailingAmountRE, lines[i]); ok && v > best {
			best = v
		}
	}
	return best, best > 0
}

func subtotalAboveAnchor(_ string, lines []string) (int64, bool) {
	for i, line := range lines {
		if !subtotalAnchorRE.MatchString(line) {
			continue
		}
		j := i - 3
		if j < 0 {
			j = 0
		}
		for ; j < i; j++ {
			if dateOrTimeRE.MatchString(lines[j]) {
				continue
			}
			if v, ok := trailingAmount(trailingWideAmountRE, lines[j]); ok {
				return v, true
			}
		}
	}
	return 0, false
}

func taxOnLine(_ string, lines []string) (int64, bool) {
	for _, line := range lines {
		if !taxLineRE.MatchString(line) || preTaxLineRE.MatchString(line) {
			continue
		}
		if v, ok := trailingAmount(trailingWideAmountRE, line); ok {
			return v, true
		}
	}
	return 0, false
}

func splitLines(text string) []string {
	return strings.Split(strings.TrimSpace(text), "\n")
}
