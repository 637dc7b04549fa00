package extract

import (
	"regexp"
	"strings"
)

var (
	horizontalSpaceRE = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	disallowedCharsRE = regexp.MustCompile(`[^\p{L}\p{N}_\s.,:/$\-&'%#]`)
)

// CleanText prepares raw OCR output for extraction: line endings are
// unified, symbols outside the receipt alphabet are dropped, runs of spaces
// collapse to one and blank lines are removed. Line breaks are kept because
// the extractors work line by line.
func CleanText(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = apply(line,
			remove(disallowedCharsRE),
			func(s string) string { return horizontalSpaceRE.ReplaceAllString(s, " ") },
			trim,
		)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
