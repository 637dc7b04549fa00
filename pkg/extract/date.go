package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	fullMonths  = `Januari|Februari|Maret|April|Mei|Juni|Juli|Agustus|September|Oktober|November|Desember`
	shortMonths = `Jan|Feb|Mar|Apr|Mei|May|Jun|Jul|Agu|Aug|Sep|Okt|Oct|Nov|Des|Dec`
)

// datePatterns are tried in order; a pattern with a capture group yields the
// group, otherwise the whole match.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d{2}/\d{2}/\d{4})\s+\d{2}:\d{2}`),
	regexp.MustCompile(`(?i)(\d{2}/\d{2}/\d{2})\s+\d{2}:\d{2}`),
	regexp.MustCompile(`(?i)(\d{4}[-/.]\d{1,2}[-/.]\d{1,2})`),
	regexp.MustCompile(`(?i)(\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})`),
	regexp.MustCompile(`(?i)(\d{1,2}\s+(?:` + fullMonths + `)[a-z]*\s+\d{2,4})`),
	regexp.MustCompile(`(?i)(\d{1,2}\s+(?:` + shortMonths + `)[a-z]*\s+\d{2,4})`),
	regexp.MustCompile(`(?i)(?:` + fullMonths + `)[a-z]*\s+\d{1,2},\s+\d{2,4}`),
	regexp.MustCompile(`(?i)(?:` + shortMonths + `)[a-z]*\s+\d{1,2},\s+\d{2,4}`),
	regexp.MustCompile(`(?i)\b(\d{1,2}/\d{1,2}/\d{2})\b`),
}

var (
	dateLineNumericRE = regexp.MustCompile(`(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}|\d{4}[/.-]\d{1,2}[/.-]\d{1,2})`)
	numericDateRE     = regexp.MustCompile(`^(\d{1,4})[-/.](\d{1,2})[-/.](\d{1,4})$`)
	dayMonthYearRE    = regexp.MustCompile(`^(\d{1,2})\s+([a-zA-Z]+)\s+(\d{2,4})$`)
	monthDayYearRE    = regexp.MustCompile(`^([a-zA-Z]+)\s+(\d{1,2}),\s+(\d{2,4})$`)
)

// monthPrefixes maps the first three letters of Indonesian and English month
// names to the month.
var monthPrefixes = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "mei": time.May, "may": time.May,
	"jun": time.June, "jul": time.July, "agu": time.August,
	"aug": time.August, "sep": time.September, "okt": time.October,
	"oct": time.October, "nov": time.November, "des": time.December,
	"dec": time.December,
}

// Date finds the first plausible transaction date in text and formats it as
// YYYY-MM-DD. Years outside [now-10, now+2] are rejected.
func (e *Extractor) Date(text string) (string, bool) {
	now := e.now()
	for _, re := range datePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			cand := m[0]
			if len(m) > 1 {
				cand = m[1]
			}
			if d, err := parseDate(cand, now); err == nil && yearInWindow(d, now) {
				return d.Format("2006-01-02"), true
			}
		}
	}
	for _, line := range splitLines(text) {
		if !e.vocab.DateLine.MatchString(line) {
			continue
		}
		m := dateLineNumericRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if d, err := parseDate(m[1], now); err == nil && yearInWindow(d, now) {
			return d.Format("2006-01-02"), true
		}
	}
	return "", false
}

func yearInWindow(d, now time.Time) bool {
	return d.Year() >= now.Year()-10 && d.Year() <= now.Year()+2
}

// parseDate reads s day-first. Four-digit leading parts are read year-first.
// When the day-first reading is invalid and the first part can only be a
// month, the date is read month-first.
func parseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if m := numericDateRE.FindStringSubmatch(s); m != nil {
		a, b, c := atoi(m[1]), atoi(m[2]), m[3]
		if len(m[1]) == 4 {
			return makeDate(a, b, atoi(c))
		}
		if len(m[1]) > 2 {
			return time.Time{}, fmt.Errorf("date %q: bad day", s)
		}
		year := expandYear(c, now)
		if d, err := makeDate(year, b, a); err == nil {
			return d, nil
		}
		if a <= 12 && b > 12 {
			return makeDate(year, a, b)
		}
		return time.Time{}, fmt.Errorf("date %q: no valid reading", s)
	}
	if m := dayMonthYearRE.FindStringSubmatch(s); m != nil {
		mon, ok := lookupMonth(m[2])
		if !ok {
			return time.Time{}, fmt.Errorf("date %q: unknown month", s)
		}
		return makeDate(expandYear(m[3], now), int(mon), atoi(m[1]))
	}
	if m := monthDayYearRE.FindStringSubmatch(s); m != nil {
		mon, ok := lookupMonth(m[1])
		if !ok {
			return time.Time{}, fmt.Errorf("date %q: unknown month", s)
		}
		return makeDate(expandYear(m[3], now), int(mon), atoi(m[2]))
	}
	return time.Time{}, fmt.Errorf("date %q: unrecognized", s)
}

func lookupMonth(word string) (time.Month, bool) {
	w := strings.ToLower(word)
	if len(w) < 3 {
		return 0, false
	}
	m, ok := monthPrefixes[w[:3]]
	return m, ok
}

// expandYear places a two-digit year in the century that keeps it within
// fifty years of now.
func expandYear(s string, now time.Time) int {
	y := atoi(s)
	if len(s) > 2 {
		return y
	}
	y += now.Year() / 100 * 100
	switch {
	case y >= now.Year()+50:
		y -= 100
	case y < now.Year()-50:
		y += 100
	}
	return y
}

func makeDate(year, month, day int) (time.Time, error) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, fmt.Errorf("invalid date %04d-%02d-%02d", year, month, day)
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}, fmt.Errorf("invalid date %04d-%02d-%02d", year, month, day)
	}
	return d, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
