package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// LineItem is one purchased product.
type LineItem struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Qty   int    `json:"qty"`
}

const itemPrice = `((?:rp\.?|idr|\$)?\s*[0-9.,\s]+)$`

// itemShape parses one item line. Shapes are tried in order and the first
// whose pattern matches decides the line, even if its values are rejected.
type itemShape struct {
	name  string
	re    *regexp.Regexp
	parse func(m []string) (name string, price string, qty int)
}

var itemShapes = []itemShape{
	{
		// "Mix Coklat - Rp18.000", "Tiramisu Kear 1x Rp18.000"
		name: "name-separator-price",
		re:   regexp.MustCompile(`(?i)^(.+?)\s*(?:[-—–]|\s*\b1?x)\s*` + itemPrice),
		parse: func(m []string) (string, string, int) {
			return m[1], m[2], 1
		},
	},
	{
		// "2 Ham Cheese 16,000", "2x Teh Manis 10.000"
		name: "qty-name-price",
		re:   regexp.MustCompile(`(?i)^\s*(\d+)(?:\s*x)?\s*(.+?)` + itemPrice),
		parse: func(m []string) (string, string, int) {
			name := trailingNumberRE.ReplaceAllString(strings.TrimSpace(m[2]), "")
			name = strings.TrimSpace(itemNameCharsRE.ReplaceAllString(name, ""))
			return name, m[3], atoiQty(m[1])
		},
	},
	{
		// "Ice Java Tea 16,000", "Kopi 2 15.000"
		name: "name-qty-price",
		re:   regexp.MustCompile(`(?i)^(.+?)\s+(?:x\s*(\d+)|\s*(\d+)\s+)?` + itemPrice),
		parse: func(m []string) (string, string, int) {
			q := m[2]
			if q == "" {
				q = m[3]
			}
			return m[1], m[4], atoiQty(q)
		},
	},
}

var (
	itemHeaderStartRE = regexp.MustCompile(`^\s*\d+\s*[a-z]`)
	numericLineRE     = regexp.MustCompile(`^[\d\s.,Rp$]+$`)
	trailingNumberRE  = regexp.MustCompile(`\s*\d+(?:\.\d+)?\s*$`)
	itemNameCharsRE   = regexp.MustCompile(`[^A-Za-z0-9\s&'.]`)
)

// currencyNames are what remains of a bare "1x Rp18.000" line.
var currencyNames = map[string]bool{"rp": true, "rp.": true, "idr": true}

func atoiQty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Items extracts product lines. The item block starts at a header line (or
// the first "<qty> <name>" line) and ends at the first totals line. Receipts
// without any header are scanned from the top.
func (e *Extractor) Items(text string) []LineItem {
	lines := splitLines(text)
	section, started := e.itemSection(lines, false)
	if !started {
		section, _ = e.itemSection(lines, true)
	}

	type located struct {
		item LineItem
		pos  int
	}
	var (
		found []located
		seen  = map[string]struct{}{}
		lower = strings.ToLower(strings.TrimSpace(text))
	)
	for _, sl := range section {
		item, ok := e.parseItemLine(sl.text)
		if !ok {
			continue
		}
		key := strings.ToLower(item.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		if digitsOnlyRE.MatchString(item.Name) || utf8.RuneCountInString(item.Name) < 2 {
			continue
		}
		if item.Price < e.vocab.MinItemPrice && !e.vocab.SmallAmount.MatchString(item.Name) {
			continue
		}
		seen[key] = struct{}{}
		pos := strings.Index(lower, key)
		if pos < 0 {
			pos = sl.offset
		}
		found = append(found, located{item, pos})
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	items := make([]LineItem, 0, len(found))
	for _, f := range found {
		items = append(items, f.item)
	}
	return items
}

type sectionLine struct {
	text   string
	offset int
}

// itemSection returns the candidate item lines together with their byte
// offset in the text. started reports whether a start marker was seen.
func (e *Extractor) itemSection(lines []string, started bool) ([]sectionLine, bool) {
	var out []sectionLine
	offset := 0
	inSection := started
	for _, line := range lines {
		lineOffset := offset
		offset += len(line) + 1
		low := strings.ToLower(line)
		if !inSection && (containsAny(low, e.vocab.ItemStart) || itemHeaderStartRE.MatchString(low)) {
			inSection = true
		}
		if !inSection {
			continue
		}
		if containsAny(low, e.vocab.ItemEnd) {
			break
		}
		trimmed := strings.TrimSpace(line)
		if n := utf8.RuneCountInString(trimmed); n < 3 || n > 70 {
			continue
		}
		if numericLineRE.MatchString(trimmed) || e.vocab.NonItemPrefix.MatchString(low) || containsAny(low, e.vocab.ItemStart) {
			continue
		}
		out = append(out, sectionLine{trimmed, lineOffset})
	}
	return out, inSection
}

func (e *Extractor) parseItemLine(line string) (LineItem, bool) {
	for _, shape := range itemShapes {
		m := shape.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rawName, rawPrice, qty := shape.parse(m)
		name, ok := NormalizeItemName(rawName)
		if !ok {
			return LineItem{}, false
		}
		price, ok := NormalizePrice(rawPrice)
		if !ok || price < 0 {
			return LineItem{}, false
		}
		if low := strings.ToLower(name); currencyNames[low] || containsAny(low, e.vocab.ItemEnd) {
			return LineItem{}, false
		}
		return LineItem{Name: name, Price: price, Qty: qty}, true
	}
	return LineItem{}, false
}
