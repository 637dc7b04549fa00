package extract

import (
	"regexp"
	"strings"
)

// Vocabulary holds the keyword tables the extractors consult. A Vocabulary is
// never mutated after construction, so one value can back any number of
// concurrent extractions.
type Vocabulary struct {
	// BrandPatterns are searched over the whole text, in order, before any
	// line-based merchant guessing.
	BrandPatterns []*regexp.Regexp
	// MerchantAvoid lists substrings that disqualify a line from being the
	// merchant name.
	MerchantAvoid []string
	// Boilerplate matches whole tokens stripped from merchant names.
	Boilerplate *regexp.Regexp
	// GenericNames are normalized merchant names that carry no information.
	GenericNames map[string]struct{}
	// Corrections rewrite known OCR misreadings of merchant names.
	Corrections []Correction

	ItemStart     []string
	ItemEnd       []string
	NonItemPrefix *regexp.Regexp
	// SmallAmount matches item names allowed to carry a price below
	// MinItemPrice (discounts, change, points).
	SmallAmount  *regexp.Regexp
	MinItemPrice int64

	DateLine *regexp.Regexp
}

// Correction replaces every match of Pattern with Replacement.
type Correction struct {
	Pattern     *regexp.Regexp
	Replacement string
}

var defaultVocabulary = buildDefaultVocabulary()

// DefaultVocabulary returns the built-in Indonesian/English receipt
// vocabulary. The returned value is shared; callers must not modify it.
func DefaultVocabulary() *Vocabulary {
	return defaultVocabulary
}

func buildDefaultVocabulary() *Vocabulary {
	brands := []string{
		`MOMI\s*&\s*TOY'S\s*CR[EÊ]PERIE`,
		`MOMI\s*&\s*TOY'S`,
		`CR[EÊ]PERIE`,
		`YOMART\s*RAMBAY`,
		`UMMI\s*MART`,
		`INDOMARET`,
		`Pisang\s*Juara`,
		`TOSERBA\s*YOGYA\s*SUKABUMI`,
		`ALFAMART`,
		`WAL\s*\W?MART`,
		`COSTCO\s*WHOLESALE`,
		`Primo(?:\s*Family\s*Restaurant)?`,
		`WHOLE\s*FOODS\s*MARKET`,
		`MIGUELS\s*MEXICAN`,
	}
	v := &Vocabulary{
		MerchantAvoid: []string{
			"struk", "kasir", "tanggal", "jam", "npwp", "invoice", "no.", "id",
			"transaksi", "subtotal", "ppn", "pajak", "terima kasih", "selamat datang",
			"alamat", "telepon", "phone", "telp", "email", "fax", "admin", "cashier",
			"check", "bill", "kassa", "lippo", "mall", "kemang", "pos", "title",
			"recept", "rcpt", "pt", "cv", "pax", "op", "gunawan",
		},
		Boilerplate: regexp.MustCompile(`(?i)\b(?:` + strings.Join([]string{
			`npwp`, `kasir`, `struk`, `no\.?`, `invoice`, `id`, `pos`, `cashier`,
			`check`, `bill`, `kassa`, `rcpt#`, `rept#`, `title`, `pax`, `op`,
			`gunawan`, `lippo`, `mall`, `kemang`, `j`, `pr`, `emang`, `vi`, `no`,
			`ind`, `cin`, `ctw`, `i`, `ster`, `cr[eê]perie`, `pt`, `cv`, `litle`,
			`rept`, `rpt`, `alun`, `gunungparang`, `kec`, `cikole`, `kota`,
			`sukabumi`, `jawa`, `barat`, `indonesia`, `karyawan`,
		}, "|") + `)\b`),
		GenericNames: setOf(
			"mall", "kemang", "lippo", "o", "pr", "j", "vi", "no", "l", "alun",
			"gunungparang", "kec", "cikole", "kota", "sukabumi", "jawa", "barat",
			"indonesia", "karyawan", "supercenter", "wholesale", "foods", "family",
			"mexican",
		),
		Corrections: []Correction{
			{regexp.MustCompile(`O Mall`), ""},
			{regexp.MustCompile(`Momi Antoys`), "Momi & Toy's"},
			{regexp.MustCompile(`(?i)cr[eê]perie`), "Crêperie"},
		},
		ItemStart: []string{
			"item", "produk", "barang", "desc", "description", "nama barang",
			"qty", "harga", "price", "quantity", "menu",
		},
		ItemEnd: []string{
			"subtotal", "total", "tax", "ppn", "pajak", "grand total", "jumlah",
			"pembayaran", "terima kasih", "kembalian", "cash", "diskon", "charge",
			"change", "total jual", "total item", "total jenis", "closed bill",
			"amount due",
		},
		NonItemPrefix: regexp.MustCompile(`^\s*(?:no|check|date|time|pax|op|rcpt#|rept#)`),
		SmallAmount:   regexp.MustCompile(`(?i)disc|off|diskon|change|kembali|tax|ppn|pajak|point`),
		MinItemPrice:  500,
		DateLine:      regexp.MustCompile(`(?i)tanggal|date|tgl|waktu|time`),
	}
	for _, p := range brands {
		v.BrandPatterns = append(v.BrandPatterns, regexp.MustCompile(`(?i)`+p))
	}
	return v
}

func setOf(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
