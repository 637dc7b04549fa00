// Package extract turns the recognized text of a retail receipt into a
// structured record: merchant, date, totals and line items.
//
// Extraction is heuristic. Each field is searched by an ordered list of
// matchers over a shared, read-only Vocabulary; a field nothing matches is
// left nil rather than guessed.
package extract

import "time"

// Result is the structured record for one receipt. Absent fields are nil and
// encode as JSON null.
type Result struct {
	MerchantName *string    `json:"merchant_name"`
	Date         *string    `json:"date"`
	Total        *int64     `json:"total"`
	Subtotal     *int64     `json:"subtotal"`
	Tax          *int64     `json:"tax"`
	Items        []LineItem `json:"items"`
	RawText      string     `json:"raw_text"`
}

// Extractor runs the field extractors. It holds no mutable state and is safe
// for concurrent use.
type Extractor struct {
	vocab    *Vocabulary
	now      func() time.Time
	total    []amountRule
	subtotal []amountRule
	tax      []amountRule
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithVocabulary replaces the built-in keyword tables.
func WithVocabulary(v *Vocabulary) Option {
	return func(e *Extractor) {
		if v != nil {
			e.vocab = v
		}
	}
}

// WithClock sets the clock used for the plausible-year window.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		vocab:    DefaultVocabulary(),
		now:      time.Now,
		total:    defaultTotalRules(),
		subtotal: defaultSubtotalRules(),
		tax:      defaultTaxRules(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract runs every field extractor over text. RawText is text unchanged.
func (e *Extractor) Extract(text string) Result {
	res := Result{Items: []LineItem{}, RawText: text}
	if name, ok := e.Merchant(text); ok {
		res.MerchantName = &name
	}
	if d, ok := e.Date(text); ok {
		res.Date = &d
	}
	if v, ok := e.Total(text); ok {
		res.Total = &v
	}
	if v, ok := e.Subtotal(text); ok {
		res.Subtotal = &v
	}
	if v, ok := e.Tax(text); ok {
		res.Tax = &v
	}
	if items := e.Items(text); len(items) > 0 {
		res.Items = items
	}
	return res
}

// Total returns the grand total.
func (e *Extractor) Total(text string) (int64, bool) { return firstAmount(e.total, text) }

// Subtotal returns the pre-tax amount.
func (e *Extractor) Subtotal(text string) (int64, bool) { return firstAmount(e.subtotal, text) }

// Tax returns the tax or service charge amount.
func (e *Extractor) Tax(text string) (int64, bool) { return firstAmount(e.tax, text) }
