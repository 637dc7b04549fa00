package scan

import (
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strukscan/pkg/config"
	"strukscan/pkg/extract"
	"strukscan/pkg/ocr"
)

type stubRecognizer struct {
	text string
	err  error
}

func (s stubRecognizer) Recognize(context.Context, []byte, int) (ocr.Recognition, error) {
	if s.err != nil {
		return ocr.Recognition{}, s.err
	}
	return ocr.Recognition{Text: s.text, Words: []ocr.Word{{Text: "x", Confidence: 75}}}, nil
}

func testImage(t *testing.T) []byte {
	t.Helper()
	b, err := ocr.EncodePNG(imaging.New(600, 80, color.White))
	require.NoError(t, err)
	return b
}

func newScanner(rec ocr.Recognizer) *Scanner {
	o := ocr.DefaultPreprocessOptions()
	o.MaxSkew = 0
	return New(ocr.NewSelector(rec, []int{6}), extract.NewExtractor(), o)
}

func TestBytesSuccess(t *testing.T) {
	s := newScanner(stubRecognizer{text: "ALFAMART\n  TOTAL   Rp 12.500 **"})
	out := s.Bytes(context.Background(), testImage(t), "image/png")
	require.False(t, out.Failed(), out.Error)
	require.NotNil(t, out.Result.MerchantName)
	assert.Equal(t, "Alfamart", *out.Result.MerchantName)
	require.NotNil(t, out.Result.Total)
	assert.EqualValues(t, 12500, *out.Result.Total)
	assert.Equal(t, "ALFAMART\nTOTAL Rp 12.500", out.Result.RawText)
	assert.Equal(t, 6, out.PSM)
	assert.InDelta(t, 75, out.Confidence, 1e-9)
}

func TestBytesErrors(t *testing.T) {
	cases := []struct {
		name string
		rec  ocr.Recognizer
		data []byte
		want string
	}{
		{"unavailable", stubRecognizer{err: ocr.ErrRecognizerUnavailable}, nil, MsgRecognizerUnavailable},
		{"no text", stubRecognizer{text: "   "}, nil, MsgNoText},
		{"bad image", stubRecognizer{text: "x"}, []byte("garbage"), MsgPreprocess},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			data := c.data
			if data == nil {
				data = testImage(t)
			}
			out := newScanner(c.rec).Bytes(context.Background(), data, "")
			assert.True(t, out.Failed())
			assert.Equal(t, c.want, out.Error)
		})
	}
}

func TestErrorMessageGeneric(t *testing.T) {
	assert.Equal(t, "An error occurred during OCR: boom", ErrorMessage(errors.New("boom")))
}

func TestOutputJSONShapes(t *testing.T) {
	b, err := json.Marshal(failure(MsgNoText))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"OCR did not detect any text on the image."}`, string(b))

	s := newScanner(stubRecognizer{})
	b, err = json.Marshal(s.Text(""))
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Len(t, m, 7)
	for _, k := range []string{"merchant_name", "date", "total", "subtotal", "tax", "items", "raw_text"} {
		assert.Contains(t, m, k)
	}
	assert.Nil(t, m["total"])
}

func TestFromConfig(t *testing.T) {
	s, err := FromConfig(config.OCRConfig{Engine: "cli", Lang: "eng", PSMModes: "6, 11", DPI: 200, TessdataPrefix: "/tess"})
	require.NoError(t, err)
	assert.Equal(t, []int{6, 11}, s.selector.Modes())

	cli, ok := Recognizer(config.OCRConfig{Engine: "cli", TessdataPrefix: "/tess"}).(*ocr.CLIRecognizer)
	require.True(t, ok)
	assert.Equal(t, "/tess", cli.TessdataDir)
	assert.Equal(t, ocr.DefaultLanguage, cli.Lang)

	_, ok = Recognizer(config.OCRConfig{Engine: "gosseract"}).(*ocr.TesseractRecognizer)
	assert.True(t, ok)

	_, err = FromConfig(config.OCRConfig{PSMModes: "6,x"})
	assert.Error(t, err)
}
