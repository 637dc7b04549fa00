package main

import (
	"bytes"
	"context"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strukscan/pkg/extract"
	"strukscan/pkg/ocr"
	"strukscan/pkg/scan"
)

type textRecognizer string

func (r textRecognizer) Recognize(context.Context, []byte, int) (ocr.Recognition, error) {
	return ocr.Recognition{Text: string(r), Words: []ocr.Word{{Text: "x", Confidence: 80}}}, nil
}

func writePNG(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, imaging.Save(imaging.New(300, 60, color.White), filepath.Join(dir, name)))
}

func TestIsSupportedFile(t *testing.T) {
	for name, want := range map[string]bool{
		"a.PNG":       true,
		"b.jpeg":      true,
		"c.heic":      true,
		"d.pdf":       true,
		"e.txt":       false,
		"f.ocr.png":   false,
		"g.pre.png":   false,
		".hidden.jpg": false,
		"noextension": false,
	} {
		assert.Equal(t, want, isSupportedFile(name), name)
	}
}

func TestListImageFilesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.png", "a.jpg", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))
	assert.Equal(t, []string{"a.jpg", "b.png"}, listImageFiles(dir))
	assert.Nil(t, listImageFiles(filepath.Join(dir, "missing")))
}

func TestMimeFromExt(t *testing.T) {
	assert.Equal(t, "image/jpeg", mimeFromExt("x.JPG"))
	assert.Equal(t, "application/pdf", mimeFromExt("x.pdf"))
	assert.Equal(t, "", mimeFromExt("x.bin"))
}

func TestMoveToProcessedSmallFile(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "processed")
	writePNG(t, src, "r.png")

	got, err := moveToProcessed(filepath.Join(src, "r.png"), dst, "r.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dst, "r.png"), got)
	assert.FileExists(t, got)
	assert.NoFileExists(t, filepath.Join(src, "r.png"))
}

func TestDebouncer(t *testing.T) {
	d := newDebouncer(300 * time.Millisecond)
	t0 := time.Unix(1000, 0)
	d.touch("b.png", t0)
	d.touch("a.png", t0)
	assert.Empty(t, d.due(t0.Add(200*time.Millisecond)))

	d.touch("b.png", t0.Add(250*time.Millisecond))
	assert.Equal(t, []string{"a.png"}, d.due(t0.Add(400*time.Millisecond)))
	assert.Equal(t, []string{"b.png"}, d.due(t0.Add(600*time.Millisecond)))
	assert.Empty(t, d.due(t0.Add(time.Second)))
}

func TestRunWorkerPoolProcessesAll(t *testing.T) {
	var n int64
	runWorkerPool(4, feed([]string{"a", "b", "c", "d", "e"}), func(string) { atomic.AddInt64(&n, 1) })
	assert.EqualValues(t, 5, n)
}

func TestDryRunPrintsRecords(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "one.png")
	writePNG(t, dir, "two.png")

	opts := ocr.DefaultPreprocessOptions()
	opts.MaxSkew = 0
	sc := scan.New(ocr.NewSelector(textRecognizer("ALFAMART\nTOTAL 12.500"), []int{6}), extract.NewExtractor(), opts)
	var out bytes.Buffer
	p := &processor{sc: sc, dir: dir, dryRun: true, known: newPreloadState(), out: &out}

	runWorkerPool(2, feed(listImageFiles(dir)), p.processSingleFile)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.Contains(t, l, `"merchant_name":"Alfamart"`)
		assert.Contains(t, l, `"total":12500`)
	}
	// dry-run leaves the files in place
	assert.Len(t, listImageFiles(dir), 2)
}

func TestKnownHashIsSkipped(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "one.png")
	data, err := os.ReadFile(filepath.Join(dir, "one.png"))
	require.NoError(t, err)

	var out bytes.Buffer
	p := &processor{dir: dir, dryRun: true, known: newPreloadState(), out: &out}
	p.known.put(sha256Hex(data), 7)
	p.processSingleFile("one.png") // nil scanner would panic if reached
	assert.Empty(t, out.String())
}

func TestMissingFKs(t *testing.T) {
	found := map[[2]string]bool{{"users", "roles"}: true, {"uploads", "users"}: true}
	assert.Equal(t, [][2]string{{"receipts", "uploads"}, {"receipt_items", "receipts"}}, missingFKs(found))
}
