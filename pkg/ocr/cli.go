package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Runner executes an external command. Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	if err != nil {
		log.Printf("WARN exec %s %s failed after %s: %v stderr=%q", name, strings.Join(args, " "), time.Since(start), err, snippet(errb.String(), 200))
	}
	return out.Bytes(), errb.Bytes(), err
}

// CLIRecognizer shells out to the tesseract binary and reads its TSV
// output, which carries both the words and their confidences.
type CLIRecognizer struct {
	Binary      string
	Lang        string
	DPI         int
	TessdataDir string

	runner Runner
}

// NewCLIRecognizer returns a recognizer for the tesseract binary on PATH.
func NewCLIRecognizer(lang string, dpi int) *CLIRecognizer {
	if lang == "" {
		lang = DefaultLanguage
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &CLIRecognizer{Binary: "tesseract", Lang: lang, DPI: dpi, runner: execRunner{}}
}

func (c *CLIRecognizer) Recognize(ctx context.Context, img []byte, psm int) (Recognition, error) {
	if c.runner == nil {
		c.runner = execRunner{}
	}
	if _, ok := c.runner.(execRunner); ok {
		if _, err := exec.LookPath(c.Binary); err != nil {
			return Recognition{}, fmt.Errorf("%w: %v", ErrRecognizerUnavailable, err)
		}
	}

	tmp, err := os.CreateTemp("", "strukscan-ocr-*.png")
	if err != nil {
		return Recognition{}, fmt.Errorf("temp image: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(img); err != nil {
		_ = tmp.Close()
		return Recognition{}, fmt.Errorf("write temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Recognition{}, fmt.Errorf("close temp image: %w", err)
	}

	args := []string{tmp.Name(), "stdout", "--oem", "3", "--psm", strconv.Itoa(psm), "-l", c.Lang, "--dpi", strconv.Itoa(c.DPI)}
	if c.TessdataDir != "" {
		args = append(args, "--tessdata-dir", c.TessdataDir)
	}
	args = append(args, "tsv")

	out, _, err := c.runner.Run(ctx, c.Binary, args...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return Recognition{}, fmt.Errorf("%w: %v", ErrRecognizerUnavailable, err)
		}
		return Recognition{}, fmt.Errorf("tesseract psm %d: %w", psm, err)
	}
	return parseTSV(string(out)), nil
}

// parseTSV rebuilds line-broken text from tesseract TSV rows. Words sharing
// block, paragraph and line numbers are joined by a space.
func parseTSV(tsv string) Recognition {
	var (
		rec     Recognition
		lines   []string
		cur     []string
		lastKey string
	)
	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, strings.Join(cur, " "))
			cur = nil
		}
	}
	for i, row := range strings.Split(tsv, "\n") {
		if i == 0 || row == "" {
			continue
		}
		cols := strings.Split(strings.TrimRight(row, "\r"), "\t")
		if len(cols) < 12 || cols[0] != "5" {
			continue
		}
		word := strings.TrimSpace(cols[11])
		if word == "" {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil {
			conf = -1
		}
		key := cols[2] + "/" + cols[3] + "/" + cols[4]
		if key != lastKey {
			flush()
			lastKey = key
		}
		cur = append(cur, word)
		rec.Words = append(rec.Words, Word{Text: word, Confidence: conf})
	}
	flush()
	rec.Text = strings.Join(lines, "\n")
	return rec
}
