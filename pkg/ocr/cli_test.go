package ocr

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t100\t100\t-1\t\n" +
	"4\t1\t1\t1\t1\t0\t0\t0\t100\t10\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t0\t0\t40\t10\t91.5\tINDOMARET\n" +
	"5\t1\t1\t1\t2\t1\t0\t12\t20\t10\t80\tTOTAL\n" +
	"5\t1\t1\t1\t2\t2\t22\t12\t20\t10\t70.5\t5.000\n"

type fakeRunner struct {
	out  string
	err  error
	args []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.args = append([]string{name}, args...)
	return []byte(f.out), nil, f.err
}

func TestParseTSV(t *testing.T) {
	rec := parseTSV(sampleTSV)
	assert.Equal(t, "INDOMARET\nTOTAL 5.000", rec.Text)
	require.Len(t, rec.Words, 3)
	assert.InDelta(t, 80.666, rec.MeanConfidence(), 0.01)
}

func TestCLIRecognizer(t *testing.T) {
	run := &fakeRunner{out: sampleTSV}
	c := NewCLIRecognizer("eng+ind", 300)
	c.runner = run
	rec, err := c.Recognize(context.Background(), []byte("png"), 11)
	require.NoError(t, err)
	assert.Equal(t, "INDOMARET\nTOTAL 5.000", rec.Text)
	joined := strings.Join(run.args, " ")
	assert.Contains(t, joined, "--psm 11")
	assert.Contains(t, joined, "-l eng+ind")
	assert.Contains(t, joined, "--dpi 300")
	assert.Equal(t, "tsv", run.args[len(run.args)-1])
}

func TestCLIRecognizerMissingBinary(t *testing.T) {
	c := NewCLIRecognizer("", 0)
	c.runner = &fakeRunner{err: &exec.Error{Name: "tesseract", Err: exec.ErrNotFound}}
	_, err := c.Recognize(context.Background(), []byte("png"), 6)
	assert.ErrorIs(t, err, ErrRecognizerUnavailable)
}

func TestCLIRecognizerRunFailure(t *testing.T) {
	c := NewCLIRecognizer("", 0)
	c.runner = &fakeRunner{err: errors.New("exit status 1")}
	_, err := c.Recognize(context.Background(), []byte("png"), 6)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRecognizerUnavailable)
}
