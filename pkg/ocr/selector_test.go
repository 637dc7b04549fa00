package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResult struct {
	rec Recognition
	err error
}

type fakeRecognizer struct {
	byPSM map[int]fakeResult
	calls []int
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ []byte, psm int) (Recognition, error) {
	f.calls = append(f.calls, psm)
	r := f.byPSM[psm]
	return r.rec, r.err
}

func words(confs ...float64) []Word {
	out := make([]Word, len(confs))
	for i, c := range confs {
		out[i] = Word{Text: "w", Confidence: c}
	}
	return out
}

func TestSelectorPicksHighestMeanConfidence(t *testing.T) {
	rec := &fakeRecognizer{byPSM: map[int]fakeResult{
		6:  {rec: Recognition{Text: "low", Words: words(40, 50)}},
		3:  {rec: Recognition{Text: "high", Words: words(90, 80, -1)}},
		4:  {rec: Recognition{Text: "mid", Words: words(70)}},
		11: {rec: Recognition{Text: "  ", Words: words(99)}},
		12: {rec: Recognition{Text: "tie", Words: words(85)}},
	}}
	cand, err := NewSelector(rec, nil).Best(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, 3, cand.PSM)
	assert.Equal(t, "high", cand.Text)
	assert.InDelta(t, 85.0, cand.Confidence, 1e-9)
	assert.Equal(t, []int{6, 3, 4, 11, 12}, rec.calls)
	assert.Len(t, cand.Attempts, 5)
}

func TestSelectorSkipsFailingMode(t *testing.T) {
	rec := &fakeRecognizer{byPSM: map[int]fakeResult{
		6: {err: errors.New("boom")},
		3: {rec: Recognition{Text: "TOTAL 5.000", Words: words(60)}},
	}}
	cand, err := NewSelector(rec, []int{6, 3}).Best(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, cand.PSM)
	require.Len(t, cand.Attempts, 2)
	assert.Error(t, cand.Attempts[0].Err)
	assert.False(t, cand.Attempts[0].OK())
}

func TestSelectorNoText(t *testing.T) {
	rec := &fakeRecognizer{byPSM: map[int]fakeResult{}}
	_, err := NewSelector(rec, nil).Best(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoTextDetected)
}

func TestSelectorUnavailableStopsImmediately(t *testing.T) {
	rec := &fakeRecognizer{byPSM: map[int]fakeResult{
		6: {err: ErrRecognizerUnavailable},
	}}
	_, err := NewSelector(rec, nil).Best(context.Background(), nil)
	assert.ErrorIs(t, err, ErrRecognizerUnavailable)
	assert.Equal(t, []int{6}, rec.calls)
}

func TestSelectorZeroConfidenceStillWins(t *testing.T) {
	rec := &fakeRecognizer{byPSM: map[int]fakeResult{
		6: {rec: Recognition{Text: "faint", Words: words(-1)}},
	}}
	cand, err := NewSelector(rec, []int{6}).Best(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "faint", cand.Text)
	assert.Zero(t, cand.Confidence)
}

func TestSelectorHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &fakeRecognizer{byPSM: map[int]fakeResult{}}
	_, err := NewSelector(rec, nil).Best(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.calls)
}

func TestMeanConfidence(t *testing.T) {
	assert.InDelta(t, 50.0, Recognition{Words: words(40, 60, -1)}.MeanConfidence(), 1e-9)
	assert.Zero(t, Recognition{}.MeanConfidence())
	assert.Zero(t, Recognition{Words: words(-1, -1)}.MeanConfidence())
}
