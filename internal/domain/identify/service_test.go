package identify

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minato-cat-support/internal/domain/roster"
	"minato-cat-support/internal/platform/metrics"
	"minato-cat-support/internal/ports/classifier"
)

type fakeClassifier struct {
	analysis classifier.Analysis
	matches  []classifier.Match
	err      error
	got      []classifier.Candidate
}

func (f *fakeClassifier) Analyze(context.Context, classifier.Image) (classifier.Analysis, error) {
	return f.analysis, f.err
}

func (f *fakeClassifier) Similar(_ context.Context, _ classifier.Image, c []classifier.Candidate) ([]classifier.Match, error) {
	f.got = c
	return f.matches, f.err
}

type fakeRoster struct {
	snap roster.Snapshot
	err  error
}

func (f fakeRoster) Snapshot(context.Context) (roster.Snapshot, error) { return f.snap, f.err }

var img = classifier.Image{MIMEType: "image/jpeg", Data: []byte("jpg")}

func threeCats() roster.Snapshot {
	return roster.Snapshot{Cats: []roster.Cat{
		{ID: "cat-1", Name: "クロ", Features: "黒"},
		{ID: "cat-2", Name: "トラ", Features: "キジトラ"},
		{ID: "cat-3", Name: "ミケ", Features: "三毛"},
		{ID: "cat-4", Name: "シロ", Features: "白"},
	}}
}

func TestAnalyze_FallbackOnError(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(&fakeClassifier{err: errors.New("quota")}, fakeRoster{}, nil, m)

	a := svc.Analyze(context.Background(), img)
	assert.False(t, a.IsCat)
	assert.Equal(t, classifier.QualityLow, a.Quality)
	assert.Equal(t, FallbackMessage, a.Message)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ClassifierCalls.WithLabelValues("analyze", "error")))
}

func TestAnalyze_Unconfigured(t *testing.T) {
	a := NewService(nil, fakeRoster{}, nil, nil).Analyze(context.Background(), img)
	assert.Equal(t, FallbackMessage, a.Message)
}

func TestAnalyze_OK(t *testing.T) {
	want := classifier.Analysis{IsCat: true, Quality: classifier.QualityHigh, Features: "キジトラ"}
	got := NewService(&fakeClassifier{analysis: want}, fakeRoster{}, nil, nil).Analyze(context.Background(), img)
	assert.Equal(t, want, got)
}

func TestSimilar_RanksClampsAndFilters(t *testing.T) {
	cls := &fakeClassifier{matches: []classifier.Match{
		{CatID: "cat-1", Score: 0.3},
		{CatID: "ghost", Score: 0.99},
		{CatID: "cat-2", Score: 1.7},
		{CatID: "cat-2", Score: 0.1},
		{CatID: "cat-3", Score: -0.5},
		{CatID: "cat-4", Score: 0.6},
	}}
	svc := NewService(cls, fakeRoster{snap: threeCats()}, nil, nil)

	got, err := svc.Similar(context.Background(), img)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "cat-2", got[0].CatID)
	assert.Equal(t, 1.0, got[0].Score)
	assert.Equal(t, "トラ", got[0].Name)
	assert.Equal(t, "cat-4", got[1].CatID)
	assert.Equal(t, "cat-1", got[2].CatID)

	require.Len(t, cls.got, 4)
	assert.Equal(t, "キジトラ", cls.got[1].Features)
}

func TestSimilar_Degrades(t *testing.T) {
	got, err := NewService(&fakeClassifier{err: errors.New("down")}, fakeRoster{snap: threeCats()}, nil, nil).
		Similar(context.Background(), img)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = NewService(&fakeClassifier{}, fakeRoster{}, nil, nil).Similar(context.Background(), img)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = NewService(&fakeClassifier{}, fakeRoster{err: errors.New("db")}, nil, nil).Similar(context.Background(), img)
	assert.Error(t, err)
}

func TestDecodeImage(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))

	got, err := DecodeImage("data:image/png;base64," + raw)
	require.NoError(t, err)
	assert.Equal(t, "image/png", got.MIMEType)
	assert.Equal(t, []byte("jpeg-bytes"), got.Data)

	got, err = DecodeImage(raw)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", got.MIMEType)

	for _, bad := range []string{"", "   ", "data:image/png,notbase64", "%%%"} {
		_, err := DecodeImage(bad)
		assert.ErrorIs(t, err, ErrInvalidImage, "input %q", bad)
	}
}
