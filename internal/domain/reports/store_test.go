package reports

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minato-cat-support/internal/platform/metrics"
)

// -------------------------
// Test doubles
// -------------------------

type testRepo struct {
	items   []Report
	failErr error
}

func (r *testRepo) Append(ctx context.Context, rep Report) error {
	if r.failErr != nil {
		return r.failErr
	}
	for _, it := range r.items {
		if it.ID == rep.ID {
			return ErrDuplicateReport
		}
	}
	r.items = append(r.items, rep)
	return nil
}

func (r *testRepo) ListByTimeRange(ctx context.Context, startMs, endMs int64) ([]Report, error) {
	if r.failErr != nil {
		return nil, r.failErr
	}
	// Sin ordenar a propósito: el Store garantiza el orden.
	out := make([]Report, 0)
	for _, it := range r.items {
		if it.Timestamp >= startMs && it.Timestamp <= endMs {
			out = append(out, it)
		}
	}
	return out, nil
}

type testBlobs struct {
	puts    map[string][]byte
	failErr error
}

func (b *testBlobs) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if b.failErr != nil {
		return "", b.failErr
	}
	if b.puts == nil {
		b.puts = map[string][]byte{}
	}
	b.puts[key] = data
	return "/photos/" + key, nil
}

// blockingBlobs no responde hasta que se cancele el contexto (bucket colgado).
type blockingBlobs struct{}

func (blockingBlobs) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func jst() *time.Location {
	return time.FixedZone("JST", 9*60*60)
}

func dataURL(mime string, raw []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw)
}

// -------------------------
// Tests
// -------------------------

func TestDayBounds_LocalDay(t *testing.T) {
	loc := jst()
	date := time.Date(2025, 3, 10, 15, 4, 5, 0, loc)

	start, end := DayBounds(date, loc)

	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, loc).UnixMilli(), start)
	assert.Equal(t, time.Date(2025, 3, 10, 23, 59, 59, 999_000_000, loc).UnixMilli(), end)

	// 00:30 JST sigue siendo el mismo día local aunque en UTC sea el día anterior.
	early := time.Date(2025, 3, 10, 0, 30, 0, 0, loc)
	assert.GreaterOrEqual(t, early.UnixMilli(), start)
	assert.Equal(t, 9, early.UTC().Day())
}

func TestStore_QueryByDay_OrderedDescAndBounded(t *testing.T) {
	loc := jst()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)
	repo := &testRepo{items: []Report{
		{ID: "a", CatID: "c1", Timestamp: day.Add(8 * time.Hour).UnixMilli()},
		{ID: "b", CatID: "c1", Timestamp: day.Add(20 * time.Hour).UnixMilli()},
		{ID: "c", CatID: "c2", Timestamp: day.Add(-time.Millisecond).UnixMilli()},
		{ID: "d", CatID: "c2", Timestamp: day.Add(24*time.Hour - time.Millisecond).UnixMilli()},
		{ID: "e", CatID: "c3", Timestamp: day.Add(24 * time.Hour).UnixMilli()},
	}}
	s := NewStore(repo, nil, nil, nil)

	got, err := s.QueryByDay(context.Background(), day.Add(12*time.Hour), loc)
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"d", "b", "a"}, ids)
}

func TestStore_Append_RelocatesInlinePhoto(t *testing.T) {
	repo := &testRepo{}
	blobs := &testBlobs{}
	s := NewStore(repo, blobs, nil, nil)

	r := Report{ID: "r1", CatID: "c1", Timestamp: 1, UrgentPhoto: dataURL("image/jpeg", []byte("jpeg-bytes"))}
	stored, err := s.Append(context.Background(), r)
	require.NoError(t, err)

	assert.Equal(t, "/photos/reports/r1/urgent.jpg", stored.UrgentPhoto)
	assert.Equal(t, []byte("jpeg-bytes"), blobs.puts["reports/r1/urgent.jpg"])
	require.Len(t, repo.items, 1)
	assert.Equal(t, stored.UrgentPhoto, repo.items[0].UrgentPhoto)
}

func TestStore_Append_PhotoFailureDegradesToInline(t *testing.T) {
	repo := &testRepo{}
	m := metrics.New(prometheus.NewRegistry())
	s := NewStore(repo, &testBlobs{failErr: errors.New("bucket down")}, nil, m)

	inline := dataURL("image/png", []byte("png"))
	stored, err := s.Append(context.Background(), Report{ID: "r1", CatID: "c1", Timestamp: 1, UrgentPhoto: inline})
	require.NoError(t, err)

	assert.Equal(t, inline, stored.UrgentPhoto)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PhotoRelocationFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsAppended.WithLabelValues("ok")))
}

func TestStore_Append_PhotoUploadIsBoundedByTimeout(t *testing.T) {
	repo := &testRepo{}
	m := metrics.New(prometheus.NewRegistry())
	s := NewStore(repo, blockingBlobs{}, nil, m).WithPhotoTimeout(50 * time.Millisecond)

	inline := dataURL("image/jpeg", []byte("jpeg"))
	start := time.Now()
	stored, err := s.Append(context.Background(), Report{ID: "r1", CatID: "c1", Timestamp: 1, UrgentPhoto: inline})
	elapsed := time.Since(start)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
	assert.Equal(t, inline, stored.UrgentPhoto)
	require.Len(t, repo.items, 1)
	assert.Equal(t, inline, repo.items[0].UrgentPhoto)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PhotoRelocationFailures))
}

func TestStore_Append_NonInlinePhotoUntouched(t *testing.T) {
	blobs := &testBlobs{}
	s := NewStore(&testRepo{}, blobs, nil, nil)

	stored, err := s.Append(context.Background(), Report{ID: "r1", CatID: "c1", Timestamp: 1, UrgentPhoto: "/photos/x.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "/photos/x.jpg", stored.UrgentPhoto)
	assert.Empty(t, blobs.puts)
}

func TestStore_UnavailableSurfacesStoreError(t *testing.T) {
	s := NewStore(&testRepo{failErr: errors.New("connection refused")}, nil, nil, nil)

	_, err := s.Append(context.Background(), Report{ID: "r1", CatID: "c1", Timestamp: 1})
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = s.QueryByDateRange(context.Background(), 0, 10)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestStore_Append_Validation(t *testing.T) {
	s := NewStore(&testRepo{}, nil, nil, nil)

	_, err := s.Append(context.Background(), Report{CatID: "c1", Timestamp: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.QueryByDateRange(context.Background(), 10, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDecodeDataURL(t *testing.T) {
	data, ct, err := DecodeDataURL(dataURL("image/webp", []byte{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, "image/webp", ct)
	assert.Equal(t, []byte{1, 2, 3}, data)

	for _, bad := range []string{"", "http://x/y.jpg", "data:image/png,plain", "data:image/png;base64,@@@"} {
		_, _, err := DecodeDataURL(bad)
		assert.ErrorIs(t, err, ErrInvalidDataURL, bad)
	}
}

func TestReport_IsIncident(t *testing.T) {
	assert.True(t, Report{Condition: ConditionBad}.IsIncident())
	assert.True(t, Report{Condition: ConditionInjured}.IsIncident())
	assert.True(t, Report{Condition: ConditionGood, UrgentDetail: "limping"}.IsIncident())
	assert.False(t, Report{Condition: ConditionGood, UrgentDetail: "  "}.IsIncident())
	assert.False(t, Report{Condition: ConditionGood, AttentionDetail: "thin"}.IsIncident())
}
