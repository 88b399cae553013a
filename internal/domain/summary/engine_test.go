package summary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minato-cat-support/internal/domain/calendar"
	"minato-cat-support/internal/domain/reports"
	"minato-cat-support/internal/domain/roster"
	"minato-cat-support/internal/platform/metrics"
	"minato-cat-support/internal/ports/auth"
)

// -------------------------
// Test doubles
// -------------------------

type testSource struct {
	items   []reports.Report
	calls   int
	failErr error
}

func (s *testSource) QueryByDateRange(ctx context.Context, startMs, endMs int64) ([]reports.Report, error) {
	s.calls++
	if s.failErr != nil {
		return nil, s.failErr
	}
	out := []reports.Report{}
	for _, r := range s.items {
		if r.Timestamp >= startMs && r.Timestamp <= endMs {
			out = append(out, r)
		}
	}
	return out, nil
}

type testRoster struct {
	snap roster.Snapshot
	err  error
}

func (r testRoster) Snapshot(ctx context.Context) (roster.Snapshot, error) {
	return r.snap, r.err
}

var jst = time.FixedZone("JST", 9*60*60)

func day() time.Time { return time.Date(2025, 3, 10, 0, 0, 0, 0, jst) }

func at(h int) int64 { return day().Add(time.Duration(h) * time.Hour).UnixMilli() }

func fiveCatRoster() roster.Snapshot {
	return roster.Snapshot{
		Zones: []roster.Zone{
			{ID: "zone1", Name: "第1区画"},
			{ID: "zone2", Name: "第2区画"},
			{ID: "zone3", Name: "第3区画"},
		},
		Points: []roster.FeedingPoint{
			{ID: "p01", Name: "① 工場前", ZoneID: "zone1"},
			{ID: "p08", Name: "⑧ 高フェンス", ZoneID: "zone2"},
		},
		Cats: []roster.Cat{
			{ID: "c1", Name: "クロ", PointID: "p01", ZoneID: "zone1"},
			{ID: "c2", Name: "シロ", PointID: "p01", ZoneID: "zone1"},
			{ID: "c3", Name: "ミケ", PointID: "p08", ZoneID: "zone2"},
			{ID: "c4", Name: "トラ", PointID: "p08", ZoneID: "zone2"},
			// p99 no existe: cae al ZoneID guardado.
			{ID: "c5", Name: "サビ", PointID: "p99", ZoneID: "zone2"},
		},
	}
}

func ids(cs []roster.Cat) []string {
	out := []string{}
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

// -------------------------
// Tests
// -------------------------

func TestSummarize_UnfedByDefault(t *testing.T) {
	src := &testSource{items: []reports.Report{
		{ID: "r1", CatID: "c1", Fed: true, Condition: reports.ConditionGood, Timestamp: at(8)},
		{ID: "r2", CatID: "c3", Fed: true, Condition: reports.ConditionGood, Timestamp: at(9)},
	}}
	e := NewEngine(src, jst, nil, nil)

	s, err := e.Summarize(context.Background(), day().Add(12*time.Hour), fiveCatRoster())
	require.NoError(t, err)

	assert.Equal(t, "2025-03-10", s.Date)
	assert.Equal(t, []string{"c1", "c3"}, s.FedCatIDs)
	assert.Equal(t, []string{"c2", "c4", "c5"}, ids(s.UnfedCats))
	assert.Equal(t, 3, s.TotalUnfed)
	assert.Equal(t, 2, s.TotalFed)
}

func TestSummarize_FedSetIsUnion(t *testing.T) {
	src := &testSource{items: []reports.Report{
		{ID: "r1", CatID: "c1", Fed: false, Timestamp: at(7)},
		{ID: "r2", CatID: "c1", Fed: true, Timestamp: at(8)},
		// Un reporte posterior sin comida no deshace la comida anterior.
		{ID: "r3", CatID: "c2", Fed: true, Timestamp: at(7)},
		{ID: "r4", CatID: "c2", Fed: false, Timestamp: at(18)},
	}}
	e := NewEngine(src, jst, nil, nil)

	s, err := e.Summarize(context.Background(), day(), fiveCatRoster())
	require.NoError(t, err)

	assert.Equal(t, []string{"c1", "c2"}, s.FedCatIDs)
	assert.NotContains(t, ids(s.UnfedCats), "c1")
	assert.NotContains(t, ids(s.UnfedCats), "c2")
}

func TestSummarize_IncidentOrLogic(t *testing.T) {
	src := &testSource{items: []reports.Report{
		{ID: "good-urgent", CatID: "c3", Condition: reports.ConditionGood, UrgentDetail: "右目が腫れている", Timestamp: at(10)},
		{ID: "bad", CatID: "c1", Condition: reports.ConditionBad, Timestamp: at(9)},
		{ID: "injured", CatID: "ghost", Condition: reports.ConditionInjured, Timestamp: at(8)},
		{ID: "fine", CatID: "c2", Condition: reports.ConditionGood, AttentionDetail: "少し痩せた", Timestamp: at(7)},
	}}
	e := NewEngine(src, jst, nil, nil)

	s, err := e.Summarize(context.Background(), day(), fiveCatRoster())
	require.NoError(t, err)

	require.Len(t, s.Incidents, 3)
	assert.Equal(t, "good-urgent", s.Incidents[0].Report.ID)
	assert.Equal(t, "ミケ", s.Incidents[0].CatName)
	assert.Equal(t, "⑧ 高フェンス", s.Incidents[0].PointName)
	assert.Equal(t, "bad", s.Incidents[1].Report.ID)
	// Gato fuera del padrón: se reporta sin nombres.
	assert.Equal(t, "injured", s.Incidents[2].Report.ID)
	assert.Empty(t, s.Incidents[2].CatName)
}

func TestSummarize_ZoneGroupingCompleteness(t *testing.T) {
	src := &testSource{items: []reports.Report{
		{ID: "r1", CatID: "c1", Fed: true, Timestamp: at(8)},
		{ID: "r2", CatID: "c2", Fed: true, Timestamp: at(8)},
	}}
	e := NewEngine(src, jst, nil, nil)

	s, err := e.Summarize(context.Background(), day(), fiveCatRoster())
	require.NoError(t, err)

	require.Len(t, s.Zones, 3)
	sum := 0
	byID := map[string]ZoneBreakdown{}
	for _, z := range s.Zones {
		byID[z.ZoneID] = z
		sum += z.UnfedCount
	}
	assert.Equal(t, s.TotalUnfed, sum)

	assert.True(t, byID["zone1"].Complete)
	assert.Equal(t, 0, byID["zone1"].UnfedCount)
	assert.True(t, byID["zone3"].Complete)
	assert.False(t, byID["zone2"].Complete)
	assert.Equal(t, []string{"c3", "c4", "c5"}, ids(byID["zone2"].UnfedCats))
}

func TestSummarize_UnknownZoneGoesToUnassigned(t *testing.T) {
	snap := fiveCatRoster()
	snap.Cats = append(snap.Cats, roster.Cat{ID: "c6", PointID: "p77", ZoneID: "zone9"})
	e := NewEngine(&testSource{}, jst, nil, nil)

	s, err := e.Summarize(context.Background(), day(), snap)
	require.NoError(t, err)

	last := s.Zones[len(s.Zones)-1]
	assert.Equal(t, UnassignedZoneID, last.ZoneID)
	assert.Equal(t, []string{"c6"}, ids(last.UnfedCats))

	sum := 0
	for _, z := range s.Zones {
		sum += z.UnfedCount
	}
	assert.Equal(t, 6, sum)
	assert.Equal(t, 6, s.TotalUnfed)
}

func TestSummarize_EmptyRoster(t *testing.T) {
	src := &testSource{items: []reports.Report{{ID: "r", CatID: "x", Condition: reports.ConditionBad, Timestamp: at(1)}}}
	e := NewEngine(src, jst, nil, nil)

	s, err := e.Summarize(context.Background(), day(), roster.Snapshot{Zones: []roster.Zone{{ID: "zone1"}}})
	require.NoError(t, err)

	assert.Empty(t, s.Incidents)
	assert.Empty(t, s.UnfedCats)
	assert.Equal(t, 0, s.TotalUnfed)
	require.Len(t, s.Zones, 1)
	assert.True(t, s.Zones[0].Complete)
	assert.Zero(t, src.calls)
}

func TestSummarize_OnlyLocalDay(t *testing.T) {
	src := &testSource{items: []reports.Report{
		{ID: "prev", CatID: "c1", Fed: true, Timestamp: day().Add(-time.Millisecond).UnixMilli()},
		{ID: "next", CatID: "c2", Fed: true, Timestamp: day().Add(24 * time.Hour).UnixMilli()},
		{ID: "late", CatID: "c3", Fed: true, Timestamp: day().Add(24*time.Hour - time.Millisecond).UnixMilli()},
	}}
	e := NewEngine(src, jst, nil, nil)

	s, err := e.Summarize(context.Background(), day(), fiveCatRoster())
	require.NoError(t, err)
	assert.Equal(t, []string{"c3"}, s.FedCatIDs)
}

func TestSummarize_SourceError(t *testing.T) {
	e := NewEngine(&testSource{failErr: reports.ErrStoreUnavailable}, jst, nil, nil)

	_, err := e.Summarize(context.Background(), day(), fiveCatRoster())
	assert.ErrorIs(t, err, reports.ErrStoreUnavailable)
}

func TestSummarize_RecordsMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	e := NewEngine(&testSource{}, jst, nil, m)

	_, err := e.Summarize(context.Background(), day(), fiveCatRoster())
	require.NoError(t, err)
	assert.Equal(t, 5.0, testutil.ToFloat64(m.UnfedCats))
}

func TestService_ForDate_GatesByRole(t *testing.T) {
	policy := calendar.DefaultPolicy(jst)
	svc := NewService(NewEngine(&testSource{}, jst, nil, nil), testRoster{snap: fiveCatRoster()}, policy)
	svc.now = func() time.Time { return time.Date(2025, 3, 31, 10, 0, 0, 0, jst) }
	ctx := context.Background()

	old := time.Date(2025, 3, 2, 0, 0, 0, 0, jst)

	_, err := svc.ForDate(ctx, auth.Actor{ID: "u", Role: auth.RoleGeneral}, old)
	assert.ErrorIs(t, err, ErrDateNotSelectable)

	s, err := svc.ForDate(ctx, auth.Actor{ID: "a", Role: auth.RoleAdmin}, old)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-02", s.Date)

	_, err = svc.ForDate(ctx, auth.Actor{ID: "a", Role: auth.RoleAdmin}, time.Date(2025, 4, 1, 0, 0, 0, 0, jst))
	assert.ErrorIs(t, err, ErrDateNotSelectable)
}

func TestService_ForDate_RosterUnavailable(t *testing.T) {
	svc := NewService(NewEngine(&testSource{}, jst, nil, nil), testRoster{err: errors.New("down")}, calendar.DefaultPolicy(jst))
	svc.now = func() time.Time { return time.Date(2025, 3, 31, 10, 0, 0, 0, jst) }

	_, err := svc.ForDate(context.Background(), auth.Actor{ID: "a", Role: auth.RoleAdmin}, svc.now())
	assert.ErrorIs(t, err, reports.ErrStoreUnavailable)
}
