//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"minato-cat-support/internal/domain/reports"
	"minato-cat-support/internal/domain/roster"
	"minato-cat-support/internal/ports/auth"
)

func startDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("cats"),
		tcpostgres.WithUsername("cats"),
		tcpostgres.WithPassword("cats"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(ctx, db))
	// Dos veces: debe ser idempotente.
	require.NoError(t, Migrate(ctx, db))
	return db
}

func TestRosterRepo_Integration(t *testing.T) {
	db := startDB(t)
	repo := NewRosterRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.SaveZone(ctx, roster.Zone{ID: "zone2", Name: "第2区画 港湾・倉庫エリア"}, true))
	assert.ErrorIs(t, repo.SaveZone(ctx, roster.Zone{ID: "zone2", Name: "dup"}, true), roster.ErrAlreadyExists)

	lat, lng := 31.904, 131.464
	require.NoError(t, repo.SavePoint(ctx, roster.FeedingPoint{ID: "p08", Name: "⑧ 高フェンス", ZoneID: "zone2", Lat: &lat, Lng: &lng}, true))

	now := time.Now().UTC().Truncate(time.Microsecond)
	cat := roster.Cat{
		ID: "cat-p08-1", Name: "黒っぽいキジ", Features: "キジトラ (黒っぽい)",
		ZoneID: "zone2", PointID: "p08", SubPointIDs: []string{"p09"},
		Status: roster.StatusUnknown, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.SaveCat(ctx, cat, true))

	fed := now.Add(time.Hour)
	cat.LastFed = &fed
	cat.Status = roster.StatusHealthy
	require.NoError(t, repo.SaveCat(ctx, cat, false))

	got, err := repo.GetCat(ctx, "cat-p08-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p09"}, got.SubPointIDs)
	assert.Equal(t, roster.StatusHealthy, got.Status)
	require.NotNil(t, got.LastFed)
	assert.True(t, got.LastFed.Equal(fed))

	p, err := repo.GetPoint(ctx, "p08")
	require.NoError(t, err)
	assert.True(t, p.Located())

	assert.ErrorIs(t, repo.SaveCat(ctx, roster.Cat{ID: "ghost", CreatedAt: now, UpdatedAt: now}, false), roster.ErrNotFound)

	require.NoError(t, repo.SaveMember(ctx, roster.Member{ID: "admin-01", Name: "管理者", Role: auth.RoleAdmin}, true))
	members, err := repo.ListMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, auth.RoleAdmin, members[0].Role)
}

func TestReportsRepo_Integration(t *testing.T) {
	db := startDB(t)
	repo := NewReportsRepo(db)
	ctx := context.Background()

	for i, ts := range []int64{100, 300, 200, 400} {
		require.NoError(t, repo.Append(ctx, reports.Report{
			ID: string(rune('a' + i)), CatID: "c1", Condition: reports.ConditionGood, Timestamp: ts,
		}))
	}
	assert.ErrorIs(t, repo.Append(ctx, reports.Report{ID: "a", CatID: "c1", Condition: reports.ConditionGood, Timestamp: 1}), reports.ErrDuplicateReport)

	got, err := repo.ListByTimeRange(ctx, 100, 300)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(300), got[0].Timestamp)
	assert.Equal(t, int64(100), got[2].Timestamp)
}
