//go:build integration

package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"minato-cat-support/internal/adapters/storage/memory"
	"minato-cat-support/internal/domain/roster"
	"minato-cat-support/internal/platform/logger"
	"minato-cat-support/internal/platform/metrics"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	addr, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	opts, err := redis.ParseURL(addr)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRosterRepo_ReadThroughAndInvalidate(t *testing.T) {
	ctx := context.Background()
	client := newRedis(t)

	inner := memory.NewRosterRepo()
	require.NoError(t, inner.SaveZone(ctx, roster.Zone{ID: "zone1", Name: "港北"}, true))
	require.NoError(t, inner.SavePoint(ctx, roster.FeedingPoint{ID: "p01", ZoneID: "zone1"}, true))

	m := metrics.New(prometheus.NewRegistry())
	repo := NewRosterRepo(inner, client, time.Minute, logger.NewNop(), m)

	_, err := repo.ListZones(ctx)
	require.NoError(t, err)
	zones, err := repo.ListZones(ctx)
	require.NoError(t, err)
	require.Len(t, zones, 1)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RosterCache.WithLabelValues("miss")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RosterCache.WithLabelValues("hit")))

	// Escribir por fuera del cache no se ve hasta invalidar.
	require.NoError(t, inner.SaveZone(ctx, roster.Zone{ID: "zone2"}, true))
	zones, _ = repo.ListZones(ctx)
	assert.Len(t, zones, 1)

	require.NoError(t, repo.SaveZone(ctx, roster.Zone{ID: "zone3"}, true))
	zones, err = repo.ListZones(ctx)
	require.NoError(t, err)
	assert.Len(t, zones, 3)

	n, err := client.Exists(ctx, keyPoints).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestRosterRepo_CachedCatKeepsPointers(t *testing.T) {
	ctx := context.Background()
	client := newRedis(t)

	inner := memory.NewRosterRepo()
	fed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, inner.SaveCat(ctx, roster.Cat{
		ID: "cat-1", Name: "クロ", PointID: "p01", SubPointIDs: []string{"p02"},
		Status: roster.StatusHealthy, LastFed: &fed,
	}, true))

	repo := NewRosterRepo(inner, client, time.Minute, logger.NewNop(), nil)
	_, err := repo.ListCats(ctx)
	require.NoError(t, err)

	cats, err := repo.ListCats(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	require.NotNil(t, cats[0].LastFed)
	assert.True(t, fed.Equal(*cats[0].LastFed))
	assert.Equal(t, []string{"p02"}, cats[0].SubPointIDs)
}

// slowZones entrega la lista ya cargada después de que corre onLoaded,
// como una lectura que pierde la carrera contra un save.
type slowZones struct {
	roster.Repository
	onLoaded func()
}

func (s *slowZones) ListZones(ctx context.Context) ([]roster.Zone, error) {
	zones, err := s.Repository.ListZones(ctx)
	if s.onLoaded != nil {
		hook := s.onLoaded
		s.onLoaded = nil
		hook()
	}
	return zones, err
}

func TestRosterRepo_StaleReadDoesNotOverwriteInvalidation(t *testing.T) {
	ctx := context.Background()
	client := newRedis(t)

	inner := &slowZones{Repository: memory.NewRosterRepo()}
	require.NoError(t, inner.SaveZone(ctx, roster.Zone{ID: "zone1"}, true))

	repo := NewRosterRepo(inner, client, time.Minute, logger.NewNop(), nil)
	inner.onLoaded = func() {
		require.NoError(t, repo.SaveZone(ctx, roster.Zone{ID: "zone2"}, true))
	}

	stale, err := repo.ListZones(ctx)
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	n, err := client.Exists(ctx, keyZones).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "a read loaded before the save must not repopulate the cache")

	zones, err := repo.ListZones(ctx)
	require.NoError(t, err)
	assert.Len(t, zones, 2)
}
