package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minato-cat-support/internal/adapters/storage/fixtures"
	mem "minato-cat-support/internal/adapters/storage/memory"
	"minato-cat-support/internal/domain/roster"
	"minato-cat-support/internal/platform/config"
	"minato-cat-support/internal/platform/logger"
)

func TestOpen_NoDSNIsLocalWithFixtures(t *testing.T) {
	ctx := context.Background()
	b, err := Open(ctx, config.Default(), logger.NewNop(), nil)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, ModeLocal, b.Mode)
	assert.Nil(t, b.DB)
	assert.NoError(t, b.Health(ctx))

	set := fixtures.Default()
	cats, err := b.Roster.ListCats(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(set.Cats))

	zones, err := b.Roster.ListZones(ctx)
	require.NoError(t, err)
	assert.Len(t, zones, len(set.Zones))
}

func TestSeed_SkipsNonEmptyUnlessForced(t *testing.T) {
	ctx := context.Background()
	repo := mem.NewRosterRepo()
	require.NoError(t, repo.SaveCat(ctx, roster.Cat{ID: "mine", Name: "自前"}, true))

	n, err := Seed(ctx, repo, fixtures.Default(), false)
	require.NoError(t, err)
	assert.Zero(t, n)

	set := fixtures.Default()
	n, err = Seed(ctx, repo, set, true)
	require.NoError(t, err)
	assert.Equal(t, len(set.Zones)+len(set.Points)+len(set.Cats)+len(set.Members), n)

	// Upsert: segunda pasada no falla con ErrAlreadyExists.
	_, err = Seed(ctx, repo, set, true)
	require.NoError(t, err)

	cats, _ := repo.ListCats(ctx)
	assert.Len(t, cats, len(set.Cats)+1)
}

func TestFixtures_Consistent(t *testing.T) {
	set := fixtures.Default()
	snap := roster.Snapshot{Cats: set.Cats, Points: set.Points, Zones: set.Zones, Members: set.Members}

	for _, c := range set.Cats {
		p, ok := snap.Point(c.PointID)
		require.True(t, ok, "cat %s primary point %s", c.ID, c.PointID)
		_, ok = snap.Zone(p.ZoneID)
		assert.True(t, ok, "point %s zone %s", p.ID, p.ZoneID)
		assert.LessOrEqual(t, len(c.SubPointIDs), roster.MaxSubPoints)
		assert.NotContains(t, c.SubPointIDs, c.PointID)
	}
}
