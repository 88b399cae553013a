package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"minato-cat-support/internal/domain/roster"
	"minato-cat-support/internal/platform/logger"
	"minato-cat-support/internal/platform/metrics"
)

const (
	keyPrefix  = "roster:"
	keyCats    = keyPrefix + "cats"
	keyPoints  = keyPrefix + "points"
	keyZones   = keyPrefix + "zones"
	keyMembers = keyPrefix + "members"
	// keyGen sube en cada invalidación; una lectura cargada antes no puede escribir después.
	keyGen = keyPrefix + "gen"

	DefaultTTL = 5 * time.Minute
)

var allKeys = []string{keyCats, keyPoints, keyZones, keyMembers}

// setIfGen escribe KEYS[1] solo si KEYS[2] sigue valiendo ARGV[2].
var setIfGen = redis.NewScript(`
local cur = redis.call('GET', KEYS[2]) or '0'
if cur ~= ARGV[2] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// RosterRepo es un cache read-through de las listas del padrón.
// Cualquier Save invalida todas las listas; si redis falla se lee del repo de abajo.
type RosterRepo struct {
	next    roster.Repository
	client  redis.Cmdable
	ttl     time.Duration
	log     logger.Logger
	metrics *metrics.Metrics
}

func NewRosterRepo(next roster.Repository, client redis.Cmdable, ttl time.Duration, log logger.Logger, m *metrics.Metrics) *RosterRepo {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &RosterRepo{
		next:    next,
		client:  client,
		ttl:     ttl,
		log:     log.With(map[string]any{"component": "roster_cache"}),
		metrics: m,
	}
}

func (r *RosterRepo) ListCats(ctx context.Context) ([]roster.Cat, error) {
	return readThrough(ctx, r, keyCats, r.next.ListCats)
}

func (r *RosterRepo) ListPoints(ctx context.Context) ([]roster.FeedingPoint, error) {
	return readThrough(ctx, r, keyPoints, r.next.ListPoints)
}

func (r *RosterRepo) ListZones(ctx context.Context) ([]roster.Zone, error) {
	return readThrough(ctx, r, keyZones, r.next.ListZones)
}

func (r *RosterRepo) ListMembers(ctx context.Context) ([]roster.Member, error) {
	return readThrough(ctx, r, keyMembers, r.next.ListMembers)
}

// Get* no se cachean: se usan en escrituras y deben ver el dato fresco.
func (r *RosterRepo) GetCat(ctx context.Context, id string) (roster.Cat, error) {
	return r.next.GetCat(ctx, id)
}

func (r *RosterRepo) GetPoint(ctx context.Context, id string) (roster.FeedingPoint, error) {
	return r.next.GetPoint(ctx, id)
}

func (r *RosterRepo) SaveCat(ctx context.Context, c roster.Cat, isNew bool) error {
	return r.invalidateAfter(ctx, r.next.SaveCat(ctx, c, isNew))
}

func (r *RosterRepo) SavePoint(ctx context.Context, p roster.FeedingPoint, isNew bool) error {
	return r.invalidateAfter(ctx, r.next.SavePoint(ctx, p, isNew))
}

func (r *RosterRepo) SaveZone(ctx context.Context, z roster.Zone, isNew bool) error {
	return r.invalidateAfter(ctx, r.next.SaveZone(ctx, z, isNew))
}

func (r *RosterRepo) SaveMember(ctx context.Context, m roster.Member, isNew bool) error {
	return r.invalidateAfter(ctx, r.next.SaveMember(ctx, m, isNew))
}

// Invalidate sube la generación y borra todas las listas cacheadas.
func (r *RosterRepo) Invalidate(ctx context.Context) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, keyGen)
		p.Del(ctx, allKeys...)
		return nil
	})
	return err
}

func (r *RosterRepo) generation(ctx context.Context) (string, error) {
	gen, err := r.client.Get(ctx, keyGen).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

// storeIfCurrent descarta la escritura si hubo una invalidación después de leer gen.
func (r *RosterRepo) storeIfCurrent(ctx context.Context, key, gen string, items any) {
	b, err := json.Marshal(items)
	if err != nil {
		return
	}
	stored, err := setIfGen.Run(ctx, r.client, []string{key, keyGen}, b, gen, r.ttl.Milliseconds()).Int()
	switch {
	case err != nil:
		r.log.Warn("roster cache write failed", map[string]any{"key": key, "err": err})
	case stored == 0:
		r.log.Debug("roster cache write skipped: invalidated meanwhile", map[string]any{"key": key})
	}
}

func (r *RosterRepo) invalidateAfter(ctx context.Context, saveErr error) error {
	if saveErr != nil {
		return saveErr
	}
	if err := r.Invalidate(ctx); err != nil {
		r.metrics.IncRosterCache("error")
		r.log.Warn("roster cache invalidation failed", map[string]any{"err": err})
	}
	return nil
}

func readThrough[T any](ctx context.Context, r *RosterRepo, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	// La generación se lee antes de cargar para detectar saves concurrentes.
	gen, genErr := r.generation(ctx)

	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out []T
		if uerr := json.Unmarshal(raw, &out); uerr == nil {
			r.metrics.IncRosterCache("hit")
			return out, nil
		}
		r.metrics.IncRosterCache("error")
		r.log.Warn("roster cache entry corrupt", map[string]any{"key": key})
	case errors.Is(err, redis.Nil):
		r.metrics.IncRosterCache("miss")
	default:
		r.metrics.IncRosterCache("error")
		r.log.Warn("roster cache read failed", map[string]any{"key": key, "err": err})
	}

	items, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		r.storeIfCurrent(ctx, key, gen, items)
	}
	return items, nil
}
