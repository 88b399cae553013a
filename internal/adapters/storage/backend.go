package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"minato-cat-support/internal/adapters/cache/rediscache"
	"minato-cat-support/internal/adapters/storage/fixtures"
	mem "minato-cat-support/internal/adapters/storage/memory"
	pg "minato-cat-support/internal/adapters/storage/postgres"
	"minato-cat-support/internal/domain/reports"
	"minato-cat-support/internal/domain/roster"
	"minato-cat-support/internal/platform/config"
	"minato-cat-support/internal/platform/logger"
	"minato-cat-support/internal/platform/metrics"
	platformredis "minato-cat-support/internal/platform/redis"
)

type Mode string

const (
	// ModeRemote: Postgres (+ cache redis opcional).
	ModeRemote Mode = "remote"
	// ModeLocal: memoria, sembrada con el padrón de fixtures.
	ModeLocal Mode = "local"
)

// Backend se resuelve una sola vez al arrancar y se inyecta en los servicios.
type Backend struct {
	Mode    Mode
	Roster  roster.Repository
	Reports reports.Repository
	DB      *sql.DB

	redis *platformredis.Client
}

// Open elige el backend: sin DSN o con Postgres inalcanzable cae a memoria.
func Open(ctx context.Context, cfg config.Config, log logger.Logger, m *metrics.Metrics) (*Backend, error) {
	if log == nil {
		log = logger.NewNop()
	}

	if cfg.Storage.DSN != "" {
		db, err := pg.Open(ctx, cfg.Storage.DSN)
		if err == nil {
			if err := pg.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
			b := &Backend{
				Mode:    ModeRemote,
				Roster:  pg.NewRosterRepo(db),
				Reports: pg.NewReportsRepo(db),
				DB:      db,
			}
			b.attachCache(ctx, cfg, log, m)
			log.Info("storage backend selected", map[string]any{"mode": string(b.Mode), "cache": b.redis != nil})
			return b, nil
		}
		log.Warn("postgres unreachable, falling back to local storage", map[string]any{"err": err})
	}

	b, err := NewLocal(ctx, fixtures.Default())
	if err != nil {
		return nil, err
	}
	log.Info("storage backend selected", map[string]any{"mode": string(b.Mode)})
	return b, nil
}

// NewLocal arma el backend en memoria con el padrón dado.
func NewLocal(ctx context.Context, set fixtures.Set) (*Backend, error) {
	b := &Backend{
		Mode:    ModeLocal,
		Roster:  mem.NewRosterRepo(),
		Reports: mem.NewReportRepo(),
	}
	if _, err := Seed(ctx, b.Roster, set, true); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Backend) attachCache(ctx context.Context, cfg config.Config, log logger.Logger, m *metrics.Metrics) {
	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, roster cache disabled", map[string]any{"err": err})
		return
	}
	if client == nil {
		return
	}
	b.redis = client
	b.Roster = rediscache.NewRosterRepo(b.Roster, client, cfg.GetRedisTTL(), log, m)
}

// Health verifica las dependencias externas del backend.
func (b *Backend) Health(ctx context.Context) error {
	if b.DB != nil {
		if err := b.DB.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	if b.redis != nil {
		if err := b.redis.Health(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (b *Backend) Close() error {
	var errs []error
	if b.redis != nil {
		errs = append(errs, b.redis.Close())
	}
	if b.DB != nil {
		errs = append(errs, b.DB.Close())
	}
	return errors.Join(errs...)
}

// Seed carga el padrón con upsert por id. Sin force solo actúa si no hay gatos.
// Devuelve cuántos documentos escribió.
func Seed(ctx context.Context, repo roster.Repository, set fixtures.Set, force bool) (int, error) {
	if !force {
		cats, err := repo.ListCats(ctx)
		if err != nil {
			return 0, err
		}
		if len(cats) > 0 {
			return 0, nil
		}
	}

	n := 0
	for _, z := range set.Zones {
		if err := upsert(ctx, z, repo.SaveZone); err != nil {
			return n, fmt.Errorf("seed zone %s: %w", z.ID, err)
		}
		n++
	}
	for _, p := range set.Points {
		if err := upsert(ctx, p, repo.SavePoint); err != nil {
			return n, fmt.Errorf("seed point %s: %w", p.ID, err)
		}
		n++
	}
	for _, c := range set.Cats {
		if err := upsert(ctx, c, repo.SaveCat); err != nil {
			return n, fmt.Errorf("seed cat %s: %w", c.ID, err)
		}
		n++
	}
	for _, m := range set.Members {
		if err := upsert(ctx, m, repo.SaveMember); err != nil {
			return n, fmt.Errorf("seed member %s: %w", m.ID, err)
		}
		n++
	}
	return n, nil
}

func upsert[T any](ctx context.Context, v T, save func(context.Context, T, bool) error) error {
	err := save(ctx, v, false)
	if errors.Is(err, roster.ErrNotFound) {
		return save(ctx, v, true)
	}
	return err
}
