package router

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"minato-cat-support/docs"
	blobfs "minato-cat-support/internal/adapters/blob/filesystem"
	blobmem "minato-cat-support/internal/adapters/blob/memory"
	"minato-cat-support/internal/adapters/storage"
	"minato-cat-support/internal/adapters/storage/fixtures"
	"minato-cat-support/internal/domain/calendar"
	"minato-cat-support/internal/domain/features"
	"minato-cat-support/internal/domain/geo"
	"minato-cat-support/internal/domain/identify"
	"minato-cat-support/internal/domain/reports"
	"minato-cat-support/internal/domain/roster"
	"minato-cat-support/internal/domain/summary"
	"minato-cat-support/internal/middleware"
	"minato-cat-support/internal/platform/config"
	"minato-cat-support/internal/platform/logger"
	"minato-cat-support/internal/platform/metrics"
	"minato-cat-support/internal/ports/auth"
	"minato-cat-support/internal/ports/blob"
	"minato-cat-support/internal/ports/classifier"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Todo lo demás es opcional; con Options{} se arma un backend local con fixtures.
	Config     *config.Config
	Backend    *storage.Backend
	Logger     logger.Logger
	Registry   *prometheus.Registry
	Metrics    *metrics.Metrics // si viene, ya está registrado en Registry
	Classifier classifier.Classifier
	Blobs      blob.Store
}

func NewRouter(opts Options) (http.Handler, error) {
	cfg := config.Default()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New(reg)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	epoch, err := cfg.Epoch()
	if err != nil {
		return nil, err
	}
	policy := calendar.NewPolicy(epoch, cfg.Calendar.GeneralWindowDays, loc)
	codec := features.NewCodec(features.ForLocale(cfg.Features.Locale))

	backend := opts.Backend
	if backend == nil {
		backend, err = storage.NewLocal(context.Background(), fixtures.Default())
		if err != nil {
			return nil, fmt.Errorf("local backend: %w", err)
		}
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))
	r.Use(middleware.AccessLog(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := backend.Health(ctx); err != nil {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(string(backend.Mode)))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	docs.SwaggerInfo.BasePath = "/"
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	blobs := opts.Blobs
	if blobs == nil {
		blobs, err = blobStore(r, cfg)
		if err != nil {
			return nil, err
		}
	}

	// Services por módulo
	rosterSvc := roster.NewService(backend.Roster, codec, loc, log).WithBlobs(blobs, cfg.GetPhotoTimeout())
	store := reports.NewStore(backend.Reports, blobs, log, m).WithPhotoTimeout(cfg.GetPhotoTimeout())
	reportsSvc := reports.NewService(store, rosterSvc, log)
	summarySvc := summary.NewService(summary.NewEngine(store, loc, log, m), rosterSvc, policy)
	identifySvc := identify.NewService(opts.Classifier, rosterSvc, log, m)

	// Rutas por módulo
	roster.RegisterRoutes(r, rosterSvc)
	reports.RegisterRoutes(r, reportsSvc, policy)
	summary.RegisterRoutes(r, summarySvc)
	features.RegisterRoutes(r, codec)
	geo.RegisterRoutes(r)
	identify.RegisterRoutes(r, identifySvc)

	return r, nil
}

// blobStore: con blob.dir configurado las fotos van a disco y se sirven bajo public_prefix.
func blobStore(r chi.Router, cfg config.Config) (blob.Store, error) {
	if strings.TrimSpace(cfg.Blob.Dir) == "" {
		return blobmem.New(), nil
	}
	fs, err := blobfs.New(cfg.Blob.Dir, cfg.Blob.PublicPrefix)
	if err != nil {
		return nil, err
	}
	prefix := "/" + strings.Trim(cfg.Blob.PublicPrefix, "/")
	r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(fs.Dir()))))
	return fs, nil
}
