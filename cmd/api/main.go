package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"minato-cat-support/internal/adapters/auth/jwtauth"
	"minato-cat-support/internal/adapters/auth/remote"
	"minato-cat-support/internal/adapters/classifier/gemini"
	"minato-cat-support/internal/adapters/storage"
	"minato-cat-support/internal/adapters/storage/fixtures"
	"minato-cat-support/internal/platform/config"
	"minato-cat-support/internal/platform/logger"
	"minato-cat-support/internal/platform/metrics"
	"minato-cat-support/internal/ports/auth"
	"minato-cat-support/internal/ports/classifier"
	"minato-cat-support/internal/router"
)

// @title Minato Cat Support API
// @version 1.0
// @description Registro diario de alimentación y salud de gatos comunitarios.
// @BasePath /

var configPath string

var rootCmd = &cobra.Command{
	Use:           "api",
	Short:         "Servidor HTTP de minato-cat-support",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Levanta el servidor HTTP (default)",
	RunE:  runServe,
}

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Carga el padrón inicial en la base de datos",
	Long: `Carga zonas, puntos, gatos y miembros de fixtures en Postgres.
Sin --force no hace nada si ya hay gatos cargados.`,
	RunE: runSeed,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Archivo de configuración YAML (opcional)")
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "Sobrescribe el padrón aunque ya exista")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, *logger.ZapLogger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Logging.Level),
		Format: logger.ParseFormat(cfg.Logging.Format),
		App:    cfg.Logging.App,
	})
	return cfg, log, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	backend, err := storage.Open(ctx, cfg, log, m)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Warn("backend close", map[string]any{"err": err})
		}
	}()

	verifier, err := newVerifier(cfg)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	cls, err := newClassifier(ctx, cfg)
	if err != nil {
		// Sin clasificador la identificación responde el mensaje de respaldo.
		log.Warn("photo classifier disabled", map[string]any{"err": err})
		cls = nil
	}

	h, err := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Config:       &cfg,
		Backend:      backend,
		Logger:       log,
		Registry:     reg,
		Metrics:      m,
		Classifier:   cls,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      h,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{
			"addr":    cfg.Server.Addr,
			"storage": string(backend.Mode),
			"auth":    cfg.Auth.Mode,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	backend, err := storage.Open(ctx, cfg, log, nil)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	if backend.Mode != storage.ModeRemote {
		return errors.New("seed requires a reachable database (storage.dsn / DB_DSN)")
	}

	n, err := storage.Seed(ctx, backend.Roster, fixtures.Default(), seedForce)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	log.Info("roster seeded", map[string]any{"records": n, "force": seedForce})
	return nil
}

// newVerifier devuelve nil en modo dev (headers X-Debug-*).
func newVerifier(cfg config.Config) (auth.AuthVerifier, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeJWT:
		return jwtauth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer), nil
	case config.AuthModeRemote:
		v, err := remote.NewVerifier(remote.Config{
			BaseURL: cfg.Auth.RemoteBaseURL,
			APIKey:  cfg.Auth.RemoteAPIKey,
			Timeout: cfg.GetRemoteAuthTimeout(),
		})
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, nil
	}
}

func newClassifier(ctx context.Context, cfg config.Config) (classifier.Classifier, error) {
	if cfg.Classifier.Provider != "gemini" {
		return nil, nil
	}
	c, err := gemini.New(ctx, gemini.Config{
		APIKey:  cfg.Classifier.APIKey,
		Model:   cfg.Classifier.Model,
		Timeout: cfg.GetClassifierTimeout(),
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
