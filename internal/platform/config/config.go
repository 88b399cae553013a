package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config agrupa la configuración del servicio. Se carga de YAML
// y luego las variables de entorno pisan lo que venga del archivo.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
	Auth       AuthConfig       `yaml:"auth"`
	Calendar   CalendarConfig   `yaml:"calendar"`
	Features   FeaturesConfig   `yaml:"features"`
	Blob       BlobConfig       `yaml:"blob"`
	Classifier ClassifierConfig `yaml:"classifier"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// StorageConfig: DSN vacío = modo local con fixtures en memoria.
type StorageConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig: URL vacía desactiva el cache del padrón.
type RedisConfig struct {
	URL      string `yaml:"url"`
	PoolSize int    `yaml:"pool_size"`
	TTL      string `yaml:"ttl"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	App    string `yaml:"app"`
}

type AuthConfig struct {
	Mode      string `yaml:"mode"` // dev, jwt, remote
	JWTSecret string `yaml:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer"`

	RemoteBaseURL string `yaml:"remote_base_url"`
	RemoteAPIKey  string `yaml:"remote_api_key"`
	RemoteTimeout string `yaml:"remote_timeout"`
}

type CalendarConfig struct {
	Timezone          string `yaml:"timezone"`
	Epoch             string `yaml:"epoch"`
	GeneralWindowDays int    `yaml:"general_window_days"`
}

type FeaturesConfig struct {
	Locale string `yaml:"locale"`
}

type BlobConfig struct {
	Dir          string `yaml:"dir"`
	PublicPrefix string `yaml:"public_prefix"`
	PhotoTimeout string `yaml:"photo_timeout"`
}

type ClassifierConfig struct {
	Provider string `yaml:"provider"` // gemini o vacío
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`
}

const (
	AuthModeDev    = "dev"
	AuthModeJWT    = "jwt"
	AuthModeRemote = "remote"
)

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     "5s",
			WriteTimeout:    "30s",
			ShutdownTimeout: "10s",
		},
		Redis: RedisConfig{
			PoolSize: 10,
			TTL:      "5m",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			App:    "minato-cat-support",
		},
		Auth: AuthConfig{
			Mode:          AuthModeDev,
			RemoteTimeout: "5s",
		},
		Calendar: CalendarConfig{
			Timezone:          "Asia/Tokyo",
			Epoch:             "2025-01-01",
			GeneralWindowDays: 28,
		},
		Features: FeaturesConfig{
			Locale: "ja",
		},
		Blob: BlobConfig{
			PublicPrefix: "/photos",
			PhotoTimeout: "5s",
		},
		Classifier: ClassifierConfig{
			Model:   "gemini-2.5-flash",
			Timeout: "30s",
		},
	}
}

// Load lee path (si no existe se usan defaults) y aplica overrides de entorno.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// FromEnv: defaults + entorno, sin archivo.
func FromEnv() Config {
	cfg := Default()
	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("APP_NAME"); v != "" {
		c.Logging.App = v
	}
	if v := os.Getenv("TZ_NAME"); v != "" {
		c.Calendar.Timezone = v
	}
	if v := os.Getenv("GENERAL_WINDOW_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Calendar.GeneralWindowDays = n
		}
	}
	if v := os.Getenv("FEATURES_LOCALE"); v != "" {
		c.Features.Locale = v
	}
	if v := os.Getenv("AUTH_MODE"); v != "" {
		c.Auth.Mode = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
		if os.Getenv("AUTH_MODE") == "" {
			c.Auth.Mode = AuthModeJWT
		}
	}
	if v := os.Getenv("AUTH_REMOTE_URL"); v != "" {
		c.Auth.RemoteBaseURL = v
	}
	if v := os.Getenv("AUTH_REMOTE_API_KEY"); v != "" {
		c.Auth.RemoteAPIKey = v
	}
	if v := os.Getenv("BLOB_DIR"); v != "" {
		c.Blob.Dir = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Classifier.APIKey = v
		c.Classifier.Provider = "gemini"
	}
}

func (c Config) Validate() error {
	switch c.Auth.Mode {
	case AuthModeDev:
	case AuthModeJWT:
		if strings.TrimSpace(c.Auth.JWTSecret) == "" {
			return errors.New("auth mode jwt requires JWT_SECRET")
		}
	case AuthModeRemote:
		if strings.TrimSpace(c.Auth.RemoteBaseURL) == "" || strings.TrimSpace(c.Auth.RemoteAPIKey) == "" {
			return errors.New("auth mode remote requires AUTH_REMOTE_URL and AUTH_REMOTE_API_KEY")
		}
	default:
		return fmt.Errorf("invalid auth mode: %s (valid: dev, jwt, remote)", c.Auth.Mode)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Epoch(); err != nil {
		return err
	}
	if c.Classifier.Provider != "" && c.Classifier.Provider != "gemini" {
		return fmt.Errorf("invalid classifier provider: %s", c.Classifier.Provider)
	}
	return nil
}

// Location resuelve la zona horaria de trabajo (días locales).
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Calendar.Timezone)
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

// Epoch es la primera fecha consultable, a medianoche local.
func (c Config) Epoch() (time.Time, error) {
	loc, err := c.Location()
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation("2006-01-02", c.Calendar.Epoch, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid calendar epoch %q: %w", c.Calendar.Epoch, err)
	}
	return t, nil
}

func (c Config) GetReadTimeout() time.Duration     { return duration(c.Server.ReadTimeout, 5*time.Second) }
func (c Config) GetWriteTimeout() time.Duration    { return duration(c.Server.WriteTimeout, 30*time.Second) }
func (c Config) GetShutdownTimeout() time.Duration { return duration(c.Server.ShutdownTimeout, 10*time.Second) }
func (c Config) GetRedisTTL() time.Duration        { return duration(c.Redis.TTL, 5*time.Minute) }
func (c Config) GetPhotoTimeout() time.Duration    { return duration(c.Blob.PhotoTimeout, 5*time.Second) }
func (c Config) GetClassifierTimeout() time.Duration {
	return duration(c.Classifier.Timeout, 30*time.Second)
}
func (c Config) GetRemoteAuthTimeout() time.Duration {
	return duration(c.Auth.RemoteTimeout, 5*time.Second)
}

func duration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
