package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultDSN             = "host=localhost user=postgres password=postgres dbname=mes port=5432 sslmode=disable"
	defaultUpstreamTimeout = 15 * time.Second
)

type Config struct {
	HTTPPort       string `toml:"http_port"`
	DatabaseDriver string `toml:"database_driver"` // postgres | sqlite
	DatabaseDSN    string `toml:"database_dsn"`    // sqlite: dosya yolu
	CORSOrigins    string `toml:"cors_allowed_origins"`
	SeedForecasts  bool   `toml:"seed_forecasts"`

	ERP     UpstreamConfig `toml:"erp"`
	Catalog UpstreamConfig `toml:"catalog"`
}

// UpstreamConfig describes one outbound HTTP collaborator. An empty
// BaseURL disables the collaborator where that is allowed (catalog).
type UpstreamConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
}

// Duration lets TOML files write timeouts as "15s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func Default() *Config {
	return &Config{
		HTTPPort:       "8300",
		DatabaseDriver: DriverPostgres,
		DatabaseDSN:    defaultDSN,
		CORSOrigins:    "*",
		ERP: UpstreamConfig{
			BaseURL: "http://host.docker.internal:8100",
			Timeout: Duration{defaultUpstreamTimeout},
		},
		Catalog: UpstreamConfig{
			BaseURL: "http://host.docker.internal:8200",
			Timeout: Duration{defaultUpstreamTimeout},
		},
	}
}

// Load builds the configuration from defaults, the optional TOML file named
// by MES_CONFIG_FILE and finally the environment. Invalid configuration is
// fatal, as in the rest of the startup path.
func Load() *Config {
	cfg, err := LoadFrom(os.Getenv("MES_CONFIG_FILE"))
	if err != nil {
		log.Fatalf("[FATAL] Konfigürasyon yüklenemedi: %v", err)
	}

	if cfg.DatabaseDriver == DriverPostgres && cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN varsayılan değer kullanılıyor, production için kendi Postgres bağlantı bilgisini tanımla.")
	}
	if cfg.CORSOrigins == "*" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS tüm originlere açık.")
	}
	if cfg.Catalog.BaseURL == "" {
		log.Println("[INFO] CATALOG_API_URL boş, part_code sadece ERP verisinden çözülecek.")
	}

	return cfg
}

// LoadFrom is Load without the fatal exit; path may be empty.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config dosyası okunamadı (%s): %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.DatabaseDriver = strings.ToLower(getEnv("DATABASE_DRIVER", cfg.DatabaseDriver))
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", cfg.DatabaseDSN)
	cfg.CORSOrigins = getEnv("CORS_ALLOWED_ORIGINS", cfg.CORSOrigins)
	cfg.SeedForecasts = getEnvBool("SEED_FORECASTS", cfg.SeedForecasts)

	cfg.ERP.BaseURL = getEnv("ERP_API_URL", cfg.ERP.BaseURL)
	// CATALOG_API_URL="" explicitly disables the catalog lookup.
	if v, ok := os.LookupEnv("CATALOG_API_URL"); ok {
		cfg.Catalog.BaseURL = v
	}

	if timeout := getEnvDuration("UPSTREAM_TIMEOUT", 0); timeout > 0 {
		cfg.ERP.Timeout = Duration{timeout}
		cfg.Catalog.Timeout = Duration{timeout}
	}

	cfg.ERP.BaseURL = strings.TrimRight(cfg.ERP.BaseURL, "/")
	cfg.Catalog.BaseURL = strings.TrimRight(cfg.Catalog.BaseURL, "/")
}

func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("DATABASE_DRIVER %q desteklenmiyor (postgres|sqlite)", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN boş olamaz")
	}
	if c.ERP.BaseURL == "" {
		return errors.New("ERP_API_URL boş olamaz")
	}
	if c.ERP.Timeout.Duration <= 0 || c.Catalog.Timeout.Duration <= 0 {
		return errors.New("upstream timeout pozitif olmalı")
	}
	return nil
}

// CatalogEnabled reports whether part codes may be resolved via the catalog.
func (c *Config) CatalogEnabled() bool {
	return c.Catalog.BaseURL != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[WARN] %s geçersiz bool değer (%q), varsayılan kullanılıyor", key, v)
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[WARN] %s geçersiz süre (%q), varsayılan kullanılıyor", key, v)
		return def
	}
	return d
}
