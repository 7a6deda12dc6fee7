package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port    string
	DBDSN   string
	LogFile string

	// Client side
	APIBaseURL     string
	StoreBackend   string // memory | sqlite | redis
	StoreDSN       string
	RedisAddr      string
	PageSize       int
	Locale         string
	RequestTimeout time.Duration

	// Mock API behaviour
	MockLatency      time.Duration
	MockCartLatency  time.Duration
	MockOrderLatency time.Duration
	OrderFailureRate float64
	CatalogSize      int
	CatalogSeed      int64
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DSN", "techhub.db")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("STORE_BACKEND", "sqlite")
	v.SetDefault("STORE_DSN", "techhub-client.db")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("PAGE_SIZE", 10)
	v.SetDefault("LOCALE", "en")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("MOCK_LATENCY", "250ms")
	v.SetDefault("MOCK_CART_LATENCY", "100ms")
	v.SetDefault("MOCK_ORDER_LATENCY", "1500ms")
	v.SetDefault("ORDER_FAILURE_RATE", 0.5)
	v.SetDefault("CATALOG_SIZE", 200)
	v.SetDefault("CATALOG_SEED", 42)
}

// Load reads configuration from the environment, optionally layered over a
// YAML file named by TECHHUB_CONFIG.
func Load() Config {
	v := viper.New()
	defaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := v.GetString("TECHHUB_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			log.Printf("[warn] could not read config file %s: %v", path, err)
		}
	}

	cfg := Config{
		Port:             v.GetString("PORT"),
		DBDSN:            v.GetString("DB_DSN"),
		LogFile:          v.GetString("LOG_FILE"),
		APIBaseURL:       strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		StoreBackend:     strings.ToLower(v.GetString("STORE_BACKEND")),
		StoreDSN:         v.GetString("STORE_DSN"),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		PageSize:         v.GetInt("PAGE_SIZE"),
		Locale:           v.GetString("LOCALE"),
		RequestTimeout:   v.GetDuration("REQUEST_TIMEOUT"),
		MockLatency:      v.GetDuration("MOCK_LATENCY"),
		MockCartLatency:  v.GetDuration("MOCK_CART_LATENCY"),
		MockOrderLatency: v.GetDuration("MOCK_ORDER_LATENCY"),
		OrderFailureRate: v.GetFloat64("ORDER_FAILURE_RATE"),
		CatalogSize:      v.GetInt("CATALOG_SIZE"),
		CatalogSeed:      v.GetInt64("CATALOG_SEED"),
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	log.Printf("[config] PORT=%s DB_DSN=%s API_BASE_URL=%s STORE_BACKEND=%s STORE_DSN=%s LOG_FILE=%s",
		cfg.Port, cfg.DBDSN, cfg.APIBaseURL, cfg.StoreBackend, cfg.StoreDSN, cfg.LogFile)
	return cfg
}
