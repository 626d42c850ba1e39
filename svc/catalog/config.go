package catalog

import "time"

// Config holds the catalog endpoint and caching settings.
type Config struct {
	BaseURL   string        `env:"CATALOG_BASE_URL" envDefault:"https://us-central1-summaristt.cloudfunctions.net"`
	Timeout   time.Duration `env:"CATALOG_TIMEOUT" envDefault:"10s"`
	CacheTTL  time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`
	CacheSize int           `env:"CATALOG_CACHE_SIZE" envDefault:"512"`
}
