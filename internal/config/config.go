package config

import "github.com/caarlos0/env/v11"

type Config struct {
	Host string `env:"HOST" envDefault:"127.0.0.1:8080"`

	// Store selects the cache backend: sqlite, file, memory or disabled.
	Store          string `env:"STORE" envDefault:"sqlite"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"platzhalter.db"`
	FileStoreDir   string `env:"FILE_STORE_DIR" envDefault:"cache"`
	MemoryMaxBytes int64  `env:"MEMORY_MAX_BYTES" envDefault:"268435456"` // 256MB

	MaxDimension int `env:"MAX_DIMENSION" envDefault:"3000"`

	VipsMaxCacheMB  int `env:"VIPS_MAX_CACHE_MB" envDefault:"256"`
	VipsConcurrency int `env:"VIPS_CONCURRENCY" envDefault:"1"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	AllowedOrigin string `env:"ALLOWED_ORIGIN"`

	// WarmupSizes lists dimension specs ("300x250,728x90") rendered with
	// default parameters at startup.
	WarmupSizes   []string `env:"WARMUP_SIZES" envSeparator:","`
	WarmupWorkers int      `env:"WARMUP_WORKERS" envDefault:"1"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
