// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type PostgresCfg struct {
	Username           string        `env:"PG_USERNAME" env-default:"factorymap"`
	Password           string        `env:"PG_PASSWORD" env-default:""`
	Host               string        `env:"PG_HOST" env-default:"localhost"`
	Port               int           `env:"PG_PORT" env-default:"5432"`
	Database           string        `env:"PG_DATABASE" env-default:"factorymap"`
	SslMode            string        `env:"PG_SSLMODE" env-default:"disable"`
	ConnMaxLifetime    time.Duration `env:"PG_CONN_MAX_LIFETIME" env-default:"30m"`
	MaxOpenConnections int           `env:"PG_MAX_OPEN_CONNS" env-default:"16"`
}

type InvalidationCfg struct {
	Enabled  bool          `env:"INVALIDATION_ENABLED" env-default:"false"`
	Brokers  string        `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	Topic    string        `env:"KAFKA_TOPIC" env-default:"directory-changes"`
	GroupID  string        `env:"KAFKA_GROUP_ID" env-default:"searchd-invalidator"`
	Session  time.Duration `env:"KAFKA_SESSION_TIMEOUT" env-default:"10s"`
	DedupeSz int           `env:"INVALIDATION_DEDUPE_SIZE" env-default:"4096"`
}

type Config struct {
	Addr       string `env:"ADDR" env-default:":8090"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info"`
	LogConsole bool   `env:"LOG_CONSOLE" env-default:"false"`
	LogSampleN int    `env:"LOG_SAMPLE_N" env-default:"0"`

	// StoreDriver selects the corpus backend: "memory" or "postgres".
	StoreDriver string `env:"STORE_DRIVER" env-default:"memory"`
	// CorpusPath seeds the memory driver from a JSON file.
	CorpusPath string `env:"CORPUS_PATH" env-default:""`
	Postgres   PostgresCfg

	RedisAddr string        `env:"REDIS_ADDR" env-default:""`
	CacheTTL  time.Duration `env:"CACHE_TTL" env-default:"60s"`

	MapRowCap      int           `env:"MAP_ROW_CAP" env-default:"5000"`
	RetryAttempts  int           `env:"STORE_RETRY_ATTEMPTS" env-default:"3"`
	RetryBaseDelay time.Duration `env:"STORE_RETRY_BASE_DELAY" env-default:"50ms"`

	Invalidation InvalidationCfg
}

func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env config: %w", err)
	}
	return cfg, nil
}
