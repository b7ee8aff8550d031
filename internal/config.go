package internal

import (
	"fmt"
	"time"
)

type Config struct {
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`
	BadgerFilepath string `env:"BADGER_FILEPATH"`
	SqliteFilepath string `env:"SQLITE_FILEPATH,default=data/history.db"`

	CacheTTL         time.Duration `env:"CACHE_TTL,default=24h"`
	CacheMaxMessages int           `env:"CACHE_MAX_MESSAGES,default=50"`

	PersistWorkers      int           `env:"PERSIST_WORKERS,default=2"`
	PersistQueueSize    int           `env:"PERSIST_QUEUE_SIZE,default=1024"`
	PersistMaxAttempts  int           `env:"PERSIST_MAX_ATTEMPTS,default=3"`
	PersistRetryBackoff time.Duration `env:"PERSIST_RETRY_BACKOFF,default=200ms"`
	PersistTimeout      time.Duration `env:"PERSIST_TIMEOUT,default=5s"`
	RestartInterval     time.Duration `env:"RESTART_INTERVAL,default=1s"`

	RetentionPeriod   time.Duration `env:"RETENTION_PERIOD,default=2160h"`
	RetentionSchedule string        `env:"RETENTION_SCHEDULE,default=0 3 * * *"`
	ArchiveIdleAfter  time.Duration `env:"ARCHIVE_IDLE_AFTER,default=720h"`
	ArchiveSchedule   string        `env:"ARCHIVE_SCHEDULE,default=*/30 * * * *"`

	MetricsPort   int    `env:"METRICS_PORT,default=9090"`
	InspectPort   int    `env:"INSPECT_PORT,default=8081"`
	ModelName     string `env:"MODEL_NAME,default=qwen-max"`
	DefaultTitle  string `env:"DEFAULT_TITLE,default=New conversation"`
	HistoryWindow int    `env:"HISTORY_WINDOW,default=20"`
}

// Validate catches values the env parser accepts but the storage layer cannot run with.
func (c Config) Validate() error {
	switch {
	case c.SqliteFilepath == "":
		return fmt.Errorf("SQLITE_FILEPATH must not be empty")
	case c.CacheTTL <= 0:
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	case c.CacheMaxMessages <= 0:
		return fmt.Errorf("CACHE_MAX_MESSAGES must be positive, got %d", c.CacheMaxMessages)
	case c.PersistWorkers <= 0:
		return fmt.Errorf("PERSIST_WORKERS must be positive, got %d", c.PersistWorkers)
	case c.PersistQueueSize <= 0:
		return fmt.Errorf("PERSIST_QUEUE_SIZE must be positive, got %d", c.PersistQueueSize)
	case c.PersistMaxAttempts <= 0:
		return fmt.Errorf("PERSIST_MAX_ATTEMPTS must be positive, got %d", c.PersistMaxAttempts)
	case c.HistoryWindow <= 0:
		return fmt.Errorf("HISTORY_WINDOW must be positive, got %d", c.HistoryWindow)
	}
	return nil
}
