package runner

import "time"

type Config struct {
	RebuildDBTime    time.Duration `envconfig:"MVD_RUNNER_REBUILD_DB_TIME" default:"1h"`
	MaxReportsStored int           `envconfig:"MVD_RUNNER_MAX_REPORTS_STORED" default:"1000"`
	MaxStorageTime   time.Duration `envconfig:"MVD_RUNNER_MAX_STORAGE_TIME" default:"720h"`
	DBFlushTime      time.Duration `envconfig:"MVD_RUNNER_DB_FLUSH_TIME" default:"5s"`
	DBFlushSize      int           `envconfig:"MVD_RUNNER_DB_FLUSH_SIZE" default:"32"`
	MinScoreAlert    float64       `envconfig:"MVD_RUNNER_MIN_SCORE_ALERT" default:"60"`
}
