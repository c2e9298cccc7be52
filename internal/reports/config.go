package reports

import (
	"time"
)

type Config struct {
	RequestTimeout time.Duration `envconfig:"MVD_REPORTS_REQUEST_TIMEOUT" default:"30s"`
	MaxItems       int           `envconfig:"MVD_REPORTS_MAX_ITEMS" default:"100"`
}
