package validate

import (
	"time"
)

type Config struct {
	RequestTimeout  time.Duration `envconfig:"MVD_VALIDATE_REQUEST_TIMEOUT" default:"60s"`
	MaxDataItemsLen int           `envconfig:"MVD_VALIDATE_MAX_DATA_ITEMS_LEN" default:"16"`
}
