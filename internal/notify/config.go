package notify

import (
	"encoding/json"
	"time"

	"github.com/go-mvd/mvd/internal/httputil"
)

type Config struct {
	AllowAlerts          bool          `envconfig:"MVD_ALLOW_ALERTS" default:"true"`
	Targets              Targets       `envconfig:"MVD_ALERT_TARGETS"`
	Interval             time.Duration `envconfig:"MVD_ALERT_INTERVAL" default:"5s"`
	RequestTimeout       time.Duration `envconfig:"MVD_ALERT_REQUEST_TIMEOUT" default:"15s"`
	MaxConcurrentRequest int           `envconfig:"MVD_ALERT_MAX_CONCURRENT_REQUEST" default:"64"`
}

type Targets []Target

func (ts *Targets) Decode(value string) error {
	targets := []Target{}
	if err := json.Unmarshal([]byte(value), &targets); err != nil {
		return err
	}
	*ts = targets
	return nil
}

// Target is a webhook destination. An empty ModelID subscribes the
// target to reports for every model.
type Target struct {
	URL        string                    `json:"url"`
	ModelID    string                    `json:"modelId"`
	HTTPConfig httputil.HTTPClientConfig `json:"httpConfig"`
}
