package mvd

import (
	"github.com/go-mvd/mvd/internal/database"
	"github.com/go-mvd/mvd/internal/leakage"
	"github.com/go-mvd/mvd/internal/mlmodel"
	"github.com/go-mvd/mvd/internal/notify"
	"github.com/go-mvd/mvd/internal/reports"
	"github.com/go-mvd/mvd/internal/runner"
	"github.com/go-mvd/mvd/internal/setup"
	"github.com/go-mvd/mvd/internal/validate"
	"github.com/go-mvd/mvd/internal/validation"
)

var (
	_ setup.DatabaseConfigProvider   = (*Config)(nil)
	_ setup.RunnerConfigProvider     = (*Config)(nil)
	_ setup.NotifierConfigProvider   = (*Config)(nil)
	_ setup.ValidationConfigProvider = (*Config)(nil)
	_ setup.LeakageConfigProvider    = (*Config)(nil)
	_ setup.ModelConfigProvider      = (*Config)(nil)
)

type Config struct {
	SrvAddr    string `envconfig:"MVD_ADDR" default:":8789"`
	MaxConns   int    `envconfig:"MVD_MAX_CONNS" default:"256"`
	Runner     runner.Config
	Validation validation.Config
	Leakage    leakage.Config
	Database   database.Config
	Validate   validate.Config
	Reports    reports.Config
	Alert      notify.Config
	Model      mlmodel.Config
}

func (c Config) RunnerConfig() *runner.Config {
	return &c.Runner
}

func (c Config) ValidationConfig() *validation.Config {
	return &c.Validation
}

func (c Config) LeakageConfig() *leakage.Config {
	return &c.Leakage
}

func (c Config) NotifyConfig() *notify.Config {
	return &c.Alert
}

func (c Config) DatabaseConfig() *database.Config {
	return &c.Database
}

func (c Config) ModelConfig() *mlmodel.Config {
	return &c.Model
}
