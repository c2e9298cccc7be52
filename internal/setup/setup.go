package setup

import (
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-mvd/mvd/internal/cache"
	"github.com/go-mvd/mvd/internal/database"
	"github.com/go-mvd/mvd/internal/earlystop"
	"github.com/go-mvd/mvd/internal/leakage"
	"github.com/go-mvd/mvd/internal/logging"
	"github.com/go-mvd/mvd/internal/mlmodel"
	"github.com/go-mvd/mvd/internal/mlmodel/logreg"
	"github.com/go-mvd/mvd/internal/notify"
	"github.com/go-mvd/mvd/internal/runner"
	"github.com/go-mvd/mvd/internal/srvenv"
	"github.com/go-mvd/mvd/internal/validation"
	"github.com/kelseyhightower/envconfig"
)

// ConfigFileEnv points to an optional TOML file applied before the
// environment overrides it.
const ConfigFileEnv = "MVD_CONFIG_FILE"

type RunnerConfigProvider interface {
	RunnerConfig() *runner.Config
}

type NotifierConfigProvider interface {
	NotifyConfig() *notify.Config
}

type ValidationConfigProvider interface {
	ValidationConfig() *validation.Config
}

type LeakageConfigProvider interface {
	LeakageConfig() *leakage.Config
}

type ModelConfigProvider interface {
	ModelConfig() *mlmodel.Config
}

type DatabaseConfigProvider interface {
	DatabaseConfig() *database.Config
}

func Setup(ctx context.Context, config interface{}) (*srvenv.SrvEnv, error) {
	logger := logging.FromContext(ctx)
	var serverEnvOpts []srvenv.Option

	if file := os.Getenv(ConfigFileEnv); file != "" {
		if _, err := toml.DecodeFile(file, config); err != nil {
			return nil, fmt.Errorf("error loading config file %s: %w", file, err)
		}
	}
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var (
		db             *database.DB
		provideModelFn srvenv.ProvideModelFn
	)
	if dbConfigProvider, ok := config.(DatabaseConfigProvider); ok {
		logger.Info("Configuring db")
		dbFromEnv, err := database.NewFromEnv(ctx, dbConfigProvider.DatabaseConfig())
		if err != nil {
			return nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		db = dbFromEnv
		serverEnvOpts = append(serverEnvOpts, srvenv.WithDatabase(db))
	}

	reportCache, err := cache.NewFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable create cache: %w", err)
	}
	serverEnvOpts = append(serverEnvOpts, srvenv.WithCache(reportCache))

	if notifyConfigProvider, ok := config.(NotifierConfigProvider); ok {
		logger.Info("Configuring notifier")
		provideFn, err := ProvideNotifierFor(notifyConfigProvider)
		if err != nil {
			return nil, fmt.Errorf("unable create notifier provide function: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithNotifier(provideFn))
	}

	if modelConfigProvider, ok := config.(ModelConfigProvider); ok {
		logger.Info("Configuring model factory")
		provideFn, err := ProvideModelFor(modelConfigProvider.ModelConfig())
		if err != nil {
			return nil, fmt.Errorf("unable create model provide function: %w", err)
		}
		provideModelFn = provideFn
		serverEnvOpts = append(serverEnvOpts, srvenv.WithModel(provideModelFn))
	}

	if runnerConfigProvider, ok := config.(RunnerConfigProvider); ok {
		logger.Info("Configuring runner")
		validationConfigProvider, ok := config.(ValidationConfigProvider)
		if !ok {
			return nil, fmt.Errorf("unable read validation config")
		}
		leakageConfigProvider, ok := config.(LeakageConfigProvider)
		if !ok {
			return nil, fmt.Errorf("unable read leakage config")
		}
		provideFn, err := ProvideRunnerFor(
			runnerConfigProvider,
			validationConfigProvider.ValidationConfig(),
			leakageConfigProvider.LeakageConfig(),
			provideModelFn,
			reportCache,
			db,
		)
		if err != nil {
			return nil, fmt.Errorf("unable create runner provide function: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithRunner(provideFn))
	}

	return srvenv.New(serverEnvOpts...), nil
}

func ProvideNotifierFor(provider NotifierConfigProvider) (notify.ProvideFn, error) {
	cfg := provider.NotifyConfig()
	return func(shutdownCh chan<- error) (notify.Manager, error) {
		return notify.New(
			shutdownCh,
			notify.WithMaxConcurrentRequest(cfg.MaxConcurrentRequest),
			notify.WithAlertInterval(cfg.Interval),
			notify.WithRequestTimeout(cfg.RequestTimeout),
			notify.WithTargets(cfg.Targets),
		)
	}, nil
}

func ProvideRunnerFor(
	provider RunnerConfigProvider,
	validationCfg *validation.Config,
	leakageCfg *leakage.Config,
	provideModelFn srvenv.ProvideModelFn,
	reportCache cache.Cache,
	db *database.DB,
) (runner.ProvideFn, error) {
	cfg := provider.RunnerConfig()
	var validatorOpts []validation.Option
	if provideModelFn != nil && validationCfg.MaxParallelFolds > 1 {
		alg := string(mlmodel.AlgTypeLogReg)
		validatorOpts = append(validatorOpts, validation.WithModelProvider(func() (mlmodel.Model, error) {
			return provideModelFn(alg)
		}))
	}
	validator := validation.New(*validationCfg, validatorOpts...)
	detector := leakage.New(*leakageCfg)

	return func(notifier notify.Manager, shutdownCh chan<- error) (runner.Manager, error) {
		return runner.New(
			db,
			validator,
			detector,
			notifier,
			shutdownCh,
			runner.WithRebuildDBTime(cfg.RebuildDBTime),
			runner.WithMaxReportsStored(cfg.MaxReportsStored),
			runner.WithMaxStorageTime(cfg.MaxStorageTime),
			runner.WithDBFlushSize(cfg.DBFlushSize),
			runner.WithDBFlushTime(cfg.DBFlushTime),
			runner.WithMinScoreAlert(cfg.MinScoreAlert),
			runner.WithCache(reportCache),
		)
	}, nil
}

func ProvideModelFor(cfg *mlmodel.Config) (srvenv.ProvideModelFn, error) {
	cfgLogReg := logreg.Config{}
	if err := envconfig.Process("", &cfgLogReg); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}
	return func(algorithm string) (mlmodel.Model, error) {
		if algorithm == "" {
			algorithm = string(cfg.ModelType())
		}
		switch mlmodel.AlgType(algorithm) {
		case mlmodel.AlgTypeLogReg:
			opts := []logreg.Option{
				logreg.WithLearningRate(cfgLogReg.LearningRate),
				logreg.WithIterations(cfgLogReg.Iterations),
				logreg.WithL2(cfgLogReg.L2),
			}
			if cfgLogReg.Patience > 0 {
				// A stopped controller is terminal, so every model gets
				// its own.
				opts = append(opts, logreg.WithEarlyStopping(earlystop.New(
					earlystop.WithPatience(cfgLogReg.Patience),
					earlystop.WithMinDelta(cfgLogReg.MinDelta),
					earlystop.WithRestoreBestWeights(),
				)))
			}
			return logreg.New(opts...), nil
		default:
			return nil, fmt.Errorf("unknown model type: %s", algorithm)
		}
	}, nil
}
