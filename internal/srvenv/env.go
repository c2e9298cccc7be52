package srvenv

import (
	"context"

	"github.com/go-mvd/mvd/internal/cache"
	"github.com/go-mvd/mvd/internal/database"
	"github.com/go-mvd/mvd/internal/mlmodel"
	"github.com/go-mvd/mvd/internal/notify"
	"github.com/go-mvd/mvd/internal/runner"
)

// ProvideModelFn returns a fresh model instance for an algorithm name.
type ProvideModelFn func(algorithm string) (mlmodel.Model, error)

type Option func(*SrvEnv) *SrvEnv

func New(opts ...Option) *SrvEnv {
	env := &SrvEnv{}
	for _, f := range opts {
		env = f(env)
	}

	return env
}

type SrvEnv struct {
	database    *database.DB
	runner      runner.ProvideFn
	notifier    notify.ProvideFn
	model       ProvideModelFn
	reportCache cache.Cache
}

func (s *SrvEnv) ProvideNotifier() notify.ProvideFn {
	return s.notifier
}

func (s *SrvEnv) ProvideRunner() runner.ProvideFn {
	return s.runner
}

func (s *SrvEnv) ProvideModel() ProvideModelFn {
	return s.model
}

func (s *SrvEnv) Database() *database.DB {
	return s.database
}

func (s *SrvEnv) Cache() cache.Cache {
	return s.reportCache
}

func WithNotifier(fn notify.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.notifier = fn
		return s
	}
}

func WithRunner(fn runner.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.runner = fn
		return s
	}
}

func WithModel(fn ProvideModelFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.model = fn
		return s
	}
}

func WithDatabase(db *database.DB) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.database = db
		return s
	}
}

func WithCache(c cache.Cache) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.reportCache = c
		return s
	}
}

func (s *SrvEnv) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}

	if s.database != nil {
		return s.database.Close(ctx)
	}
	return nil
}
