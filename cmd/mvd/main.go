package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-mvd/mvd/internal/buildinfo"
	"github.com/go-mvd/mvd/internal/logging"
	"github.com/go-mvd/mvd/internal/mvd"
	"github.com/go-mvd/mvd/internal/obs"
	reportDb "github.com/go-mvd/mvd/internal/report/database"
	"github.com/go-mvd/mvd/internal/reports"
	"github.com/go-mvd/mvd/internal/server"
	"github.com/go-mvd/mvd/internal/setup"
	"github.com/go-mvd/mvd/internal/shutdown"
	"github.com/go-mvd/mvd/internal/validate"
)

func main() {
	ctx, done := shutdown.New()
	logger := logging.FromContext(ctx)
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)
	logger.Infof("%s %s %s", buildinfo.Info.Name(), buildinfo.Info.Tag(), buildinfo.Info.Time())
	go http.ListenAndServe("0.0.0.0:8080", nil)
	if err := run(ctx, done); err != nil {
		logger.Fatal(err)
	}
	defer done()
}

func run(ctx context.Context, cancel func()) error {
	config := mvd.Config{}
	env, err := setup.Setup(ctx, &config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}
	defer env.Close(context.Background())

	shutdownCh := make(chan error, 2)
	notifier, err := env.ProvideNotifier()(shutdownCh)
	if err != nil {
		return fmt.Errorf("notifier provider function error: %w", err)
	}
	mgr, err := env.ProvideRunner()(notifier, shutdownCh)
	if err != nil {
		return fmt.Errorf("runner provider function error: %w", err)
	}
	if err := mgr.Run(ctx); err != nil {
		return fmt.Errorf("runner.Run: %w", err)
	}

	srv, err := server.New(config.SrvAddr, config.MaxConns)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	mux := http.NewServeMux()

	validateHandler, err := validate.NewHandler(&config.Validate, mgr, validate.ProvideModelFn(env.ProvideModel()))
	if err != nil {
		return fmt.Errorf("validate.NewHandler: %w", err)
	}
	mux.Handle("/validate", validateHandler)

	reportsHandler, err := reports.NewHandler(&config.Reports, reportDb.New(env.Database()))
	if err != nil {
		return fmt.Errorf("reports.NewHandler: %w", err)
	}
	mux.Handle("/reports", reportsHandler)

	metricsHandler, err := obs.Register()
	if err != nil {
		return fmt.Errorf("obs.Register: %w", err)
	}
	mux.Handle("/metrics", metricsHandler)
	mux.Handle("/health", server.HandleHealth(ctx))

	go func() {
		if err := srv.ServeHTTPHandler(ctx, mux); err != nil {
			cancel()
		}
	}()

	return <-shutdownCh
}
