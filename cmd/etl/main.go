// Command etl converts every profile file in a directory into metadata and
// profile documents and writes them to the configured sink.
//
// Usage:
//
//	go run ./cmd/etl -dir data/2901237
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	httpadapter "github.com/couchcryptid/argo-profile-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/argo-profile-etl/internal/adapter/kafka"
	"github.com/couchcryptid/argo-profile-etl/internal/adapter/netcdf"
	"github.com/couchcryptid/argo-profile-etl/internal/adapter/postgres"
	"github.com/couchcryptid/argo-profile-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/argo-profile-etl/internal/config"
	"github.com/couchcryptid/argo-profile-etl/internal/observability"
	"github.com/couchcryptid/argo-profile-etl/internal/pipeline"
)

// sink is a pipeline.Sink that holds a connection.
type sink interface {
	pipeline.Sink
	Close() error
}

func main() {
	dir := flag.String("dir", "", "directory of profile files (overrides ARGO_DATA_DIR)")
	flag.Parse()

	os.Exit(run(*dir))
}

func run(dir string) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	if dir != "" {
		cfg.DataDir = dir
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	paths, err := netcdf.ListFiles(cfg.DataDir)
	if err != nil {
		logger.Error("cannot read data directory", "dir", cfg.DataDir, "error", err)
		return 1
	}

	out, sinkReady, err := openSink(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open sink", "backend", cfg.SinkBackend, "error", err)
		return 1
	}
	defer func() {
		if err := out.Close(); err != nil {
			logger.Error("sink close error", "error", err)
		}
	}()

	p := pipeline.New(netcdf.Opener{}, out, logger, metrics)

	if cfg.HTTPAddr != "" {
		srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.AllReady{p, sinkReady}, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	logger.Info("converting directory", "dir", cfg.DataDir, "files", len(paths), "backend", cfg.SinkBackend)
	summary, err := p.Run(ctx, paths)
	for _, problem := range summary.Problems {
		logger.Warn("file not converted", "file", problem.File, "reason", problem.Reason, "fatal", problem.Fatal)
	}
	if err != nil {
		logger.Error("batch aborted", "run_id", summary.RunID, "error", err)
		return 1
	}
	if summary.Failed > 0 {
		logger.Error("batch finished with persist failures", "run_id", summary.RunID, "failed", summary.Failed)
		return 1
	}
	return 0
}

// openSink connects the configured backend. The readiness checker is nil for
// backends without a connection to probe.
func openSink(ctx context.Context, cfg *config.Config, logger *slog.Logger) (sink, sharedobs.ReadinessChecker, error) {
	switch cfg.SinkBackend {
	case config.BackendPostgres:
		store, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.SinkConnectAttempts, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case config.BackendKafka:
		return kafkaadapter.NewWriter(cfg, logger), nil, nil
	default:
		store, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
}
