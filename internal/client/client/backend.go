package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/treehole/internal/client/config"
	"github.com/dmitrijs2005/treehole/internal/client/remote"
	"github.com/dmitrijs2005/treehole/internal/common"
	"github.com/dmitrijs2005/treehole/internal/logging"
)

// OpenBackend picks the remote backend from cfg. A DSN wins over the REST
// endpoint. It returns (nil, nil) when nothing is configured, which keeps
// the client in local mode. Connecting to Postgres is bounded by
// cfg.StartupTimeout.
func OpenBackend(ctx context.Context, cfg *config.Config, log logging.Logger) (remote.Backend, error) {
	if !cfg.RemoteConfigured() {
		log.Info(ctx, "no remote configured")
		return nil, nil
	}

	if cfg.DatabaseDSN == "" {
		log.Info(ctx, "using rest backend", "url", cfg.RemoteURL)
		b, err := remote.NewRESTBackend(cfg.RemoteURL, cfg.APIKey, remote.WithRESTLogger(log))
		if err != nil {
			return nil, err
		}
		return b, nil
	}

	log.Info(ctx, "using postgres backend")
	openCtx, cancel := startupContext(ctx, cfg.StartupTimeout)
	defer cancel()

	b, err := remote.OpenPostgres(openCtx, cfg.DatabaseDSN)
	if err != nil {
		if errors.Is(openCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("no answer from postgres within %s: %w", cfg.StartupTimeout, common.ErrTimeout)
		}
		return nil, err
	}
	return b, nil
}

func startupContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
