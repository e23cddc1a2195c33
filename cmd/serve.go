// file: cmd/serve.go
// version: 1.0.0
// guid: 38f3ce1d-b67c-437e-b084-7dc7f2cbd4b0

package cmd

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/portal-server/internal/config"
	"github.com/jdfalk/portal-server/internal/database"
	"github.com/jdfalk/portal-server/internal/logging"
	"github.com/jdfalk/portal-server/internal/resolver"
	"github.com/jdfalk/portal-server/internal/server"
	"github.com/jdfalk/portal-server/internal/watcher"
)

// newResolver builds the resolver for cfg.RootDir.
func newResolver(cfg config.Config) (*resolver.Resolver, error) {
	res, err := resolver.New(cfg.RootDir, resolver.Options{
		Exclude:  cfg.ExcludePatterns,
		CacheTTL: cfg.ResolveCacheTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize resolver: %w", err)
	}
	return res, nil
}

func runServe(cfg config.Config) error {
	closer, err := logging.Setup(cfg.LogFile, cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer closer.Close()

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := database.NewStore(cfg.DatabaseType, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()
	log.Printf("[INFO] Using database: %s (%s)", cfg.DatabasePath, cfg.DatabaseType)

	res, err := newResolver(cfg)
	if err != nil {
		return err
	}

	if cfg.WatchRoot && cfg.ResolveCacheTTL > 0 {
		w := watcher.New(func(string) { res.Invalidate() }, 0, cfg.ExcludePatterns...)
		if err := w.Start(res.Root()); err != nil {
			log.Printf("[WARN] Could not watch %s, cached matches expire after %v: %v", res.Root(), cfg.ResolveCacheTTL, err)
		} else {
			defer w.Stop()
		}
	}

	srv := server.NewServer(server.Dependencies{
		Store:    store,
		Resolver: res,
		Config:   cfg,
	})
	return srv.Start(server.ServerConfigFrom(cfg))
}
