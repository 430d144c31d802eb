package main

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/genres"
	"github.com/desertthunder/crate/internal/search"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var catalog services.Catalog
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		client, err := services.NewClient(services.ClientConfig{
			ClientID:          config.Credentials.Spotify.ClientID,
			ClientSecret:      config.Credentials.Spotify.ClientSecret,
			Market:            config.Spotify.Market,
			RequestsPerSecond: config.Spotify.RequestsPerSecond,
			Burst:             config.Spotify.Burst,
			Retry:             retryFromConfig(config.Spotify),
			Logger:            logger,
		})
		if err != nil {
			logger.Warn("failed to create catalog client", "error", err)
		} else {
			catalog = client
		}
	}

	cache := genres.NewCache(genreFetcher(catalog, logger), genres.DefaultTTL, nil, logger)
	orchestrator := search.NewOrchestrator(catalog, cache, logger, nil)

	runner := NewRunner(RunnerOpts{
		Config:       config,
		Catalog:      catalog,
		Cache:        cache,
		Orchestrator: orchestrator,
		Logger:       logger,
	})

	app := &cli.Command{
		Name:     "crate",
		Usage:    "Discover Spotify playlists by genre",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

// genreFetcher adapts the catalog's seed endpoint into a cache fetcher.
//
// The seed endpoint is deprecated upstream, so a failed fetch falls through to
// the curated list instead of surfacing an error.
func genreFetcher(catalog services.Catalog, logger *log.Logger) genres.Fetcher {
	if catalog == nil {
		return nil
	}

	return func(ctx context.Context) ([]string, error) {
		labels, err := catalog.GenreSeeds(ctx)
		if err != nil {
			logger.Warn("genre seed fetch failed, using curated list", "error", err)
			return genres.FallbackSeeds(), nil
		}
		return labels, nil
	}
}

// retryFromConfig builds the retry policy from the TOML tuning section,
// keeping defaults for unset fields.
func retryFromConfig(cfg shared.SpotifyAPIConfig) services.RetryConfig {
	retry := services.DefaultRetryConfig()

	if cfg.MaxRetries > 0 {
		retry.MaxRetries = cfg.MaxRetries
	}
	if cfg.BaseDelayMS > 0 {
		retry.BaseDelay = time.Duration(cfg.BaseDelayMS) * time.Millisecond
	}
	if cfg.MaxDelayMS > 0 {
		retry.MaxDelay = time.Duration(cfg.MaxDelayMS) * time.Millisecond
	}
	if cfg.BackoffMultiplier > 1 {
		retry.Multiplier = cfg.BackoffMultiplier
	}

	return retry
}
