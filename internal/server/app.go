package server

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/genres"
	"github.com/desertthunder/crate/internal/repositories"
	"github.com/desertthunder/crate/internal/search"
	"github.com/desertthunder/crate/internal/shared"
)

// AppConfig bundles the dependencies needed to assemble the service router.
type AppConfig struct {
	Orchestrator *search.Orchestrator
	Genres       *genres.Cache
	History      *repositories.SearchRepository
	Logger       *log.Logger
	Production   bool
}

// New assembles the full service router: middleware stack plus all endpoint
// handlers.
func New(cfg AppConfig) *BasicRouter {
	if cfg.Logger == nil {
		cfg.Logger = shared.NewLogger(nil)
	}

	router := NewBasicRouter()
	router.Use(
		WithRequestID(),
		WithRecovery(cfg.Logger),
		WithLogging(cfg.Logger),
		WithCORS(),
	)

	router.Handler(NewGenresHandler(cfg.Genres, cfg.Logger, cfg.Production))
	router.Handler(NewSearchHandler(cfg.Orchestrator, cfg.History, cfg.Logger, cfg.Production))
	router.Handler(&HealthHandler{})

	return router
}
