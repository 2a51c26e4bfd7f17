package di

import (
	"fmt"

	"github.com/aristath/etfadvisor/internal/config"
	"github.com/aristath/etfadvisor/internal/events"
	"github.com/aristath/etfadvisor/internal/metrics"
	"github.com/aristath/etfadvisor/internal/modules/advisor"
	"github.com/aristath/etfadvisor/internal/modules/catalog"
	"github.com/aristath/etfadvisor/internal/modules/display"
	"github.com/aristath/etfadvisor/internal/modules/sessions"
	"github.com/aristath/etfadvisor/internal/scheduler"
	"github.com/rs/zerolog"
)

// InitializeServices creates every service and stores it in the container
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	container.Catalog = cat

	source := cfg.CatalogPath
	if source == "" {
		source = "embedded"
	}
	log.Info().Str("source", source).Int("etfs", cat.Len()).Msg("Catalog loaded")

	container.Metrics = metrics.New(true)
	container.ModeManager = display.NewModeManager(cfg.KnowledgeLevel, log)

	cache, err := advisor.NewCache(cfg.CacheSize)
	if err != nil {
		return err
	}
	container.AdviceCache = cache

	container.Advisor = advisor.NewService(
		cat,
		container.ModeManager,
		cfg.OverlapPolicy,
		cache,
		container.Metrics,
		log,
	)

	container.EventBus = events.NewBus(log)
	container.SessionStore = sessions.NewStore()
	container.SessionService = sessions.NewService(
		container.SessionStore,
		container.Advisor,
		container.EventBus,
		container.Metrics,
		cfg.SessionTTL,
		log,
	)

	container.Scheduler = scheduler.New(log)

	log.Info().Msg("Services initialized")
	return nil
}
