/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to the server for access to services.
 */
package di

import (
	"github.com/aristath/etfadvisor/internal/config"
	"github.com/aristath/etfadvisor/internal/events"
	"github.com/aristath/etfadvisor/internal/metrics"
	"github.com/aristath/etfadvisor/internal/modules/advisor"
	"github.com/aristath/etfadvisor/internal/modules/catalog"
	"github.com/aristath/etfadvisor/internal/modules/display"
	"github.com/aristath/etfadvisor/internal/modules/sessions"
	"github.com/aristath/etfadvisor/internal/scheduler"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config

	// Engine
	Catalog     *catalog.Catalog
	ModeManager *display.ModeManager
	AdviceCache *advisor.Cache
	Advisor     *advisor.Service

	// Sessions
	EventBus       *events.Bus
	SessionStore   *sessions.Store
	SessionService *sessions.Service

	// Infrastructure
	Metrics   *metrics.Metrics
	Scheduler *scheduler.Scheduler
}

// JobInstances holds registered jobs for manual triggering
type JobInstances struct {
	SessionSweep scheduler.Job
}
