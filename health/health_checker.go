// Package health reports whether the explainer has a usable glossary.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/giygas/cardioexplain-api/interfaces"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Compile-time check to ensure HealthCheckerImpl implements HealthChecker
var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	store     interfaces.GlossaryStore
	scheduler interfaces.Scheduler
}

// NewHealthChecker creates a health checker. scheduler may be nil when
// reloads are not scheduled.
func NewHealthChecker(store interfaces.GlossaryStore, scheduler interfaces.Scheduler) *HealthCheckerImpl {
	return &HealthCheckerImpl{
		store:     store,
		scheduler: scheduler,
	}
}

// HealthCheck is unhealthy (503) without glossary entries, degraded (200)
// when the last reload failed and the previous glossary is still being
// served, and healthy otherwise.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	g := h.store.Glossary()
	lastUpdate := h.store.GetLastUpdated()
	reloadErr := h.store.LastReloadError()

	switch {
	case g.Len() == 0:
		status = StatusUnhealthy
		httpStatus = http.StatusServiceUnavailable
	case reloadErr != nil:
		status = StatusDegraded
		httpStatus = http.StatusOK
	default:
		status = StatusHealthy
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"glossary_version": g.Version(),
		"entries":          g.Len(),
		"categories":       g.CountByCategory(),
		"is_updating":      h.store.IsUpdating(),
	}

	if !lastUpdate.IsZero() {
		data["last_update"] = lastUpdate.Format(time.RFC3339)
		data["data_age_hours"] = math.Round(time.Since(lastUpdate).Hours()*10) / 10
	}

	if reloadErr != nil {
		data["last_reload_error"] = reloadErr.Error()
	}

	if h.scheduler != nil {
		if next := h.scheduler.NextReload(); !next.IsZero() {
			data["next_reload"] = next.Format(time.RFC3339)
		}
	}

	if start := h.store.GetServerStartTime(); !start.IsZero() {
		uptime := time.Since(start)
		data["uptime_seconds"] = int64(uptime.Seconds())
		data["uptime"] = FormatUptime(uptime)
	}

	return status, data, httpStatus
}
