// Package health reports whether the catalog collections are being served.
package health

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/giygas/drugstore/interfaces"
)

// Thresholds on the age of the last successful drugs load.
const (
	DegradedAfter  = 30 * time.Minute
	UnhealthyAfter = 6 * time.Hour
	// StartupGrace lets the first fetch land before a missing load is unhealthy.
	StartupGrace = time.Minute
)

// Pinger is a dependency whose reachability matters to health.
type Pinger interface {
	Ping(ctx context.Context) error
}

const pingTimeout = time.Second

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	source interfaces.StatusSource
	store  Pinger
	now    func() time.Time
}

// NewHealthChecker creates a new health checker with injected dependencies.
// store may be nil.
func NewHealthChecker(source interfaces.StatusSource, store Pinger) interfaces.HealthChecker {
	return &HealthCheckerImpl{source: source, store: store, now: time.Now}
}

// storeReachable reports whether preferences can still be persisted.
func (h *HealthCheckerImpl) storeReachable() bool {
	if h.store == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return h.store.Ping(ctx) == nil
}

// HealthCheck grades the drugs collection: never loaded past the startup
// grace is unhealthy, a failed or stale load is degraded.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	st := h.source.CollectionStatus()
	now := h.now()

	status, httpStatus = "healthy", http.StatusOK
	data = map[string]any{
		"drugs":      st.Drugs,
		"countries":  st.Countries,
		"drug_count": st.DrugCount,
		"uptime_s":   math.Round(now.Sub(st.StartedAt).Seconds()),
	}
	storeOK := h.storeReachable()
	data["preferences"] = storeOK

	if st.LastSuccess.IsZero() {
		data["last_success"] = nil
		if now.Sub(st.StartedAt) > StartupGrace {
			return "unhealthy", data, http.StatusServiceUnavailable
		}
		return "starting", data, http.StatusServiceUnavailable
	}

	age := now.Sub(st.LastSuccess)
	data["last_success"] = st.LastSuccess.Format(time.RFC3339)
	data["data_age_minutes"] = math.Round(age.Minutes()*10) / 10

	switch {
	case age > UnhealthyAfter:
		status, httpStatus = "unhealthy", http.StatusServiceUnavailable
	case age > DegradedAfter, st.Drugs == "failed", st.Countries == "failed", !storeOK:
		status = "degraded"
	}
	return status, data, httpStatus
}
