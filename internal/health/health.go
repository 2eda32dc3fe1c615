package health

import (
	"context"
	"sort"
	"time"
)

// Check pings one dependency.
type Check func(ctx context.Context) error

type HealthChecker struct {
	checks   map[string]Check
	optional map[string]bool
}

type HealthStatus struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{checks: map[string]Check{}, optional: map[string]bool{}}
}

// Require adds a dependency the service cannot serve without.
func (h *HealthChecker) Require(name string, c Check) *HealthChecker {
	h.checks[name] = c
	return h
}

// Optional adds a dependency whose failure degrades but does not fail
// readiness.
func (h *HealthChecker) Optional(name string, c Check) *HealthChecker {
	h.checks[name] = c
	h.optional[name] = true
	return h
}

// CheckBasic is liveness: the process is up.
func (h *HealthChecker) CheckBasic() HealthStatus {
	return HealthStatus{Status: "healthy"}
}

// CheckReady pings every dependency. Status is "unhealthy" when a
// required one fails and "degraded" when only optional ones do.
func (h *HealthChecker) CheckReady(ctx context.Context) HealthStatus {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	out := HealthStatus{Status: "healthy", Components: map[string]ComponentHealth{}}
	for _, name := range names {
		c := h.run(ctx, h.checks[name])
		out.Components[name] = c
		if c.Status == "healthy" {
			continue
		}
		if !h.optional[name] {
			out.Status = "unhealthy"
		} else if out.Status == "healthy" {
			out.Status = "degraded"
		}
	}
	return out
}

func (h *HealthChecker) run(ctx context.Context, check Check) ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := check(ctx)
	res := ComponentHealth{Status: "healthy", ResponseTime: time.Since(start).Milliseconds()}
	if err != nil {
		res.Status = "unhealthy"
		res.Error = err.Error()
	}
	return res
}
