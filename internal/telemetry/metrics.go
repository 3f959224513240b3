package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for transition metrics.
const (
	OutcomeSuccess = "success"
	OutcomeDenied  = "denied"
	OutcomeFailed  = "failed"
)

// readHeaderTimeout bounds slow clients of the metrics endpoint.
const readHeaderTimeout = 5 * time.Second

// Metrics groups the lock server collectors. A nil *Metrics records nothing.
type Metrics struct {
	// transitions counts lock/unlock attempts by outcome.
	transitions *prometheus.CounterVec
	// locked mirrors the guard flag as 0 or 1.
	locked prometheus.Gauge
}

// NewMetrics registers the lock collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lockable_transitions_total",
				Help: "Total number of lock and unlock attempts",
			},
			[]string{"operation", "outcome"},
		),
		locked: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "lockable_locked",
				Help: "Whether the guard is locked (1) or unlocked (0)",
			},
		),
	}
}

// ObserveTransition counts one lock or unlock attempt.
func (m *Metrics) ObserveTransition(operation, outcome string) {
	if m == nil {
		return
	}

	m.transitions.WithLabelValues(operation, outcome).Inc()
}

// SetLocked publishes the current flag.
func (m *Metrics) SetLocked(locked bool) {
	if m == nil {
		return
	}

	if locked {
		m.locked.Set(1)
		return
	}

	m.locked.Set(0)
}

// ServeMetrics exposes gatherer on addr under /metrics until ctx is canceled.
func ServeMetrics(ctx context.Context, addr string, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}

	return nil
}
