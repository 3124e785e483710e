// Package metrics implements C9, a thin Prometheus exporter tracking
// slot-loop throughput and per-dependency outcomes. It is grounded on
// the reference prometheus service: an http.Server serving
// promhttp.Handler() plus a liveness endpoint, trimmed of the teacher's
// multi-service registry health aggregation since blockdreamer runs a
// single orchestrator rather than a set of independently registered
// services.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "metrics")

var (
	// SlotsProcessed counts completed slot-loop iterations.
	SlotsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockdreamer_slots_processed_total",
		Help: "Number of slot-loop iterations completed.",
	})

	// NodeFetches counts dreaming-node requests by outcome.
	NodeFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blockdreamer_node_fetch_total",
		Help: "Dreaming node fetch attempts by node and outcome.",
	}, []string{"node", "outcome"})

	// SinkPosts counts sink dispatch attempts by outcome.
	SinkPosts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blockdreamer_sink_post_total",
		Help: "Sink POST attempts by sink and outcome.",
	}, []string{"sink", "outcome"})

	// ClassifierVerdicts counts classifier outcomes by verdict kind.
	ClassifierVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blockdreamer_classifier_verdict_total",
		Help: "Classifier verdicts by kind.",
	}, []string{"verdict"})
)

// Service serves the /metrics endpoint. It is non-core: its failure
// never gates the slot loop (§4.8 note, "non-core, does not gate the
// slot loop").
type Service struct {
	srv *http.Server
}

// NewService constructs a metrics Service listening on addr.
func NewService(addr string) *Service {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return &Service{srv: &http.Server{Addr: addr, Handler: mux}}
}

// Start runs the metrics HTTP server in the background. Bind failures
// are logged, not returned, since the metrics server is best-effort.
func (s *Service) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics server stopped unexpectedly")
		}
	}()
}

// Stop gracefully shuts the metrics server down.
func (s *Service) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
