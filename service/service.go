// Package service runs the sidecar HTTP servers: a healthz endpoint and
// the Prometheus metrics endpoint.
package service

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/ethereum/go-ethereum/log"

	"github.com/drover-run/drover/metrics"
)

const (
	HealthzHost = "0.0.0.0"
	HealthzPort = "8080"

	MetricsHost = "0.0.0.0"
	MetricsPort = "7300"
)

// Service bundles the healthz and metrics servers so the app can start and
// stop them together.
type Service struct {
	Healthz *HealthzServer
	Metrics *MetricsServer

	healthzAddr string
	metricsAddr string
}

// New creates a service listening on the default addresses.
func New() *Service {
	return &Service{
		Healthz:     &HealthzServer{},
		Metrics:     &MetricsServer{},
		healthzAddr: net.JoinHostPort(HealthzHost, HealthzPort),
		metricsAddr: net.JoinHostPort(MetricsHost, MetricsPort),
	}
}

// WithAddrs overrides the listen addresses, for configuration from flags.
func (s *Service) WithAddrs(healthzAddr, metricsAddr string) *Service {
	if healthzAddr != "" {
		s.healthzAddr = healthzAddr
	}
	if metricsAddr != "" {
		s.metricsAddr = metricsAddr
	}
	return s
}

// Start launches both servers in the background. Listen errors are logged
// and recorded, not returned; the app keeps running without the sidecars.
func (s *Service) Start(ctx context.Context) {
	log.Info("service starting")

	go func() {
		log.Info("starting healthz server", "addr", s.healthzAddr)
		if err := s.Healthz.Start(ctx, s.healthzAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("error starting healthz server", "err", err)
			metrics.RecordErrorDetails("error starting healthz server", err)
		}
	}()

	go func() {
		log.Info("starting metrics server", "addr", s.metricsAddr)
		if err := s.Metrics.Start(ctx, s.metricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("error starting metrics server", "err", err)
			metrics.RecordErrorDetails("error starting metrics server", err)
		}
	}()

	log.Info("service started")
}

// Shutdown stops both servers, waiting for in-flight requests.
func (s *Service) Shutdown() {
	log.Info("service shutting down")

	_ = s.Healthz.Shutdown()
	log.Info("healthz stopped")

	_ = s.Metrics.Shutdown()
	log.Info("metrics stopped")

	log.Info("service stopped")
}
