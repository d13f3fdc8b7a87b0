// Package metrics provides prometheus counters of bot activity
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Result label values
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds bot counters in its own registry
type Metrics struct {
	Registry *prometheus.Registry
	Commands *prometheus.CounterVec
	Writes   *prometheus.CounterVec
	Deletes  *prometheus.CounterVec
}

// New provides registered counters
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloner_commands_total",
				Help: "Executed slash commands",
			},
			[]string{"command", "result"},
		),
		Writes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloner_clone_writes_total",
				Help: "Destination writes of clone pipeline",
			},
			[]string{"phase", "result"},
		),
		Deletes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloner_deletes_total",
				Help: "Deleted messages, channels and roles",
			},
			[]string{"kind", "result"},
		),
	}

	m.Registry.MustRegister(m.Commands, m.Writes, m.Deletes)

	return m
}

func result(err error) string {
	if err != nil {
		return ResultError
	}

	return ResultOK
}

// CommandObserved counts executed command
func (m *Metrics) CommandObserved(command string, err error) {
	if m == nil {
		return
	}

	m.Commands.WithLabelValues(command, result(err)).Inc()
}

// WriteObserved counts clone pipeline write
func (m *Metrics) WriteObserved(phase string, err error) {
	if m == nil {
		return
	}

	m.Writes.WithLabelValues(phase, result(err)).Inc()
}

// DeleteObserved counts deletions of given kind
func (m *Metrics) DeleteObserved(kind string, count int, err error) {
	if m == nil || count <= 0 {
		return
	}

	m.Deletes.WithLabelValues(kind, result(err)).Add(float64(count))
}

// Handler serves registry in prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on address until context is done
func (m *Metrics) Serve(ctx context.Context, address string, log logrus.FieldLogger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdown)
	}()

	log.WithField("address", address).Info("Serving metrics")

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}
