// Package metrics provides Prometheus metrics for the prediction service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "avipredict"
	subsystem = "predictions"
)

// Manager owns the service counters on its own registry so the /metrics
// endpoint stays free of default Go collectors.
type Manager struct {
	registry *prometheus.Registry

	batchesScored  prometheus.Counter
	batchesFailed  prometheus.Counter
	rowsIngested   prometheus.Counter
	recordsSaved   prometheus.Counter
	workbookWrites prometheus.Counter
}

// NewManager builds a metrics manager with all counters registered.
func NewManager() *Manager {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Manager{
		registry: registry,
		batchesScored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "batches_scored_total", Help: "Prediction batches scored successfully.",
		}),
		batchesFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "batches_failed_total", Help: "Prediction batches that failed validation or inference.",
		}),
		rowsIngested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "rows_ingested_total", Help: "Feature rows accepted from manual entry and file uploads.",
		}),
		recordsSaved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "records_saved_total", Help: "Provenance records written to the remote table.",
		}),
		workbookWrites: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "workbook_writes_total", Help: "Append operations against the shared workbook.",
		}),
	}
}

// Handler exposes the registry for the /metrics route.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Manager) BatchScored(rows int) {
	m.batchesScored.Inc()
	m.rowsIngested.Add(float64(rows))
}

func (m *Manager) BatchFailed()   { m.batchesFailed.Inc() }
func (m *Manager) RecordSaved()   { m.recordsSaved.Inc() }
func (m *Manager) WorkbookWrite() { m.workbookWrites.Inc() }
