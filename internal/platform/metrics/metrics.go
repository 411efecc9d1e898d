// Package metrics exposes study engine counters to Prometheus. The
// counters are fed by an event handler registered on the in-process
// emitter, so services never import this package.
package metrics

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/palabras/palabras-api/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "palabras"

// Result label values of the graded responses counter.
const (
	ResultCorrect   = "correct"
	ResultIncorrect = "incorrect"
)

// Recorder holds the study counters and the registry they live in.
type Recorder struct {
	registry            *prometheus.Registry
	responsesGraded     *prometheus.CounterVec
	itemsPromoted       prometheus.Counter
	translationRequests prometheus.Counter
	logger              *slog.Logger
}

var _ events.EventHandler = (*Recorder)(nil)

// NewRecorder creates a Recorder with its own registry. When withRuntime is
// true the Go runtime and process collectors are registered too.
func NewRecorder(logger *slog.Logger, withRuntime bool) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		registry: prometheus.NewRegistry(),
		responsesGraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_graded_total",
			Help:      "Responses graded, by result.",
		}, []string{"result"}),
		itemsPromoted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_promoted_total",
			Help:      "Mastery records promoted to well known.",
		}),
		translationRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_requests_total",
			Help:      "Responses that could not be graded for lack of a reference translation.",
		}),
		logger: logger.With(slog.String("component", "metrics")),
	}

	r.registry.MustRegister(r.responsesGraded, r.itemsPromoted, r.translationRequests)
	if withRuntime {
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	// Pre-create both label values so they are exported at zero.
	r.responsesGraded.WithLabelValues(ResultCorrect)
	r.responsesGraded.WithLabelValues(ResultIncorrect)

	return r
}

// Registry returns the registry the counters are registered with.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// HandleEvent implements events.EventHandler.
func (r *Recorder) HandleEvent(_ context.Context, event *events.Event) error {
	switch event.Type {
	case events.TypeGradeRecorded:
		var payload events.GradeRecorded
		if err := event.UnmarshalPayload(&payload); err != nil {
			r.logger.Warn("dropping malformed grade event",
				slog.String("event_id", event.ID.String()),
				slog.String("error", err.Error()))
			return err
		}
		result := ResultIncorrect
		if payload.Correct {
			result = ResultCorrect
		}
		r.responsesGraded.WithLabelValues(result).Inc()
		if payload.Promoted {
			r.itemsPromoted.Inc()
		}
	case events.TypeTranslationRequested:
		r.translationRequests.Inc()
	}
	return nil
}
