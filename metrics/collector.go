package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/wippyai/webview/resource"
)

// Page creation outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeNullPage  = "null_handle"
	OutcomeLoadError = "load_error"
	OutcomeAborted   = "aborted"
)

// Collector holds the binding's metrics.
type Collector struct {
	enginesActive  prometheus.Gauge
	pagesActive    prometheus.Gauge
	pageCreations  *prometheus.CounterVec
	pageLoad       prometheus.Histogram
	callbacks      *prometheus.CounterVec
	observerPanics *prometheus.CounterVec
	frameBytes     prometheus.Counter
	inputEvents    *prometheus.CounterVec
	contextsLive   *prometheus.GaugeVec

	logger *zap.Logger
}

// NewCollector registers the metrics with reg. A nil reg uses the default
// Prometheus registerer.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	f := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.enginesActive = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "engines_active",
		Help:      "Number of live engines",
	})

	c.pagesActive = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pages_active",
		Help:      "Number of live pages",
	})

	c.pageCreations = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_creations_total",
			Help:      "Page creation attempts by outcome",
		},
		[]string{"outcome"},
	)

	c.pageLoad = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "page_load_seconds",
		Help:      "Time from page creation to its first terminal state",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	c.callbacks = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "callbacks_total",
			Help:      "Native callbacks dispatched by kind",
		},
		[]string{"kind"},
	)

	c.observerPanics = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observer_panics_total",
			Help:      "Observer panics recovered at the callback boundary",
		},
		[]string{"kind"},
	)

	c.frameBytes = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frame_bytes_total",
		Help:      "Pixel bytes delivered to observers",
	})

	c.inputEvents = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_events_total",
			Help:      "Input events forwarded to pages by kind",
		},
		[]string{"kind"},
	)

	c.contextsLive = f.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "contexts_live",
			Help:      "Native callback contexts currently registered",
		},
		[]string{"type"},
	)

	c.logger.Debug("metrics collector initialized", zap.String("namespace", namespace))
	return c
}

func (c *Collector) EngineStarted() {
	if c == nil {
		return
	}
	c.enginesActive.Inc()
}

func (c *Collector) EngineStopped() {
	if c == nil {
		return
	}
	c.enginesActive.Dec()
}

func (c *Collector) PageOpened() {
	if c == nil {
		return
	}
	c.pagesActive.Inc()
}

func (c *Collector) PageClosed() {
	if c == nil {
		return
	}
	c.pagesActive.Dec()
}

// RecordPageCreation counts a creation attempt. A positive elapsed is also
// observed as load latency.
func (c *Collector) RecordPageCreation(outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.pageCreations.WithLabelValues(outcome).Inc()
	if elapsed > 0 {
		c.pageLoad.Observe(elapsed.Seconds())
	}
}

func (c *Collector) RecordCallback(kind string) {
	if c == nil {
		return
	}
	c.callbacks.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordObserverPanic(kind string) {
	if c == nil {
		return
	}
	c.observerPanics.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordFrame(bytes int) {
	if c == nil || bytes <= 0 {
		return
	}
	c.frameBytes.Add(float64(bytes))
}

func (c *Collector) RecordInput(kind string) {
	if c == nil {
		return
	}
	c.inputEvents.WithLabelValues(kind).Inc()
}

// ContextObserver returns a resource.Observer that tracks live contexts per
// type. typeName maps table type IDs to label values.
func (c *Collector) ContextObserver(typeName func(typeID uint32) string) resource.Observer {
	return &contextObserver{c: c, typeName: typeName}
}

type contextObserver struct {
	c        *Collector
	typeName func(uint32) string
}

func (o *contextObserver) OnResourceEvent(ev resource.Event) {
	if o.c == nil {
		return
	}
	g := o.c.contextsLive.WithLabelValues(o.typeName(ev.TypeID))
	switch ev.Type {
	case resource.EventCreated:
		g.Inc()
	case resource.EventDropped:
		g.Dec()
	}
}
