// Package metrics provides Prometheus metrics for the scaler monitor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/smazurov/scalerwatch/internal/events"
	"github.com/smazurov/scalerwatch/internal/report"
	"github.com/smazurov/scalerwatch/pkg/ascal"
)

const namespace = "scalerwatch"

var (
	frameUnchanged = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "frame",
		Name:      "unchanged_seconds",
		Help:      "Seconds since the sampled picture last changed",
	})

	frameFPS = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "frame",
		Name:      "fps",
		Help:      "Estimated scaler output rate",
	})

	frameSamples = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "frame",
		Name:      "samples",
		Help:      "Pixels sampled in the last frame",
	})

	frameColor = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "frame",
		Name:      "color",
		Help:      "Channel value of the reported frame colors",
	}, []string{"source", "channel"})

	frameIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "frame",
		Name:      "idle",
		Help:      "1 while the picture has been unchanged past the idle threshold",
	})

	frameChanges = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "frame",
		Name:      "changes_total",
		Help:      "Frames that counted as a picture change",
	})

	scalerWidth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "scaler",
		Name:      "width",
		Help:      "Scaler input width in pixels",
	})

	scalerHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "scaler",
		Name:      "height",
		Help:      "Scaler input height in pixels",
	})

	scalerLine = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "scaler",
		Name:      "line",
		Help:      "Scaler line stride in bytes",
	})

	scalerInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "scaler",
		Name:      "info",
		Help:      "Current scaler pixel format, buffering layout and 16-bit variant",
	}, []string{"format", "layout", "variant"})

	scalerChanges = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scaler",
		Name:      "changes_total",
		Help:      "Scaler geometry or format changes",
	})

	idleTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "frame",
		Name:      "idle_transitions_total",
		Help:      "Transitions into and out of the idle state",
	}, []string{"state"})
)

// ObserveReport updates the frame gauges from a report.
func ObserveReport(r report.Report) {
	frameUnchanged.Set(r.Unchanged)
	frameFPS.Set(r.FPS)
	frameSamples.Set(float64(r.Samples))
	if r.Idle {
		frameIdle.Set(1)
	} else {
		frameIdle.Set(0)
	}
	if r.Changed {
		frameChanges.Inc()
	}

	for source, c := range map[string][3]uint8{
		"color":    {r.Color.R, r.Color.G, r.Color.B},
		"average":  {r.Average.R, r.Average.G, r.Average.B},
		"dominant": {r.Dominant.R, r.Dominant.G, r.Dominant.B},
		"center":   {r.Center.R, r.Center.G, r.Center.B},
	} {
		frameColor.WithLabelValues(source, "r").Set(float64(c[0]))
		frameColor.WithLabelValues(source, "g").Set(float64(c[1]))
		frameColor.WithLabelValues(source, "b").Set(float64(c[2]))
	}

	setGeometry(r.Header)
	scalerInfo.Reset()
	scalerInfo.WithLabelValues(r.Header.Format.String(), r.Layout, r.Variant).Set(1)
}

// ObserveScalerChange records a geometry change.
func ObserveScalerChange(h ascal.Header) {
	scalerChanges.Inc()
	setGeometry(h)
}

// ObserveIdle records an idle transition.
func ObserveIdle(idle bool) {
	state := "active"
	if idle {
		state = "idle"
	}
	idleTransitions.WithLabelValues(state).Inc()
}

func setGeometry(h ascal.Header) {
	scalerWidth.Set(float64(h.Width))
	scalerHeight.Set(float64(h.Height))
	scalerLine.Set(float64(h.Line))
}

// Attach feeds the metrics from bus events and returns the unsubscribe func.
func Attach(bus *events.Bus) func() {
	unsubs := []func(){
		bus.Subscribe(func(e events.FrameReportEvent) { ObserveReport(e.Report) }),
		bus.Subscribe(func(e events.ScalerChangedEvent) { ObserveScalerChange(e.Current) }),
		bus.Subscribe(func(e events.IdleStateChangedEvent) { ObserveIdle(e.Idle) }),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
