// Package httpmetrics wraps an http.Handler with OpenCensus request metrics.
package httpmetrics

import (
	"net/http"
	"time"

	"github.com/golang/glog"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	keyPath   = tag.MustNewKey("path")
	keyMethod = tag.MustNewKey("method")
)

type Wrapper struct {
	requestCount     *stats.Int64Measure
	requestCountView *view.View

	requestLatency     *stats.Float64Measure
	requestLatencyView *view.View

	inner http.Handler
}

func New(inner http.Handler) *Wrapper {
	r := &Wrapper{}

	r.requestCount = stats.Int64("requests", "", stats.UnitDimensionless)
	r.requestCountView = &view.View{
		Name:        "requests",
		Description: "Counter of requests that have been handled",

		TagKeys: []tag.Key{keyPath, keyMethod},

		Measure:     r.requestCount,
		Aggregation: view.Count(),
	}

	r.requestLatency = stats.Float64("request_latency", "", stats.UnitMilliseconds)
	r.requestLatencyView = &view.View{
		Name:        "request_latency",
		Description: "Latency of requests that have been handled",

		TagKeys: []tag.Key{keyPath, keyMethod},

		Measure:     r.requestLatency,
		Aggregation: view.Distribution(1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	}

	r.inner = inner

	return r
}

func (h *Wrapper) RegisterMetrics() {
	view.Register(h.requestCountView, h.requestLatencyView)
}

func (h *Wrapper) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	h.inner.ServeHTTP(w, r)
	elapsed := time.Since(start)

	glog.Infof("Served path=%q method=%q elapsed=%v", r.URL.Path, r.Method, elapsed)

	stats.RecordWithOptions(
		r.Context(),
		stats.WithTags(
			tag.Insert(keyPath, r.URL.Path),
			tag.Insert(keyMethod, r.Method),
		),
		stats.WithMeasurements(
			h.requestCount.M(1),
			h.requestLatency.M(float64(elapsed)/float64(time.Millisecond)),
		))
}
