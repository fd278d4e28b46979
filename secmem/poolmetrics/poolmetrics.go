// Package poolmetrics exposes secmem pool activity as Prometheus
// collectors via docker/go-metrics. Importing the package registers the
// "sigil_secmem" namespace with the default Prometheus registry; wire
// the sink into a pool with:
//
//	pool := secmem.New(secmem.Config{Metrics: poolmetrics.Sink()})
package poolmetrics

import (
	metrics "github.com/docker/go-metrics"

	"sigil.co/sigil/secmem"
)

var (
	slabsGauge   metrics.Gauge
	bytesGauge   metrics.Gauge
	rentCounter  metrics.Counter
	releaseCount metrics.Counter
	lateCounter  metrics.Counter
)

func init() {
	ns := metrics.NewNamespace("sigil", "secmem", nil)
	slabsGauge = ns.NewGauge("slabs", "The number of currently mapped slabs", metrics.Total)
	bytesGauge = ns.NewGauge("slab_memory", "The number of bytes mapped across all slabs", metrics.Bytes)
	rentCounter = ns.NewCounter("rents", "The total number of buffer leases handed out")
	releaseCount = ns.NewCounter("releases", "The total number of buffers returned to their slab")
	lateCounter = ns.NewCounter("late_releases", "The total number of buffers released after pool teardown")
	metrics.Register(ns)
}

type sink struct{}

// Sink returns a secmem.MetricsSink backed by the package's Prometheus
// collectors. The same sink may be shared by multiple pools; the gauges
// then aggregate across them.
func Sink() secmem.MetricsSink { return sink{} }

func (sink) SlabAllocated(elemSize, capacity int) {
	slabsGauge.Inc(1)
	bytesGauge.Inc(float64(elemSize * capacity))
}

func (sink) SlabReclaimed(elemSize, capacity int) {
	slabsGauge.Dec(1)
	bytesGauge.Dec(float64(elemSize * capacity))
}

func (sink) Rented(size int)      { rentCounter.Inc() }
func (sink) Released(size int)    { releaseCount.Inc() }
func (sink) LateRelease(size int) { lateCounter.Inc() }
