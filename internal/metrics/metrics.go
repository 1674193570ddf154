// SPDX-License-Identifier: EPL-2.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gauges
var (
	RingOccupancyBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "spdifbridge_ring_occupancy_bytes",
		Help: "Bytes reserved in the ring buffer, held items and padding included",
	})
	FillPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "spdifbridge_fill_percent",
		Help: "Smoothed ring buffer fill, 100 meaning half full",
	})
	Drift = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "spdifbridge_drift_samples",
		Help: "Current drift adjustment in samples per block",
	})
	VolumePercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "spdifbridge_volume_percent",
		Help: "Software volume applied on the encoded path",
	})
	SampleRateHz = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "spdifbridge_sample_rate_hz",
		Help: "Configured output sample rate",
	})
)

// Counters
var (
	BlocksWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spdifbridge_blocks_written_total",
		Help: "Producer blocks accepted into the ring buffer",
	})
	BackpressureTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spdifbridge_backpressure_total",
		Help: "Producer blocks rejected because the ring buffer stayed full",
	})
	SamplesAdjustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spdifbridge_samples_adjusted_total",
		Help: "Samples inserted or removed by drift correction",
	}, []string{"direction"})
	DriftChangesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spdifbridge_drift_changes_total",
		Help: "Rate controller decision changes",
	})
	ItemsOutTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spdifbridge_items_out_total",
		Help: "Ring buffer items handed to the output by outcome",
	}, []string{"outcome"})
	FramesFlushedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spdifbridge_frames_flushed_total",
		Help: "S/PDIF frame buffers written to the driver",
	})
)

// Histograms
var (
	WriteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spdifbridge_write_duration_ms",
		Help:    "Producer write latency in milliseconds, enqueue waits included",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 20, 50},
	})
)
