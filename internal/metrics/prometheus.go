// Package metrics exposes Prometheus metrics for the voice pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains all Prometheus metrics for the voice assistant.
type Metrics struct {
	// Capture metrics
	CapturesStarted  prometheus.Counter
	CapturesFinished prometheus.Counter
	CapturesEmpty    prometheus.Counter
	CaptureSeconds   prometheus.Histogram

	// Recognition metrics
	RecognitionRequests prometheus.Counter
	RecognitionFailures prometheus.Counter
	RecognitionNoSpeech prometheus.Counter
	RecognitionSeconds  prometheus.Histogram
	StaleResultsDropped prometheus.Counter

	// Synthesis metrics
	SynthesisRequests prometheus.Counter
	SynthesisFailures prometheus.Counter
	SynthesisSeconds  prometheus.Histogram

	// Playback metrics
	PlaybacksStarted prometheus.Counter
	PlaybacksBusy    prometheus.Counter
	PlaybackFailures prometheus.Counter

	// Web metrics
	WebRequests *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		CapturesStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voice_captures_started_total",
			Help: "Total number of microphone captures started",
		}),
		CapturesFinished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voice_captures_finished_total",
			Help: "Total number of captures that produced audio",
		}),
		CapturesEmpty: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voice_captures_empty_total",
			Help: "Total number of captures that produced no audio",
		}),
		CaptureSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "voice_capture_duration_seconds",
			Help:    "Duration of captured audio in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		}),
		RecognitionRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voice_recognition_requests_total",
			Help: "Total number of recognition requests sent",
		}),
		RecognitionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voice_recognition_failures_total",
			Help: "Total number of failed recognition requests",
		}),
		RecognitionNoSpeech: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voice_recognition_no_speech_total",
			Help: "Total number of recognition responses with no speech",
		}),
		RecognitionSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "voice_recognition_duration_seconds",
			Help:    "Recognition request round-trip time in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		StaleResultsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voice_stale_results_dropped_total",
			Help: "Total number of late results discarded for an abandoned session",
		}),
		SynthesisRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voice_synthesis_requests_total",
			Help: "Total number of synthesis requests sent",
		}),
		SynthesisFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voice_synthesis_failures_total",
			Help: "Total number of failed synthesis requests",
		}),
		SynthesisSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "voice_synthesis_duration_seconds",
			Help:    "Synthesis request round-trip time in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		PlaybacksStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voice_playbacks_started_total",
			Help: "Total number of playbacks started",
		}),
		PlaybacksBusy: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voice_playbacks_rejected_busy_total",
			Help: "Total number of playbacks rejected while another was active",
		}),
		PlaybackFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voice_playback_failures_total",
			Help: "Total number of playbacks that failed mid-write",
		}),
		WebRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "web_requests_total",
			Help: "Total HTTP requests by method, path and status",
		}, []string{"method", "path", "status"}),
	}
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve starts a metrics server on addr. It blocks; run it in a goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return http.ListenAndServe(addr, mux)
}
