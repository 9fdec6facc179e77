package protocol

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const DefaultMetricsNamespace = "bridgelink"

type metrics struct {
	framesDecoded *prometheus.CounterVec
	framesEncoded *prometheus.CounterVec
	frameErrors   *prometheus.CounterVec
	unknownFrames *prometheus.CounterVec
}

// newMetrics registers with registerer; a nil registerer leaves the
// collectors unregistered but still usable.
func newMetrics(namespace string, registerer prometheus.Registerer) *metrics {
	factory := promauto.With(registerer)

	return &metrics{
		framesDecoded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "codec",
			Name:      "frames_decoded_total",
			Help:      "Total number of frames decoded into packets",
		}, []string{"kind"}),

		framesEncoded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "codec",
			Name:      "frames_encoded_total",
			Help:      "Total number of packets encoded into frames",
		}, []string{"kind"}),

		frameErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "codec",
			Name:      "frame_errors_total",
			Help:      "Total number of frames that could not be decoded",
		}, []string{"reason"}),

		unknownFrames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "codec",
			Name:      "unknown_frames_total",
			Help:      "Total number of frames decoded as Unknown",
		}, []string{"provenance"}),
	}
}
