package mrfsk

// Receive counters, exported through Prometheus.

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

type Stats struct {
	packetsTotal       *prometheus.CounterVec
	framingErrorsTotal *prometheus.CounterVec
	correctedBitsTotal *prometheus.CounterVec
}

// NewStats registers the counters with reg.  Pass a fresh
// prometheus.NewRegistry() in tests to avoid duplicate registration.
func NewStats(reg prometheus.Registerer) *Stats {
	var factory = promauto.With(reg)
	return &Stats{
		packetsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mrfsk_packets_total",
				Help: "Frames delivered by the deframer, by branch and FCS result",
			},
			[]string{"branch", "fcs"}, // uncoded, coded / ok, fail
		),
		framingErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mrfsk_framing_errors_total",
				Help: "Frames dropped because they could not be delimited",
			},
			[]string{"branch"},
		),
		correctedBitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mrfsk_fec_corrected_bits_total",
				Help: "Coded bits corrected by the Viterbi decoder",
			},
			[]string{"branch"},
		),
	}
}

func (s *Stats) packetReceived(p *Packet) {
	if s == nil {
		return
	}
	s.packetsTotal.WithLabelValues(p.Branch.String(), IfThenElse(p.CRCValid, "ok", "fail")).Inc()
	s.correctedBitsTotal.WithLabelValues(p.Branch.String()).Add(float64(p.CorrectedBits))
}

func (s *Stats) framingError(b Branch) {
	if s == nil {
		return
	}
	s.framingErrorsTotal.WithLabelValues(b.String()).Inc()
}

func (s *Stats) Packets(b Branch, crcValid bool) prometheus.Counter {
	return s.packetsTotal.WithLabelValues(b.String(), IfThenElse(crcValid, "ok", "fail"))
}

func (s *Stats) FramingErrors(b Branch) prometheus.Counter {
	return s.framingErrorsTotal.WithLabelValues(b.String())
}

func (s *Stats) CorrectedBits(b Branch) prometheus.Counter {
	return s.correctedBitsTotal.WithLabelValues(b.String())
}

// Current value of a counter, for printing summaries.
func CounterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
