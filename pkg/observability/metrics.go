package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/tendril/pkg/dialogue"
)

// Metrics holds prometheus collectors for session activity. One instance can
// observe any number of sessions; the collectors are safe for concurrent use
// even though each session fires its hooks on its own goroutine.
type Metrics struct {
	NodesEntered  *prometheus.CounterVec
	LinesStarted  prometheus.Counter
	Commands      *prometheus.CounterVec
	WaitPauses    prometheus.Counter
	WaitDuration  prometheus.Histogram
	OptionsShown  prometheus.Counter
	Confirms      prometheus.Counter
	SessionsEnded *prometheus.CounterVec
}

// NewMetrics builds the collector set and registers it with reg. A nil reg
// registers with the process-wide default, which is what a host serving
// promhttp.Handler() usually wants.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		NodesEntered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tendril_nodes_entered_total",
				Help: "Number of node entries, labelled by node title.",
			},
			[]string{"node"},
		),
		LinesStarted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tendril_lines_total",
				Help: "Number of dialogue lines started.",
			},
		),
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tendril_commands_total",
				Help: "Number of commands consumed by hosts, labelled by command name.",
			},
			[]string{"command"},
		),
		WaitPauses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tendril_wait_pauses_total",
				Help: "Number of times a wait command paused the presenter.",
			},
		),
		WaitDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "tendril_wait_duration_seconds",
				Help: "Requested pause duration of wait commands.",
			},
		),
		OptionsShown: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tendril_options_presented_total",
				Help: "Number of branch points presented.",
			},
		),
		Confirms: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tendril_options_confirmed_total",
				Help: "Number of branch selections confirmed.",
			},
		),
		SessionsEnded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tendril_sessions_ended_total",
				Help: "Number of sessions ended, labelled by reason (stopped or completed).",
			},
			[]string{"reason"},
		),
	}
	reg.MustRegister(
		m.NodesEntered,
		m.LinesStarted,
		m.Commands,
		m.WaitPauses,
		m.WaitDuration,
		m.OptionsShown,
		m.Confirms,
		m.SessionsEnded,
	)
	return m
}

// Hooks returns a hook set that feeds the collectors. Combine it with other
// hook sets via Chain.
func (m *Metrics) Hooks() dialogue.Hooks {
	return dialogue.Hooks{
		OnNodeEnter: func(e *dialogue.NodeEvent) {
			m.NodesEntered.WithLabelValues(e.Title).Inc()
		},
		OnLineStart: func(e *dialogue.LineEvent) {
			m.LinesStarted.Inc()
		},
		OnCommand: func(e *dialogue.CommandEvent) {
			if e.Wait {
				m.WaitPauses.Inc()
				m.WaitDuration.Observe(waitSeconds(e.Params))
				return
			}
			m.Commands.WithLabelValues(e.Name).Inc()
		},
		OnOptions: func(e *dialogue.OptionsEvent) {
			m.OptionsShown.Inc()
		},
		OnConfirm: func(e *dialogue.OptionsEvent) {
			m.Confirms.Inc()
		},
		OnSessionEnd: func(e *dialogue.SessionEvent) {
			m.SessionsEnded.WithLabelValues(endReason(e.Stopped)).Inc()
		},
	}
}

// waitSeconds converts a wait command's millisecond parameter. Malformed
// durations observe as zero, matching the presenter's own leniency.
func waitSeconds(params []string) float64 {
	if len(params) == 0 {
		return 0
	}
	ms, err := strconv.Atoi(params[0])
	if err != nil || ms < 0 {
		return 0
	}
	return (time.Duration(ms) * time.Millisecond).Seconds()
}

func endReason(stopped bool) string {
	if stopped {
		return "stopped"
	}
	return "completed"
}
