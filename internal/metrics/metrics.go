// Package metrics exposes game counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the game's collectors. A nil *Recorder is valid and records
// nothing.
type Recorder struct {
	Shots          *prometheus.CounterVec
	Spawned        prometheus.Counter
	Expired        prometheus.Counter
	GamesStarted   prometheus.Counter
	GamesFinished  prometheus.Counter
	FinalScores    prometheus.Histogram
	ActiveSessions prometheus.Gauge
}

func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		Shots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "targetshot",
			Name:      "shots_total",
			Help:      "Shots processed while playing, by result.",
		}, []string{"result"}),
		Spawned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "targetshot",
			Name:      "targets_spawned_total",
			Help:      "Targets spawned.",
		}),
		Expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "targetshot",
			Name:      "targets_expired_total",
			Help:      "Targets that timed out without being hit.",
		}),
		GamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "targetshot",
			Name:      "games_started_total",
			Help:      "Rounds started.",
		}),
		GamesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "targetshot",
			Name:      "games_finished_total",
			Help:      "Rounds that ran to the end of the countdown.",
		}),
		FinalScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "targetshot",
			Name:      "final_score",
			Help:      "Final score of finished rounds.",
			Buckets:   []float64{0, 5, 10, 15, 20, 25, 30, 40, 50},
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "targetshot",
			Name:      "active_sessions",
			Help:      "Connected game sessions.",
		}),
	}
	reg.MustRegister(r.Shots, r.Spawned, r.Expired, r.GamesStarted, r.GamesFinished, r.FinalScores, r.ActiveSessions)
	return r
}

func (r *Recorder) Hit() {
	if r != nil {
		r.Shots.WithLabelValues("hit").Inc()
	}
}

func (r *Recorder) Miss() {
	if r != nil {
		r.Shots.WithLabelValues("miss").Inc()
	}
}

func (r *Recorder) Spawn() {
	if r != nil {
		r.Spawned.Inc()
	}
}

func (r *Recorder) Expire() {
	if r != nil {
		r.Expired.Inc()
	}
}

func (r *Recorder) GameStarted() {
	if r != nil {
		r.GamesStarted.Inc()
	}
}

func (r *Recorder) GameFinished(score int) {
	if r != nil {
		r.GamesFinished.Inc()
		r.FinalScores.Observe(float64(score))
	}
}

func (r *Recorder) SessionOpened() {
	if r != nil {
		r.ActiveSessions.Inc()
	}
}

func (r *Recorder) SessionClosed() {
	if r != nil {
		r.ActiveSessions.Dec()
	}
}
