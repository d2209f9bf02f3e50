package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Counts(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.Hit()
	r.Hit()
	r.Miss()
	r.Spawn()
	r.Expire()
	r.GameStarted()
	r.GameFinished(12)

	if got := testutil.ToFloat64(r.Shots.WithLabelValues("hit")); got != 2 {
		t.Errorf("hit shots = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.Shots.WithLabelValues("miss")); got != 1 {
		t.Errorf("miss shots = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.Spawned); got != 1 {
		t.Errorf("spawned = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.Expired); got != 1 {
		t.Errorf("expired = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.GamesStarted); got != 1 {
		t.Errorf("games started = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.GamesFinished); got != 1 {
		t.Errorf("games finished = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(r.FinalScores); got != 1 {
		t.Errorf("final score series = %d, want 1", got)
	}
}

func TestRecorder_Sessions(t *testing.T) {
	r := New(prometheus.NewRegistry())
	r.SessionOpened()
	r.SessionOpened()
	r.SessionClosed()

	if got := testutil.ToFloat64(r.ActiveSessions); got != 1 {
		t.Errorf("active sessions = %v, want 1", got)
	}
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	// A nil recorder must be usable.
	r.Hit()
	r.Miss()
	r.Spawn()
	r.Expire()
	r.GameStarted()
	r.GameFinished(3)
	r.SessionOpened()
	r.SessionClosed()
}
