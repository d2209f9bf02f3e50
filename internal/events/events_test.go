package events

import (
	"testing"

	"targetshot/internal/geom"
)

func TestNewBus(t *testing.T) {
	bus := NewBus()
	if bus == nil {
		t.Fatal("NewBus() returned nil")
	}
	// Publishing with no subscribers is fine.
	bus.PublishState(StateChange{})
	bus.PublishShot(Shot{})
	bus.PublishGameOver(GameOver{})
	bus.PublishRoundStarted(RoundStarted{})
}

func TestBus_State_DeliversInOrder(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.OnState(func(ev StateChange) { got = append(got, "first:"+ev.Phase) })
	bus.OnState(func(ev StateChange) { got = append(got, "second:"+ev.Phase) })

	bus.PublishState(StateChange{Phase: "playing", Score: 3, TimeLeft: 12})

	if len(got) != 2 || got[0] != "first:playing" || got[1] != "second:playing" {
		t.Errorf("deliveries = %v", got)
	}
}

func TestBus_Shot(t *testing.T) {
	bus := NewBus()
	var received Shot
	bus.OnShot(func(ev Shot) { received = ev })

	bus.PublishShot(Shot{At: geom.Pt(3, 4), Hit: true, TargetID: 7})

	if !received.Hit || received.TargetID != 7 || received.At != geom.Pt(3, 4) {
		t.Errorf("received = %+v", received)
	}
}

func TestBus_GameOver(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.OnGameOver(func(ev GameOver) {
		calls++
		if ev.Score != 21 {
			t.Errorf("Score = %d, want 21", ev.Score)
		}
	})

	bus.PublishGameOver(GameOver{Score: 21})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBus_SubscribeDuringPublish(t *testing.T) {
	bus := NewBus()
	late := 0
	bus.OnState(func(StateChange) {
		bus.OnState(func(StateChange) { late++ })
	})

	bus.PublishState(StateChange{})
	if late != 0 {
		t.Error("handler added during publish should not see the current event")
	}
	bus.PublishState(StateChange{})
	if late != 1 {
		t.Errorf("late handler calls = %d, want 1", late)
	}
}
