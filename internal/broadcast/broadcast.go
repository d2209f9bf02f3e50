// Package broadcast turns a session's render calls and game events into
// messages for its client.
package broadcast

import (
	"targetshot/internal/events"
	"targetshot/internal/geom"
	"targetshot/internal/leaderboard"
	"targetshot/internal/render"
	"targetshot/internal/wshub"
)

// Pusher queues a message for one client. *wshub.Client implements it.
type Pusher interface {
	Push(msg wshub.ServerMessage)
}

// View is a render.Renderer that keeps element state in memory, for hit
// testing, and mirrors every change to the client.
type View struct {
	*render.Memory
	footprint geom.Size
	out       Pusher
}

func NewView(footprint geom.Size, out Pusher) *View {
	return &View{
		Memory:    render.NewMemory(footprint),
		footprint: footprint,
		out:       out,
	}
}

func (v *View) SpawnTarget(kind string, at geom.Point) render.Handle {
	h := v.Memory.SpawnTarget(kind, at)
	v.out.Push(wshub.ServerMessage{
		Type: wshub.MsgSpawn,
		ID:   string(h),
		Kind: kind,
		X:    at.X,
		Y:    at.Y,
		W:    v.footprint.W,
		H:    v.footprint.H,
	})
	return h
}

func (v *View) MarkHit(h render.Handle) {
	if _, ok := v.Memory.Get(h); !ok {
		return
	}
	v.Memory.MarkHit(h)
	v.out.Push(wshub.ServerMessage{Type: wshub.MsgHit, ID: string(h)})
}

func (v *View) RemoveTarget(h render.Handle) {
	if _, ok := v.Memory.Get(h); !ok {
		return
	}
	v.Memory.RemoveTarget(h)
	v.out.Push(wshub.ServerMessage{Type: wshub.MsgRemove, ID: string(h)})
}

func (v *View) ShowMarker(kind, text string, at geom.Point) render.Handle {
	h := v.Memory.ShowMarker(kind, text, at)
	v.out.Push(wshub.ServerMessage{
		Type: wshub.MsgMarker,
		ID:   string(h),
		Kind: kind,
		Text: text,
		X:    at.X,
		Y:    at.Y,
	})
	return h
}

func (v *View) RemoveMarker(h render.Handle) {
	if _, ok := v.Memory.Get(h); !ok {
		return
	}
	v.Memory.RemoveMarker(h)
	v.out.Push(wshub.ServerMessage{Type: wshub.MsgUnmark, ID: string(h)})
}

// Broadcaster forwards a session's display events to its client. Finished
// rounds also refresh the leaderboard on every other connected client.
type Broadcaster struct {
	out Pusher
	hub *wshub.Hub
}

func NewBroadcaster(bus *events.Bus, out Pusher, hub *wshub.Hub) *Broadcaster {
	b := &Broadcaster{
		out: out,
		hub: hub,
	}
	bus.OnState(b.state)
	bus.OnGameOver(b.over)
	return b
}

// Hello tells a new client who it is and how big the play area is.
func (b *Broadcaster) Hello(sessionID string, area geom.Size) {
	b.out.Push(wshub.ServerMessage{
		Type: wshub.MsgHello,
		ID:   sessionID,
		W:    area.W,
		H:    area.H,
	})
}

func (b *Broadcaster) Board(view leaderboard.View) {
	b.out.Push(wshub.ServerMessage{Type: wshub.MsgBoard, Board: &view})
}

func (b *Broadcaster) state(ev events.StateChange) {
	b.out.Push(wshub.ServerMessage{
		Type:     wshub.MsgState,
		Phase:    ev.Phase,
		Score:    ev.Score,
		TimeLeft: ev.TimeLeft,
		LowTime:  ev.LowTime,
	})
}

func (b *Broadcaster) over(ev events.GameOver) {
	stats := ev.Stats
	board := ev.Leaderboard
	b.out.Push(wshub.ServerMessage{
		Type:   wshub.MsgOver,
		Score:  ev.Score,
		Board:  &board,
		Stats:  &stats,
		Badges: ev.Badges,
	})
	if b.hub != nil {
		b.hub.Broadcast(wshub.ServerMessage{Type: wshub.MsgBoard, Board: &board})
	}
}
