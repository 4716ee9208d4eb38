package game

import (
	"fmt"
	"time"

	"github.com/stretchr/testify/mock"
)

// --- IDGenerator ---

type MockIDGenerator struct {
	mock.Mock
}

func (m *MockIDGenerator) Generate() string {
	args := m.Called()
	return args.String(0)
}

// seqIDGenerator hands out id-1, id-2, ... so scenario tests can name
// players up front.
type seqIDGenerator struct{ n int }

func (g *seqIDGenerator) Generate() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

// --- Broadcaster ---

// sentEvent records one outbound delivery. to is the receiving player
// id; room-wide sends record one entry per member so per-recipient
// payload assertions stay uniform.
type sentEvent struct {
	to  string
	evt Event
}

type recordingBroadcaster struct {
	sends []sentEvent
}

func (b *recordingBroadcaster) ToPlayer(playerID string, evt Event) {
	b.sends = append(b.sends, sentEvent{to: playerID, evt: evt})
}

func (b *recordingBroadcaster) ToRoom(room *Room, evt Event) {
	for _, p := range room.players {
		b.sends = append(b.sends, sentEvent{to: p.ID, evt: evt})
	}
}

func (b *recordingBroadcaster) ToRoomExcept(room *Room, exceptID string, evt Event) {
	for _, p := range room.players {
		if p.ID == exceptID {
			continue
		}
		b.sends = append(b.sends, sentEvent{to: p.ID, evt: evt})
	}
}

func (b *recordingBroadcaster) ToRoomEach(room *Room, build func(playerID string) Event) {
	for _, p := range room.players {
		b.sends = append(b.sends, sentEvent{to: p.ID, evt: build(p.ID)})
	}
}

func (b *recordingBroadcaster) reset() { b.sends = nil }

// ofType filters recorded sends by event type.
func (b *recordingBroadcaster) ofType(eventType string) []sentEvent {
	var out []sentEvent
	for _, s := range b.sends {
		if s.evt.Type == eventType {
			out = append(out, s)
		}
	}
	return out
}

// toPlayerOfType returns the sends of one type addressed to one player.
func (b *recordingBroadcaster) toPlayerOfType(playerID, eventType string) []sentEvent {
	var out []sentEvent
	for _, s := range b.ofType(eventType) {
		if s.to == playerID {
			out = append(out, s)
		}
	}
	return out
}

// --- Scheduler ---

type fakeTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fakeScheduler queues timers and fires them only when the test says
// so. FIFO order with re-armed timers appended keeps countdown
// sequences deterministic.
type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) TimerHandle {
	t := &fakeTimer{d: d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// fireNext runs the oldest pending timer, skipping cancelled ones.
func (s *fakeScheduler) fireNext() bool {
	for _, t := range s.timers {
		if t.stopped || t.fired {
			continue
		}
		t.fired = true
		t.fn()
		return true
	}
	return false
}

// fire runs the oldest pending timer armed with exactly d.
func (s *fakeScheduler) fire(d time.Duration) bool {
	for _, t := range s.timers {
		if t.stopped || t.fired || t.d != d {
			continue
		}
		t.fired = true
		t.fn()
		return true
	}
	return false
}

func (s *fakeScheduler) pendingCount() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
