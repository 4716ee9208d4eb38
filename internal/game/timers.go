package game

import "time"

// TimerHandle is a cancellable pending callback. *time.Timer satisfies
// it.
type TimerHandle interface {
	Stop() bool
}

// Scheduler arms one-shot timers. The production implementation hands
// callbacks back to the router loop; tests substitute a manually fired
// fake so no test ever sleeps.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) TimerHandle
}

// loopScheduler defers callbacks through post so they run on the router
// loop instead of the runtime timer goroutine.
type loopScheduler struct {
	post func(func())
}

// NewLoopScheduler wraps time.AfterFunc with a handoff into post.
func NewLoopScheduler(post func(func())) Scheduler {
	return &loopScheduler{post: post}
}

func (s *loopScheduler) AfterFunc(d time.Duration, fn func()) TimerHandle {
	return time.AfterFunc(d, func() { s.post(fn) })
}

// roomTimers is the full set of pending timers a room may own, one slot
// per purpose. Every phase transition cancels the whole set first, so a
// room can never accumulate orphaned timers. Callbacks additionally
// revalidate room state when they run: a timer that fired before
// cancellation may still be queued behind the cancel on the loop.
type roomTimers struct {
	round      TimerHandle // per-second countdown while a round is live
	transition TimerHandle // grace end, results -> waiting, finish
	nextRound  TimerHandle // waiting -> next round start
}

func (t *roomTimers) cancelAll() {
	if t.round != nil {
		t.round.Stop()
		t.round = nil
	}
	if t.transition != nil {
		t.transition.Stop()
		t.transition = nil
	}
	if t.nextRound != nil {
		t.nextRound.Stop()
		t.nextRound = nil
	}
}
