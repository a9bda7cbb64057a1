package timeline

import (
	"log"
	"math"
)

// Callback is invoked when a cue fires. No cue identity or timestamp is
// passed; callers close over whatever context they need at subscription
// time.
type Callback func()

// Unsubscribe removes the callback whose subscription returned it. Invoking
// it a second time is a no-op.
type Unsubscribe func()

type subscription struct {
	callback Callback
	once     bool
	removed  bool
}

type repeatState struct {
	lastFireTime VTimeInMS
	count        int
}

const endOfTime = VTimeInMS(math.MaxInt64)

// A Scheduler maps cues to callbacks and fires them as an external driver
// advances the virtual clock. It holds no timing source of its own: Play and
// Pause only gate the effect of the driver's Advance calls.
//
// A Scheduler has no internal concurrency. One logical controller must own
// it and drive it one call at a time. The same Cue may be registered with
// several schedulers; each keeps fully independent firing state for it.
type Scheduler struct {
	HookableBase

	// ErrorLogger receives reports of recovered callback panics. Defaults to
	// the standard logger.
	ErrorLogger *log.Logger

	id string

	virtualTime VTimeInMS
	isPlaying   bool

	cueOrder  []Cue
	listeners map[string][]*subscription

	firedOneShots map[string]bool
	repeatState   map[string]*repeatState
}

// NewScheduler creates a Scheduler positioned at time 0, paused.
func NewScheduler() *Scheduler {
	s := new(Scheduler)
	s.id = GetIDGenerator().Generate()
	s.listeners = make(map[string][]*subscription)
	s.firedOneShots = make(map[string]bool)
	s.repeatState = make(map[string]*repeatState)

	return s
}

// ID returns the identity of the scheduler.
func (s *Scheduler) ID() string {
	return s.id
}

// CurrentTime returns the scheduler's position on the virtual timeline.
func (s *Scheduler) CurrentTime() VTimeInMS {
	return s.virtualTime
}

// IsPlaying tells if Advance calls currently take effect.
func (s *Scheduler) IsPlaying() bool {
	return s.isPlaying
}

// Cues returns the registered cues in registration order.
func (s *Scheduler) Cues() []Cue {
	cues := make([]Cue, len(s.cueOrder))
	copy(cues, s.cueOrder)

	return cues
}

// FireCount returns how many times the cue has fired on this scheduler since
// the last reset.
func (s *Scheduler) FireCount(c Cue) int {
	if s.firedOneShots[c.ID()] {
		return 1
	}

	if state, ok := s.repeatState[c.ID()]; ok {
		return state.count
	}

	return 0
}

// Subscribe registers a callback against a cue and arms the cue. The
// returned handle removes exactly that callback.
func (s *Scheduler) Subscribe(c Cue, cb Callback) Unsubscribe {
	return s.subscribe(c, cb, false)
}

// SubscribeOnce registers a callback that removes itself after its first
// invocation. The returned handle can still cancel it pre-emptively.
func (s *Scheduler) SubscribeOnce(c Cue, cb Callback) Unsubscribe {
	return s.subscribe(c, cb, true)
}

func (s *Scheduler) subscribe(c Cue, cb Callback, once bool) Unsubscribe {
	if cb == nil {
		log.Panic("cannot subscribe a nil callback")
	}

	if _, armed := s.listeners[c.ID()]; !armed {
		s.cueOrder = append(s.cueOrder, c)
	}

	sub := &subscription{callback: cb, once: once}
	s.listeners[c.ID()] = append(s.listeners[c.ID()], sub)

	return func() {
		s.unsubscribe(c.ID(), sub)
	}
}

func (s *Scheduler) unsubscribe(cueID string, sub *subscription) {
	if sub.removed {
		return
	}
	sub.removed = true

	subs := s.listeners[cueID]
	for i, candidate := range subs {
		if candidate == sub {
			s.listeners[cueID] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Play enables the effect of the driver's Advance calls. It does not itself
// advance time. Idempotent.
func (s *Scheduler) Play() {
	s.isPlaying = true
}

// Pause freezes the virtual clock: Advance calls have no effect until Play.
// Idempotent.
func (s *Scheduler) Pause() {
	s.isPlaying = false
}

// Seek relocates the virtual clock without firing anything, independent of
// play state. Seeking backward resets all firing state, so every cue becomes
// eligible to fire again from scratch. Seeking forward silently skips the
// cues in between: scrubbing is a relocation, not a fast-forwarded playback.
func (s *Scheduler) Seek(toTime VTimeInMS) {
	if toTime < s.virtualTime {
		s.firedOneShots = make(map[string]bool)
		s.repeatState = make(map[string]*repeatState)
	}

	s.virtualTime = toTime
}

// Advance moves the virtual clock to toTime and synchronously fires, in
// registration order, every cue whose nominal time falls in (prev, toTime].
// Repeating cues catch up: every interval tick within the span fires,
// late but in chronological order, so ticks are never silently dropped.
// Advance is a no-op while paused.
//
// The driver must not pass a toTime lower than the current virtual time
// while playing; rewinding is what Seek is for.
func (s *Scheduler) Advance(toTime VTimeInMS) {
	if !s.isPlaying {
		return
	}

	prevTime := s.virtualTime
	s.virtualTime = toTime

	cues := make([]Cue, len(s.cueOrder))
	copy(cues, s.cueOrder)

	for _, c := range cues {
		s.resolve(c, prevTime, toTime)
	}
}

func (s *Scheduler) resolve(c Cue, prevTime, toTime VTimeInMS) {
	p := c.plan()

	if p.interval == 0 {
		s.resolveOneShot(c, p, prevTime, toTime)
		return
	}

	s.resolveRepeating(c, p, prevTime, toTime)
}

func (s *Scheduler) resolveOneShot(
	c Cue,
	p firingPlan,
	prevTime, toTime VTimeInMS,
) {
	if s.firedOneShots[c.ID()] {
		return
	}

	if prevTime < p.startTime && toTime >= p.startTime {
		s.firedOneShots[c.ID()] = true
		s.fire(c, p.startTime)
	}
}

func (s *Scheduler) resolveRepeating(
	c Cue,
	p firingPlan,
	prevTime, toTime VTimeInMS,
) {
	if toTime < p.startTime {
		return
	}

	endTime := endOfTime
	if p.hasUntil {
		endTime = p.untilTime
	}

	if prevTime >= endTime {
		return
	}

	state, ok := s.repeatState[c.ID()]
	if !ok {
		// Seeded so that the first fire lands exactly on the start time.
		state = &repeatState{lastFireTime: p.startTime - p.interval}
		s.repeatState[c.ID()] = state
	}

	for {
		next := state.lastFireTime + p.interval
		if next > toTime || next > endTime {
			return
		}
		if p.maxCount > 0 && state.count >= p.maxCount {
			return
		}

		state.lastFireTime = next
		state.count++
		s.fire(c, next)
	}
}

func (s *Scheduler) fire(c Cue, nominalTime VTimeInMS) {
	hookCtx := HookCtx{
		Domain: s,
		Pos:    HookPosBeforeFire,
		Item:   c,
		Detail: nominalTime,
	}
	s.InvokeHook(hookCtx)

	// Iterate over a stable snapshot so callbacks can subscribe and
	// unsubscribe during the frame. Removed subscriptions are still skipped.
	subs := make([]*subscription, len(s.listeners[c.ID()]))
	copy(subs, s.listeners[c.ID()])

	for _, sub := range subs {
		if sub.removed {
			continue
		}

		s.invoke(sub)

		if sub.once {
			s.unsubscribe(c.ID(), sub)
		}
	}

	hookCtx.Pos = HookPosAfterFire
	s.InvokeHook(hookCtx)
}

// invoke isolates one callback so a panic cannot starve sibling callbacks or
// later cues within the same frame.
func (s *Scheduler) invoke(sub *subscription) {
	defer func() {
		if r := recover(); r != nil {
			s.errorLogger().Printf("recovered callback panic: %v", r)
		}
	}()

	sub.callback()
}

func (s *Scheduler) errorLogger() *log.Logger {
	if s.ErrorLogger != nil {
		return s.ErrorLogger
	}

	return log.Default()
}

// Destroy stops the scheduler and drops all listener and firing state. The
// scheduler must not be used afterward.
func (s *Scheduler) Destroy() {
	s.isPlaying = false
	s.cueOrder = nil
	s.listeners = nil
	s.firedOneShots = nil
	s.repeatState = nil
}
