package timeline

import "log"

// A Cue describes an instant, or a recurring series of instants, on the
// virtual timeline at which subscribers should be notified.
//
// Cues are immutable values and can be freely shared, including across
// multiple schedulers. Two cues with identical fields are still distinct
// entities: schedulers register listeners by cue identity, never by field
// equality.
type Cue interface {
	// ID returns the identity of the cue.
	ID() string

	// StartTime returns the time of the first firing.
	StartTime() VTimeInMS

	// plan returns the flattened firing pattern. Keeping it unexported
	// closes the set of cue variants to this package.
	plan() firingPlan
}

// firingPlan is the flattened description of when a cue fires. interval is 0
// for a one-shot cue. maxCount is 0 when the cue is not count-capped.
// untilTime only applies when hasUntil is set; maxCount and hasUntil are
// never both set.
type firingPlan struct {
	startTime VTimeInMS
	interval  VTimeInMS
	maxCount  int
	untilTime VTimeInMS
	hasUntil  bool
}

// CueBase provides the fields shared by all cue variants.
type CueBase struct {
	id        string
	startTime VTimeInMS
}

// ID returns the identity of the cue.
func (c CueBase) ID() string {
	return c.id
}

// StartTime returns the time of the first firing.
func (c CueBase) StartTime() VTimeInMS {
	return c.startTime
}

// A OneShotCue fires at most once per reset cycle, at its start time.
type OneShotCue struct {
	CueBase
}

// NewCue creates a one-shot cue that fires at startTime.
func NewCue(startTime VTimeInMS) OneShotCue {
	if startTime < 0 {
		log.Panic("cue start time cannot be negative")
	}

	return OneShotCue{CueBase{
		id:        GetIDGenerator().Generate(),
		startTime: startTime,
	}}
}

func (c OneShotCue) plan() firingPlan {
	return firingPlan{startTime: c.startTime}
}

// Repeats derives a cue that fires at the start time and then every interval
// milliseconds. The derived cue is a new entity with its own identity.
func (c OneShotCue) Repeats(interval VTimeInMS) RepeatingCue {
	if interval <= 0 {
		log.Panic("cue interval must be positive")
	}

	return RepeatingCue{
		CueBase: CueBase{
			id:        GetIDGenerator().Generate(),
			startTime: c.startTime,
		},
		interval: interval,
	}
}

// A RepeatingCue fires at its start time and then at every interval, with no
// terminating condition yet.
type RepeatingCue struct {
	CueBase
	interval VTimeInMS
}

// Interval returns the spacing between consecutive firings.
func (c RepeatingCue) Interval() VTimeInMS {
	return c.interval
}

func (c RepeatingCue) plan() firingPlan {
	return firingPlan{startTime: c.startTime, interval: c.interval}
}

// Times derives a cue capped at n total firings. The derived cue carries no
// further chaining operations: a terminated cue cannot be re-repeated or
// re-terminated.
func (c RepeatingCue) Times(n int) BoundedCue {
	if n < 1 {
		log.Panic("cue fire count must be at least 1")
	}

	return BoundedCue{
		CueBase: CueBase{
			id:        GetIDGenerator().Generate(),
			startTime: c.startTime,
		},
		interval: c.interval,
		maxCount: n,
	}
}

// Until derives a cue whose firings never pass the start time of boundary.
// The boundary is captured as a concrete timestamp here, not as a live
// reference to the boundary cue. The same chaining restriction as Times
// applies.
func (c RepeatingCue) Until(boundary Cue) BoundedCue {
	return BoundedCue{
		CueBase: CueBase{
			id:        GetIDGenerator().Generate(),
			startTime: c.startTime,
		},
		interval:  c.interval,
		untilTime: boundary.StartTime(),
		hasUntil:  true,
	}
}

// A BoundedCue is a repeating cue with exactly one terminating condition,
// either a total fire count or a boundary time.
type BoundedCue struct {
	CueBase
	interval  VTimeInMS
	maxCount  int
	untilTime VTimeInMS
	hasUntil  bool
}

// Interval returns the spacing between consecutive firings.
func (c BoundedCue) Interval() VTimeInMS {
	return c.interval
}

// MaxCount returns the total fire cap, or 0 if the cue is bounded by a
// boundary time instead.
func (c BoundedCue) MaxCount() int {
	return c.maxCount
}

// UntilTime returns the boundary time. The second return value is false if
// the cue is bounded by a fire count instead.
func (c BoundedCue) UntilTime() (VTimeInMS, bool) {
	return c.untilTime, c.hasUntil
}

func (c BoundedCue) plan() firingPlan {
	return firingPlan{
		startTime: c.startTime,
		interval:  c.interval,
		maxCount:  c.maxCount,
		untilTime: c.untilTime,
		hasUntil:  c.hasUntil,
	}
}
