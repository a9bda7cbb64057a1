// Package driver provides wall-clock pumps for timeline schedulers. The
// scheduler core never initiates its own timing; a pump is one possible
// external driver for it.
package driver

import (
	"sync"
	"time"

	"github.com/brycehanscomb/cuesheet/timeline"
)

// A Pump converts wall-clock time into virtual-time advances on one
// scheduler. It is the single logical controller of that scheduler: every
// control call is serialized under the pump's lock, and the scheduler is
// only ever touched while holding it.
//
// Callbacks fire on the pump goroutine while the lock is held, so a callback
// must not call back into its own pump.
type Pump struct {
	lock  sync.Mutex
	sched *timeline.Scheduler

	rate       float64
	resolution time.Duration

	// The origin pair is the bookkeeping that Play resets: virtual time is
	// always originVirtual plus the scaled wall-clock span since originWall,
	// so a paused span never leaks into the next delta.
	originWall    time.Time
	originVirtual timeline.VTimeInMS

	ticker   *time.Ticker
	stop     chan struct{}
	stopOnce sync.Once
}

// NewPump creates a pump over a scheduler, advancing at real-time rate with
// a 10ms tick resolution.
func NewPump(s *timeline.Scheduler) *Pump {
	return &Pump{
		sched:      s,
		rate:       1.0,
		resolution: 10 * time.Millisecond,
	}
}

// WithRate sets the playback rate multiplier. Rate 2 plays the timeline
// twice as fast as wall-clock time.
func (p *Pump) WithRate(rate float64) *Pump {
	if rate <= 0 {
		panic("pump rate must be positive")
	}

	p.rate = rate

	return p
}

// WithResolution sets the wall-clock tick resolution.
func (p *Pump) WithResolution(resolution time.Duration) *Pump {
	if resolution <= 0 {
		panic("pump resolution must be positive")
	}

	p.resolution = resolution

	return p
}

// Start launches the pump loop. The scheduler stays paused until Play.
func (p *Pump) Start() {
	p.ticker = time.NewTicker(p.resolution)
	p.stop = make(chan struct{})

	go p.loop()
}

func (p *Pump) loop() {
	for {
		select {
		case <-p.stop:
			return
		case <-p.ticker.C:
			p.tick()
		}
	}
}

func (p *Pump) tick() {
	p.lock.Lock()
	defer p.lock.Unlock()

	if !p.sched.IsPlaying() {
		return
	}

	elapsed := time.Since(p.originWall)
	scaled := time.Duration(float64(elapsed) * p.rate)

	p.sched.Advance(p.originVirtual + timeline.FromDuration(scaled))
}

// Play rebases the wall-clock origin and lets ticks take effect, so the span
// spent paused is not counted into the next advance.
func (p *Pump) Play() {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.originWall = time.Now()
	p.originVirtual = p.sched.CurrentTime()
	p.sched.Play()
}

// Pause freezes the virtual clock.
func (p *Pump) Pause() {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.sched.Pause()
}

// Seek relocates the scheduler and rebases the pump on the new position.
func (p *Pump) Seek(toTime timeline.VTimeInMS) {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.sched.Seek(toTime)
	p.originWall = time.Now()
	p.originVirtual = toTime
}

// Now returns the scheduler's current virtual time.
func (p *Pump) Now() timeline.VTimeInMS {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.sched.CurrentTime()
}

// IsPlaying tells if the timeline is currently advancing.
func (p *Pump) IsPlaying() bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.sched.IsPlaying()
}

// Subscribe registers a callback through the pump's lock. The returned
// handle is safe to invoke while the pump is running.
func (p *Pump) Subscribe(
	c timeline.Cue,
	cb timeline.Callback,
) timeline.Unsubscribe {
	p.lock.Lock()
	defer p.lock.Unlock()

	unsubscribe := p.sched.Subscribe(c, cb)

	return func() {
		p.lock.Lock()
		defer p.lock.Unlock()

		unsubscribe()
	}
}

// Cues returns the registered cues in registration order.
func (p *Pump) Cues() []timeline.Cue {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.sched.Cues()
}

// FireCount returns the cue's fire count since the last reset.
func (p *Pump) FireCount(c timeline.Cue) int {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.sched.FireCount(c)
}

// Stop terminates the pump loop and leaves the scheduler paused. Idempotent.
func (p *Pump) Stop() {
	p.stopOnce.Do(func() {
		if p.stop != nil {
			close(p.stop)
			p.ticker.Stop()
		}
	})

	p.Pause()
}
