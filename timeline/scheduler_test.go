package timeline

import (
	"io"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// fireTimeRecorder keeps the nominal time of every firing it observes.
type fireTimeRecorder struct {
	times []VTimeInMS
}

func (r *fireTimeRecorder) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeFire {
		return
	}

	r.times = append(r.times, ctx.Detail.(VTimeInMS))
}

var _ = Describe("Scheduler", func() {
	var s *Scheduler

	BeforeEach(func() {
		s = NewScheduler()
		s.Play()
	})

	It("should fire a one-shot cue exactly once", func() {
		count := 0
		cue := NewCue(100)
		s.Subscribe(cue, func() { count++ })

		s.Advance(50)
		Expect(count).To(Equal(0))

		s.Advance(100)
		Expect(count).To(Equal(1))

		s.Advance(150)
		s.Advance(10000)
		Expect(count).To(Equal(1))
	})

	It("should not fire before the start time", func() {
		count := 0
		s.Subscribe(NewCue(100), func() { count++ })

		s.Advance(99)

		Expect(count).To(Equal(0))
	})

	It("should fire one cue's callbacks in subscription order", func() {
		var order []int
		cue := NewCue(100)
		s.Subscribe(cue, func() { order = append(order, 1) })
		s.Subscribe(cue, func() { order = append(order, 2) })
		s.Subscribe(cue, func() { order = append(order, 3) })

		s.Advance(100)

		Expect(order).To(Equal([]int{1, 2, 3}))
	})

	It("should fire distinct cues in registration order", func() {
		var order []string
		late := NewCue(100)
		early := NewCue(50)
		s.Subscribe(late, func() { order = append(order, "late") })
		s.Subscribe(early, func() { order = append(order, "early") })

		s.Advance(200)

		Expect(order).To(Equal([]string{"late", "early"}))
	})

	It("should catch up every interval tick within one advance", func() {
		count := 0
		cue := NewCue(1000).Repeats(200)
		s.Subscribe(cue, func() { count++ })

		s.Advance(999)
		Expect(count).To(Equal(0))

		// 999 -> 1900 covers the ticks at 1000, 1200, 1400, 1600, 1800.
		s.Advance(1900)
		Expect(count).To(Equal(5))
	})

	It("should fire repeated ticks in chronological order", func() {
		recorder := &fireTimeRecorder{}
		s.AcceptHook(recorder)

		cue := NewCue(0).Repeats(100)
		s.Subscribe(cue, func() {})

		s.Advance(350)

		Expect(s.FireCount(cue)).To(Equal(4))
		Expect(recorder.times).To(Equal(
			[]VTimeInMS{0, 100, 200, 300}))
	})

	It("should stop at the fire count cap", func() {
		count := 0
		cue := NewCue(0).Repeats(100).Times(3)
		s.Subscribe(cue, func() { count++ })

		s.Advance(10000)
		Expect(count).To(Equal(3))

		s.Advance(20000)
		Expect(count).To(Equal(3))
	})

	It("should stop at the boundary cue's time", func() {
		count := 0
		end := NewCue(300)
		tick := NewCue(0).Repeats(100).Until(end)
		s.Subscribe(tick, func() { count++ })

		s.Advance(1000)
		Expect(count).To(Equal(4))

		s.Advance(2000)
		Expect(count).To(Equal(4))
	})

	It("should reset firing state on a backward seek", func() {
		count := 0
		cue := NewCue(100)
		s.Subscribe(cue, func() { count++ })

		s.Advance(150)
		Expect(count).To(Equal(1))

		s.Seek(0)
		s.Advance(150)

		Expect(count).To(Equal(2))
	})

	It("should reset repeat state on a backward seek", func() {
		count := 0
		cue := NewCue(0).Repeats(100).Times(3)
		s.Subscribe(cue, func() { count++ })

		s.Advance(1000)
		s.Seek(0)
		s.Advance(1000)

		Expect(count).To(Equal(6))
	})

	It("should not fire when scrubbing forward", func() {
		count := 0
		s.Subscribe(NewCue(100), func() { count++ })

		s.Seek(500)
		s.Advance(510)

		Expect(count).To(Equal(0))
	})

	It("should keep independent firing state per scheduler", func() {
		cue := NewCue(0).Repeats(100).Times(3)

		other := NewScheduler()
		other.Play()

		countA := 0
		countB := 0
		s.Subscribe(cue, func() { countA++ })
		other.Subscribe(cue, func() { countB++ })

		s.Advance(10000)
		other.Advance(150)

		Expect(countA).To(Equal(3))
		Expect(countB).To(Equal(2))
	})

	It("should ignore an unsubscribe handle invoked twice", func() {
		count := 0
		cue := NewCue(100)
		unsubscribe := s.Subscribe(cue, func() { count++ })
		s.Subscribe(cue, func() { count += 10 })

		unsubscribe()
		unsubscribe()
		s.Advance(100)

		Expect(count).To(Equal(10))
	})

	It("should not fire a callback unsubscribed before any advance", func() {
		count := 0
		unsubscribe := s.Subscribe(NewCue(100), func() { count++ })

		unsubscribe()
		s.Advance(1000)

		Expect(count).To(Equal(0))
	})

	It("should not invoke a callback unsubscribed within the same frame",
		func() {
			var unsubscribe Unsubscribe
			count := 0
			cue := NewCue(100)
			s.Subscribe(cue, func() { unsubscribe() })
			unsubscribe = s.Subscribe(cue, func() { count++ })

			s.Advance(100)

			Expect(count).To(Equal(0))
		})

	It("should remove a once subscription after its first firing", func() {
		count := 0
		cue := NewCue(0).Repeats(100)
		s.SubscribeOnce(cue, func() { count++ })

		// One advance covering several ticks still only fires once.
		s.Advance(1000)

		Expect(count).To(Equal(1))
		Expect(s.FireCount(cue)).To(BeNumerically(">", 1))
	})

	It("should allow cancelling a once subscription pre-emptively", func() {
		count := 0
		unsubscribe := s.SubscribeOnce(NewCue(100), func() { count++ })

		unsubscribe()
		s.Advance(1000)

		Expect(count).To(Equal(0))
	})

	It("should ignore advances while paused", func() {
		count := 0
		s.Subscribe(NewCue(100), func() { count++ })

		s.Pause()
		s.Advance(1000)

		Expect(count).To(Equal(0))
		Expect(s.CurrentTime()).To(Equal(VTimeInMS(0)))
	})

	It("should resume firing after play", func() {
		count := 0
		s.Subscribe(NewCue(100), func() { count++ })

		s.Pause()
		s.Advance(1000)
		s.Play()
		s.Advance(1000)

		Expect(count).To(Equal(1))
	})

	It("should keep sibling callbacks firing when one panics", func() {
		s.ErrorLogger = log.New(io.Discard, "", 0)

		count := 0
		cue := NewCue(100)
		s.Subscribe(cue, func() { panic("callback failure") })
		s.Subscribe(cue, func() { count++ })

		s.Advance(100)

		Expect(count).To(Equal(1))
	})

	It("should keep later cues firing when a callback panics", func() {
		s.ErrorLogger = log.New(io.Discard, "", 0)

		count := 0
		s.Subscribe(NewCue(50), func() { panic("callback failure") })
		s.Subscribe(NewCue(100), func() { count++ })

		s.Advance(200)

		Expect(count).To(Equal(1))
	})

	It("should drop all state on destroy", func() {
		s.Subscribe(NewCue(100), func() {})

		s.Destroy()

		Expect(s.IsPlaying()).To(BeFalse())
		Expect(s.Cues()).To(BeEmpty())
	})
})
