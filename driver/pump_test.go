package driver_test

import (
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/brycehanscomb/cuesheet/driver"
	"github.com/brycehanscomb/cuesheet/timeline"
)

var _ = Describe("Pump", func() {
	var (
		sched *timeline.Scheduler
		pump  *driver.Pump
	)

	BeforeEach(func() {
		sched = timeline.NewScheduler()
		pump = driver.NewPump(sched).WithResolution(2 * time.Millisecond)
		pump.Start()
	})

	AfterEach(func() {
		pump.Stop()
	})

	It("should not advance before play", func() {
		Consistently(pump.Now, "30ms", "5ms").
			Should(Equal(timeline.VTimeInMS(0)))
	})

	It("should drive a repeating cue while playing", func() {
		var count atomic.Int64
		cue := timeline.NewCue(0).Repeats(5)
		pump.Subscribe(cue, func() { count.Add(1) })

		pump.Play()

		Eventually(count.Load, "1s", "5ms").
			Should(BeNumerically(">=", 3))
	})

	It("should freeze the clock on pause", func() {
		pump.Play()
		Eventually(pump.Now, "1s", "5ms").
			Should(BeNumerically(">", 0))

		pump.Pause()
		frozen := pump.Now()

		Consistently(pump.Now, "30ms", "5ms").Should(Equal(frozen))
	})

	It("should not count the paused span into the next delta", func() {
		pump.Play()
		time.Sleep(20 * time.Millisecond)
		pump.Pause()

		pausedAt := pump.Now()
		time.Sleep(100 * time.Millisecond)

		pump.Play()
		time.Sleep(20 * time.Millisecond)
		pump.Pause()

		// Far less than the 100ms spent paused.
		Expect(pump.Now()).To(BeNumerically("<", pausedAt+80))
	})

	It("should rebase on seek", func() {
		pump.Seek(5000)

		Expect(pump.Now()).To(Equal(timeline.VTimeInMS(5000)))

		var count atomic.Int64
		pump.Subscribe(timeline.NewCue(4000), func() { count.Add(1) })
		pump.Play()

		// The cue at 4000 is behind the seek target and must stay silent.
		Consistently(count.Load, "30ms", "5ms").Should(BeZero())
	})

	It("should scale virtual time by the playback rate", func() {
		fast := timeline.NewScheduler()
		fastPump := driver.NewPump(fast).
			WithResolution(2 * time.Millisecond).
			WithRate(100)
		fastPump.Start()
		defer fastPump.Stop()

		fastPump.Play()

		// 100x rate turns tens of wall milliseconds into virtual seconds.
		Eventually(fastPump.Now, "1s", "5ms").
			Should(BeNumerically(">=", 1000))
	})
})
