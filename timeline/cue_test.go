package timeline

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Cue", func() {
	It("should give each cue its own identity", func() {
		c1 := NewCue(100)
		c2 := NewCue(100)

		Expect(c1.ID()).NotTo(Equal(c2.ID()))
	})

	It("should mint a new identity at each chain step", func() {
		oneShot := NewCue(0)
		repeating := oneShot.Repeats(100)
		bounded := repeating.Times(3)

		Expect(repeating.ID()).NotTo(Equal(oneShot.ID()))
		Expect(bounded.ID()).NotTo(Equal(repeating.ID()))
	})

	It("should keep the start time through the chain", func() {
		cue := NewCue(250).Repeats(100).Times(3)

		Expect(cue.StartTime()).To(Equal(VTimeInMS(250)))
		Expect(cue.Interval()).To(Equal(VTimeInMS(100)))
		Expect(cue.MaxCount()).To(Equal(3))
	})

	It("should capture the boundary as a concrete timestamp", func() {
		end := NewCue(300)
		tick := NewCue(0).Repeats(100).Until(end)

		untilTime, bounded := tick.UntilTime()
		Expect(bounded).To(BeTrue())
		Expect(untilTime).To(Equal(VTimeInMS(300)))
		Expect(tick.MaxCount()).To(Equal(0))
	})

	It("should panic on a negative start time", func() {
		Expect(func() { NewCue(-1) }).To(Panic())
	})

	It("should panic on a non-positive interval", func() {
		Expect(func() { NewCue(0).Repeats(0) }).To(Panic())
		Expect(func() { NewCue(0).Repeats(-100) }).To(Panic())
	})

	It("should panic on a fire count below one", func() {
		Expect(func() { NewCue(0).Repeats(100).Times(0) }).To(Panic())
	})
})
