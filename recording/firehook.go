package recording

import (
	"time"

	"github.com/brycehanscomb/cuesheet/timeline"
)

// A FireHook forwards every firing on a scheduler to a writer.
type FireHook struct {
	writer      *SQLiteWriter
	schedulerID string
}

// RecordFires attaches a recording hook to the scheduler. Every firing from
// then on becomes one row of fire history.
func RecordFires(s *timeline.Scheduler, w *SQLiteWriter) {
	s.AcceptHook(&FireHook{
		writer:      w,
		schedulerID: s.ID(),
	})
}

// Func records the firing when the hook is triggered.
func (h *FireHook) Func(ctx timeline.HookCtx) {
	if ctx.Pos != timeline.HookPosAfterFire {
		return
	}

	cue := ctx.Item.(timeline.Cue)

	h.writer.InsertFire(FireRecord{
		SchedulerID: h.schedulerID,
		CueID:       cue.ID(),
		NominalTime: ctx.Detail.(timeline.VTimeInMS),
		WallTimeMS:  time.Now().UnixMilli(),
	})
}
