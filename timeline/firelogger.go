package timeline

import "log"

// FireLogger is a hook that prints every cue firing to a logger.
type FireLogger struct {
	*log.Logger
}

// NewFireLogger returns a FireLogger which will write into the logger.
func NewFireLogger(logger *log.Logger) *FireLogger {
	h := new(FireLogger)
	h.Logger = logger
	return h
}

// Func writes the firing information into the logger.
func (h *FireLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeFire {
		return
	}

	cue, ok := ctx.Item.(Cue)
	if !ok {
		return
	}

	h.Printf("%d, cue %s", ctx.Detail.(VTimeInMS), cue.ID())
}
