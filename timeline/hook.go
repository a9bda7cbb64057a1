package timeline

// HookPos defines the enum of possible hooking positions
type HookPos struct {
	Name string
}

// HookPosBeforeFire is a hook position that triggers before a cue's
// callbacks run.
var HookPosBeforeFire = &HookPos{Name: "BeforeFire"}

// HookPosAfterFire is a hook position that triggers after a cue's callbacks
// ran.
var HookPosAfterFire = &HookPos{Name: "AfterFire"}

// HookCtx is the context that holds all the information about the site that
// a hook is triggered. For firing positions, Item is the Cue that fired and
// Detail is the nominal fire time as a VTimeInMS.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// Hookable defines an object that accept Hooks
type Hookable interface {
	// AcceptHook registers a hook
	AcceptHook(hook Hook)
}

// Hook is a short piece of program that can be invoked by a hookable object.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// A HookableBase provides some utility function for other type that
// implement the Hookable interface.
type HookableBase struct {
	Hooks []Hook
}

// AcceptHook register a hook
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// InvokeHook triggers the register Hooks
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}
