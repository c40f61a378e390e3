package machine

import (
	"time"

	"github.com/mna/vela/lang/value"
)

// registerNatives installs every built-in native function into both the
// object arena and the globals table, the way the original VM's
// constructor calls define_global for each native before the first frame is
// pushed. clock is the only native spec.md requires.
func (t *Thread) registerNatives() {
	t.defineNative("clock", 0, func(args []value.Value) (value.Value, error) {
		return value.Number(float64(time.Now().UnixNano()) / float64(time.Second)), nil
	})
}

func (t *Thread) defineNative(name string, arity int, fn NativeFn) {
	entry := t.mem.Interner.Intern(name)
	id := t.mem.NewNative(name, arity, fn)
	t.globals.Define(entry, id)
}
