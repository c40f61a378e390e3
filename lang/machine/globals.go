package machine

import (
	"github.com/dolthub/swiss"

	"github.com/mna/vela/lang/intern"
	"github.com/mna/vela/lang/value"
)

// Globals is the VM's global variable table, keyed by interned name so
// lookups and assignments are pointer comparisons rather than string
// comparisons.
type Globals struct {
	m *swiss.Map[*intern.Entry, value.Value]
}

// NewGlobals returns an empty globals table.
func NewGlobals() *Globals {
	return &Globals{m: swiss.NewMap[*intern.Entry, value.Value](32)}
}

// Get looks up name, reporting whether it is bound.
func (g *Globals) Get(name *intern.Entry) (value.Value, bool) {
	return g.m.Get(name)
}

// Define binds name to v, creating or overwriting the binding. Global
// variables may be redeclared, so OP_DEFINE_GLOBAL always succeeds.
func (g *Globals) Define(name *intern.Entry, v value.Value) {
	g.m.Put(name, v)
}

// Has reports whether name is currently bound, used by OP_SET_GLOBAL to
// reject assignment to an undeclared variable.
func (g *Globals) Has(name *intern.Entry) bool {
	_, ok := g.m.Get(name)
	return ok
}
