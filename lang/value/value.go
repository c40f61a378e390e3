// Package value defines the runtime values vela programs operate on: a small
// tagged union of nil, booleans, numbers, interned strings, and opaque
// handles into the machine's object arena.
package value

import (
	"fmt"
	"strconv"

	"github.com/mna/vela/lang/intern"
)

// Value is anything that can live on the VM stack, in a constant pool, or in
// the globals table.
type Value interface {
	// String formats the value the way print and the REPL would display it.
	String() string
	// Type names the value's dynamic type.
	Type() string
}

// Nil is the single nil value.
type Nil struct{}

func (Nil) String() string { return "nil" }
func (Nil) Type() string   { return "nil" }

// NilValue is the canonical nil Value.
var NilValue = Nil{}

// Bool is a boolean value.
type Bool bool

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (Bool) Type() string { return "bool" }

// True and False are the two Bool values, usable without a conversion.
const (
	True  = Bool(true)
	False = Bool(false)
)

// Number is a double-precision float, vela's only numeric type.
type Number float64

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}
func (Number) Type() string { return "number" }

// Str is an interned string value, produced by string literals and by
// concatenation. Two Str values are the same string iff they wrap the same
// *intern.Entry.
type Str struct {
	E *intern.Entry
}

func (s Str) String() string { return s.E.String() }
func (Str) Type() string     { return "string" }

// NewStr wraps an already-interned entry as a Str value.
func NewStr(in *intern.Entry) Str { return Str{E: in} }

// StrID is an interned identifier used as a constant-pool entry for global
// variable and function names. It is kept distinct from Str so that
// disassembly and error messages can tell "a string value" apart from "the
// name the compiler emitted for a variable", even though both share the same
// interning table.
//
// This realizes the original design's bare integer StringId as a pointer to
// the interned Entry instead: a Go pointer gives the same O(1) identity
// comparison and is self-describing (E.String() prints the name) without a
// separate id-to-interner lookup at print time.
type StrID struct {
	E *intern.Entry
}

func (n StrID) String() string { return n.E.String() }
func (StrID) Type() string     { return "name" }

// FunctionID is an opaque handle to a compiled function body stored in a
// machine.Memory arena.
type FunctionID uint32

func (id FunctionID) String() string { return fmt.Sprintf("<fn#%d>", uint32(id)) }
func (FunctionID) Type() string      { return "function" }

// ClosureID is an opaque handle to a runtime closure stored in a
// machine.Memory arena.
type ClosureID uint32

func (id ClosureID) String() string { return fmt.Sprintf("<closure#%d>", uint32(id)) }
func (ClosureID) Type() string      { return "closure" }

// NativeID is an opaque handle to a native function stored in a
// machine.Memory arena.
type NativeID uint32

func (id NativeID) String() string { return fmt.Sprintf("<native#%d>", uint32(id)) }
func (NativeID) Type() string      { return "native" }

// Truthy implements vela's truthiness rule: everything is truthy except nil
// and false.
func Truthy(v Value) bool {
	switch vv := v.(type) {
	case Nil:
		return false
	case Bool:
		return bool(vv)
	default:
		return true
	}
}

// Equal implements vela's == operator: values of different dynamic types are
// never equal, nil equals only nil, and interned strings/names compare by
// entry identity rather than content (which is equivalent, but O(1)).
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case Str:
		bv, ok := b.(Str)
		return ok && av.E == bv.E
	case StrID:
		bv, ok := b.(StrID)
		return ok && av.E == bv.E
	case FunctionID:
		bv, ok := b.(FunctionID)
		return ok && av == bv
	case ClosureID:
		bv, ok := b.(ClosureID)
		return ok && av == bv
	case NativeID:
		bv, ok := b.(NativeID)
		return ok && av == bv
	default:
		return false
	}
}
