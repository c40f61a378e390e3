// Package intern provides a bidirectional string interner: equal string
// content always maps to the same *Entry, so callers can compare interned
// strings by pointer instead of by content.
//
// The original implementation this was distilled from (a Rust interpreter)
// backs its interner with an append-only byte arena and unsafe pointer casts
// to fake a 'static lifetime for interned slices. Go strings are already
// immutable values that keep their backing array alive for as long as any
// string header references it, so no such arena trick is needed here: an
// Entry simply owns its string content directly.
package intern

import (
	"github.com/dolthub/swiss"
)

// ID is a dense, never-reused identifier assigned to an interned string in
// the order it was first seen.
type ID uint32

// Entry is a single interned string. Its address is stable for the lifetime
// of the Interner that produced it, so pointer equality implies content
// equality.
type Entry struct {
	id ID
	s  string
}

// String returns the interned content.
func (e *Entry) String() string { return e.s }

// ID returns the entry's dense identifier.
func (e *Entry) ID() ID { return e.id }

// Interner interns string content, handing back a stable *Entry for each
// distinct value seen.
type Interner struct {
	byContent *swiss.Map[string, *Entry]
	byID      []*Entry
}

// New creates an empty Interner.
func New() *Interner {
	return &Interner{
		byContent: swiss.NewMap[string, *Entry](16),
	}
}

// NewSized creates an empty Interner pre-sized for at least size entries.
func NewSized(size int) *Interner {
	return &Interner{
		byContent: swiss.NewMap[string, *Entry](uint32(size)),
	}
}

// Intern returns the Entry for s, creating and recording a new one the first
// time a given content is seen. Intern is idempotent: interning the same
// content twice returns the same *Entry.
func (in *Interner) Intern(s string) *Entry {
	if e, ok := in.byContent.Get(s); ok {
		return e
	}
	e := &Entry{id: ID(len(in.byID)), s: s}
	in.byID = append(in.byID, e)
	in.byContent.Put(s, e)
	return e
}

// Lookup returns the Entry previously assigned id, or nil if id is out of
// range.
func (in *Interner) Lookup(id ID) *Entry {
	if int(id) < 0 || int(id) >= len(in.byID) {
		return nil
	}
	return in.byID[id]
}

// Len returns the number of distinct strings interned so far.
func (in *Interner) Len() int { return len(in.byID) }
