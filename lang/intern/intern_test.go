package intern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mna/vela/lang/intern"
)

func TestInternIdempotent(t *testing.T) {
	in := intern.New()
	a := in.Intern("hello")
	b := in.Intern("hello")
	assert.Same(t, a, b)
	assert.Equal(t, "hello", a.String())
}

func TestInternDistinctContent(t *testing.T) {
	in := intern.New()
	a := in.Intern("foo")
	b := in.Intern("bar")
	assert.NotSame(t, a, b)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestLookupRoundTrip(t *testing.T) {
	in := intern.New()
	e := in.Intern("value")
	got := in.Lookup(e.ID())
	assert.Same(t, e, got)
}

func TestLookupOutOfRange(t *testing.T) {
	in := intern.New()
	assert.Nil(t, in.Lookup(intern.ID(42)))
}

func TestLen(t *testing.T) {
	in := intern.New()
	in.Intern("a")
	in.Intern("b")
	in.Intern("a")
	assert.Equal(t, 2, in.Len())
}
