package node

import (
	"tis100/proto"
	"tis100/word"
)

// T30 is the stack node: a bounded LIFO with no instructions of its own.
// It never runs (Step is a no-op); all of its state changes happen via
// Latch/Drain, called by proto.Apply when it was picked as the reader of
// a push or the writer of a pop.
//
// Modeling it this way — a non-full stack permanently requests ANY (to
// accept a push), a non-empty stack permanently offers ANY (its top, to
// whichever neighbor reads it) — lets the same proto.Resolve pass used
// for every other node handle T30's priority-ordered neighbor contention
// for free, including a push and a pop resolving in the same cycle: since
// proto.Apply drains every resolved write before latching any resolved
// read, a same-cycle pop always removes the value the stack held at the
// start of the cycle, and the push's new value only lands afterward — the
// two never collide or duplicate a value.
//
// One corner of the textual spec is still not reproduced literally: when
// the stack is empty going into the cycle, Offer reports nothing (there is
// no top to serve), so a push and a pop cannot both resolve that cycle even
// though a reader is blocked waiting — the pushed value only becomes
// poppable the cycle after. A pure, side-effect-free Resolve has no way to
// hand a reader a value the matching push hasn't landed yet without first
// running that push, which would mean a step-phase read observing another
// node's same-cycle mutation — exactly what §9 rules out. Every other
// combination (non-empty stack, simultaneous push and pop) resolves within
// the one cycle.
type T30 struct {
	base

	Capacity int
	Stack    []word.Word // Stack[len-1] is the top
}

// NewT30 builds an empty T30 with the given capacity.
func NewT30(x, y, capacity int) *T30 {
	t := &T30{Capacity: capacity}
	t.x, t.y = x, y
	return t
}

func (t *T30) Kind() Kind         { return KindT30 }
func (t *T30) Activity() Activity { return Idle }
func (t *T30) Step()              {}
func (t *T30) Halted() *Halt      { return nil }

func (t *T30) Clone() Node {
	c := &T30{Capacity: t.Capacity, Stack: append([]word.Word(nil), t.Stack...)}
	c.x, c.y = t.x, t.y
	return c
}

func (t *T30) Offer() (word.Word, proto.Direction, bool) {
	if len(t.Stack) == 0 {
		return 0, proto.Nil, false
	}
	return t.Stack[len(t.Stack)-1], proto.Any, true
}

func (t *T30) Requesting() (proto.Direction, bool) {
	if len(t.Stack) >= t.Capacity {
		return proto.Nil, false
	}
	return proto.Any, true
}

func (t *T30) Latch(v word.Word, dir proto.Direction) {
	t.Stack = append(t.Stack, v)
}

func (t *T30) Drain(dir proto.Direction) {
	t.Stack = t.Stack[:len(t.Stack)-1]
}
