package node

import (
	"tis100/proto"
	"tis100/word"
)

// Input owns a finite ordered sequence of words supplied by a test
// vector. It is a permanent writer targeting Down, the only neighbor
// finalize ever gives it. Once exhausted it stops offering entirely,
// which is how a read past the end of the test vector blocks forever
// rather than erroring (§4.4).
type Input struct {
	base

	Values []word.Word
	Cursor int
}

func NewInput(x, y int, values []word.Word) *Input {
	n := &Input{Values: values}
	n.x, n.y = x, y
	return n
}

func (n *Input) Kind() Kind { return KindInput }

func (n *Input) Activity() Activity {
	if n.Cursor >= len(n.Values) {
		return Idle
	}
	return Write
}

func (n *Input) Step()         {}
func (n *Input) Halted() *Halt { return nil }

func (n *Input) Clone() Node {
	c := &Input{Values: n.Values, Cursor: n.Cursor}
	c.x, c.y = n.x, n.y
	return c
}

func (n *Input) Offer() (word.Word, proto.Direction, bool) {
	if n.Cursor >= len(n.Values) {
		return 0, proto.Nil, false
	}
	return n.Values[n.Cursor], proto.Down, true
}

func (n *Input) Requesting() (proto.Direction, bool) { return proto.Nil, false }
func (n *Input) Latch(word.Word, proto.Direction)    {}

func (n *Input) Drain(proto.Direction) { n.Cursor++ }

// Output owns an expected sequence and accumulates a received sequence,
// maintaining Complete and Wrong incrementally as values arrive. It is a
// permanent reader targeting Up, the only neighbor finalize ever gives
// it.
type Output struct {
	base

	Expected []word.Word
	Received []word.Word
	wrong    bool
}

func NewOutput(x, y int, expected []word.Word) *Output {
	n := &Output{Expected: expected}
	n.x, n.y = x, y
	return n
}

func (n *Output) Kind() Kind         { return KindOutput }
func (n *Output) Activity() Activity { return Read }
func (n *Output) Step()              {}
func (n *Output) Halted() *Halt      { return nil }

func (n *Output) Clone() Node {
	c := &Output{Expected: n.Expected, Received: append([]word.Word(nil), n.Received...), wrong: n.wrong}
	c.x, c.y = n.x, n.y
	return c
}

func (n *Output) Offer() (word.Word, proto.Direction, bool) { return 0, proto.Nil, false }
func (n *Output) Requesting() (proto.Direction, bool)       { return proto.Up, true }
func (n *Output) Drain(proto.Direction)                     {}

func (n *Output) Latch(v word.Word, dir proto.Direction) {
	idx := len(n.Received)
	if idx < len(n.Expected) && n.Expected[idx] != v {
		n.wrong = true
	}
	n.Received = append(n.Received, v)
}

// Complete reports whether enough values have arrived to cover Expected.
func (n *Output) Complete() bool { return len(n.Received) >= len(n.Expected) }

// Wrong reports whether any received value has differed from Expected at
// the same index seen so far.
func (n *Output) Wrong() bool { return n.wrong }
