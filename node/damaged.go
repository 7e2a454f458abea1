package node

import (
	"tis100/proto"
	"tis100/word"
)

// Damaged is inert: no state, both phases are no-ops, always idle. field's
// Finalize nulls out every reference to one so it is never actually
// traversed during simulation, but it still needs to exist as a Node so
// construction can place it at its grid coordinates.
type Damaged struct {
	base
}

func NewDamaged(x, y int) *Damaged {
	d := &Damaged{}
	d.x, d.y = x, y
	return d
}

func (d *Damaged) Kind() Kind          { return KindDamaged }
func (d *Damaged) Activity() Activity  { return Idle }
func (d *Damaged) Step()               {}
func (d *Damaged) Halted() *Halt       { return nil }

func (d *Damaged) Clone() Node { return NewDamaged(d.x, d.y) }

func (d *Damaged) Offer() (word.Word, proto.Direction, bool) { return 0, proto.Nil, false }
func (d *Damaged) Requesting() (proto.Direction, bool)       { return proto.Nil, false }
func (d *Damaged) Latch(word.Word, proto.Direction)          {}
func (d *Damaged) Drain(proto.Direction)                     {}
