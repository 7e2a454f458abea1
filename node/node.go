// Package node implements the six node kinds that populate a field: the
// inert Damaged node, the T21 compute node, the T30 stack node, and the
// three I/O nodes (Input, Output, ImageOutput). It generalizes cpu.Cpu —
// one fetch/decode/execute engine with no memory of its own beyond its
// registers — into a closed set of small state machines that all speak the
// same proto.Participant contract and are otherwise independent of one
// another.
package node

import "tis100/proto"

// Kind identifies which of the six node variants a Node is. Mirrors
// node::type_t from the reference implementation (T21, T30, in, out,
// image, Damaged).
type Kind int

const (
	KindDamaged Kind = iota
	KindT21
	KindT30
	KindInput
	KindOutput
	KindImageOutput
)

func (k Kind) String() string {
	switch k {
	case KindDamaged:
		return "damaged"
	case KindT21:
		return "T21"
	case KindT30:
		return "T30"
	case KindInput:
		return "input"
	case KindOutput:
		return "output"
	case KindImageOutput:
		return "image"
	default:
		return "unknown"
	}
}

// Activity is the observable state every node exposes for state() dumps
// and the debug package's stepper.
type Activity int

const (
	Idle Activity = iota
	Run
	Read
	Write
)

func (a Activity) String() string {
	switch a {
	case Idle:
		return "idle"
	case Run:
		return "run"
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return "?"
	}
}

// Halt is raised by a T21 executing hcf. It is a value, not a Go error —
// field surfaces it via Node.Halted, matching §7's framing of HCF as a
// terminal condition rather than a parse-time failure.
type Halt struct {
	X, Y int
	Line int
}

// Node is the common capability set every variant implements: type, step,
// read (via proto.Participant, embedded), and an activity observable.
// field type-asserts concrete node types where it needs variant-specific
// state (construction, finalize, validation, introspection, Layout); the
// two-phase cycle itself goes through this interface only.
type Node interface {
	proto.Participant

	Kind() Kind
	Pos() (x, y int)
	Activity() Activity

	// Neighbor is the domain-facing counterpart of PortNeighbor: field
	// uses it for wiring and introspection. The two can't share a method
	// name because Go requires identical return types across the
	// interfaces a single method satisfies.
	Neighbor(d proto.Direction) Node
	SetNeighbor(d proto.Direction, n Node)

	// Step runs this node's step-phase logic (fetch/decode/execute for a
	// T21; a no-op for every other kind, whose state changes happen
	// entirely in Latch/Drain).
	// Rendezvous resolution itself (proto.Resolve/Apply) happens outside
	// any single node, in field.
	Step()

	// Halted reports a pending terminal halt, if this node ever raises
	// one (only T21 does).
	Halted() *Halt

	// Clone returns an independent copy of this node at the same
	// coordinates, with every field value (registers, stacks, buffers,
	// in-flight block state) duplicated rather than shared. Neighbors are
	// never copied — field.Clone re-runs Finalize on the result, exactly
	// as the reference field's clone() does.
	Clone() Node
}

// base provides the shared bookkeeping (coordinates, neighbor table) every
// variant embeds. It is not itself a Node — each variant must still supply
// Kind, Step, Activity, Offer, Requesting, Latch, Drain, Halted.
type base struct {
	x, y      int
	neighbors [4]Node // indexed by proto.Up/Left/Right/Down
}

func (b *base) Pos() (int, int) { return b.x, b.y }

func (b *base) Neighbor(d proto.Direction) Node {
	if !d.IsSpatial() {
		panic("node: Neighbor called with non-spatial direction")
	}
	return b.neighbors[d]
}

func (b *base) SetNeighbor(d proto.Direction, n Node) {
	if !d.IsSpatial() {
		panic("node: SetNeighbor called with non-spatial direction")
	}
	b.neighbors[d] = n
}

// PortNeighbor adapts Neighbor to proto.Participant's return type. A nil
// Node must become a nil proto.Participant, not a non-nil interface value
// wrapping a nil pointer — the explicit check matters here.
func (b *base) PortNeighbor(d proto.Direction) proto.Participant {
	n := b.neighbors[d]
	if n == nil {
		return nil
	}
	return n
}
