// Package proto implements the rendezvous port protocol shared by every
// node kind in the grid. It generalizes the single shared-medium role that
// mem.Bus plays for the original Cpu into a peer-to-peer contract between
// grid cells: instead of one component addressing one memory, any two
// neighboring Participants address each other directly, and ANY/LAST
// resolve to a concrete neighbor only at rendezvous time.
//
// Resolve is a pure function over a snapshot of Participants: it never
// mutates anything. Apply is the only place pending writes are drained and
// read-results are latched, and it only ever calls back into the exact two
// Participants named in a Resolution. This is what keeps a cycle's outcome
// independent of the order nodes are visited in.
package proto

import "tis100/word"

// Direction identifies a port. The first four are spatial and index into a
// Participant's neighbor table; the rest never appear as the direction of
// an actual rendezvous (Resolve only ever sees Left, Right, Up, Down, and
// Any) but are needed to represent an instruction operand.
type Direction int

const (
	Up Direction = iota
	Left
	Right
	Down
	Nil
	Acc
	Any
	Last
	Immediate
	// Unset marks a T21's last-port field before ANY has ever resolved.
	// It is distinct from every real Direction so "never set" can be told
	// apart from "set to Up" (whose zero value would otherwise collide).
	Unset
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "UP"
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	case Down:
		return "DOWN"
	case Nil:
		return "NIL"
	case Acc:
		return "ACC"
	case Any:
		return "ANY"
	case Last:
		return "LAST"
	case Immediate:
		return "IMMEDIATE"
	default:
		return "UNSET"
	}
}

// IsSpatial reports whether d indexes a real neighbor slot.
func (d Direction) IsSpatial() bool {
	return d == Up || d == Left || d == Right || d == Down
}

// Reciprocal returns the direction that, seen from the neighbor d points
// at, points back here. Only meaningful for spatial directions.
func (d Direction) Reciprocal() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	default:
		panic("proto: Reciprocal of non-spatial direction " + d.String())
	}
}

// Priority is the fixed scan order rule 2 and rule 3 both specify for
// resolving ANY, from the scanning node's own point of view.
var Priority = [4]Direction{Left, Right, Up, Down}

// Participant is the protocol-facing contract a node exposes. field wires
// these together; node implements them; Resolve and Apply only ever see
// this interface, never a concrete node type.
type Participant interface {
	// PortNeighbor returns the neighbor in spatial direction d, or nil if
	// there is none (edge of grid, or the neighbor was nulled out because
	// it is inert).
	PortNeighbor(d Direction) Participant

	// Offer reports the participant's pending write, if any, this cycle.
	// It must not mutate anything.
	Offer() (value word.Word, target Direction, ok bool)

	// Requesting reports the direction the participant is currently
	// blocked reading from, if any. It must not mutate anything.
	Requesting() (dir Direction, ok bool)

	// Latch commits a read: v is the value that arrived, dir is the
	// spatial direction (from this participant towards the writer) the
	// value arrived on. Only called by Apply, once per cycle, on a
	// participant that was the Reader of exactly one Resolution.
	Latch(v word.Word, dir Direction)

	// Drain commits a write's departure: dir is the spatial direction
	// (from this participant towards the reader) the value left on. Only
	// called by Apply, once per cycle, on a participant that was the
	// Writer of exactly one Resolution.
	Drain(dir Direction)
}

// Resolution is one completed rendezvous: Writer's pending write on
// WriterDir was consumed by Reader on ReaderDir (the two are reciprocal
// directions of the same edge).
type Resolution struct {
	Reader    Participant
	Writer    Participant
	Value     word.Word
	ReaderDir Direction
	WriterDir Direction
}

func compatibleReader(dr, reciprocal Direction) bool {
	return dr == Any || dr == reciprocal
}

func compatibleWriter(target, reciprocal Direction) bool {
	return target == Any || target == reciprocal
}

// Resolve computes every rendezvous that completes this cycle, given the
// pre-cycle state of every participating node. It reads only Offer,
// Requesting and PortNeighbor — never Latch or Drain — so calling it twice
// on the same snapshot always yields the same result, and iteration order
// over participants does not affect the outcome.
//
// Each side's ANY resolves by mutual agreement: a writer's preferred
// reader is the first compatible neighbor found scanning Priority from the
// writer; a reader's preferred writer is found the same way from the
// reader. A rendezvous is committed only when both sides agree — this is
// what keeps a write claimed by at most one reader and a read satisfied by
// at most one writer even when both ends are ANY. A disagreement (the two
// ANYs pick different partners) simply leaves both sides blocked for
// another cycle rather than risk a double match.
func Resolve(participants []Participant) []Resolution {
	preferredReader := make(map[Participant]Participant, len(participants))
	preferredWriter := make(map[Participant]Participant, len(participants))
	readerDirOf := make(map[Participant]Direction, len(participants))
	writerDirOf := make(map[Participant]Direction, len(participants))

	for _, p := range participants {
		_, target, ok := p.Offer()
		if !ok {
			continue
		}
		if target.IsSpatial() {
			cand := p.PortNeighbor(target)
			if cand == nil {
				continue
			}
			if dr, ok2 := cand.Requesting(); ok2 && compatibleReader(dr, target.Reciprocal()) {
				preferredReader[p] = cand
				writerDirOf[p] = target
			}
			continue
		}
		if target != Any {
			continue
		}
		for _, d := range Priority {
			cand := p.PortNeighbor(d)
			if cand == nil {
				continue
			}
			if dr, ok2 := cand.Requesting(); ok2 && compatibleReader(dr, d.Reciprocal()) {
				preferredReader[p] = cand
				writerDirOf[p] = d
				break
			}
		}
	}

	for _, p := range participants {
		dr, ok := p.Requesting()
		if !ok {
			continue
		}
		if dr.IsSpatial() {
			cand := p.PortNeighbor(dr)
			if cand == nil {
				continue
			}
			if _, target, ok2 := cand.Offer(); ok2 && compatibleWriter(target, dr.Reciprocal()) {
				preferredWriter[p] = cand
				readerDirOf[p] = dr
			}
			continue
		}
		if dr != Any {
			continue
		}
		for _, d := range Priority {
			cand := p.PortNeighbor(d)
			if cand == nil {
				continue
			}
			if _, target, ok2 := cand.Offer(); ok2 && compatibleWriter(target, d.Reciprocal()) {
				preferredWriter[p] = cand
				readerDirOf[p] = d
				break
			}
		}
	}

	var out []Resolution
	for r, w := range preferredWriter {
		if preferredReader[w] != r {
			continue
		}
		value, _, _ := w.Offer()
		out = append(out, Resolution{
			Reader:    r,
			Writer:    w,
			Value:     value,
			ReaderDir: readerDirOf[r],
			WriterDir: writerDirOf[w],
		})
	}
	return out
}

// Apply commits every resolution by calling back into exactly the two
// Participants it names. This is the only code in the package that
// mutates anything; together with Resolve it makes up the read phase of a
// cycle, and every node's own Step runs after it.
//
// Every Drain runs before any Latch. A participant can be the Writer of at
// most one resolution and the Reader of at most one resolution per cycle
// (Resolve's mutual-agreement rule guarantees this), but it can be both at
// once — a T30 simultaneously serving a pop to one neighbor and accepting a
// push from another. Draining first means that pop removes the value the
// stack held at the start of the cycle before the push's Latch adds the new
// one, so the stack never duplicates or drops a value regardless of the
// order resolutions happen to be stored in.
func Apply(resolutions []Resolution) {
	for _, res := range resolutions {
		res.Writer.Drain(res.WriterDir)
	}
	for _, res := range resolutions {
		res.Reader.Latch(res.Value, res.ReaderDir)
	}
}
