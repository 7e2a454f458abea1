package proto

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"tis100/word"
)

// fakeParticipant is a minimal, hand-wired Participant used only to drive
// Resolve/Apply in isolation, without needing a real node.
type fakeParticipant struct {
	name      string
	neighbors map[Direction]*fakeParticipant

	writeValue  word.Word
	writeTarget Direction
	writing     bool

	readDir     Direction
	reading     bool

	latched  bool
	latchVal word.Word
	latchDir Direction
	drained  bool
	drainDir Direction
}

func (f *fakeParticipant) PortNeighbor(d Direction) Participant {
	n, ok := f.neighbors[d]
	if !ok || n == nil {
		return nil
	}
	return n
}

func (f *fakeParticipant) Offer() (word.Word, Direction, bool) {
	return f.writeValue, f.writeTarget, f.writing
}

func (f *fakeParticipant) Requesting() (Direction, bool) {
	return f.readDir, f.reading
}

func (f *fakeParticipant) Latch(v word.Word, dir Direction) {
	f.latched = true
	f.latchVal = v
	f.latchDir = dir
}

func (f *fakeParticipant) Drain(dir Direction) {
	f.drained = true
	f.drainDir = dir
}

func link(a *fakeParticipant, d Direction, b *fakeParticipant) {
	if a.neighbors == nil {
		a.neighbors = map[Direction]*fakeParticipant{}
	}
	if b.neighbors == nil {
		b.neighbors = map[Direction]*fakeParticipant{}
	}
	a.neighbors[d] = b
	b.neighbors[d.Reciprocal()] = a
}

func TestResolveExplicitPair(t *testing.T) {
	writer := &fakeParticipant{name: "w", writeTarget: Down, writeValue: 42, writing: true}
	reader := &fakeParticipant{name: "r", readDir: Up, reading: true}
	link(writer, Down, reader)

	res := Resolve([]Participant{writer, reader})
	require.Len(t, res, 1)
	assert.Equal(t, word.Word(42), res[0].Value)
	assert.Equal(t, Up, res[0].ReaderDir)
	assert.Equal(t, Down, res[0].WriterDir)

	Apply(res)
	assert.True(t, reader.latched)
	assert.Equal(t, word.Word(42), reader.latchVal)
	assert.True(t, writer.drained)
}

// TestResolveAnyPriority is scenario S6: two writers offer simultaneously
// to a reader requesting ANY; LEFT must win over RIGHT.
func TestResolveAnyPriority(t *testing.T) {
	reader := &fakeParticipant{name: "r", readDir: Any, reading: true}
	left := &fakeParticipant{name: "left", writeTarget: Right, writeValue: 7, writing: true}
	right := &fakeParticipant{name: "right", writeTarget: Left, writeValue: 9, writing: true}
	link(reader, Left, left)
	link(reader, Right, right)

	res := Resolve([]Participant{reader, left, right})
	require.Len(t, res, 1)
	assert.Equal(t, word.Word(7), res[0].Value)
	assert.Equal(t, Left, res[0].ReaderDir)
	assert.Same(t, left, res[0].Writer.(*fakeParticipant))
}

func TestResolveWriterAnyPriority(t *testing.T) {
	writer := &fakeParticipant{name: "w", writeTarget: Any, writeValue: 5, writing: true}
	left := &fakeParticipant{name: "left", readDir: Right, reading: true}
	right := &fakeParticipant{name: "right", readDir: Left, reading: true}
	link(writer, Left, left)
	link(writer, Right, right)

	res := Resolve([]Participant{writer, left, right})
	require.Len(t, res, 1)
	assert.Same(t, left, res[0].Reader.(*fakeParticipant))
	assert.Equal(t, Left, res[0].WriterDir)
}

func TestResolveNoMatchWhenUncompatible(t *testing.T) {
	writer := &fakeParticipant{name: "w", writeTarget: Up, writeValue: 1, writing: true}
	reader := &fakeParticipant{name: "r", readDir: Up, reading: true}
	link(writer, Down, reader)

	res := Resolve([]Participant{writer, reader})
	assert.Empty(t, res)
}

// TestRendezvousConservation is property #4 from §8: every completed write
// is latched by exactly one reader, never more.
func TestRendezvousConservation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 6).Draw(rt, "n")
		nodes := make([]*fakeParticipant, n)
		for i := range nodes {
			nodes[i] = &fakeParticipant{name: string(rune('a' + i))}
		}
		// wire a small ring so every node has a Left/Right neighbor
		for i := range nodes {
			link(nodes[i], Right, nodes[(i+1)%n])
		}
		for _, node := range nodes {
			if rapid.Bool().Draw(rt, "isWriter") {
				node.writing = true
				node.writeTarget = Any
				node.writeValue = word.Word(rapid.IntRange(word.Min, word.Max).Draw(rt, "val"))
			} else {
				node.reading = true
				node.readDir = Any
			}
		}

		participants := make([]Participant, n)
		for i, node := range nodes {
			participants[i] = node
		}

		res := Resolve(participants)

		seenReader := map[Participant]bool{}
		seenWriter := map[Participant]bool{}
		for _, r := range res {
			assert.False(rt, seenReader[r.Reader], "reader latched twice")
			assert.False(rt, seenWriter[r.Writer], "writer drained twice")
			seenReader[r.Reader] = true
			seenWriter[r.Writer] = true
		}
	})
}

// TestOrderIndependence is property #2 from §8: permuting the participant
// slice passed to Resolve never changes which rendezvous complete.
func TestOrderIndependence(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 8).Draw(rt, "n")
		nodes := make([]*fakeParticipant, n)
		for i := range nodes {
			nodes[i] = &fakeParticipant{name: string(rune('a' + i))}
		}
		for i := range nodes {
			link(nodes[i], Right, nodes[(i+1)%n])
		}
		for _, node := range nodes {
			switch rapid.IntRange(0, 2).Draw(rt, "role") {
			case 0:
				node.writing = true
				node.writeTarget = Any
				node.writeValue = word.Word(rapid.IntRange(word.Min, word.Max).Draw(rt, "val"))
			case 1:
				node.reading = true
				node.readDir = Any
			}
		}

		canonical := make([]Participant, n)
		for i, node := range nodes {
			canonical[i] = node
		}
		base := summarize(Resolve(canonical))

		shuffled := append([]Participant(nil), canonical...)
		rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		again := summarize(Resolve(shuffled))

		assert.Equal(rt, base, again)
	})
}

func summarize(res []Resolution) map[Participant]word.Word {
	out := map[Participant]word.Word{}
	for _, r := range res {
		out[r.Reader] = r.Value
	}
	return out
}
