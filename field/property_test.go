package field

import (
	"testing"

	"pgregory.net/rapid"

	"tis100/node"
	"tis100/proto"
	"tis100/word"
)

// identitySpec builds the S1 layout parameterized by a test vector, for use
// by the properties below.
func identitySpec(values []word.Word) LayoutSpec {
	return LayoutSpec{
		Width: 1, Height: 1,
		Cells:    []CellKind{CellT21},
		Programs: map[int]node.Program{0: movProgram(node.Operand{Dir: proto.Up}, node.Operand{Dir: proto.Down})},
		Inputs:   map[int][]word.Word{0: values},
		Outputs:  map[int][]word.Word{0: values},
	}
}

// TestCloneProducesIdenticalRun is §8 property 3 (determinism under
// Clone): a freshly-built field and its own clone, run independently on
// the same layout, always reach the same cycle count and validation
// outcome — cloning and re-running a solution must not perturb anything
// the node-level rendezvous protocol depends on.
func TestCloneProducesIdenticalRun(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(rt, "n")
		values := make([]word.Word, n)
		for i := range values {
			values[i] = word.Word(rapid.IntRange(word.Min, word.Max).Draw(rt, "v"))
		}

		f := Build(identitySpec(values), Options{CycleLimit: 10 * (n + 1)})
		clone := f.Clone()

		want := f.Run()
		got := clone.Run()

		if want.Cycles != got.Cycles || want.Validated != got.Validated {
			rt.Fatalf("clone diverged: original=%+v clone=%+v", want, got)
		}
	})
}

// TestRepeatedCloneStaysIndependent chains several Clone calls and checks
// that running an early clone never affects a later one descended from the
// same unrun ancestor — field.Clone must deep-copy all the way down, not
// just one level.
func TestRepeatedCloneStaysIndependent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		depth := rapid.IntRange(1, 4).Draw(rt, "depth")
		values := []word.Word{1, 2, 3}

		root := Build(identitySpec(values), Options{CycleLimit: 50})
		clones := make([]*Field, depth)
		current := root
		for i := 0; i < depth; i++ {
			current = current.Clone()
			clones[i] = current
		}

		// run every clone but the last; the last one's state must still
		// reflect a completely untouched field.
		for i := 0; i < depth-1; i++ {
			clones[i].Run()
		}

		untouched := clones[depth-1]
		assertUntouchedIP(rt, untouched)
	})
}

func assertUntouchedIP(rt *rapid.T, f *Field) {
	st := f.State()
	for _, s := range st {
		if s.Kind == node.KindT21 && s.IP != 0 {
			rt.Fatalf("expected untouched clone's T21 to have ip 0, got %d", s.IP)
		}
	}
}

// TestFinalizeNeverChangesLayout is §8 property 5: Finalize is idempotent
// regardless of how many times it runs, across arbitrary rectangular
// layouts of the three grid cell kinds.
func TestFinalizeNeverChangesLayout(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		w := rapid.IntRange(1, 5).Draw(rt, "w")
		h := rapid.IntRange(1, 5).Draw(rt, "h")
		cells := make([]CellKind, w*h)
		for i := range cells {
			cells[i] = CellKind(rapid.IntRange(0, 2).Draw(rt, "cell"))
		}

		f := Build(LayoutSpec{Width: w, Height: h, Cells: cells}, Options{})
		first := f.Layout()

		repeats := rapid.IntRange(1, 3).Draw(rt, "repeats")
		for i := 0; i < repeats; i++ {
			f.Finalize()
		}

		if f.Layout() != first {
			rt.Fatalf("Layout changed after repeated Finalize")
		}
	})
}
