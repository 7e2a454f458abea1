// Package field owns the grid of nodes, wires their neighbors, and drives
// the two-phase simulation cycle. It generalizes mem.Bus's role as the
// thing every component is plugged into, but where Bus addresses a single
// shared memory, Field wires many independent node.Node peers directly to
// each other and never mediates a read or write itself — that is proto's
// job. Field owns topology and scheduling only.
package field

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"tis100/node"
	"tis100/proto"
	"tis100/word"
)

// Default resource bounds, per §5.
const (
	DefaultStackCapacity = 15
	DefaultProgramLimit  = 15
)

// Options configures construction and the cycle driver. The zero value is
// usable: CycleLimit of 0 means Run never stops itself on a cycle count.
type Options struct {
	CycleLimit    int
	StackCapacity int // capacity of every T30 Build creates; default DefaultStackCapacity
	ProgramLimit  int // max instructions per T21 program; default DefaultProgramLimit, enforced by Build

	Logger *log.Logger // defaults to log.Default() if nil
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

func (o Options) stackCapacity() int {
	if o.StackCapacity > 0 {
		return o.StackCapacity
	}
	return DefaultStackCapacity
}

func (o Options) programLimit() int {
	if o.ProgramLimit > 0 {
		return o.ProgramLimit
	}
	return DefaultProgramLimit
}

// CellKind identifies what a LayoutSpec places at one compute-grid
// coordinate. Distinct from node.Kind: a LayoutSpec only ever names the
// three grid-resident kinds (T21, T30, Damaged); I/O attachments are
// described separately since they live off-grid.
type CellKind int

const (
	CellDamaged CellKind = iota
	CellT21
	CellT30
)

// ImageSpec carries the fixed dimensions and optional expected buffer for
// an image output column.
type ImageSpec struct {
	Width, Height int
	Expected      [][]node.Pixel // nil if this run carries no expectation to validate against
}

// LayoutSpec is the construction input: grid cells plus I/O attachments,
// keyed by column. It mirrors the textual layout format of §6 as a plain Go
// value rather than a parsed string — parsing that format is explicitly out
// of scope.
type LayoutSpec struct {
	Width, Height int
	Cells         []CellKind           // row-major, len == Width*Height
	Programs      map[int]node.Program // grid index -> program, for CellT21 entries with code

	Inputs  map[int][]word.Word // column -> input test vector
	Outputs map[int][]word.Word // column -> expected output vector
	Images  map[int]ImageSpec   // column -> image output spec
}

// Field owns every node, the grid dimensions, and the filtered simulation
// set finalize computes. It is the only component in this module aware of
// an external logger, keeping every node.Node a pure state machine (§10.1).
type Field struct {
	Width, Height int

	grid [][]node.Node // grid[y][x], row-major
	io   []node.Node   // inputs, then outputs, then images; each group in ascending column order

	simSet []node.Node

	opts Options
}

// sortedKeys returns m's keys in ascending order, so iterating attachment
// maps during Build never depends on Go's randomized map iteration — the
// resulting f.io order, and therefore Layout's rendered text, is then a
// pure function of the spec's content alone.
func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Build constructs a Field from spec, instantiating the concrete node
// variant named at each coordinate and attachment, then calls Finalize to
// wire neighbors and compute the simulation set, so the returned field is
// ready to Step or Run.
func Build(spec LayoutSpec, opts Options) *Field {
	f := &Field{Width: spec.Width, Height: spec.Height, opts: opts}

	f.grid = make([][]node.Node, spec.Height)
	for y := 0; y < spec.Height; y++ {
		f.grid[y] = make([]node.Node, spec.Width)
		for x := 0; x < spec.Width; x++ {
			idx := y*spec.Width + x
			kind := CellDamaged
			if idx < len(spec.Cells) {
				kind = spec.Cells[idx]
			}
			switch kind {
			case CellT21:
				prog := spec.Programs[idx]
				if limit := opts.programLimit(); len(prog.Instructions) > limit {
					panic(fmt.Sprintf("field: program at index %d has %d instructions, exceeds limit %d", idx, len(prog.Instructions), limit))
				}
				f.grid[y][x] = node.NewT21(x, y, prog)
			case CellT30:
				f.grid[y][x] = node.NewT30(x, y, opts.stackCapacity())
			default:
				f.grid[y][x] = node.NewDamaged(x, y)
			}
		}
	}

	for _, col := range sortedKeys(spec.Inputs) {
		f.io = append(f.io, node.NewInput(col, -1, spec.Inputs[col]))
	}
	for _, col := range sortedKeys(spec.Outputs) {
		f.io = append(f.io, node.NewOutput(col, spec.Height, spec.Outputs[col]))
	}
	for _, col := range sortedKeys(spec.Images) {
		im := spec.Images[col]
		v := node.NewImageOutput(col, spec.Height, im.Width, im.Height)
		v.Expected = im.Expected
		f.io = append(f.io, v)
	}

	f.Finalize()
	return f
}

// cellAt returns the grid node at (x, y), or nil if out of bounds — the
// out-of-bounds-returns-null lookup rule 1 requires.
func (f *Field) cellAt(x, y int) node.Node {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return nil
	}
	return f.grid[y][x]
}

// Finalize wires every node's spatial and I/O neighbors from scratch, then
// recomputes the simulation set. Running it twice produces an identical
// result (§8 property 5): every step here overwrites the previous wiring
// rather than accumulating onto it.
func (f *Field) Finalize() {
	f.opts.logger().Debug("finalizing field", "width", f.Width, "height", f.Height)

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			cell := f.grid[y][x]
			if _, ok := cell.(*node.Damaged); ok {
				continue
			}
			cell.SetNeighbor(proto.Left, f.cellAt(x-1, y))
			cell.SetNeighbor(proto.Right, f.cellAt(x+1, y))
			cell.SetNeighbor(proto.Up, f.cellAt(x, y-1))
			cell.SetNeighbor(proto.Down, f.cellAt(x, y+1))
		}
	}

	for _, p := range f.io {
		x, _ := p.Pos()
		switch p.Kind() {
		case node.KindInput:
			top := f.cellAt(x, 0)
			p.SetNeighbor(proto.Down, top)
			if top != nil {
				top.SetNeighbor(proto.Up, p)
			}
		case node.KindOutput, node.KindImageOutput:
			bottom := f.cellAt(x, f.Height-1)
			p.SetNeighbor(proto.Up, bottom)
			if bottom != nil {
				bottom.SetNeighbor(proto.Down, p)
			}
		}
	}

	// Rule 4: null out any neighbor that is itself inert (nil or Damaged),
	// so node.base never has to special-case Damaged at rendezvous time.
	for _, n := range f.allNodes() {
		for _, d := range proto.Priority {
			neigh := n.Neighbor(d)
			if _, ok := neigh.(*node.Damaged); ok {
				n.SetNeighbor(d, nil)
			}
		}
	}

	f.simSet = nil
	for _, n := range f.allNodes() {
		if _, ok := n.(*node.Damaged); ok {
			continue
		}
		connected := false
		for _, d := range proto.Priority {
			if n.Neighbor(d) != nil {
				connected = true
				break
			}
		}
		t21, isT21 := n.(*node.T21)
		if connected || (isT21 && t21.Program.HasHCF()) {
			f.simSet = append(f.simSet, n)
		}
	}
}

// allNodes returns every node owned by the field, grid then I/O, in a
// fixed order. Used only by operations that need to visit every node once
// regardless of simulation-set membership (finalize, clone, layout).
func (f *Field) allNodes() []node.Node {
	all := make([]node.Node, 0, f.Width*f.Height+len(f.io))
	for y := 0; y < f.Height; y++ {
		all = append(all, f.grid[y]...)
	}
	all = append(all, f.io...)
	return all
}

// Step runs one cycle: every simulation-set node's read phase (via
// proto.Resolve over the current snapshot), then every simulation-set
// node's step phase. No node's step observes another node's freshly
// latched or drained state from this same cycle — Resolve/Apply only touch
// Participant state through Latch/Drain, and every node.Step above only
// consults its own fields.
func (f *Field) Step() {
	participants := make([]proto.Participant, len(f.simSet))
	for i, n := range f.simSet {
		participants[i] = n
	}
	proto.Apply(proto.Resolve(participants))

	for _, n := range f.simSet {
		n.Step()
	}
}

// Active reports whether the field still has work to do: some output node
// is incomplete and no T21 has halted, literally per §4.6. A layout with no
// numeric Output at all (image-only) is therefore never active by this
// predicate, so Run returns at once without stepping it — image output
// never carries its own completion notion in spec.md.
func (f *Field) Active() bool {
	complete := true
	for _, p := range f.io {
		if out, ok := p.(*node.Output); ok && !out.Complete() {
			complete = false
		}
	}
	for _, n := range f.simSet {
		if t21, ok := n.(*node.T21); ok && t21.Halted() != nil {
			return false
		}
	}
	return !complete
}

// Halted returns the first T21 halt encountered in the simulation set, or
// nil if none has fired.
func (f *Field) Halted() *node.Halt {
	for _, n := range f.simSet {
		if t21, ok := n.(*node.T21); ok {
			if h := t21.Halted(); h != nil {
				return h
			}
		}
	}
	return nil
}

// Result is Run's outcome: the cycle count it stopped at and why.
type Result struct {
	Cycles    int
	Validated bool
	TimedOut  bool
	Halt      *node.Halt
}

// Run drives Step until Active goes false or CycleLimit is hit (a limit of
// 0 means unbounded). It never mutates opts; callers wanting a fresh run
// of the same solution should Clone the field first.
func (f *Field) Run() Result {
	logger := f.opts.logger()
	cycles := 0
	for f.Active() {
		if f.opts.CycleLimit > 0 && cycles >= f.opts.CycleLimit {
			logger.Info("cycle limit exceeded", "limit", f.opts.CycleLimit, "[timeout]", true)
			return Result{Cycles: cycles, Validated: false, TimedOut: true}
		}
		f.Step()
		cycles++

		if h := f.Halted(); h != nil {
			logger.Warn("hcf", "x", h.X, "y", h.Y, "line", h.Line)
			return Result{Cycles: cycles, Validated: false, Halt: h}
		}
	}
	return Result{Cycles: cycles, Validated: !f.anyWrong()}
}

// anyWrong reports whether validation has already failed: a numeric output
// diverged from its expected vector, or an image output's received buffer
// does not match its expected buffer pixel-for-pixel (§4.5). Incompleteness
// of a numeric Output is not checked here because Run only reaches this
// point once Active has already confirmed every Output is complete.
func (f *Field) anyWrong() bool {
	for _, p := range f.io {
		switch n := p.(type) {
		case *node.Output:
			if n.Wrong() {
				return true
			}
		case *node.ImageOutput:
			if n.Expected != nil && !imagesEqual(n.Expected, n.Received) {
				return true
			}
		}
	}
	return false
}

func imagesEqual(a, b [][]node.Pixel) bool {
	if len(a) != len(b) {
		return false
	}
	for y := range a {
		if len(a[y]) != len(b[y]) {
			return false
		}
		for x := range a[y] {
			if a[y][x] != b[y][x] {
				return false
			}
		}
	}
	return true
}

// Instructions returns the total instruction count across all T21s in the
// grid, including ones outside the simulation set.
func (f *Field) Instructions() int {
	total := 0
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			if t21, ok := f.grid[y][x].(*node.T21); ok {
				total += len(t21.Program.Instructions)
			}
		}
	}
	return total
}

// NodesUsed returns the count of T21s with a non-empty program.
func (f *Field) NodesUsed() int {
	used := 0
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			if t21, ok := f.grid[y][x].(*node.T21); ok && len(t21.Program.Instructions) > 0 {
				used++
			}
		}
	}
	return used
}

// State returns a per-node human-readable dump (registers, ip, activity)
// for logging. debug.Dump builds on this.
func (f *Field) State() []NodeState {
	var out []NodeState
	for _, n := range f.allNodes() {
		x, y := n.Pos()
		s := NodeState{X: x, Y: y, Kind: n.Kind(), Activity: n.Activity()}
		if t21, ok := n.(*node.T21); ok {
			s.Acc, s.Bak, s.IP = t21.Acc, t21.Bak, t21.IP
		}
		out = append(out, s)
	}
	return out
}

// NodeState is one node's snapshot as returned by Field.State.
type NodeState struct {
	X, Y     int
	Kind     node.Kind
	Activity node.Activity
	Acc, Bak word.Word
	IP       int
}

// Clone produces an independent deep copy: every node (programs, registers,
// stacks, image buffers, input cursors, output received buffers) is
// duplicated via node.Node.Clone, then Finalize is re-run on the copy from
// scratch. Used to re-run the same solution against multiple test vectors
// without one run's mutation leaking into the next (§5, §8 property 3).
func (f *Field) Clone() *Field {
	c := &Field{Width: f.Width, Height: f.Height, opts: f.opts}

	c.grid = make([][]node.Node, f.Height)
	for y := range f.grid {
		c.grid[y] = make([]node.Node, f.Width)
		for x := range f.grid[y] {
			c.grid[y][x] = f.grid[y][x].Clone()
		}
	}
	c.io = make([]node.Node, len(f.io))
	for i, n := range f.io {
		c.io[i] = n.Clone()
	}

	c.Finalize()
	return c
}

// Layout renders the canonical textual dump of geometry and I/O
// attachments described in §6: width/height header, one row-character line
// per grid row (D/C/S), then one bracketed-list line per I/O attachment in
// the order Input columns, then Output columns, then Image columns —
// matching field::layout in the reference implementation.
func (f *Field) Layout() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %d\n", f.Width, f.Height)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			switch f.grid[y][x].(type) {
			case *node.Damaged:
				b.WriteByte('D')
			case *node.T30:
				b.WriteByte('S')
			default:
				b.WriteByte('C')
			}
		}
		b.WriteByte('\n')
	}

	for _, p := range f.io {
		x, _ := p.Pos()
		switch n := p.(type) {
		case *node.Input:
			fmt.Fprintf(&b, "I%d", x)
			writeWordList(&b, n.Values)
			b.WriteByte('\n')
		case *node.Output:
			fmt.Fprintf(&b, "O%d", x)
			writeWordList(&b, n.Expected)
			b.WriteByte('\n')
		case *node.ImageOutput:
			fmt.Fprintf(&b, "V%d %d,%d", x, n.Width, n.Height)
			writeImageText(&b, n.Expected)
			b.WriteByte('\n')
		}
	}

	return b.String()
}

func writeWordList(b *strings.Builder, values []word.Word) {
	if len(values) == 0 {
		return
	}
	b.WriteString(" [")
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%d", v.Int())
	}
	b.WriteString("]")
}

// pixelChar renders one image buffer cell as the palette-character-per-pixel
// encoding §6 names: a digit per node.Pixel value. The literal palette
// character set is not recoverable from the pack (the reference game only
// renders an already-built buffer, never writes one back out as text), so
// this picks the pixel's own ordinal — self-consistent and round-trippable,
// which is all Layout's text needs to be.
func pixelChar(p node.Pixel) byte {
	return byte('0' + p)
}

// writeImageText appends an image output's expected buffer as §6's
// bracketed, newline-separated-rows image text. A blank (nil) expectation —
// an image output with no test vector to validate against — emits nothing,
// matching the reference field::layout's "if (not im->image_expected.blank())"
// guard.
func writeImageText(b *strings.Builder, pixels [][]node.Pixel) {
	if pixels == nil {
		return
	}
	b.WriteString(" [")
	for y, row := range pixels {
		if y > 0 {
			b.WriteByte('\n')
		}
		for _, p := range row {
			b.WriteByte(pixelChar(p))
		}
	}
	b.WriteString("]")
}
