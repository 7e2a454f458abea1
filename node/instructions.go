package node

// Zero-operand and register-only instructions complete within a single
// step-phase call; all but hcf then advance ip by one.

func (t *T21) execNop(ins Instruction) { t.advance() }

func (t *T21) execSwp(ins Instruction) {
	t.Acc, t.Bak = t.Bak, t.Acc
	t.advance()
}

func (t *T21) execSav(ins Instruction) {
	t.Bak = t.Acc
	t.advance()
}

func (t *T21) execNeg(ins Instruction) {
	t.Acc = t.Acc.Neg()
	t.advance()
}

// execHcf raises a terminal halt for the whole field; x, y, and the
// source line travel with it for the Warn-level log line field emits
// when it observes one.
func (t *T21) execHcf(ins Instruction) {
	t.halt = &Halt{X: t.x, Y: t.y, Line: ins.Line}
}

// A taken jump sets ip absolutely without wrapping; a conditional jump that
// is not taken advances like any other instruction.

func (t *T21) execJmp(ins Instruction) { t.IP = t.Program.Labels[ins.Label] }
func (t *T21) execJez(ins Instruction) { t.branchIf(ins, t.Acc == 0) }
func (t *T21) execJnz(ins Instruction) { t.branchIf(ins, t.Acc != 0) }
func (t *T21) execJgz(ins Instruction) { t.branchIf(ins, t.Acc > 0) }
func (t *T21) execJlz(ins Instruction) { t.branchIf(ins, t.Acc < 0) }

// add, sub, and jro all read a src operand that may block on a port; the
// rest of each opcode's work happens in completeReadSrc once a value is
// in hand (possibly in the very same step-phase call, if src resolved
// instantly).

func (t *T21) execAdd(ins Instruction) {
	t.pendingOp = Add
	t.beginReadSrc(ins.Src)
}

func (t *T21) execSub(ins Instruction) {
	t.pendingOp = Sub
	t.beginReadSrc(ins.Src)
}

func (t *T21) execJro(ins Instruction) {
	t.pendingOp = Jro
	t.beginReadSrc(ins.Src)
}

// mov additionally stashes its dst operand before reading src, since
// completeReadSrc's Mov case needs it once src resolves.
func (t *T21) execMov(ins Instruction) {
	t.pendingOp = Mov
	t.pendingDst = ins.Dst
	t.beginReadSrc(ins.Src)
}
