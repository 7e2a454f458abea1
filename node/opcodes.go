package node

// An Opcode identifies one of the fourteen T21 instructions. Unlike the
// teacher's Opcode (keyed by byte, carrying an AddressingMode since a
// single mnemonic can be encoded several ways), TIS-100 instructions have
// no addressing modes — operand resolution happens uniformly at execution
// time in t21.go — so Opcode is just the mnemonic itself.
type Opcode string

const (
	Nop Opcode = "nop"
	Mov Opcode = "mov"
	Swp Opcode = "swp"
	Sav Opcode = "sav"
	Add Opcode = "add"
	Sub Opcode = "sub"
	Neg Opcode = "neg"
	Jmp Opcode = "jmp"
	Jez Opcode = "jez"
	Jnz Opcode = "jnz"
	Jgz Opcode = "jgz"
	Jlz Opcode = "jlz"
	Jro Opcode = "jro"
	Hcf Opcode = "hcf"
)

// instrFunc is the run-phase half of one opcode: decode-and-complete for
// register-only ops, or begin-blocking for ops touching a port.
type instrFunc func(t *T21, ins Instruction)

// Dispatch maps every Opcode to its run-phase implementation, the same
// shape as the teacher's Opcodes table (keyed lookup to a func(*T21,...)
// method expression rather than a switch).
var Dispatch = map[Opcode]instrFunc{
	Nop: (*T21).execNop,
	Mov: (*T21).execMov,
	Swp: (*T21).execSwp,
	Sav: (*T21).execSav,
	Add: (*T21).execAdd,
	Sub: (*T21).execSub,
	Neg: (*T21).execNeg,
	Jmp: (*T21).execJmp,
	Jez: (*T21).execJez,
	Jnz: (*T21).execJnz,
	Jgz: (*T21).execJgz,
	Jlz: (*T21).execJlz,
	Jro: (*T21).execJro,
	Hcf: (*T21).execHcf,
}
