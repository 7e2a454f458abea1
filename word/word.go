// Package word provides the TIS-100 saturating integer type.
//
// All node registers, ports, and the image buffer palette index arithmetic
// go through this type. Values never wrap; they clamp.
package word

// Min and Max are the closed bounds every Word is held to. The range is
// also the addressable space: a jump-relative offset can reach any
// instruction in the largest allowed program.
const (
	Min = -999
	Max = 999
)

// Word is a signed integer confined to [Min, Max].
type Word int

// Clamp saturates v into [Min, Max].
func Clamp(v int) Word {
	switch {
	case v < Min:
		return Min
	case v > Max:
		return Max
	default:
		return Word(v)
	}
}

// Add returns w+o, saturated.
func (w Word) Add(o Word) Word { return Clamp(int(w) + int(o)) }

// Sub returns w-o, saturated.
func (w Word) Sub(o Word) Word { return Clamp(int(w) - int(o)) }

// Neg returns -w. Since [Min, Max] is symmetric this never saturates.
func (w Word) Neg() Word { return Clamp(-int(w)) }

// Int returns the plain int value, for indexing and formatting.
func (w Word) Int() int { return int(w) }
