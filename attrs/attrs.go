// Package attrs models the three orthogonal boolean contracts a trailing
// "_c<digit>" suffix encodes, and decodes that suffix out of raw identifiers.
package attrs

import (
	"encoding"
	"fmt"
)

// AttributeSet is the orthogonal boolean contract carried by a "_c<digit>" suffix.
//
// The digit satisfies d = MayAbnormallyExit·1 + MutablyConst·2 + RegistersResource·4.
type AttributeSet struct {
	// MayAbnormallyExit allows the function to leave via an abnormal,
	// non-returning control transfer instead of returning to its caller.
	MayAbnormallyExit bool

	// MutablyConst promises the function keeps the first argument
	// observably constant while possibly mutating its hidden state.
	MutablyConst bool

	// RegistersResource promises every resource the function allocates
	// is recorded with the external resource registry.
	RegistersResource bool
}

// FromDigit builds the attribute set the digit encodes.
// Digits outside 0..7 are invalid.
func FromDigit(d int) (AttributeSet, bool) {
	if d < 0 || d > 7 {
		return AttributeSet{}, false
	}

	return AttributeSet{
		MayAbnormallyExit: d&1 != 0,
		MutablyConst:      d&2 != 0,
		RegistersResource: d&4 != 0,
	}, true
}

// Digit returns the suffix digit encoding the set.
func (s AttributeSet) Digit() int {
	var d int
	if s.MayAbnormallyExit {
		d |= 1
	}
	if s.MutablyConst {
		d |= 2
	}
	if s.RegistersResource {
		d |= 4
	}

	return d
}

// Bit reports the declared value of a single attribute bit.
func (s AttributeSet) Bit(b Bit) bool {
	switch b {
	case BitMayAbnormallyExit:
		return s.MayAbnormallyExit
	case BitMutablyConst:
		return s.MutablyConst
	case BitRegistersResource:
		return s.RegistersResource
	default:
		panic(fmt.Errorf("invalid attribute bit %d", b))
	}
}

func (s AttributeSet) String() string {
	return fmt.Sprintf("_c%d", s.Digit())
}

// Bit identifies one of the three independent contract bits.
type Bit int

const (
	bitInvalid Bit = iota

	BitMayAbnormallyExit
	BitMutablyConst
	BitRegistersResource
)

var bitValueMap = map[Bit]string{
	BitMayAbnormallyExit: "mayAbnormallyExit",
	BitMutablyConst:      "mutablyConst",
	BitRegistersResource: "registersResource",
}

func (b Bit) String() string {
	v, ok := bitValueMap[b]
	if !ok {
		return fmt.Sprintf("invalid-bit(%d)", int(b))
	}

	return v
}

var _ encoding.TextUnmarshaler = (*Bit)(nil)

// UnmarshalText for setting values with configs, CLI, etc.
func (b *Bit) UnmarshalText(rawtext []byte) error {
	text := string(rawtext)
	for k, v := range bitValueMap {
		if v == text {
			*b = k
			return nil
		}
	}

	return fmt.Errorf("unknown attribute bit %q", text)
}

func (b Bit) MarshalText() ([]byte, error) {
	v, ok := bitValueMap[b]
	if !ok {
		return nil, fmt.Errorf("cannot marshal invalid Bit(%d)", int(b))
	}

	return []byte(v), nil
}

// Bits lists the three contract bits in their digit-weight order.
func Bits() []Bit {
	return []Bit{BitMayAbnormallyExit, BitMutablyConst, BitRegistersResource}
}
