package attrs

import (
	"fmt"
	"strings"
)

// DecodeStatus classifies what DecodeIdent found at the end of an identifier.
type DecodeStatus int

const (
	decodeStatusInvalid DecodeStatus = iota

	// DecodeOK means a well-formed "_c<digit>" suffix with digit in 0..7.
	DecodeOK

	// DecodeNoSuffix means the identifier carries no contract at all.
	// Such functions are never flagged.
	DecodeNoSuffix

	// DecodeMalformed means a trailing "_c" is present but not followed by
	// exactly one digit in 0..7. The function is excluded from contract
	// checking yet still analyzed as a callee.
	DecodeMalformed
)

func (s DecodeStatus) String() string {
	switch s {
	case DecodeOK:
		return "ok"
	case DecodeNoSuffix:
		return "no-suffix"
	case DecodeMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("invalid-decode-status(%d)", int(s))
	}
}

// Decoded is the outcome of suffix decoding for one identifier.
type Decoded struct {
	Status DecodeStatus

	// Base is the identifier without its suffix. Set only for DecodeOK.
	Base string

	// Set is the declared contract. Set only for DecodeOK.
	Set AttributeSet

	// Reason explains a DecodeMalformed outcome.
	Reason string
}

// DecodeIdent parses an identifier into a base name and a declared attribute set.
//
// Only the tail after the last "_c" occurrence is considered:
//
//   - exactly one rune, a digit 0..7  → valid suffix;
//   - exactly one rune, anything else → malformed ("x_c8", "x_cA");
//   - empty tail                      → malformed ("x_c");
//   - longer all-digit tail           → malformed ("x_c12");
//   - longer non-digit tail           → no suffix ("load_config" stays silent).
//
// "_c" elsewhere in the name is never a match.
func DecodeIdent(ident string) Decoded {
	idx := strings.LastIndex(ident, "_c")
	if idx < 0 {
		return Decoded{Status: DecodeNoSuffix}
	}

	tail := []rune(ident[idx+2:])
	switch {
	case len(tail) == 0:
		return Decoded{
			Status: DecodeMalformed,
			Reason: `dangling "_c" with no digit`,
		}

	case len(tail) == 1:
		r := tail[0]
		switch {
		case r >= '0' && r <= '7':
			set, _ := FromDigit(int(r - '0'))
			return Decoded{
				Status: DecodeOK,
				Base:   ident[:idx],
				Set:    set,
			}
		case r == '8' || r == '9':
			return Decoded{
				Status: DecodeMalformed,
				Reason: fmt.Sprintf("suffix digit %c is out of the 0..7 range", r),
			}
		default:
			return Decoded{
				Status: DecodeMalformed,
				Reason: fmt.Sprintf(`trailing "_c" followed by non-digit %q`, string(r)),
			}
		}

	default:
		for _, r := range tail {
			if r < '0' || r > '9' {
				// An ordinary identifier that merely contains "_c".
				return Decoded{Status: DecodeNoSuffix}
			}
		}

		return Decoded{
			Status: DecodeMalformed,
			Reason: fmt.Sprintf("suffix must carry exactly one digit, got %q", string(tail)),
		}
	}
}
