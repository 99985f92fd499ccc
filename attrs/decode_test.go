package attrs

import (
	"fmt"
	"testing"
)

func TestDecodeIdent_RoundTrip(t *testing.T) {
	for d := 0; d <= 7; d++ {
		t.Run(fmt.Sprintf("digit-%d", d), func(t *testing.T) {
			ident := fmt.Sprintf("frobnicate_c%d", d)
			res := DecodeIdent(ident)

			if res.Status != DecodeOK {
				t.Fatalf("expected DecodeOK for %q, got %s (%s)", ident, res.Status, res.Reason)
			}
			if res.Base != "frobnicate" {
				t.Errorf("base mismatch: got %q, want %q", res.Base, "frobnicate")
			}
			if got := res.Set.Digit(); got != d {
				t.Errorf("digit mismatch: got %d, want %d", got, d)
			}

			want, ok := FromDigit(d)
			if !ok {
				t.Fatalf("FromDigit rejected valid digit %d", d)
			}
			if res.Set != want {
				t.Errorf("set mismatch: got %+v, want %+v", res.Set, want)
			}
		})
	}
}

func TestDecodeIdent_Malformed(t *testing.T) {
	tests := []string{
		"open_file_c8",
		"open_file_c",
		"open_file_cA",
		"open_file_c12",
	}

	for _, ident := range tests {
		t.Run(ident, func(t *testing.T) {
			res := DecodeIdent(ident)
			if res.Status != DecodeMalformed {
				t.Fatalf("expected DecodeMalformed for %q, got %s", ident, res.Status)
			}
			if res.Reason == "" {
				t.Error("malformed outcome must carry a reason")
			}
			if res.Set != (AttributeSet{}) {
				t.Errorf("malformed outcome must not carry an attribute set, got %+v", res.Set)
			}
		})
	}
}

func TestDecodeIdent_NoSuffix(t *testing.T) {
	tests := []string{
		"load_config",
		"foo_car",
		"plain",
		"c3",
		"has_c3_inside_name",
	}

	for _, ident := range tests {
		t.Run(ident, func(t *testing.T) {
			res := DecodeIdent(ident)
			if res.Status != DecodeNoSuffix {
				t.Fatalf("expected DecodeNoSuffix for %q, got %s (%s)", ident, res.Status, res.Reason)
			}
		})
	}
}

func TestConfidenceLattice(t *testing.T) {
	if Join(ProvenFalse, Unverifiable) != Unverifiable {
		t.Error("join must lift false to unverifiable")
	}
	if Join(Unverifiable, ProvenTrue) != ProvenTrue {
		t.Error("join must let a proof of truth dominate")
	}
	if Meet(ProvenTrue, Unverifiable) != Unverifiable {
		t.Error("meet must lower truth to unverifiable")
	}
	if Meet(Unverifiable, ProvenFalse) != ProvenFalse {
		t.Error("meet must let a disproof dominate")
	}
}

func TestAttributeSetDigitInvariant(t *testing.T) {
	for d := 0; d <= 7; d++ {
		set, ok := FromDigit(d)
		if !ok {
			t.Fatalf("FromDigit(%d) rejected", d)
		}

		var want int
		if set.MayAbnormallyExit {
			want += 1
		}
		if set.MutablyConst {
			want += 2
		}
		if set.RegistersResource {
			want += 4
		}
		if want != d || set.Digit() != d {
			t.Errorf("digit invariant broken for %d: reconstructed %d, Digit() %d", d, want, set.Digit())
		}
	}

	if _, ok := FromDigit(8); ok {
		t.Error("FromDigit must reject 8")
	}
	if _, ok := FromDigit(-1); ok {
		t.Error("FromDigit must reject negatives")
	}
}
