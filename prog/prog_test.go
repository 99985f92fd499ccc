package prog

import (
	"bytes"
	"strings"
	"testing"
)

func TestFunctionValidate(t *testing.T) {
	tests := []struct {
		name    string
		fn      *Function
		wanterr string
	}{
		{
			name: "sound function",
			fn: &Function{
				Ident:  "alloc_buf_c4",
				Params: []Param{{Name: "n", Type: "size_t"}},
				Blocks: []Block{
					{Instrs: []Instr{{Op: OpCall, Primitive: "malloc", Dest: DestReturn}}, Succs: []int{1}},
					{},
				},
			},
		},
		{
			name:    "empty identifier",
			fn:      &Function{},
			wanterr: "empty identifier",
		},
		{
			name: "successor out of range",
			fn: &Function{
				Ident:  "f",
				Blocks: []Block{{Succs: []int{3}}},
			},
			wanterr: "successor 3 out of range",
		},
		{
			name: "call names both callee and primitive",
			fn: &Function{
				Ident:  "f",
				Blocks: []Block{{Instrs: []Instr{{Op: OpCall, Callee: "g", Primitive: "abort"}}}},
			},
			wanterr: "exactly one of callee or primitive",
		},
		{
			name: "write target out of range",
			fn: &Function{
				Ident:  "f",
				Blocks: []Block{{Instrs: []Instr{{Op: OpWrite, Param: 2}}}},
			},
			wanterr: "write target 2 out of range",
		},
		{
			name: "resource out-parameter out of range",
			fn: &Function{
				Ident:         "f",
				Resource:      ResourceOutParam,
				ResourceParam: 1,
			},
			wanterr: "resource out-parameter 1 out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn.Validate()
			if tt.wanterr == "" {
				if err != nil {
					t.Fatalf("unexpected validation error: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wanterr)
			}
			if !strings.Contains(err.Error(), tt.wanterr) {
				t.Fatalf("expected error containing %q, got %q", tt.wanterr, err)
			}
		})
	}
}

func TestSnapshotWireFormat(t *testing.T) {
	snap := &Snapshot{
		Functions: []*Function{
			{
				Ident:  "raise_on_bad_input_c1",
				Pos:    Pos{File: "input.src", Line: 10, Col: 1},
				Params: []Param{{Name: "cfg", Type: "config", Pointer: true, Const: true}},
				Blocks: []Block{
					{Instrs: []Instr{{Op: OpCall, Primitive: "raise", Pos: Pos{File: "input.src", Line: 12, Col: 5}}}},
				},
			},
			{
				Ident: "noop_c0",
				Blocks: []Block{
					{},
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := WriteSnapshot(&buf, snap); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	got, err := ReadSnapshot(&buf)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}

	if len(got.Functions) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(got.Functions))
	}
	if got.Functions[0].Ident != "raise_on_bad_input_c1" {
		t.Errorf("first function identifier mismatch: %q", got.Functions[0].Ident)
	}
	if !got.Functions[0].Params[0].Const {
		t.Error("const qualification lost on the wire")
	}
	if got.Functions[0].Blocks[0].Instrs[0].Primitive != "raise" {
		t.Error("primitive tag lost on the wire")
	}
}

func TestReadSnapshotRejectsDuplicates(t *testing.T) {
	snap := &Snapshot{
		Functions: []*Function{
			{Ident: "f", Blocks: []Block{{}}},
			{Ident: "f", Blocks: []Block{{}}},
		},
	}

	var buf bytes.Buffer
	if err := WriteSnapshot(&buf, snap); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	if _, err := ReadSnapshot(&buf); err == nil || !strings.Contains(err.Error(), "duplicate function identifier") {
		t.Fatalf("expected duplicate identifier rejection, got %v", err)
	}
}
