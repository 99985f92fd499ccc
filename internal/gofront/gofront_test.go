package gofront

import (
	"os"
	"path/filepath"
	"testing"

	"cfacheck/policy"
	"cfacheck/prog"
)

const fixture = `package demo

import "os"

type cache_entry struct {
	hits int
	data []byte
}

func fail_now() {
	os.Exit(2)
}

func spawn_c1(path *string) {
	fail_now()
}

func shielded_c0() {
	protect(func() {
		os.Exit(1)
	})
}

func bump_c1(entry *cache_entry) {
	entry.hits++
}

func wipe(entry *cache_entry) {
	entry.data = nil
	n := 0
	n++
	_ = n
}

func produce_c4() *cache_entry {
	return alloc_entry()
}

func fill_c4(dst *cache_entry) {
	*dst = cache_entry{}
}

func external_helper_c1(n int)
`

func loadFixture(t *testing.T) *prog.Snapshot {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "demo.go"), []byte(fixture), 0o644); err != nil {
		t.Fatal(err)
	}

	pol, err := policy.Parse([]byte(`
abnormalTransferPrimitives:
  - os.Exit
  - panic
guardPrimitives:
  - protect
resourceAllocationPrimitives:
  - alloc_entry
resourceRegistrationPrimitives:
  - registry_add
hiddenFieldAnnotations:
  cache_entry:
    - hits
`))
	if err != nil {
		t.Fatalf("parse policy: %v", err)
	}

	snap, err := Load(dir, pol)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := snap.Validate(); err != nil {
		t.Fatalf("lowered snapshot must validate: %v", err)
	}

	return snap
}

func findCall(t *testing.T, fn *prog.Function, callee, primitive string) *prog.Instr {
	t.Helper()

	for bi := range fn.Blocks {
		for ii := range fn.Blocks[bi].Instrs {
			in := &fn.Blocks[bi].Instrs[ii]
			if in.Op == prog.OpCall && in.Callee == callee && in.Primitive == primitive {
				return in
			}
		}
	}

	t.Fatalf("%s: no call with callee=%q primitive=%q", fn.Ident, callee, primitive)
	return nil
}

func TestLoadLowersDeclarations(t *testing.T) {
	snap := loadFixture(t)
	byIdent := snap.ByIdent()

	for _, ident := range []string{
		"fail_now", "spawn_c1", "shielded_c0", "bump_c1",
		"wipe", "produce_c4", "fill_c4", "external_helper_c1",
	} {
		if byIdent[ident] == nil {
			t.Errorf("missing function %s", ident)
		}
	}

	spawn := byIdent["spawn_c1"]
	if len(spawn.Params) != 1 || !spawn.Params[0].Pointer || spawn.Params[0].Type != "string" {
		t.Errorf("spawn_c1 params lowered wrong: %+v", spawn.Params)
	}

	if ext := byIdent["external_helper_c1"]; len(ext.Blocks) != 0 {
		t.Errorf("declaration-only function must stay opaque, got %d blocks", len(ext.Blocks))
	}
}

func TestLoadResolvesCalls(t *testing.T) {
	snap := loadFixture(t)
	byIdent := snap.ByIdent()

	in := findCall(t, byIdent["fail_now"], "", "os.Exit")
	if in.Guarded {
		t.Error("unshielded os.Exit must not be guarded")
	}

	findCall(t, byIdent["spawn_c1"], "fail_now", "")
}

func TestLoadGuardRegions(t *testing.T) {
	snap := loadFixture(t)

	in := findCall(t, snap.ByIdent()["shielded_c0"], "", "os.Exit")
	if !in.Guarded {
		t.Error("call inside protect(func(){...}) must be guarded")
	}
}

func TestLoadAttributesWrites(t *testing.T) {
	snap := loadFixture(t)
	byIdent := snap.ByIdent()

	var hit *prog.Instr
	bump := byIdent["bump_c1"]
	for bi := range bump.Blocks {
		for ii := range bump.Blocks[bi].Instrs {
			in := &bump.Blocks[bi].Instrs[ii]
			if in.Op == prog.OpWrite {
				hit = in
			}
		}
	}
	if hit == nil {
		t.Fatal("bump_c1: increment not lowered as a write")
	}
	if hit.Param != 0 || hit.Type != "cache_entry" || hit.Field != "hits" {
		t.Errorf("bump_c1 write attributed wrong: %+v", hit)
	}

	var locals, paramWrites int
	wipe := byIdent["wipe"]
	for bi := range wipe.Blocks {
		for _, in := range wipe.Blocks[bi].Instrs {
			if in.Op != prog.OpWrite {
				continue
			}
			switch in.Param {
			case prog.WriteLocal:
				locals++
			case 0:
				paramWrites++
				if in.Field != "data" {
					t.Errorf("wipe parameter write field = %q", in.Field)
				}
			}
		}
	}
	if paramWrites != 1 {
		t.Errorf("wipe: expected one parameter write, got %d", paramWrites)
	}
	if locals == 0 {
		t.Error("wipe: local rebindings must lower as local writes")
	}
}

func TestLoadAllocationDestinations(t *testing.T) {
	snap := loadFixture(t)
	byIdent := snap.ByIdent()

	in := findCall(t, byIdent["produce_c4"], "", "alloc_entry")
	if in.Dest != prog.DestReturn {
		t.Errorf("returned allocation dest = %v", in.Dest)
	}

	fill := byIdent["fill_c4"]
	var store *prog.Instr
	for bi := range fill.Blocks {
		for ii := range fill.Blocks[bi].Instrs {
			if fill.Blocks[bi].Instrs[ii].Op == prog.OpWrite {
				store = &fill.Blocks[bi].Instrs[ii]
			}
		}
	}
	if store == nil || store.Param != 0 {
		t.Errorf("fill_c4: store through out-parameter attributed wrong: %+v", store)
	}
}

func TestLoadMissingDirectory(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Error("expected an error for a missing directory")
	}
}
