package transfer

import (
	"bytes"
	"io"
	"testing"
)

// newBareVM returns a VM with an interpreter attached but no program
// loaded, enough to execute individual stack/string instructions
// directly.
func newBareVM(out io.Writer) *VM {
	vm := NewVM(out)
	vm.interp = NewInterpreter(vm)
	return vm
}

func TestExecuteCmpFamily(t *testing.T) {
	cases := []struct {
		name string
		op   OpCode
		a, b string
		want bool
	}{
		{"cmp equal", OpCmp, "gat", "gat", true},
		{"cmp unequal", OpCmp, "gat", "Gat", false},
		{"cmpi folds case", OpCmpi, "gat", "GAT", true},
		{"cmpi unequal", OpCmpi, "gat", "gos", false},
		{"cmp-substr hit", OpCmpSubstr, "at", "gat<n>", true},
		{"cmp-substr miss", OpCmpSubstr, "ax", "gat<n>", false},
		{"cmpi-substr folds case", OpCmpiSubstr, "AT", "gat<n>", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			vm := newBareVM(io.Discard)
			vm.stack.Push(c.b)
			vm.stack.Push(c.a)
			if err := vm.interp.Execute(Instruction{Op: c.op}); err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if got := vm.stack.PopBool(); got != c.want {
				t.Errorf("%s(%q, %q) = %v, want %v", c.name, c.a, c.b, got, c.want)
			}
		})
	}
}

func TestExecuteInAndAffixes(t *testing.T) {
	cases := []struct {
		name  string
		op    OpCode
		value string
		list  string
		want  bool
	}{
		{"in exact member", OpIn, "gat", "gos|gat|can", true},
		{"in non-member", OpIn, "gata", "gos|gat|can", false},
		{"in-ig folds case", OpInIg, "GAT", "gos|gat", true},
		{"begins-with hit", OpBeginsWith, "gatet", "gos|gat", true},
		{"begins-with miss", OpBeginsWith, "ca", "gos|gat", false},
		{"begins-with empty word", OpBeginsWith, "", "gos|gat", false},
		{"begins-with-ig", OpBeginsWithIg, "GATET", "gat", true},
		{"ends-with hit", OpEndsWith, "esgat", "gat|gos", true},
		{"ends-with-ig", OpEndsWithIg, "esGAT", "gat", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			vm := newBareVM(io.Discard)
			vm.stack.Push(c.value)
			vm.stack.Push(c.list)
			if err := vm.interp.Execute(Instruction{Op: c.op}); err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if got := vm.stack.PopBool(); got != c.want {
				t.Errorf("%s(%q in %q) = %v, want %v", c.name, c.value, c.list, got, c.want)
			}
		})
	}
}

func TestExecuteLogic(t *testing.T) {
	vm := newBareVM(io.Discard)

	vm.stack.PushBool(true)
	vm.stack.PushBool(true)
	vm.stack.PushBool(false)
	vm.interp.Execute(Instruction{Op: OpAnd, IntOp1: 3})
	if vm.stack.PopBool() {
		t.Error("and over a false operand must be false")
	}

	vm.stack.PushBool(false)
	vm.stack.PushBool(true)
	vm.interp.Execute(Instruction{Op: OpOr, IntOp1: 2})
	if !vm.stack.PopBool() {
		t.Error("or over a true operand must be true")
	}

	vm.stack.PushBool(false)
	vm.interp.Execute(Instruction{Op: OpNot})
	if !vm.stack.PopBool() {
		t.Error("not false must be true")
	}
}

func TestExecuteConcatAndOut(t *testing.T) {
	var buf bytes.Buffer
	vm := newBareVM(&buf)

	vm.stack.Push("a")
	vm.stack.Push("b")
	vm.stack.Push("c")
	vm.interp.Execute(Instruction{Op: OpConcat, IntOp1: 3})
	if got := vm.stack.Pop(); got != "abc" {
		t.Errorf("concat 3 = %q, want %q", got, "abc")
	}

	vm.stack.Push("x")
	vm.stack.Push("y")
	vm.interp.Execute(Instruction{Op: OpOut, IntOp1: 2})
	if got := buf.String(); got != "xy" {
		t.Errorf("out 2 wrote %q, want %q", got, "xy")
	}
}

func TestExecuteLuEmptyBodyPushesNothing(t *testing.T) {
	vm := newBareVM(io.Discard)
	vm.stack.Push("")
	vm.interp.Execute(Instruction{Op: OpLu, IntOp1: 1})
	if got := vm.stack.Pop(); got != "" {
		t.Errorf("lu over empty body = %q, want empty (no bare ^$ sentinels)", got)
	}
}

func TestExecuteMluJoinsWithPlus(t *testing.T) {
	vm := newBareVM(io.Discard)
	vm.stack.Push("^el<det>$")
	vm.stack.Push("^gat<n>$")
	vm.interp.Execute(Instruction{Op: OpMlu, IntOp1: 2})
	if got, want := vm.stack.Pop(), "^el<det>+gat<n>$"; got != want {
		t.Errorf("mlu 2 = %q, want %q", got, want)
	}
}

func TestExecuteChunkTransferWrapsContentInBraces(t *testing.T) {
	vm := newBareVM(io.Discard)
	vm.stage = Transfer
	vm.stack.Push("nom")
	vm.stack.Push("<SN>")
	vm.stack.Push("^gat<n>$")
	vm.interp.Execute(Instruction{Op: OpChunk, IntOp1: 3})
	if got, want := vm.stack.Pop(), "^nom<SN>{^gat<n>$}$"; got != want {
		t.Errorf("chunk 3 in transfer = %q, want %q", got, want)
	}
}

func TestExecuteChunkInterchunkContentKeepsOwnBraces(t *testing.T) {
	vm := newBareVM(io.Discard)
	vm.stage = Interchunk
	vm.stack.Push("nom")
	vm.stack.Push("<SN>")
	vm.stack.Push("{^gat<n>$}")
	vm.interp.Execute(Instruction{Op: OpChunk, IntOp1: 3})
	if got, want := vm.stack.Pop(), "^nom<SN>{^gat<n>$}$"; got != want {
		t.Errorf("chunk 3 in interchunk = %q, want %q", got, want)
	}
}

func TestExecuteStorevAndPushVar(t *testing.T) {
	vm := newBareVM(io.Discard)
	vm.stack.Push("number")
	vm.stack.Push("pl")
	vm.interp.Execute(Instruction{Op: OpStorev})
	if got := vm.variables["number"]; got != "pl" {
		t.Fatalf("variables[number] = %q after storev, want %q", got, "pl")
	}
	if err := vm.interp.Execute(Instruction{Op: OpPushVar, Op1: "number"}); err != nil {
		t.Fatalf("push-var error: %v", err)
	}
	if got := vm.stack.Pop(); got != "pl" {
		t.Errorf("push-var number = %q, want %q", got, "pl")
	}
}

func TestExecutePushVarStrictMode(t *testing.T) {
	vm := NewVM(io.Discard, WithStrictVariables(true))
	vm.interp = NewInterpreter(vm)
	err := vm.interp.Execute(Instruction{Op: OpPushVar, Op1: "undeclared"})
	if err == nil {
		t.Fatal("push-var of an undeclared variable in strict mode must fail")
	}
	if vm.status != Failed {
		t.Errorf("status = %v after interpreter error, want Failed", vm.status)
	}
}

func TestExecuteAppendConcatenatesOntoVariable(t *testing.T) {
	vm := newBareVM(io.Discard)
	vm.variables["acc"] = "start"
	vm.stack.Push("acc")
	vm.stack.Push("-a")
	vm.stack.Push("-b")
	vm.interp.Execute(Instruction{Op: OpAppend, IntOp1: 2})
	if got := vm.variables["acc"]; got != "start-a-b" {
		t.Errorf("variables[acc] = %q after append 2, want %q", got, "start-a-b")
	}
}

func TestExecuteCaseOps(t *testing.T) {
	vm := newBareVM(io.Discard)

	vm.stack.Push("Gat")
	vm.interp.Execute(Instruction{Op: OpCaseOf})
	if got := vm.stack.Pop(); got != "Aa" {
		t.Errorf("case-of Gat = %q, want Aa", got)
	}

	vm.stack.Push("gat")
	vm.stack.Push("AA")
	vm.interp.Execute(Instruction{Op: OpModifyCase})
	if got := vm.stack.Pop(); got != "GAT" {
		t.Errorf("modify-case(gat, AA) = %q, want GAT", got)
	}

	// modify-case is idempotent for a fixed case tag.
	vm.stack.Push("GAT")
	vm.stack.Push("AA")
	vm.interp.Execute(Instruction{Op: OpModifyCase})
	if got := vm.stack.Pop(); got != "GAT" {
		t.Errorf("modify-case applied twice = %q, want unchanged GAT", got)
	}
}

func TestExecuteJumpsModifyPC(t *testing.T) {
	vm := newBareVM(io.Discard)
	vm.interp.Execute(Instruction{Op: OpJmp, IntOp1: 7})
	if vm.pc != 7 {
		t.Fatalf("pc after jmp 7 = %d, want 7", vm.pc)
	}

	vm.pc = 0
	vm.stack.PushBool(false)
	vm.interp.Execute(Instruction{Op: OpJz, IntOp1: 5})
	if vm.pc != 5 {
		t.Errorf("pc after jz on false = %d, want 5", vm.pc)
	}

	vm.pc = 0
	vm.stack.PushBool(true)
	vm.interp.Execute(Instruction{Op: OpJz, IntOp1: 5})
	if vm.pc != 1 {
		t.Errorf("pc after jz on true = %d, want fallthrough 1", vm.pc)
	}

	vm.pc = 0
	vm.stack.PushBool(true)
	vm.interp.Execute(Instruction{Op: OpJnz, IntOp1: 3})
	if vm.pc != 3 {
		t.Errorf("pc after jnz on true = %d, want 3", vm.pc)
	}
}

func TestExecuteUnknownOpcodeFails(t *testing.T) {
	vm := newBareVM(io.Discard)
	if err := vm.interp.Execute(Instruction{Op: OpCode(9999)}); err == nil {
		t.Fatal("an out-of-range opcode must fail the dispatch loop")
	}
}

func TestStripQuotes(t *testing.T) {
	if got := stripQuotes(`"whole"`); got != "whole" {
		t.Errorf("stripQuotes = %q, want %q", got, "whole")
	}
	if got := stripQuotes("plain"); got != "plain" {
		t.Errorf("stripQuotes must pass unquoted text through, got %q", got)
	}
	if got := stripQuotes(""); got != "" {
		t.Errorf("stripQuotes(\"\") = %q, want empty", got)
	}
}

func TestExecuteStoreListPoolAndPooledMembership(t *testing.T) {
	vm := newBareVM(io.Discard)
	vm.stack.Push(`"gos|Gat|can"`)
	vm.interp.Execute(Instruction{Op: OpStoreListPool, IntOp1: 2})

	vm.stack.Push("Gat")
	vm.interp.Execute(Instruction{Op: OpIn, Op1: "2", IntOp1: 2})
	if !vm.stack.PopBool() {
		t.Error("pooled in must match a stored option exactly")
	}

	vm.stack.Push("GAT")
	vm.interp.Execute(Instruction{Op: OpIn, Op1: "2", IntOp1: 2})
	if vm.stack.PopBool() {
		t.Error("pooled in is case-sensitive")
	}

	vm.stack.Push("GAT")
	vm.interp.Execute(Instruction{Op: OpInIg, Op1: "2", IntOp1: 2})
	if !vm.stack.PopBool() {
		t.Error("pooled inig must match against the pre-lowered copy")
	}

	vm.stack.Push("dog")
	vm.interp.Execute(Instruction{Op: OpInIg, Op1: "2", IntOp1: 2})
	if vm.stack.PopBool() {
		t.Error("pooled inig must reject a non-member")
	}
}
