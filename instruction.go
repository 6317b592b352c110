package transfer

// OpCode names a single VM instruction. The set mirrors the original
// assembly language one-for-one so the loader never needs a second
// translation table.
type OpCode int

const (
	OpAddTrie OpCode = iota
	OpAnd
	OpAppend
	OpBeginsWith
	OpBeginsWithIg
	OpOr
	OpCall
	OpClip
	OpClipSL
	OpClipTL
	OpCmpSubstr
	OpCmpiSubstr
	OpCmp
	OpCmpi
	OpConcat
	OpChunk
	OpEndsWith
	OpEndsWithIg
	OpGetCaseFrom
	OpIn
	OpInIg
	OpJmp
	OpJz
	OpJnz
	OpMlu
	OpModifyCase
	OpPushbl
	OpPushsb
	OpLu
	OpLuCount
	OpNot
	OpOut
	OpRet
	OpStorecl
	OpStoresl
	OpStoretl
	OpStorev
	OpStoreListPool
	OpCaseOf
	OpPushStr
	OpPushInt
	OpPushVar
)

var opcodeNames = map[string]OpCode{
	"addtrie":         OpAddTrie,
	"and":             OpAnd,
	"append":          OpAppend,
	"begins-with":     OpBeginsWith,
	"begins-with-ig":  OpBeginsWithIg,
	"or":              OpOr,
	"call":            OpCall,
	"clip":            OpClip,
	"clipsl":          OpClipSL,
	"cliptl":          OpClipTL,
	"cmp-substr":      OpCmpSubstr,
	"cmpi-substr":     OpCmpiSubstr,
	"cmp":             OpCmp,
	"cmpi":            OpCmpi,
	"concat":          OpConcat,
	"chunk":           OpChunk,
	"ends-with":       OpEndsWith,
	"ends-with-ig":    OpEndsWithIg,
	"get-case-from":   OpGetCaseFrom,
	"in":              OpIn,
	"inig":            OpInIg,
	"jmp":             OpJmp,
	"jz":              OpJz,
	"jnz":             OpJnz,
	"mlu":             OpMlu,
	"modify-case":     OpModifyCase,
	"pushbl":          OpPushbl,
	"pushsb":          OpPushsb,
	"lu":              OpLu,
	"lu-count":        OpLuCount,
	"not":             OpNot,
	"out":             OpOut,
	"ret":             OpRet,
	"storecl":         OpStorecl,
	"storesl":         OpStoresl,
	"storetl":         OpStoretl,
	"storev":          OpStorev,
	"store-list-pool": OpStoreListPool,
	"case-of":         OpCaseOf,
	"push":            OpPushStr, // legacy alias kept for old assembly
	"push-str":        OpPushStr,
	"push-int":        OpPushInt,
	"push-var":        OpPushVar,
}

// lookupOpCode resolves an assembly mnemonic to its OpCode.
func lookupOpCode(mnemonic string) (OpCode, bool) {
	op, ok := opcodeNames[mnemonic]
	return op, ok
}

// Instruction is a single opcode plus its operand. Op1 holds the
// textual operand (clip part name, jump label, variable name); IntOp1
// holds the numeric operand for push-int and any instruction whose
// operand was resolved to an address or index at load time.
type Instruction struct {
	Op     OpCode
	Op1    string
	IntOp1 int
	Line   int
}

// CodeUnit is the bytecode for one rule or macro body. Until Loaded is
// true, Code holds placeholder instructions whose Op1 carries the raw,
// not-yet-assembled source line (see loader.go's two-phase lazy load);
// loadUnit reparses those in place and flips the flag.
type CodeUnit struct {
	Loaded bool
	Code   []Instruction
}

// CodeSection is a collection of code units: all rules, or all
// macros, of an assembly file.
type CodeSection struct {
	Units []CodeUnit
}
