package transfer

// Interpreter executes one Instruction at a time against its owning
// VM's stacks, word table and variables. Grounded on interpreter.{h,cc}.
type Interpreter struct {
	vm         *VM
	modifiedPC bool
}

// NewInterpreter returns an Interpreter bound to vm.
func NewInterpreter(vm *VM) *Interpreter {
	return &Interpreter{vm: vm}
}

// modifyPC sets the VM's PC directly and marks it as already
// advanced, so Execute's trailing PC++ is skipped for this
// instruction. Grounded on Interpreter::modifyPC.
func (in *Interpreter) modifyPC(newPC int) {
	in.vm.pc = newPC
	in.modifiedPC = true
}

// Execute runs one instruction, dispatching on its opcode, then
// advances PC unless the instruction already modified it (jumps,
// calls, returns).
func (in *Interpreter) Execute(instr Instruction) *Error {
	var err *Error

	switch instr.Op {
	case OpPushStr:
		in.executePushStr(instr)
	case OpPushInt:
		in.executePushInt(instr)
	case OpPushVar:
		err = in.executePushVar(instr)
	case OpClipTL:
		err = in.executeCliptl(instr)
	case OpClip:
		err = in.executeClip(instr)
	case OpLu:
		in.executeLu(instr)
	case OpCall:
		err = in.executeCall(instr)
	case OpCmp:
		in.executeCmp(instr)
	case OpJz:
		in.executeJz(instr)
	case OpJmp:
		in.executeJmp(instr)
	case OpPushsb:
		in.executePushsb(instr)
	case OpChunk:
		in.executeChunk(instr)
	case OpStorev:
		in.executeStorev(instr)
	case OpStoreListPool:
		in.executeStoreListPool(instr)
	case OpOut:
		in.executeOut(instr)
	case OpStorecl:
		err = in.executeStorecl(instr)
	case OpModifyCase:
		in.executeModifyCase(instr)
	case OpAddTrie:
		err = in.executeAddtrie(instr)
	case OpConcat:
		in.executeConcat(instr)
	case OpCaseOf:
		in.executeCaseOf(instr)
	case OpClipSL:
		err = in.executeClipsl(instr)
	case OpCmpi:
		in.executeCmpi(instr)
	case OpNot:
		in.executeNot(instr)
	case OpStoretl:
		err = in.executeStoretl(instr)
	case OpPushbl:
		in.executePushbl(instr)
	case OpOr:
		in.executeOr(instr)
	case OpGetCaseFrom:
		err = in.executeGetCaseFrom(instr)
	case OpAnd:
		in.executeAnd(instr)
	case OpInIg:
		in.executeInig(instr)
	case OpMlu:
		in.executeMlu(instr)
	case OpAppend:
		in.executeAppend(instr)
	case OpRet:
		err = in.executeRet(instr)
	case OpLuCount:
		err = in.executeLuCount(instr)
	case OpStoresl:
		err = in.executeStoresl(instr)
	case OpIn:
		in.executeIn(instr)
	case OpJnz:
		in.executeJnz(instr)
	case OpBeginsWith:
		in.executeBeginsWith(instr)
	case OpBeginsWithIg:
		in.executeBeginsWithIg(instr)
	case OpEndsWith:
		in.executeEndsWith(instr)
	case OpEndsWithIg:
		in.executeEndsWithIg(instr)
	case OpCmpSubstr:
		in.executeCmpSubstr(instr)
	case OpCmpiSubstr:
		in.executeCmpiSubstr(instr)
	default:
		err = newError("interp", "unhandled opcode %d", int(instr.Op)).atLine(instr.Line)
	}

	if err != nil {
		in.vm.status = Failed
		return err
	}

	if !in.modifiedPC {
		in.vm.pc++
	} else {
		in.modifiedPC = false
	}
	return nil
}

// getSourceLexicalUnit resolves a source-side clip target for every
// stage, given a rule-local 1-based (0 for the chunk itself, in
// postchunk) position. Grounded on Interpreter::getSourceLexicalUnit.
func (in *Interpreter) getSourceLexicalUnit(relativePos int) clipTarget {
	vm := in.vm
	switch vm.stage {
	case Transfer:
		realPos := vm.currentWords[relativePos-1]
		return vm.words[realPos].Bilingual.Source
	case Interchunk:
		realPos := vm.currentWords[relativePos-1]
		return vm.words[realPos].Chunk.Chunk
	default: // Postchunk
		word := vm.words[vm.currentWords[0]].Chunk

		var realPos int
		if len(vm.currentWords) > 1 {
			realPos = vm.currentWords[relativePos]
		} else {
			realPos = relativePos
		}

		if realPos == 0 {
			return word.Chunk
		}
		lu := word.ContentLexicalUnit(realPos - 1)
		if lu == nil {
			return nil
		}
		return lu
	}
}

// getTargetLexicalUnit resolves a target-side clip target; only
// meaningful in the transfer stage. Grounded on
// Interpreter::getTargetLexicalUnit.
func (in *Interpreter) getTargetLexicalUnit(relativePos int) clipTarget {
	realPos := in.vm.currentWords[relativePos-1]
	return in.vm.words[realPos].Bilingual.Target
}

// getNOperands pops n integer operands and returns them in the order
// they were pushed (oldest first). Grounded on
// Interpreter::getNOperands.
func (in *Interpreter) getNOperands(n int) []int {
	operands := make([]int, n)
	for i := n - 1; i >= 0; i-- {
		operands[i] = in.vm.stack.PopInt()
	}
	return operands
}

// pushCaseToStack pushes a Case's textual tag ("aa"/"Aa"/"AA").
// Grounded on Interpreter::pushCaseToStack.
func (in *Interpreter) pushCaseToStack(c Case) {
	in.vm.stack.Push(c.String())
}

func (in *Interpreter) executePushStr(instr Instruction) {
	in.vm.stack.Push(instr.Op1)
}

func (in *Interpreter) executePushInt(instr Instruction) {
	in.vm.stack.PushInt(instr.IntOp1)
}

// executePushVar reads a variable by name, auto-vivifying it to "" on
// first reference unless WithStrictVariables was set, in which case an
// undeclared variable is a load-time-style error instead.
func (in *Interpreter) executePushVar(instr Instruction) *Error {
	name := instr.Op1
	v, ok := in.vm.variables[name]
	if !ok {
		if in.vm.opts.strictVariables {
			return newError("interp", "reference to undeclared variable %q", name).atLine(instr.Line)
		}
		in.vm.variables[name] = ""
	}
	in.vm.stack.Push(v)
	return nil
}

func (in *Interpreter) executeStorev(instr Instruction) {
	value := in.vm.stack.Pop()
	varName := stripQuotes(in.vm.stack.Pop())
	in.vm.variables[varName] = value
}

func (in *Interpreter) executeJmp(instr Instruction) {
	in.modifyPC(instr.IntOp1)
}

func (in *Interpreter) executeJz(instr Instruction) {
	if !in.vm.stack.PopBool() {
		in.modifyPC(instr.IntOp1)
	}
}

func (in *Interpreter) executeJnz(instr Instruction) {
	if in.vm.stack.PopBool() {
		in.modifyPC(instr.IntOp1)
	}
}

func (in *Interpreter) executePushbl(instr Instruction) {
	in.vm.stack.Push(" ")
}

// executePushsb pushes the superblank at relativePos, remapped the
// way interchunk/transfer pattern positions are remapped to the
// global superblank vector, or the chunk's own inner blank in
// postchunk. Grounded on Interpreter::executePushsb.
func (in *Interpreter) executePushsb(instr Instruction) {
	relativePos := instr.IntOp1
	vm := in.vm

	if vm.stage == Postchunk {
		word := vm.words[vm.currentWords[0]].Chunk
		vm.stack.Push(word.Blank(relativePos))
		return
	}

	actualPos := relativePos + vm.currentWords[0]
	if actualPos >= 0 && actualPos < len(vm.superblanks) {
		vm.stack.Push(vm.superblanks[actualPos])
	} else {
		vm.stack.Push("")
	}
}

func (in *Interpreter) executeCaseOf(instr Instruction) {
	value := in.vm.stack.Pop()
	in.pushCaseToStack(getCase(value))
}

func (in *Interpreter) executeGetCaseFrom(instr Instruction) *Error {
	pos := in.vm.stack.PopInt()
	lu := in.getSourceLexicalUnit(pos)
	if lu == nil {
		return newError("interp", "get-case-from: no lexical unit at position %d", pos).atLine(instr.Line)
	}
	in.pushCaseToStack(getCase(lu.GetNamedPart("lem")))
	return nil
}

func (in *Interpreter) executeModifyCase(instr Instruction) {
	newCase := in.vm.stack.Pop()
	container := in.vm.stack.Pop()
	in.vm.stack.Push(changeCaseString(container, newCase))
}

func (in *Interpreter) executeOut(instr Instruction) {
	ws := strJoinTopN(in.vm.stack, instr.IntOp1)
	in.vm.WriteOutput(ws)
}

// strJoinTopN pops n string operands off st and returns their
// concatenation in push order, the shared body of append/concat/
// lu/out. Grounded on the repeated `relative(N)..end()`
// accumulation loop in interpreter.cc.
func strJoinTopN(st *SystemStack, n int) string {
	parts := st.TopN(n)
	st.PopN(n)
	var out []byte
	for _, p := range parts {
		out = append(out, stripQuotes(p)...)
	}
	return string(out)
}

// executeRet, executeCall and executeAddtrie live in interp_control.go
// alongside the call-stack/code-unit plumbing they share with vm_run.go.
