package transfer

import "strconv"

// executeCall resolves the macro's word operands to global word-table
// indices (remapped differently for postchunk, see SPEC_FULL.md §4.6),
// saves the caller's resume PC into the current call-stack frame, and
// pushes a new macro frame. Grounded on Interpreter::executeCall.
func (in *Interpreter) executeCall(instr Instruction) *Error {
	vm := in.vm

	// Save the instruction *after* this call, not this one, or ret
	// would resume straight back into the same call.
	vm.callStack.SavePC(vm.pc + 1)

	n := vm.stack.PopInt()
	operands := in.getNOperands(n)

	var words []int
	if vm.stage == Postchunk {
		words = append([]int{vm.currentWords[0]}, operands...)
	} else {
		words = make([]int, len(operands))
		for i, pos := range operands {
			words[i] = vm.currentWords[pos-1]
		}
	}

	macroNumber := instr.IntOp1
	if err := vm.pushFrame(CallFrame{Section: MacrosSection, Number: macroNumber, Words: words}); err != nil {
		return err.atLine(instr.Line)
	}
	in.modifyPC(vm.pc)
	return nil
}

// executeRet pops the current frame and resumes the caller at the PC
// SavePC recorded when the call was made. Grounded on
// Interpreter::executeRet.
func (in *Interpreter) executeRet(instr Instruction) *Error {
	vm := in.vm
	vm.callStack.Pop()
	top := vm.callStack.Top()
	unit, err := vm.codeUnitFor(*top)
	if err != nil {
		return err.atLine(instr.Line)
	}
	vm.current = unit
	vm.currentWords = top.Words
	in.modifyPC(top.PC)
	return nil
}

// executeAddtrie pops a pattern (a sequence of lemma/tag tokens, with
// any literal quote characters stripped) and inserts it into the
// system trie under the rule number carried as the instruction's
// operand. Grounded on Interpreter::executeAddtrie.
func (in *Interpreter) executeAddtrie(instr Instruction) *Error {
	n := in.vm.stack.PopInt()

	pattern := make([]string, n)
	for i := n - 1; i >= 0; i-- {
		pattern[i] = replaceAll(in.vm.stack.Pop(), "\"", "")
	}

	ruleNumber, convErr := strconv.Atoi(instr.Op1)
	if convErr != nil {
		return wrapError("interp", convErr, "addtrie rule operand %q", instr.Op1).atLine(instr.Line)
	}
	in.vm.trie.AddPattern(pattern, ruleNumber)
	return nil
}
