package transfer

import "strings"

// executeCmp/executeCmpi compare the top two string operands for
// equality, case-sensitively or not. Grounded on Interpreter::executeCmp
// / executeCmpi.
func (in *Interpreter) executeCmp(instr Instruction) {
	op1 := stripQuotes(in.vm.stack.Pop())
	op2 := stripQuotes(in.vm.stack.Pop())
	in.vm.stack.PushBool(op1 == op2)
}

func (in *Interpreter) executeCmpi(instr Instruction) {
	op1 := toLowerStr(stripQuotes(in.vm.stack.Pop()))
	op2 := toLowerStr(stripQuotes(in.vm.stack.Pop()))
	in.vm.stack.PushBool(op1 == op2)
}

// executeCmpSubstr/executeCmpiSubstr test whether op1 occurs anywhere
// inside op2.
func (in *Interpreter) executeCmpSubstr(instr Instruction) {
	op1 := stripQuotes(in.vm.stack.Pop())
	op2 := stripQuotes(in.vm.stack.Pop())
	in.vm.stack.PushBool(strings.Contains(op2, op1))
}

func (in *Interpreter) executeCmpiSubstr(instr Instruction) {
	op1 := toLowerStr(stripQuotes(in.vm.stack.Pop()))
	op2 := toLowerStr(stripQuotes(in.vm.stack.Pop()))
	in.vm.stack.PushBool(strings.Contains(op2, op1))
}

// matchesAnyAlternative reports whether value equals (in/inig) or
// affixes (begins-with/ends-with) one of list's '|'-separated options,
// via the supplied per-option predicate.
func matchesAnyAlternative(list string, match func(option string) bool) bool {
	for _, option := range strings.Split(list, "|") {
		if match(option) {
			return true
		}
	}
	return false
}

// executeStoreListPool caches a '|'-separated option list under the
// instruction's pool index, with a pre-lowered copy for inig, so rule
// bodies can test membership against it without re-splitting the list
// on every execution. Emitted into the preprocess section alongside
// addtrie.
func (in *Interpreter) executeStoreListPool(instr Instruction) {
	list := stripQuotes(in.vm.stack.Pop())
	in.vm.listPool.Store(instr.IntOp1, strings.Split(list, "|"))
}

// executeIn/executeInig test exact membership. With an operand, the
// list comes from the pool slot store-list-pool filled; without one,
// it is popped as a '|'-separated string.
func (in *Interpreter) executeIn(instr Instruction) {
	if instr.Op1 != "" {
		value := stripQuotes(in.vm.stack.Pop())
		in.vm.stack.PushBool(containsString(in.vm.listPool.Ref(instr.IntOp1), value))
		return
	}
	list := stripQuotes(in.vm.stack.Pop())
	value := stripQuotes(in.vm.stack.Pop())
	in.vm.stack.PushBool(matchesAnyAlternative(list, func(option string) bool {
		return option == value
	}))
}

func (in *Interpreter) executeInig(instr Instruction) {
	if instr.Op1 != "" {
		value := toLowerStr(stripQuotes(in.vm.stack.Pop()))
		in.vm.stack.PushBool(containsString(in.vm.listPool.RefLowered(instr.IntOp1), value))
		return
	}
	list := toLowerStr(stripQuotes(in.vm.stack.Pop()))
	value := toLowerStr(stripQuotes(in.vm.stack.Pop()))
	in.vm.stack.PushBool(matchesAnyAlternative(list, func(option string) bool {
		return option == value
	}))
}

func containsString(options []string, value string) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}

// beginsWith/endsWith guard on an empty word the same way the original
// does (an empty word never begins or ends with anything).
func (in *Interpreter) executeBeginsWith(instr Instruction) {
	prefixes := stripQuotes(in.vm.stack.Pop())
	word := stripQuotes(in.vm.stack.Pop())
	in.vm.stack.PushBool(word != "" && matchesAnyAlternative(prefixes, func(p string) bool {
		return strings.HasPrefix(word, p)
	}))
}

func (in *Interpreter) executeBeginsWithIg(instr Instruction) {
	prefixes := toLowerStr(stripQuotes(in.vm.stack.Pop()))
	word := toLowerStr(stripQuotes(in.vm.stack.Pop()))
	in.vm.stack.PushBool(word != "" && matchesAnyAlternative(prefixes, func(p string) bool {
		return strings.HasPrefix(word, p)
	}))
}

func (in *Interpreter) executeEndsWith(instr Instruction) {
	suffixes := stripQuotes(in.vm.stack.Pop())
	word := stripQuotes(in.vm.stack.Pop())
	in.vm.stack.PushBool(word != "" && matchesAnyAlternative(suffixes, func(s string) bool {
		return strings.HasSuffix(word, s)
	}))
}

func (in *Interpreter) executeEndsWithIg(instr Instruction) {
	suffixes := toLowerStr(stripQuotes(in.vm.stack.Pop()))
	word := toLowerStr(stripQuotes(in.vm.stack.Pop()))
	in.vm.stack.PushBool(word != "" && matchesAnyAlternative(suffixes, func(s string) bool {
		return strings.HasSuffix(word, s)
	}))
}

// executeAnd/executeOr read the top N boolean operands without popping
// them individually, then replace the whole run with a single result;
// executeNot inverts the top boolean. Grounded on Interpreter::executeAnd
// / executeOr / executeNot, which scan SystemStack's relative(N)..end()
// range the same way.
func (in *Interpreter) executeAnd(instr Instruction) {
	st := in.vm.stack
	vals := st.TopNInt(instr.IntOp1)
	result := true
	for _, v := range vals {
		if v == 0 {
			result = false
			break
		}
	}
	st.PopN(instr.IntOp1)
	st.PushBool(result)
}

func (in *Interpreter) executeOr(instr Instruction) {
	st := in.vm.stack
	vals := st.TopNInt(instr.IntOp1)
	result := false
	for _, v := range vals {
		if v != 0 {
			result = true
			break
		}
	}
	st.PopN(instr.IntOp1)
	st.PushBool(result)
}

func (in *Interpreter) executeNot(instr Instruction) {
	in.vm.stack.PushBool(!in.vm.stack.PopBool())
}
