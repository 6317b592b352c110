package transfer

import "strconv"

// executeConcat pops N string operands and pushes their concatenation
// verbatim (no wrapping), unlike lu/mlu/chunk which add surface
// syntax. Grounded on Interpreter::executeConcat.
func (in *Interpreter) executeConcat(instr Instruction) {
	in.vm.stack.Push(strJoinTopN(in.vm.stack, instr.IntOp1))
}

// executeLu wraps N operands as "^...$"; if that would be the empty
// lexical unit "^$" (no operands contributed any text), it pushes ""
// instead, same as the original so empty rule output doesn't leave a
// stray pair of sentinels in the stream. Grounded on Interpreter::executeLu.
func (in *Interpreter) executeLu(instr Instruction) {
	body := strJoinTopN(in.vm.stack, instr.IntOp1)
	if body == "" {
		in.vm.stack.Push("")
		return
	}
	in.vm.stack.Push("^" + body + "$")
}

// executeMlu joins N operands inside a single "^...$", stripping each
// operand's own "^...$" sentinels first and separating them with '+'.
// Grounded on Interpreter::executeMlu.
func (in *Interpreter) executeMlu(instr Instruction) {
	n := instr.IntOp1
	if n == 0 {
		in.vm.stack.Push("")
		return
	}

	parts := in.vm.stack.TopN(n)
	in.vm.stack.PopN(n)

	var b []byte
	b = append(b, '^')
	for _, p := range parts {
		inner := stripQuotes(p)
		if len(inner) >= 2 {
			inner = inner[1 : len(inner)-1]
		}
		b = append(b, inner...)
		b = append(b, '+')
	}
	b[len(b)-1] = '$'
	in.vm.stack.Push(string(b))
}

// executeChunk builds a chunk surface form from N operands: with a
// single operand it's just wrapped in "^...$"; with more, the first
// (oldest-pushed) operand is the chunk name, the second is its tag
// run, and any further operands are its content, enclosed in "{...}"
// only in the transfer stage (interchunk's chcontent already carries
// its own braces). Grounded on Interpreter::executeChunk.
func (in *Interpreter) executeChunk(instr Instruction) {
	n := instr.IntOp1
	st := in.vm.stack

	if n == 1 {
		body := stripQuotes(st.TopN(1)[0])
		st.PopN(1)
		in.vm.stack.Push("^" + body + "$")
		return
	}

	operands := st.TopN(n)
	st.PopN(n)

	name := stripQuotes(operands[0])
	tags := stripQuotes(operands[1])

	var b []byte
	b = append(b, '^')
	b = append(b, name...)
	b = append(b, tags...)

	if n > 2 {
		wrap := in.vm.stage == Transfer
		if wrap {
			b = append(b, '{')
		}
		for _, part := range operands[2:] {
			b = append(b, stripQuotes(part)...)
		}
		if wrap {
			b = append(b, '}')
		}
	}
	b = append(b, '$')
	in.vm.stack.Push(string(b))
}

// executeAppend pops N string operands, concatenates them, and appends
// (rather than overwrites) the result onto a named variable. Grounded
// on Interpreter::executeAppend.
func (in *Interpreter) executeAppend(instr Instruction) {
	ws := strJoinTopN(in.vm.stack, instr.IntOp1)
	varName := stripQuotes(in.vm.stack.Pop())
	in.vm.variables[varName] += ws
}

// executeLuCount pushes the number of inner lexical units of the
// current postchunk chunk. Grounded on Interpreter::executeLuCount.
func (in *Interpreter) executeLuCount(instr Instruction) *Error {
	if in.vm.stage != Postchunk {
		return newError("interp", "lu-count: only valid in postchunk").atLine(instr.Line)
	}
	in.vm.stack.Push(strconv.Itoa(in.currentChunkWord().LuCount()))
	return nil
}
