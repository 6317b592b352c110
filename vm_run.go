package transfer

import (
	"context"
	"strings"
)

// codeUnitFor resolves a call frame to its backing CodeUnit, lazily
// assembling it on first use (see loader.go's loadUnit). Grounded on
// the lazy half of AssemblyLoader's two-phase load discipline; the
// dispatch indirection itself (vm->setCurrentCodeUnit) was declared in
// the retrieved source but never defined, so this is this repo's own
// synthesis of it.
func (vm *VM) codeUnitFor(frame CallFrame) (*CodeUnit, *Error) {
	section := &vm.program.Rules
	kind := "rule"
	if frame.Section == MacrosSection {
		section = &vm.program.Macros
		kind = "macro"
	}

	if frame.Number < 0 || frame.Number >= len(section.Units) {
		return nil, newError("vm", "%s %d is not defined", kind, frame.Number)
	}

	unit := &section.Units[frame.Number]
	if !unit.Loaded {
		if err := vm.loader.loadUnit(unit); err != nil {
			return nil, err
		}
	}
	return unit, nil
}

// pushFrame activates frame as the running code unit: the call stack
// gains an entry, and current/currentWords/pc switch to point at it.
// Grounded on CallStack::pushCall + VM::setCurrentCodeUnit (the latter
// declared but never defined upstream, see codeUnitFor).
func (vm *VM) pushFrame(frame CallFrame) *Error {
	if vm.opts.maxCallDepth > 0 && vm.callStack.Len() >= vm.opts.maxCallDepth {
		return newError("vm", "call depth exceeded maximum of %d", vm.opts.maxCallDepth)
	}
	unit, err := vm.codeUnitFor(frame)
	if err != nil {
		return err
	}
	vm.callStack.Push(frame)
	vm.current = unit
	vm.currentWords = frame.Words
	vm.pc = 0
	return nil
}

// runUntilReturn dispatches instructions until the call stack unwinds
// back to depth: a ret from a macro frame pops the stack itself, but a
// rule's own code unit never ends in ret (the loader only appends one
// to macros, see loader.go's "macro" case), so falling off the end of
// a rule's code at exactly depth is what signals that rule is done,
// and this loop pops that frame itself.
func (vm *VM) runUntilReturn(depth int) *Error {
	for {
		if vm.callStack.Len() < depth {
			return nil
		}
		if vm.callStack.Len() == depth && vm.pc >= len(vm.current.Code) {
			vm.callStack.Pop()
			return nil
		}
		if vm.pc < 0 || vm.pc >= len(vm.current.Code) {
			return newError("vm", "program counter %d out of range", vm.pc)
		}
		if err := vm.interp.Execute(vm.current.Code[vm.pc]); err != nil {
			return err
		}
	}
}

// runRule pushes a fresh top-level frame for ruleNumber over words and
// drives it to completion, including any macros it calls along the way.
func (vm *VM) runRule(ruleNumber int, words []int) *Error {
	if vm.opts.debug {
		logf("rule %d selected over words %v", ruleNumber, words)
	}
	depth := vm.callStack.Len() + 1
	if err := vm.pushFrame(CallFrame{Section: RulesSection, Number: ruleNumber, Words: words}); err != nil {
		return err
	}
	return vm.runUntilReturn(depth)
}

// patternToken computes the trie query token for word i, which differs
// per stage (§4.7): transfer matches on the source lexical unit's whole
// form, interchunk on the chunk's lemma+tags, postchunk on the bare
// pseudolemma (chunk tags never participate in postchunk selection).
func (vm *VM) patternToken(i int) string {
	w := vm.words[i]
	switch vm.stage {
	case Transfer:
		return w.Bilingual.Source.GetWhole()
	case Interchunk:
		return w.Chunk.Chunk.GetPart(ChunkLem) + w.Chunk.Chunk.GetPart(ChunkTags)
	default: // Postchunk
		return w.Chunk.Chunk.GetPart(ChunkLem)
	}
}

// emitLeadingSuperblank writes the blank preceding word i unless it was
// already emitted as some earlier window's trailing blank, then records
// i as the last position whose blank has been emitted. Grounded on
// getUniqueSuperblank's "don't reprint the same position" guard.
func (vm *VM) emitLeadingSuperblank(i int) {
	if i != vm.lastSuperblank {
		vm.WriteOutput(vm.superblanks[i])
	}
	vm.lastSuperblank = i
}

// emitTrailingSuperblank writes the blank following a just-completed
// rule window unconditionally (a matched rule's trailing blank is
// never a duplicate of anything already printed) and records the new
// position so the following iteration's leading-blank guard sees it.
func (vm *VM) emitTrailingSuperblank(end int) {
	vm.WriteOutput(vm.superblanks[end])
	vm.lastSuperblank = end
}

// dedupeNodes removes duplicate pointers from a node set in place,
// keeping the LRLM window search from growing the candidate set
// unboundedly across repeated wildcard self-loop transitions.
func dedupeNodes(nodes []*TrieNode) []*TrieNode {
	seen := make(map[*TrieNode]bool, len(nodes))
	out := nodes[:0]
	for _, n := range nodes {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// selectLoop drives rule selection to completion: LRLM for transfer
// and interchunk, one-pattern-at-a-time for postchunk. Grounded on
// §4.7's pseudocode; VM::selectNextRule/selectNextRuleLRLM/
// processRuleEnd/processUnmatchedPattern were declared in vm.h but
// never implemented upstream, so this loop is this repo's synthesis
// of the algorithm the spec describes.
func (vm *VM) selectLoop(ctx context.Context) *Error {
	if vm.stage == Postchunk {
		return vm.selectLoopPostchunk(ctx)
	}
	return vm.selectLoopLRLM(ctx)
}

func (vm *VM) selectLoopLRLM(ctx context.Context) *Error {
	n := len(vm.words)
	i := 0
	for i < n {
		if err := ctx.Err(); err != nil {
			return wrapError("vm", err, "run canceled")
		}

		best := NaRuleNumber
		bestEnd := i

		nodes := vm.trie.GetPatternNodesFromRoot(vm.patternToken(i))
		j := i + 1
		for len(nodes) > 0 {
			if r := ruleNumberOf(nodes); r != NaRuleNumber {
				best = r
				bestEnd = j
			}
			if j == n {
				break
			}
			tok := vm.patternToken(j)
			var next []*TrieNode
			for _, node := range nodes {
				next = append(next, vm.trie.GetPatternNodes(tok, node)...)
			}
			nodes = dedupeNodes(next)
			j++
		}

		if best != NaRuleNumber {
			vm.emitLeadingSuperblank(i)
			words := make([]int, bestEnd-i)
			for k := range words {
				words[k] = i + k
			}
			if err := vm.runRule(best, words); err != nil {
				return err
			}
			vm.emitTrailingSuperblank(bestEnd)
			i = bestEnd
		} else {
			vm.emitLeadingSuperblank(i)
			vm.emitUnmatchedDefault(i)
			i++
		}
	}

	if vm.lastSuperblank != n {
		vm.emitTrailingSuperblank(n)
	}
	return nil
}

func (vm *VM) selectLoopPostchunk(ctx context.Context) *Error {
	n := len(vm.words)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return wrapError("vm", err, "run canceled")
		}

		nodes := vm.trie.GetPatternNodesFromRoot(vm.patternToken(i))
		rule := ruleNumberOf(nodes)

		if rule != NaRuleNumber {
			vm.emitLeadingSuperblank(i)
			if err := vm.runRule(rule, []int{i}); err != nil {
				return err
			}
			vm.emitTrailingSuperblank(i + 1)
		} else {
			vm.emitLeadingSuperblank(i)
			vm.emitUnmatchedDefault(i)
		}
	}

	if vm.lastSuperblank != n {
		vm.emitTrailingSuperblank(n)
	}
	return nil
}

// emitUnmatchedDefault renders the fallback output for a word no
// pattern matched, one form per stage. Grounded on the "Unmatched-
// pattern default output" rules in §4.7.
func (vm *VM) emitUnmatchedDefault(i int) {
	switch vm.stage {
	case Transfer:
		w := vm.words[i].Bilingual
		target := w.Target.GetWhole()
		if vm.dflt == DefaultLU {
			if target != "" {
				vm.WriteOutput("^" + target + "$")
			}
			return
		}
		inner := "^" + target + "$"
		if strings.HasPrefix(target, "*") {
			vm.WriteOutput("^unknown<unknown>{" + inner + "}$")
		} else {
			vm.WriteOutput("^default<default>{" + inner + "}$")
		}
	case Interchunk:
		vm.WriteOutput("^" + vm.words[i].Chunk.Chunk.GetWhole() + "$")
	default: // Postchunk
		vm.WriteOutput(vm.words[i].Chunk.Chunk.GetPart(ChunkInner))
	}
}
