package transfer

import "strings"

// stripQuotes removes literal '"' characters from a link-to operand,
// mirroring the loader's VMWstringUtils::replace(linkTo, "\"", "") call
// right before a clip instruction dereferences it.
func stripQuotes(s string) string {
	if s == "" {
		return s
	}
	return strings.ReplaceAll(s, "\"", "")
}

// clipValue implements the shared body of clip/clipsl/cliptl: a named
// part read ("whole", "lem", ...) short-circuits unless a link-to
// operand is present, in which case every clip instruction instead
// hunts for the longest '|'-separated alternative occurring anywhere
// in lemmaAndTags — returning the literal link-to tag on the first hit
// when one was supplied, or the longest match itself otherwise.
// Grounded on Interpreter::handleClipInstruction.
func clipValue(parts string, lu clipTarget, lemmaAndTags, linkTo string) string {
	notLinkTo := linkTo == ""
	if notLinkTo {
		switch parts {
		case "whole", "lem", "lemh", "lemq", "tags", "chcontent", "content":
			return lu.GetNamedPart(parts)
		}
	}

	longest := ""
	for _, part := range strings.Split(parts, "|") {
		if !strings.Contains(lemmaAndTags, part) {
			continue
		}
		if !notLinkTo {
			return linkTo
		}
		if len(part) > len(longest) {
			longest = part
		}
	}
	return longest
}

func (in *Interpreter) executeClip(instr Instruction) *Error {
	parts := stripQuotes(in.vm.stack.Pop())
	pos := in.vm.stack.PopInt()
	lu := in.getSourceLexicalUnit(pos)
	if lu == nil {
		return newError("interp", "clip: no lexical unit at position %d", pos).atLine(instr.Line)
	}
	lemmaAndTags := lu.GetNamedPart("lem") + lu.GetNamedPart("tags")
	in.vm.stack.Push(clipValue(parts, lu, lemmaAndTags, stripQuotes(instr.Op1)))
	return nil
}

func (in *Interpreter) executeClipsl(instr Instruction) *Error {
	parts := stripQuotes(in.vm.stack.Pop())
	pos := in.vm.stack.PopInt()
	lu := in.getSourceLexicalUnit(pos)
	if lu == nil {
		return newError("interp", "clipsl: no lexical unit at position %d", pos).atLine(instr.Line)
	}
	in.vm.stack.Push(clipValue(parts, lu, lu.GetWhole(), stripQuotes(instr.Op1)))
	return nil
}

func (in *Interpreter) executeCliptl(instr Instruction) *Error {
	parts := stripQuotes(in.vm.stack.Pop())
	pos := in.vm.stack.PopInt()
	lu := in.getTargetLexicalUnit(pos)
	if lu == nil {
		return newError("interp", "cliptl: no lexical unit at position %d", pos).atLine(instr.Line)
	}
	in.vm.stack.Push(clipValue(parts, lu, lu.GetWhole(), stripQuotes(instr.Op1)))
	return nil
}

// currentChunkWord returns the ChunkWord the current rule/macro frame
// is executing against; only meaningful in the postchunk stage.
func (in *Interpreter) currentChunkWord() *ChunkWord {
	return in.vm.words[in.vm.currentWords[0]].Chunk
}

// storeClip implements the shared body of storecl/storesl/storetl: the
// five named parts overwrite directly, "chcontent" additionally
// triggers a postchunk re-parse, and anything else is treated as a
// '|'-separated tag alternation and rewritten via ModifyTag. A postchunk
// mutation of an inner lexical unit is spliced back into the owning
// chunk's raw chcontent text so the two stay consistent. Grounded on
// Interpreter::handleStoreClipInstruction.
func (in *Interpreter) storeClip(lu clipTarget, parts, lemmaAndTags, value string) {
	oldWhole := lu.GetWhole()
	changed := false

	switch parts {
	case "whole", "lem", "lemh", "lemq", "tags":
		lu.SetNamedPart(parts, value)
		changed = true
	case "chcontent":
		lu.SetNamedPart(parts, value)
		if in.vm.stage == Postchunk {
			in.currentChunkWord().parseChunkContent()
		}
	default:
		longest := ""
		for _, part := range strings.Split(parts, "|") {
			if strings.Contains(lemmaAndTags, part) && len(part) > len(longest) {
				longest = part
			}
		}
		if longest != "" {
			lu.ModifyTag(longest, value)
			changed = true
		}
	}

	if changed && in.vm.stage == Postchunk {
		in.currentChunkWord().updateChunkContent(oldWhole, lu.GetWhole())
	}
}

func (in *Interpreter) executeStorecl(instr Instruction) *Error {
	value := stripQuotes(in.vm.stack.Pop())
	parts := stripQuotes(in.vm.stack.Pop())
	pos := in.vm.stack.PopInt()
	lu := in.getSourceLexicalUnit(pos)
	if lu == nil {
		return newError("interp", "storecl: no lexical unit at position %d", pos).atLine(instr.Line)
	}
	in.storeClip(lu, parts, lu.GetNamedPart("lem")+lu.GetNamedPart("tags"), value)
	return nil
}

func (in *Interpreter) executeStoresl(instr Instruction) *Error {
	value := stripQuotes(in.vm.stack.Pop())
	parts := stripQuotes(in.vm.stack.Pop())
	pos := in.vm.stack.PopInt()
	lu := in.getSourceLexicalUnit(pos)
	if lu == nil {
		return newError("interp", "storesl: no lexical unit at position %d", pos).atLine(instr.Line)
	}
	in.storeClip(lu, parts, lu.GetWhole(), value)
	return nil
}

func (in *Interpreter) executeStoretl(instr Instruction) *Error {
	value := stripQuotes(in.vm.stack.Pop())
	parts := stripQuotes(in.vm.stack.Pop())
	pos := in.vm.stack.PopInt()
	lu := in.getTargetLexicalUnit(pos)
	if lu == nil {
		return newError("interp", "storetl: no lexical unit at position %d", pos).atLine(instr.Line)
	}
	in.storeClip(lu, parts, lu.GetWhole(), value)
	return nil
}
