package codegen

import (
	"fmt"
	"strconv"
	"strings"

	transfer "github.com/apertium-go/transfer"
)

// EventHandler consumes the start/end events of a rule file and drives
// a Generator, resolving category, attribute and list definitions as
// it goes so every pattern-item and clip reaching the generator is
// already expressed in the assembly's own terms. It is the half of the
// compiler this spec owns: the markup parser producing the events is
// an external collaborator. Grounded on event_handler.cc (the stage
// handlers it retains verbatim) and code_generator.h's full method
// surface for everything the retained copy left as a stub.
type EventHandler struct {
	gen     *Generator
	symbols *SymbolTable

	stage           string
	transferDefault string

	defCats  map[string][]string
	defAttrs map[string][]string
	defLists map[string][]string

	open []*Event

	curDefName string

	nextRule int
	curRule  int

	codeSectionClosed bool

	// letTarget records, per open let or modify-case element, the
	// store instruction its first child committed the element to emit
	// once the value expression has been generated.
	letTarget map[*Event]string

	callMacroName   string
	callMacroParams []int
}

// NewEventHandler returns a handler that emits through g.
func NewEventHandler(g *Generator) *EventHandler {
	return &EventHandler{
		gen:       g,
		symbols:   NewSymbolTable(),
		defCats:   make(map[string][]string),
		defAttrs:  make(map[string][]string),
		defLists:  make(map[string][]string),
		letTarget: make(map[*Event]string),
	}
}

// Symbols exposes the macro symbol table collected so far, for drivers
// that want to report what a compiled file declares.
func (h *EventHandler) Symbols() *SymbolTable { return h.symbols }

// Stage reports the transfer stage the root element declared
// ("transfer", "interchunk" or "postchunk"), empty before the root
// event has been seen.
func (h *EventHandler) Stage() string { return h.stage }

// TransferDefault reports the unmatched-word output mode a transfer
// root element declared ("lu" or "chunk").
func (h *EventHandler) TransferDefault() string { return h.transferDefault }

func (h *EventHandler) errorf(ev *Event, format string, args ...interface{}) *transfer.Error {
	e := &transfer.Error{Sender: "codegen", Msg: fmt.Sprintf(format, args...)}
	if ev != nil {
		e.Line = ev.Line
	}
	return e
}

func (h *EventHandler) current() *Event {
	if len(h.open) == 0 {
		return nil
	}
	return h.open[len(h.open)-1]
}

// StartElement processes one element's start event. The handler keeps
// its own open-element stack, so the caller only supplies a fresh
// Event per element; parent/child linking happens here.
func (h *EventHandler) StartElement(ev *Event) error {
	if parent := h.current(); parent != nil {
		parent.addChild(ev)
	}
	h.open = append(h.open, ev)

	switch ev.Name {
	case "transfer":
		h.stage = "transfer"
		h.transferDefault = "lu"
		if ev.Attr("default") == "chunk" {
			h.transferDefault = "chunk"
		}
		h.gen.GenTransferStart(*ev)
	case "interchunk":
		h.stage = "interchunk"
		h.gen.GenInterchunkStart(*ev)
	case "postchunk":
		h.stage = "postchunk"
		h.gen.GenPostchunkStart(*ev)

	case "def-cat", "def-attr", "def-list":
		h.curDefName = ev.Attr("n")
		if h.curDefName == "" {
			return h.errorf(ev, "%s is missing its name attribute", ev.Name)
		}
	case "cat-item":
		h.defCats[h.curDefName] = append(h.defCats[h.curDefName],
			ev.Attr("lemma")+tagsToPattern(ev.Attr("tags")))
	case "attr-item":
		h.defAttrs[h.curDefName] = append(h.defAttrs[h.curDefName],
			tagsToPattern(ev.Attr("tags")))
	case "list-item":
		h.defLists[h.curDefName] = append(h.defLists[h.curDefName], ev.Attr("v"))

	case "def-var":
		h.gen.GenDefVar(ev.Attr("n"), ev.Attr("v"))

	case "section-def-macros", "section-rules":
		h.closeCodeSection()
	case "def-macro":
		name := ev.Attr("n")
		npar, _ := strconv.Atoi(ev.Attr("npar"))
		h.symbols.AddMacro(name, npar)
		h.gen.GenDefMacroStart(name)

	case "rule":
		h.curRule = h.nextRule
		h.nextRule++
	case "pattern":
		h.gen.GenPatternStart()
	case "pattern-item":
		cat := ev.Attr("n")
		alternatives, ok := h.defCats[cat]
		if !ok {
			return h.errorf(ev, "pattern-item references undefined category %q", cat)
		}
		h.gen.GenPatternItem(alternatives)
	case "action":
		h.gen.GenActionStart(h.curRule)

	case "choose":
		h.gen.GenChooseStart()
	case "otherwise":
		h.gen.GenOtherwiseStart()

	case "call-macro":
		h.callMacroName = ev.Attr("n")
		h.callMacroParams = h.callMacroParams[:0]
	case "with-param":
		pos, err := strconv.Atoi(ev.Attr("pos"))
		if err != nil {
			return h.errorf(ev, "with-param position %q is not a number", ev.Attr("pos"))
		}
		h.callMacroParams = append(h.callMacroParams, pos)

	case "clip":
		return h.startClip(ev)
	case "var":
		return h.startVar(ev)
	case "lit":
		h.gen.GenLit(ev.Attr("v"))
	case "lit-tag":
		h.gen.GenLit(tagsToPattern(ev.Attr("v")))
	case "b":
		if ev.HasAttr("pos") {
			pos, err := strconv.Atoi(ev.Attr("pos"))
			if err != nil {
				return h.errorf(ev, "blank position %q is not a number", ev.Attr("pos"))
			}
			h.gen.GenSuperblank(pos)
		} else {
			h.gen.GenBlank()
		}
	case "list":
		name := ev.Attr("n")
		items, ok := h.defLists[name]
		if !ok {
			return h.errorf(ev, "list references undefined def-list %q", name)
		}
		h.gen.GenLit(strings.Join(items, "|"))

	case "case-of":
		pos, err := strconv.Atoi(ev.Attr("pos"))
		if err != nil {
			return h.errorf(ev, "case-of position %q is not a number", ev.Attr("pos"))
		}
		parts, perr := h.resolveParts(ev, ev.Attr("part"))
		if perr != nil {
			return perr
		}
		h.gen.GenClip(h.clipReadKind(ev.Attr("side")), pos, []string{parts}, "")
		h.gen.GenCaseOf()
	case "lu-count":
		h.gen.GenLuCount()

	case "chunk":
		switch {
		case ev.HasAttr("name"):
			h.gen.GenLit(ev.Attr("name"))
		case ev.HasAttr("namefrom"):
			h.gen.GenVarRead(ev.Attr("namefrom"))
		}
	case "append":
		h.gen.GenAppendStart(ev.Attr("n"))
	}
	return nil
}

// EndElement processes the end event of the innermost open element.
func (h *EventHandler) EndElement() error {
	ev := h.current()
	if ev == nil {
		return h.errorf(nil, "end event with no open element")
	}
	h.open = h.open[:len(h.open)-1]

	switch ev.Name {
	case "def-cat", "def-attr", "def-list":
		h.curDefName = ""
	case "def-macro":
		h.gen.GenDefMacroEnd(ev.Attr("n"))

	case "pattern":
		h.gen.GenPatternEnd(h.curRule)
	case "action":
		h.gen.GenActionEnd(h.curRule)

	case "choose":
		h.gen.GenChooseEnd()
	case "test":
		h.gen.GenWhenTest()
	case "when":
		h.gen.GenWhenEnd()

	case "let":
		instr, ok := h.letTarget[ev]
		if !ok {
			return h.errorf(ev, "let needs a var or clip as its first child")
		}
		delete(h.letTarget, ev)
		h.gen.GenRaw(instr)
	case "modify-case":
		instr, ok := h.letTarget[ev]
		if !ok {
			return h.errorf(ev, "modify-case needs a var or clip as its first child")
		}
		delete(h.letTarget, ev)
		h.gen.GenModifyCase()
		h.gen.GenRaw(instr)
	case "get-case-from":
		pos, err := strconv.Atoi(ev.Attr("pos"))
		if err != nil {
			return h.errorf(ev, "get-case-from position %q is not a number", ev.Attr("pos"))
		}
		h.gen.GenGetCaseFrom(pos)
		h.gen.GenModifyCase()

	case "call-macro":
		if !h.symbols.MacroExists(h.callMacroName) {
			return h.errorf(ev, "call-macro references undefined macro %q", h.callMacroName)
		}
		if want := h.symbols.Macro(h.callMacroName).NumParams; want != len(h.callMacroParams) {
			return h.errorf(ev, "macro %q takes %d parameters, called with %d",
				h.callMacroName, want, len(h.callMacroParams))
		}
		h.gen.GenCallMacro(h.callMacroName, h.callMacroParams)

	case "equal":
		h.gen.GenEqual(caseless(ev))
	case "begins-with", "begins-with-list":
		h.gen.GenBeginsWith(caseless(ev))
	case "ends-with", "ends-with-list":
		h.gen.GenEndsWith(caseless(ev))
	case "contains-substring":
		h.gen.GenContainsSubstring(caseless(ev))
	case "in":
		h.gen.GenIn(caseless(ev))
	case "and":
		h.gen.GenAnd(ev.NumChildren())
	case "or":
		h.gen.GenOr(ev.NumChildren())
	case "not":
		h.gen.GenNot()

	case "concat":
		h.gen.GenConcat(ev.NumChildren())
	case "tags":
		// A chunk's tag children each left one operand; fold them into
		// the single tag-run operand executeChunk expects.
		if n := ev.NumChildren(); n > 1 {
			h.gen.GenConcat(n)
		}
	case "lu":
		h.gen.GenLu(ev.NumChildren())
	case "mlu":
		h.gen.GenMlu(ev.NumChildren())
	case "chunk":
		n := ev.NumChildren()
		if ev.HasAttr("name") || ev.HasAttr("namefrom") {
			n++
		}
		h.gen.GenChunk(n)
	case "out":
		h.gen.GenOut(ev.NumChildren())
	case "append":
		h.gen.GenAppendEnd(ev.NumChildren())
	}
	return nil
}

// closeCodeSection ends the variable-default prologue the first time a
// macro or rule section begins, whichever the file puts first.
func (h *EventHandler) closeCodeSection() {
	if h.codeSectionClosed {
		return
	}
	h.gen.EndCodeSection()
	h.codeSectionClosed = true
}

// startClip emits a clip read, or just the position/part prologue when
// the clip is the write target of an enclosing let or modify-case (the
// store instruction itself is chosen here but emitted at the parent's
// end event, after the value expression has been generated).
// A modify-case target is additionally read back, since modify-case
// rewrites its container in place.
func (h *EventHandler) startClip(ev *Event) error {
	pos, err := strconv.Atoi(ev.Attr("pos"))
	if err != nil {
		return h.errorf(ev, "clip position %q is not a number", ev.Attr("pos"))
	}
	parts, perr := h.resolveParts(ev, ev.Attr("part"))
	if perr != nil {
		return perr
	}
	side := ev.Attr("side")

	parent := ev.Parent()
	switch {
	case parent != nil && parent.Name == "let" && parent.NumChildren() == 1:
		h.gen.GenInt(pos)
		h.gen.GenLit(parts)
		h.letTarget[parent] = h.clipStoreKind(side)
	case parent != nil && parent.Name == "modify-case" && parent.NumChildren() == 1:
		h.gen.GenInt(pos)
		h.gen.GenLit(parts)
		h.gen.GenClip(h.clipReadKind(side), pos, []string{parts}, "")
		h.letTarget[parent] = h.clipStoreKind(side)
	default:
		h.gen.GenClip(h.clipReadKind(side), pos, []string{parts}, ev.Attr("link-to"))
	}
	return nil
}

// startVar emits a variable read, or the name push a let/modify-case
// write target needs underneath its value.
func (h *EventHandler) startVar(ev *Event) error {
	name := ev.Attr("n")
	parent := ev.Parent()
	switch {
	case parent != nil && parent.Name == "let" && parent.NumChildren() == 1:
		h.gen.GenVarWriteName(name)
		h.letTarget[parent] = "storev"
	case parent != nil && parent.Name == "modify-case" && parent.NumChildren() == 1:
		h.gen.GenVarWriteName(name)
		h.gen.GenVarRead(name)
		h.letTarget[parent] = "storev"
	default:
		h.gen.GenVarRead(name)
	}
	return nil
}

// clipReadKind selects the clip mnemonic per stage and side: the
// transfer stage addresses the two halves of a bilingual word
// (clipsl/cliptl, matched against the whole form), the chunk stages
// have only the one lexical unit per position (clip).
func (h *EventHandler) clipReadKind(side string) string {
	if h.stage == "transfer" {
		if side == "tl" {
			return "cliptl"
		}
		return "clipsl"
	}
	return "clip"
}

func (h *EventHandler) clipStoreKind(side string) string {
	if h.stage == "transfer" {
		if side == "tl" {
			return "storetl"
		}
		return "storesl"
	}
	return "storecl"
}

// resolveParts maps a clip's part attribute to the '|'-joined
// alternative set the interpreter matches against: the built-in part
// names pass through unchanged, anything else must name a def-attr.
func (h *EventHandler) resolveParts(ev *Event, part string) (string, *transfer.Error) {
	switch part {
	case "whole", "lem", "lemh", "lemq", "tags", "chcontent", "content":
		return part, nil
	}
	alternatives, ok := h.defAttrs[part]
	if !ok {
		return "", h.errorf(ev, "clip part %q is neither built in nor a def-attr", part)
	}
	return strings.Join(alternatives, "|"), nil
}

// tagsToPattern rewrites the markup's dotted tag syntax ("det.def")
// into the assembly's angle-bracket runs ("<det><def>"); the markup's
// "*" piece becomes the tag wildcard "<*>". An empty attribute stays
// empty so a lemma-only cat-item contributes no tag text.
func tagsToPattern(tags string) string {
	if tags == "" {
		return ""
	}
	var b strings.Builder
	for _, piece := range strings.Split(tags, ".") {
		b.WriteByte('<')
		b.WriteString(piece)
		b.WriteByte('>')
	}
	return b.String()
}

func caseless(ev *Event) bool {
	return ev.Attr("caseless") == "yes"
}
