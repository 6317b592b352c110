// Package codegen turns a stream of rule-file events into the
// line-oriented assembly the transfer package's loader consumes.
// Grounded on assembly_code_generator.{h,cc}: genHeader and the three
// genXStart stage markers are real upstream logic, but the great bulk
// of that file's Gen* methods (clip, call-macro, choose/when, the
// boolean and string-builder families) are empty one-line stub bodies
// in the retrieved source — the markup-to-event front end that would
// have driven them was never finished either. This package is this
// repo's own synthesis of what those methods need to emit, derived
// from the instruction set's actual operand conventions in
// ../../instruction.go and ../../interp*.go rather than from any
// upstream body to translate.
//
// The package splits the compiler's back half in two: EventHandler
// consumes the element events a markup parser produces (resolving
// def-cat/def-attr/def-list references, tracking the macro symbol
// table, lowering choose/when to labeled jumps) and Generator owns the
// assembly text itself (label allocation, the pattern-section splice,
// one method per instruction family). The parser feeding the handler
// is an external collaborator and stays out of scope.
package codegen

import (
	"fmt"
	"strconv"
	"strings"
)

type labelKind int

const (
	labelChoose labelKind = iota
	labelWhen
)

// Generator accumulates assembly text across two buffers: code (the
// variable-default prologue, then every rule's action block and every
// macro body, in visitation order) and patternsCode (every addtrie
// call, gathered separately since the assembly format requires all
// patterns grouped together ahead of any action block). patternSection
// marks where code's prologue ends and its action/macro tail begins,
// recorded by EndCodeSection once the caller has finished emitting
// variable defaults.
type Generator struct {
	code           []string
	patternsCode   []string
	patternSection int
	debug          bool

	nextLabel [2]int

	pendingWhenLabels []string
	chooseEndLabels   []string

	patternItems int
}

// New returns a Generator ready to emit one assembly file.
func New() *Generator {
	return &Generator{}
}

// SetDebug toggles emission of a trailing debug comment after each
// rule's action block, mirroring the -g/--debug flag's intent from
// apertium_compiler.cc without replicating its interactive stepper
// (out of scope per the CLI-depth non-goal).
func (g *Generator) SetDebug(debug bool) { g.debug = debug }

func (g *Generator) addCode(line string) {
	g.code = append(g.code, line)
}

// GenRaw appends a line of already-assembled instruction text verbatim
// to the code buffer, for callers (such as transferc's manifest
// loader) that source a rule or macro body pre-expressed in the
// target assembly mini-language rather than building it instruction
// by instruction through the other Gen* calls.
func (g *Generator) GenRaw(line string) {
	if line == "" {
		return
	}
	g.addCode(line)
}

func (g *Generator) addPatternsCode(line string) {
	g.patternsCode = append(g.patternsCode, line)
}

func (g *Generator) allocLabel(kind labelKind) int {
	n := g.nextLabel[kind]
	g.nextLabel[kind]++
	return n
}

// GenHeader writes the two mandatory header lines ParseHeader expects:
// "#<assembly>" followed by "#<name attr="val" ...>". Grounded on
// AssemblyCodeGenerator::genHeader, one of the few methods the
// retrieved source actually implements.
func (g *Generator) GenHeader(event Event) {
	g.addCode("#<assembly>")

	var b strings.Builder
	b.WriteString("#<")
	b.WriteString(event.Name)
	for k, v := range event.Attrs {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(v)
		b.WriteString(`"`)
	}
	b.WriteString(">")
	g.addCode(b.String())
}

func (g *Generator) GenTransferStart(event Event)   { g.GenHeader(event) }
func (g *Generator) GenInterchunkStart(event Event) { g.GenHeader(event) }
func (g *Generator) GenPostchunkStart(event Event)  { g.GenHeader(event) }

// GenDefVar emits a storev for a variable's default value, if one was
// given; push-var's own auto-vivification (see interp.go's
// executePushVar) already covers the "" case, so an empty default
// needs no code at all.
func (g *Generator) GenDefVar(name, defaultValue string) {
	if defaultValue == "" {
		return
	}
	g.addCode(`push-str "` + name + `"`)
	g.addCode(`push-str "` + defaultValue + `"`)
	g.addCode("storev")
}

// EndCodeSection closes the variable-default prologue with the literal
// sentinel line the loader scans for (loader.go's loadCodeSection),
// followed by the label it jumps to so backpatching never sees an
// undefined reference, then records the splice point for patternsCode.
func (g *Generator) EndCodeSection() {
	g.addCode("jmp section_rules_start")
	g.addCode("section_rules_start:")
	g.patternSection = len(g.code)
}

// GenDefMacroStart/End wrap a macro body in the labels the loader's
// macro-number assignment keys off (loader.go's labelMacroName); the
// loader itself assigns the sequential macro number the first time it
// sees the start label, so the generator never needs to know it.
func (g *Generator) GenDefMacroStart(name string) { g.addCode("macro_" + name + "_start:") }
func (g *Generator) GenDefMacroEnd(name string)   { g.addCode("macro_" + name + "_end:") }

// GenPatternStart resets the per-rule pattern-item counter.
func (g *Generator) GenPatternStart() { g.patternItems = 0 }

// GenPatternItem emits one word-position's '|'-separated alternative
// set as a quoted push-str into the patterns buffer. Grounded on
// SystemTrie::AddPattern's expectation of one pushed string per
// pattern part (trie.go).
func (g *Generator) GenPatternItem(alternatives []string) {
	g.addPatternsCode(`push-str "` + strings.Join(alternatives, "|") + `"`)
	g.patternItems++
}

// GenPatternEnd closes the pattern with the addtrie call, tagged with
// the rule number it terminates in. Grounded on Interpreter::executeAddtrie
// popping a push-int count then that many push-str operands.
func (g *Generator) GenPatternEnd(ruleNumber int) {
	g.addPatternsCode("push-int " + strconv.Itoa(g.patternItems))
	g.addPatternsCode("addtrie rule_" + strconv.Itoa(ruleNumber))
}

// GenActionStart/End wrap a rule's action code in the labels
// AssemblyLoader keys its rule-number extraction off (labelNumber).
func (g *Generator) GenActionStart(ruleNumber int) {
	g.addCode("action_" + strconv.Itoa(ruleNumber) + "_start:")
}

func (g *Generator) GenActionEnd(ruleNumber int) {
	if g.debug {
		g.addCode("# end of rule " + strconv.Itoa(ruleNumber))
	}
	g.addCode("action_" + strconv.Itoa(ruleNumber) + "_end:")
}

// GenLit pushes a literal string operand, used for fixed tag or text
// fragments inside a clip part list or string-builder chain.
func (g *Generator) GenLit(text string) {
	g.addCode(`push-str "` + text + `"`)
}

// GenInt pushes a literal integer operand (a word position, a
// superblank index, an operand count).
func (g *Generator) GenInt(n int) {
	g.addCode("push-int " + strconv.Itoa(n))
}

// GenBlank emits a single-space push (pushbl) or, when the source
// element names a position, the corresponding superblank push (pushsb).
func (g *Generator) GenBlank()             { g.addCode("pushbl") }
func (g *Generator) GenSuperblank(pos int) { g.addCode("pushsb " + strconv.Itoa(pos)) }

// GenVarRead/GenVarWriteName/GenStorev implement a variable read and
// the two-push protocol a write needs: the name pushed first, the
// value pushed by whatever expression precedes GenStorev, matching
// Interpreter::executeStorev's pop order (interp.go).
func (g *Generator) GenVarRead(name string)      { g.addCode("push-var " + name) }
func (g *Generator) GenVarWriteName(name string) { g.addCode(`push-str "` + name + `"`) }
func (g *Generator) GenStorev()                  { g.addCode("storev") }

// GenClip/GenStoreClip emit the clip family's shared push-int(pos) +
// push-str(parts) prologue, then the instruction itself (one of
// "clip", "clipsl", "cliptl"), with its link-to operand attached
// directly when present. Grounded on Interpreter::handleClipInstruction
// / handleStoreClipInstruction's pop order (interp_clip.go).
func (g *Generator) GenClip(kind string, pos int, parts []string, linkTo string) {
	g.addCode(fmt.Sprintf("push-int %d", pos))
	g.addCode(`push-str "` + strings.Join(parts, "|") + `"`)
	if linkTo != "" {
		g.addCode(kind + ` "` + linkTo + `"`)
	} else {
		g.addCode(kind)
	}
}

func (g *Generator) GenStoreClip(kind string, pos int, parts []string, value string) {
	g.addCode(fmt.Sprintf("push-int %d", pos))
	g.addCode(`push-str "` + strings.Join(parts, "|") + `"`)
	g.addCode(`push-str "` + value + `"`)
	g.addCode(kind)
}

// GenCallMacro emits the word-position operands, their count, then the
// call itself. Grounded on Interpreter::executeCall's pop order
// (interp_control.go): push-int per position, push-int N, call name.
func (g *Generator) GenCallMacro(name string, positions []int) {
	for _, pos := range positions {
		g.addCode(fmt.Sprintf("push-int %d", pos))
	}
	g.addCode(fmt.Sprintf("push-int %d", len(positions)))
	g.addCode("call " + name)
}

// GenConcat/GenLu/GenMlu/GenChunk/GenOut/GenAnd/GenOr all consume the
// top N string (or boolean) operands their children already pushed.
// Grounded on the shared relative(N)..end() accumulation idiom in
// interp.go/interp_strings.go/interp_compare.go.
func (g *Generator) GenConcat(n int) { g.addCode(fmt.Sprintf("concat %d", n)) }
func (g *Generator) GenLu(n int)     { g.addCode(fmt.Sprintf("lu %d", n)) }
func (g *Generator) GenMlu(n int)    { g.addCode(fmt.Sprintf("mlu %d", n)) }
func (g *Generator) GenChunk(n int)  { g.addCode(fmt.Sprintf("chunk %d", n)) }
func (g *Generator) GenOut(n int)    { g.addCode(fmt.Sprintf("out %d", n)) }
func (g *Generator) GenAnd(n int)    { g.addCode(fmt.Sprintf("and %d", n)) }
func (g *Generator) GenOr(n int)     { g.addCode(fmt.Sprintf("or %d", n)) }
func (g *Generator) GenNot()         { g.addCode("not") }

// GenAppendStart/End bracket an append's value expression with the
// variable-name push executeAppend expects underneath its N operands.
func (g *Generator) GenAppendStart(varName string) { g.addCode(`push-str "` + varName + `"`) }
func (g *Generator) GenAppendEnd(n int)            { g.addCode(fmt.Sprintf("append %d", n)) }

// GenGetCaseFrom emits the position push plus the instruction.
func (g *Generator) GenGetCaseFrom(pos int) {
	g.addCode(fmt.Sprintf("push-int %d", pos))
	g.addCode("get-case-from")
}

func (g *Generator) GenCaseOf() { g.addCode("case-of") }

// GenModifyCase assumes its two operands (the container, then the new
// case tag) have already been pushed in that order by the caller,
// matching Interpreter::executeModifyCase's pop order.
func (g *Generator) GenModifyCase() { g.addCode("modify-case") }

func (g *Generator) GenLuCount() { g.addCode("lu-count") }

// GenEqual/GenIn/GenBeginsWith/GenEndsWith/GenContainsSubstring select
// the case-sensitive or case-folded mnemonic.
func (g *Generator) GenEqual(ignoreCase bool) { g.addCode(pick(ignoreCase, "cmpi", "cmp")) }
func (g *Generator) GenIn(ignoreCase bool)    { g.addCode(pick(ignoreCase, "inig", "in")) }
func (g *Generator) GenBeginsWith(ignoreCase bool) {
	g.addCode(pick(ignoreCase, "begins-with-ig", "begins-with"))
}
func (g *Generator) GenEndsWith(ignoreCase bool) {
	g.addCode(pick(ignoreCase, "ends-with-ig", "ends-with"))
}
func (g *Generator) GenContainsSubstring(ignoreCase bool) {
	g.addCode(pick(ignoreCase, "cmpi-substr", "cmp-substr"))
}

func pick(ignoreCase bool, ig, plain string) string {
	if ignoreCase {
		return ig
	}
	return plain
}

// GenChooseStart begins a choose block: nothing to emit yet, but a
// fresh "choose_N_end" label is reserved so GenWhenEnd's fallthrough
// jump and the eventual GenChooseEnd agree on where it lands.
func (g *Generator) GenChooseStart() {
	id := g.allocLabel(labelChoose)
	g.chooseEndLabels = append(g.chooseEndLabels, "choose_"+strconv.Itoa(id)+"_end")
}

// GenWhenTest closes out a when branch's boolean test (already pushed
// by the caller) with a jz to a freshly allocated "next branch" label.
func (g *Generator) GenWhenTest() {
	id := g.allocLabel(labelWhen)
	label := "when_" + strconv.Itoa(id)
	g.addCode("jz " + label)
	g.pendingWhenLabels = append(g.pendingWhenLabels, label)
}

// GenWhenEnd closes a when branch's body: jump past the rest of the
// choose, then define the label the failing test jumped to so the
// next branch (when or otherwise) starts there.
func (g *Generator) GenWhenEnd() {
	end := g.chooseEndLabels[len(g.chooseEndLabels)-1]
	g.addCode("jmp " + end)
	n := len(g.pendingWhenLabels) - 1
	label := g.pendingWhenLabels[n]
	g.pendingWhenLabels = g.pendingWhenLabels[:n]
	g.addCode(label + ":")
}

// GenOtherwiseStart marks the fallback branch; it runs unconditionally
// once control reaches it; no label of its own is needed since the
// preceding GenWhenEnd already placed one there.
func (g *Generator) GenOtherwiseStart() {}

// GenChooseEnd defines the label every branch's body jumps past to.
func (g *Generator) GenChooseEnd() {
	n := len(g.chooseEndLabels) - 1
	end := g.chooseEndLabels[n]
	g.chooseEndLabels = g.chooseEndLabels[:n]
	g.addCode(end + ":")
}

// WritableCode assembles the final file: the code prologue, the
// patterns section spliced in at EndCodeSection's recorded split
// point, then the rest of code (every action and macro block).
// Grounded on AssemblyCodeGenerator::getWritableCode.
func (g *Generator) WritableCode() string {
	var b strings.Builder
	for _, line := range g.code[:g.patternSection] {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("patterns_start:\n")
	for _, line := range g.patternsCode {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("patterns_end:\n")
	for _, line := range g.code[g.patternSection:] {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
