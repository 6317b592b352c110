package transfer

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// Program is everything a Loader extracts from an assembly file: the
// eagerly-loaded main code and preprocess sections, and the
// preloaded-but-not-yet-assembled rule/macro sections (see CodeUnit's
// Loaded flag and loadUnit below).
type Program struct {
	Preprocess CodeUnit
	Code       CodeUnit
	Rules      CodeSection
	Macros     CodeSection
	EndAddress int
}

// Loader streams a textual assembly file into a Program. The main code
// and preprocess sections are converted to real Instructions right
// away; rule and macro bodies are only preloaded as raw text lines and
// are lazily assembled the first time the VM calls them (see
// loadUnit). Grounded on assembly_loader.{h,cc}.
type Loader struct {
	scopes          []*Scope
	macroNumber     map[string]int
	macroNameByNum  map[int]string
	nextMacroNumber int
	lineNumber      int
}

// NewLoader returns a Loader ready to process one assembly file.
func NewLoader() *Loader {
	return &Loader{
		macroNumber:    make(map[string]int),
		macroNameByNum: make(map[int]string),
	}
}

func (l *Loader) pushScope() *Scope {
	s := NewScope()
	l.scopes = append(l.scopes, s)
	return s
}

func (l *Loader) popScope() {
	l.scopes = l.scopes[:len(l.scopes)-1]
}

func (l *Loader) currentScope() *Scope {
	return l.scopes[len(l.scopes)-1]
}

// Load reads a full assembly file (header lines excluded — the VM
// strips and interprets those itself, see vm.go's ParseHeader) and
// returns the assembled Program.
func (l *Loader) Load(r io.Reader) (*Program, *Error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	l.pushScope()
	defer l.popScope()

	var code CodeUnit
	if err := l.loadCodeSection(scanner, &code); err != nil {
		return nil, err
	}
	code.Loaded = true

	var preprocess CodeUnit
	var rules, macros CodeSection
	var unit CodeUnit
	justPreload := false
	macroAddr := 0

	for scanner.Scan() {
		l.lineNumber++
		line := scanner.Text()
		if line == "" {
			continue
		}
		if line[0] == '#' {
			continue
		}

		switch {
		case strings.HasPrefix(line, "patterns"):
			justPreload = false
			switch {
			case strings.HasSuffix(line, "start:"):
				unit = CodeUnit{}
			case strings.HasSuffix(line, "end:"):
				unit.Loaded = true
				preprocess = unit
				unit = CodeUnit{}
			}

		case strings.HasPrefix(line, "action"):
			justPreload = true
			switch {
			case strings.HasSuffix(line, "start:"):
				unit = CodeUnit{}
			case strings.HasSuffix(line, "end:"):
				ruleNumber, convErr := strconv.Atoi(labelNumber(line))
				if convErr != nil {
					return nil, wrapError("loader", convErr, "parsing rule number from %q", line).atLine(l.lineNumber)
				}
				unit.Loaded = false
				insertUnit(&rules, ruleNumber, unit)
				unit = CodeUnit{}
				justPreload = false
			}

		case strings.HasPrefix(line, "macro"):
			justPreload = true
			switch {
			case strings.HasSuffix(line, "start:"):
				name := labelMacroName(line)
				macroAddr = l.nextMacroNumber
				l.nextMacroNumber++
				l.macroNumber[name] = macroAddr
				l.macroNameByNum[macroAddr] = name
				unit = CodeUnit{}
			case strings.Contains(line, "end:"):
				unit.Code = append(unit.Code, Instruction{Op1: "ret", Line: l.lineNumber})
				unit.Loaded = false
				insertUnit(&macros, macroAddr, unit)
				unit = CodeUnit{}
				justPreload = false
			}

		default:
			if justPreload {
				unit.Code = append(unit.Code, Instruction{Op1: line, Line: l.lineNumber})
				continue
			}
			var instr Instruction
			instr.Line = l.lineNumber
			ok, err := l.internalRepresentation(line, &unit, &instr)
			if err != nil {
				return nil, err
			}
			if ok {
				unit.Code = append(unit.Code, instr)
				l.currentScope().nextAddress++
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, wrapError("loader", err, "reading assembly")
	}

	if err := l.currentScope().BackPatchLabels(&code); err != nil {
		return nil, annotateContext(err, "backpatching main code section")
	}

	return &Program{
		Preprocess: preprocess,
		Code:       code,
		Rules:      rules,
		Macros:     macros,
		EndAddress: len(code.Code),
	}, nil
}

// loadCodeSection eagerly assembles the leading "code" section of the
// file, up to and including the literal line "jmp section_rules_start".
func (l *Loader) loadCodeSection(scanner *bufio.Scanner, code *CodeUnit) *Error {
	for scanner.Scan() {
		l.lineNumber++
		line := scanner.Text()
		if line == "" {
			continue
		}
		if line[0] == '#' {
			continue
		}

		var instr Instruction
		instr.Line = l.lineNumber
		ok, err := l.internalRepresentation(line, code, &instr)
		if err != nil {
			return err
		}
		if ok {
			code.Code = append(code.Code, instr)
			l.currentScope().nextAddress++
		}
		if line == "jmp section_rules_start" {
			return nil
		}
	}
	return nil
}

// loadUnit assembles a preloaded rule or macro body in place: each raw
// line (stashed in Op1 by Load) is parsed in a fresh scope, labels are
// resolved, and the unit is marked Loaded. Called by the VM the first
// time a rule or macro is actually invoked.
func (l *Loader) loadUnit(unit *CodeUnit) *Error {
	raw := unit.Code
	unit.Code = nil
	l.pushScope()
	defer l.popScope()

	for _, preloaded := range raw {
		var instr Instruction
		instr.Line = preloaded.Line
		ok, err := l.internalRepresentation(preloaded.Op1, unit, &instr)
		if err != nil {
			return err
		}
		if ok {
			unit.Code = append(unit.Code, instr)
			l.currentScope().nextAddress++
		}
	}

	if err := l.currentScope().BackPatchLabels(unit); err != nil {
		return annotateContext(err, "backpatching rule or macro body")
	}
	unit.Loaded = true
	return nil
}

// internalRepresentation converts one assembly line to an Instruction.
// It returns false (with no error) for label-definition lines, which
// only register an address and emit no instruction.
func (l *Loader) internalRepresentation(line string, unit *CodeUnit, instr *Instruction) (bool, *Error) {
	var name strings.Builder
	pos := 0
	for ; pos < len(line); pos++ {
		ch := line[pos]
		if ch == ' ' || ch == '\t' || ch == '\r' {
			pos++
			break
		} else if ch == ':' {
			l.currentScope().CreateLabelAddress(name.String())
			return false, nil
		}
		name.WriteByte(ch)
	}

	op, ok := lookupOpCode(name.String())
	if !ok {
		return false, newError("loader", "unrecognized instruction: %s", line).atLine(l.lineNumber)
	}
	instr.Op = op

	var operand strings.Builder
	for ; pos < len(line); pos++ {
		ch := line[pos]
		if ch == '\n' || ch == '\r' {
			break
		}
		operand.WriteByte(ch)
	}

	hasOperand := strings.IndexByte(line, ' ') >= 0
	if hasOperand {
		opnd := operand.String()
		switch instr.Op {
		case OpAddTrie:
			instr.Op1 = labelNumber(opnd)
		case OpCall:
			num, known := l.macroNumber[opnd]
			if !known {
				cause := errors.Annotatef(errors.Errorf("macro %q is not defined", opnd), "resolving call instruction")
				return false, wrapError("loader", cause, "undefined macro reference").atLine(l.lineNumber)
			}
			instr.Op1 = strconv.Itoa(num)
			instr.IntOp1 = num
		case OpJmp, OpJz, OpJnz:
			resolved := l.currentScope().ReferenceLabel(opnd, unit)
			instr.Op1 = resolved
			if n, convErr := strconv.Atoi(resolved); convErr == nil {
				instr.IntOp1 = n
			}
		case OpPushInt:
			n, convErr := strconv.Atoi(opnd)
			if convErr != nil {
				return false, wrapError("loader", convErr, "push-int operand %q", opnd).atLine(l.lineNumber)
			}
			instr.Op1 = opnd
			instr.IntOp1 = n
		case OpAnd, OpOr, OpConcat, OpLu, OpMlu, OpChunk, OpAppend, OpOut, OpPushsb,
			OpStoreListPool, OpIn, OpInIg:
			n, convErr := strconv.Atoi(opnd)
			if convErr != nil {
				return false, wrapError("loader", convErr, "%s operand %q", name.String(), opnd).atLine(l.lineNumber)
			}
			instr.Op1 = opnd
			instr.IntOp1 = n
		default:
			instr.Op1 = opnd
		}
	}

	return true, nil
}

// labelNumber extracts the number between the first and second '_' of
// a label, e.g. "action_12_start:" -> "12". Grounded on
// AssemblyLoader::getRuleNumber; also used for addtrie operands, which
// embed the rule number the same way.
func labelNumber(label string) string {
	var num strings.Builder
	started := false
	for i := 0; i < len(label); i++ {
		ch := label[i]
		if ch == '_' {
			if started {
				return num.String()
			}
			started = true
		} else if started {
			num.WriteByte(ch)
		}
	}
	return num.String()
}

// labelMacroName extracts the macro name from "macro_NAME_start:"-style
// labels: everything between the first and last '_'.
func labelMacroName(label string) string {
	start := strings.IndexByte(label, '_')
	end := strings.LastIndexByte(label, '_')
	if start < 0 || end <= start {
		return ""
	}
	return label[start+1 : end]
}

func insertUnit(section *CodeSection, index int, unit CodeUnit) {
	for len(section.Units) <= index {
		section.Units = append(section.Units, CodeUnit{})
	}
	section.Units[index] = unit
}
