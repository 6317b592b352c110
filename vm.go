package transfer

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// TransferStage identifies which of the three transfer passes a
// program runs as. Grounded on vm.h's TRANSFER_STAGE.
type TransferStage int

const (
	Transfer TransferStage = iota
	Interchunk
	Postchunk
)

// TransferDefault controls how an unmatched word is rendered in the
// transfer stage: as a bare lexical unit or wrapped into a default
// chunk. Grounded on vm.h's TRANSFER_DEFAULT.
type TransferDefault int

const (
	DefaultLU TransferDefault = iota
	DefaultChunk
)

// Status mirrors the interpreter's run state, propagated out to the
// driver. Grounded on vm.h's VM_STATUS.
type Status int

const (
	Running Status = iota
	Halted
	Failed
)

// Word is one tokenized input word. Exactly one of Bilingual or Chunk
// is set, depending on the owning VM's stage — transfer tokenizes to
// BilingualWord, interchunk/postchunk to ChunkWord. A plain union
// struct reads more clearly in Go than the original's cast-by-stage
// raw pointer (TransferWord*).
type Word struct {
	Bilingual *BilingualWord
	Chunk     *ChunkWord
}

// VM encapsulates one end-to-end run of a transfer program: load the
// assembly, tokenize the input, run preprocess, then drive the rule
// selection loop until input is exhausted. Grounded on vm.{h,cc}; the
// selection loop itself (selectNextRule/selectNextRuleLRLM/
// processRuleEnd/processUnmatchedPattern) was declared but never
// defined in the retrieved source, so vm_run.go synthesizes it from
// the LRLM algorithm description.
type VM struct {
	stage TransferStage
	dflt  TransferDefault
	opts  Options

	stack     *SystemStack
	trie      *SystemTrie
	interp    *Interpreter
	status    Status
	program   *Program
	loader    *Loader
	callStack *CallStack

	current *CodeUnit
	pc      int

	words          []*Word
	superblanks    []string
	lastSuperblank int
	currentWords   []int

	variables map[string]string
	listPool  ListPool

	out io.Writer
}

// NewVM returns a VM ready to load a program, configured by opts.
func NewVM(out io.Writer, opts ...Option) *VM {
	o := newOptions(opts...)
	return &VM{
		opts:           o,
		stack:          NewSystemStack(),
		trie:           NewSystemTrie(),
		status:         Running,
		loader:         NewLoader(),
		callStack:      NewCallStack(),
		variables:      make(map[string]string),
		lastSuperblank: -1,
		out:            out,
	}
}

// ParseHeader reads the two mandatory header lines of an assembly
// file ("#<assembly>" and "#<transfer ...>") and configures the
// loader/stage accordingly. Grounded on VM::setCodeFile/setLoader/
// setTransferStage, except the default="chunk" detection parses the
// attribute properly instead of replicating the original's brittle
// fixed-offset substring check (see design notes).
func (vm *VM) ParseHeader(assemblyLine, transferLine string) *Error {
	if strings.TrimSpace(assemblyLine) != "#<assembly>" {
		return newError("vm", "unrecognized code file header: %q", assemblyLine)
	}

	body := strings.TrimSpace(transferLine)
	body = strings.TrimPrefix(body, "#<")
	body = strings.TrimSuffix(body, ">")

	switch {
	case strings.HasPrefix(body, "transfer"):
		vm.stage = Transfer
		if attr, ok := parseAttr(body, "default"); ok && attr == "chunk" {
			vm.dflt = DefaultChunk
		} else {
			vm.dflt = DefaultLU
		}
	case strings.HasPrefix(body, "interchunk"):
		vm.stage = Interchunk
	case strings.HasPrefix(body, "postchunk"):
		vm.stage = Postchunk
	default:
		return newError("vm", "unrecognized transfer stage header: %q", transferLine)
	}
	return nil
}

// parseAttr finds name="value" inside a header body and returns value.
func parseAttr(body, name string) (string, bool) {
	needle := name + "=\""
	idx := strings.Index(body, needle)
	if idx < 0 {
		return "", false
	}
	rest := body[idx+len(needle):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// Load reads the remainder of the code file (after the two header
// lines consumed by ParseHeader) and assembles it into a Program.
func (vm *VM) Load(r io.Reader) *Error {
	program, err := vm.loader.Load(r)
	if err != nil {
		return err
	}
	vm.program = program
	vm.interp = NewInterpreter(vm)
	return nil
}

// TokenizeInput splits the input stream into words using the
// tokenizer appropriate for the VM's stage. Grounded on
// VM::tokenizeInput.
func (vm *VM) TokenizeInput(r io.Reader) *Error {
	switch vm.stage {
	case Transfer:
		words, blanks, err := TokenizeBilingual(r)
		if err != nil {
			return wrapError("vm", err, "tokenizing input")
		}
		vm.words = make([]*Word, len(words))
		for i, w := range words {
			vm.words[i] = &Word{Bilingual: w}
		}
		vm.superblanks = blanks
	case Interchunk:
		words, blanks, err := TokenizeChunks(r, false, false)
		if err != nil {
			return wrapError("vm", err, "tokenizing input")
		}
		vm.words = make([]*Word, len(words))
		for i, w := range words {
			vm.words[i] = &Word{Chunk: w}
		}
		vm.superblanks = blanks
	case Postchunk:
		words, blanks, err := TokenizeChunks(r, true, true)
		if err != nil {
			return wrapError("vm", err, "tokenizing input")
		}
		vm.words = make([]*Word, len(words))
		for i, w := range words {
			vm.words[i] = &Word{Chunk: w}
		}
		vm.superblanks = blanks
	}
	return nil
}

// WriteOutput appends s to the VM's output stream.
func (vm *VM) WriteOutput(s string) {
	io.WriteString(vm.out, s)
}

// Run loads codeFile, tokenizes input, executes the preprocess
// section, and drives the selection loop to completion. ctx is
// checked between rule selections so a caller can cancel a run stuck
// in runaway recursion or a pathological input; the VM itself has no
// internal concurrency.
func (vm *VM) Run(ctx context.Context, codeFile, input io.Reader) *Error {
	br := bufio.NewReader(codeFile)
	line1, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return wrapError("vm", err, "reading code file header")
	}
	line2, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return wrapError("vm", err, "reading code file header")
	}
	if perr := vm.ParseHeader(strings.TrimRight(line1, "\r\n"), strings.TrimRight(line2, "\r\n")); perr != nil {
		return perr
	}
	if lerr := vm.Load(br); lerr != nil {
		return lerr
	}
	if terr := vm.TokenizeInput(input); terr != nil {
		return terr
	}

	if err := vm.runCodeUnitFully(&vm.program.Code); err != nil {
		vm.status = Failed
		return err
	}

	if err := vm.runCodeUnitFully(&vm.program.Preprocess); err != nil {
		vm.status = Failed
		return err
	}

	if err := vm.selectLoop(ctx); err != nil {
		vm.status = Failed
		return err
	}
	vm.status = Halted
	return nil
}

// runCodeUnitFully drives unit from pc 0 to its end, honoring jz/jmp
// the way runUntilReturn does for rule and macro bodies. The main
// "code" section (variable defaults) and "preprocess" section
// (addtrie calls) are ordinary code units and may contain conditional
// logic, so they can't be driven with a plain range loop over their
// instructions the way a straight-line sequence could.
func (vm *VM) runCodeUnitFully(unit *CodeUnit) *Error {
	vm.current = unit
	vm.pc = 0
	for vm.pc < len(unit.Code) {
		if err := vm.interp.Execute(unit.Code[vm.pc]); err != nil {
			return err
		}
	}
	return nil
}

// Status reports the VM's terminal run state after Run returns.
func (vm *VM) Status() Status { return vm.status }
