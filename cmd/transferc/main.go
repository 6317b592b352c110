// Command transferc assembles a manifest of rule and macro fragments
// into one compiled transfer program, using the codegen package to
// emit the header, variable-default prologue, pattern section, and
// action/macro bodies in the order the loader expects. Grounded on
// apertium_compiler.cc's driver, expanded to a manifest-driven,
// multi-file front end per SPEC_FULL.md §11 (the XML markup-to-event
// parser itself stays out of scope, see internal/codegen's doc
// comment).
package main

import (
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/apertium-go/transfer/internal/codegen"
)

// walkEvents replays an event tree through the handler in document
// order: start, children, end — the same sequence a streaming markup
// parser would produce.
func walkEvents(h *codegen.EventHandler, n *EventNode) error {
	if err := h.StartElement(&codegen.Event{Name: n.Name, Attrs: n.Attrs}); err != nil {
		return err
	}
	for _, child := range n.Children {
		if err := walkEvents(h, child); err != nil {
			return err
		}
	}
	return h.EndElement()
}

// writeOutput writes the compiled assembly to path, or stdout when
// path is empty.
func writeOutput(path, code string) {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			log.Fatalf("can't create output file %q: %v", path, err)
		}
		defer f.Close()
		out = f
	}
	if _, err := out.WriteString(code); err != nil {
		log.Fatalf("writing compiled assembly: %v", err)
	}
}

// genRawLines splits a fragment's multi-line action/macro body and
// forwards each non-blank instruction line to the generator, matching
// the assembly format's one-instruction-per-line convention.
func genRawLines(g *codegen.Generator, body string) {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		g.GenRaw(strings.TrimSpace(line))
	}
}

func main() {
	manifestPath := flag.String("i", "", "rule manifest (YAML, required)")
	outputFile := flag.String("o", "", "compiled assembly output (stdout by default)")
	debugFile := flag.String("d", "", "optional debug listing of generated rule/macro boundaries")
	debug := flag.Bool("g", false, "emit end-of-rule debug comments in the generated assembly")
	flag.Parse()

	if *manifestPath == "" {
		log.Fatal("a rule manifest is required, see -i")
	}

	m, err := loadManifest(*manifestPath)
	if err != nil {
		log.Fatal(err)
	}

	g := codegen.New()
	g.SetDebug(*debug)

	if m.Events != nil {
		h := codegen.NewEventHandler(g)
		if err := walkEvents(h, m.Events); err != nil {
			log.Fatal(err)
		}
		writeOutput(*outputFile, g.WritableCode())
		return
	}

	attrs := map[string]string{}
	if m.Stage == "transfer" && m.Default != "" {
		attrs["default"] = m.Default
	}
	header := codegen.Event{Name: m.Stage, Attrs: attrs}
	switch m.Stage {
	case "transfer":
		g.GenTransferStart(header)
	case "interchunk":
		g.GenInterchunkStart(header)
	case "postchunk":
		g.GenPostchunkStart(header)
	default:
		log.Fatalf("unrecognized stage %q in manifest", m.Stage)
	}

	for _, v := range m.Variables {
		g.GenDefVar(v.Name, v.Default)
	}
	g.EndCodeSection()

	var debugLines []string

	for _, path := range m.Rules {
		rule, err := loadRuleFragment(path)
		if err != nil {
			log.Fatal(err)
		}
		g.GenPatternStart()
		for _, alternatives := range rule.Pattern {
			g.GenPatternItem(alternatives)
		}
		g.GenPatternEnd(rule.Number)

		g.GenActionStart(rule.Number)
		genRawLines(g, rule.Action)
		g.GenActionEnd(rule.Number)

		debugLines = append(debugLines, "rule "+strconv.Itoa(rule.Number)+" <- "+path)
	}

	for _, path := range m.Macros {
		macro, err := loadMacroFragment(path)
		if err != nil {
			log.Fatal(err)
		}
		g.GenDefMacroStart(macro.Name)
		genRawLines(g, macro.Body)
		g.GenDefMacroEnd(macro.Name)

		debugLines = append(debugLines, "macro "+macro.Name+" <- "+path)
	}

	writeOutput(*outputFile, g.WritableCode())

	if *debugFile != "" {
		f, err := os.Create(*debugFile)
		if err != nil {
			log.Fatalf("can't create debug file %q: %v", *debugFile, err)
		}
		defer f.Close()
		for _, line := range debugLines {
			if _, err := f.WriteString(line + "\n"); err != nil {
				log.Fatalf("writing debug file: %v", err)
			}
		}
	}
}
