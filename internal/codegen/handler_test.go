package codegen

import (
	"strings"
	"testing"
)

// node builds an event tree the way a streaming markup parser's
// start/end pairs would arrive, for replaying through an EventHandler.
type node struct {
	name     string
	attrs    map[string]string
	children []node
}

func walk(t *testing.T, h *EventHandler, n node) {
	t.Helper()
	if err := h.StartElement(&Event{Name: n.name, Attrs: n.attrs}); err != nil {
		t.Fatalf("StartElement(%s) error: %v", n.name, err)
	}
	for _, child := range n.children {
		walk(t, h, child)
	}
	if err := h.EndElement(); err != nil {
		t.Fatalf("EndElement(%s) error: %v", n.name, err)
	}
}

func el(name string, attrs map[string]string, children ...node) node {
	return node{name: name, attrs: attrs, children: children}
}

func TestEventHandlerCompilesTransferRule(t *testing.T) {
	g := New()
	h := NewEventHandler(g)

	tree := el("transfer", map[string]string{"default": "chunk"},
		el("section-def-cats", nil,
			el("def-cat", map[string]string{"n": "det"},
				el("cat-item", map[string]string{"tags": "det"})),
			el("def-cat", map[string]string{"n": "nom"},
				el("cat-item", map[string]string{"tags": "n.*"})),
		),
		el("section-def-vars", nil,
			el("def-var", map[string]string{"n": "number", "v": "sg"}),
		),
		el("section-rules", nil,
			el("rule", nil,
				el("pattern", nil,
					el("pattern-item", map[string]string{"n": "det"}),
					el("pattern-item", map[string]string{"n": "nom"}),
				),
				el("action", nil,
					el("out", nil,
						el("lu", nil,
							el("clip", map[string]string{"pos": "1", "part": "whole", "side": "tl"})),
						el("b", nil),
						el("lu", nil,
							el("clip", map[string]string{"pos": "2", "part": "whole", "side": "tl"})),
					),
				),
			),
		),
	)
	walk(t, h, tree)

	want := `#<assembly>
#<transfer default="chunk">
push-str "number"
push-str "sg"
storev
jmp section_rules_start
section_rules_start:
patterns_start:
push-str "<det>"
push-str "<n><*>"
push-int 2
addtrie rule_0
patterns_end:
action_0_start:
push-int 1
push-str "whole"
cliptl
lu 1
pushbl
push-int 2
push-str "whole"
cliptl
lu 1
out 3
action_0_end:
`
	if got := g.WritableCode(); got != want {
		t.Errorf("WritableCode() =\n%s\nwant:\n%s", got, want)
	}
	if h.Stage() != "transfer" || h.TransferDefault() != "chunk" {
		t.Errorf("stage/default = %q/%q, want transfer/chunk", h.Stage(), h.TransferDefault())
	}
}

func TestEventHandlerLetVariableTarget(t *testing.T) {
	g := New()
	h := NewEventHandler(g)

	tree := el("transfer", nil,
		el("section-rules", nil,
			el("rule", nil,
				el("action", nil,
					el("let", nil,
						el("var", map[string]string{"n": "number"}),
						el("lit", map[string]string{"v": "pl"}),
					),
				),
			),
		),
	)
	walk(t, h, tree)

	code := g.WritableCode()
	want := "push-str \"number\"\npush-str \"pl\"\nstorev\n"
	if !strings.Contains(code, want) {
		t.Errorf("let into a variable must emit name, value, storev; got:\n%s", code)
	}
}

func TestEventHandlerLetClipTargetStores(t *testing.T) {
	g := New()
	h := NewEventHandler(g)

	tree := el("transfer", nil,
		el("section-def-attrs", nil,
			el("def-attr", map[string]string{"n": "a_gen"},
				el("attr-item", map[string]string{"tags": "m"}),
				el("attr-item", map[string]string{"tags": "f"}),
			),
		),
		el("section-rules", nil,
			el("rule", nil,
				el("action", nil,
					el("let", nil,
						el("clip", map[string]string{"pos": "1", "part": "a_gen", "side": "tl"}),
						el("lit-tag", map[string]string{"v": "f"}),
					),
				),
			),
		),
	)
	walk(t, h, tree)

	code := g.WritableCode()
	want := "push-int 1\npush-str \"<m>|<f>\"\npush-str \"<f>\"\nstoretl\n"
	if !strings.Contains(code, want) {
		t.Errorf("let into a tl clip must emit pos, parts, value, storetl; got:\n%s", code)
	}
}

func TestEventHandlerChooseWhenOtherwise(t *testing.T) {
	g := New()
	h := NewEventHandler(g)

	tree := el("transfer", nil,
		el("section-rules", nil,
			el("rule", nil,
				el("action", nil,
					el("choose", nil,
						el("when", nil,
							el("test", nil,
								el("equal", nil,
									el("lit", map[string]string{"v": "a"}),
									el("lit", map[string]string{"v": "b"}),
								),
							),
							el("out", nil, el("lit", map[string]string{"v": "first"})),
						),
						el("otherwise", nil,
							el("out", nil, el("lit", map[string]string{"v": "second"})),
						),
					),
				),
			),
		),
	)
	walk(t, h, tree)

	code := g.WritableCode()
	wantBranch := `push-str "a"
push-str "b"
cmp
jz when_0
push-str "first"
out 1
jmp choose_0_end
when_0:
push-str "second"
out 1
choose_0_end:
`
	if !strings.Contains(code, wantBranch) {
		t.Errorf("choose/when/otherwise lowering mismatch; got:\n%s", code)
	}
}

func TestEventHandlerCallMacroArity(t *testing.T) {
	g := New()
	h := NewEventHandler(g)

	preamble := []node{
		el("section-def-macros", nil,
			el("def-macro", map[string]string{"n": "f_gen", "npar": "2"},
				el("out", nil, el("lit", map[string]string{"v": "x"})),
			),
		),
	}

	good := el("transfer", nil, append(preamble,
		el("section-rules", nil,
			el("rule", nil,
				el("action", nil,
					el("call-macro", map[string]string{"n": "f_gen"},
						el("with-param", map[string]string{"pos": "1"}),
						el("with-param", map[string]string{"pos": "2"}),
					),
				),
			),
		))...)
	walk(t, h, good)

	code := g.WritableCode()
	want := "push-int 1\npush-int 2\npush-int 2\ncall f_gen\n"
	if !strings.Contains(code, want) {
		t.Errorf("call-macro must push each position, the count, then call; got:\n%s", code)
	}

	// A second compile with the wrong parameter count must fail at
	// the call-macro end event.
	h2 := NewEventHandler(New())
	bad := el("transfer", nil, append(preamble,
		el("section-rules", nil,
			el("rule", nil,
				el("action", nil,
					el("call-macro", map[string]string{"n": "f_gen"},
						el("with-param", map[string]string{"pos": "1"}),
					),
				),
			),
		))...)

	err := walkErr(h2, bad)
	if err == nil || !strings.Contains(err.Error(), "parameters") {
		t.Errorf("arity mismatch error = %v, want a parameter-count complaint", err)
	}
}

// walkErr is walk without the test fatals, for paths expected to fail.
func walkErr(h *EventHandler, n node) error {
	if err := h.StartElement(&Event{Name: n.name, Attrs: n.attrs}); err != nil {
		return err
	}
	for _, child := range n.children {
		if err := walkErr(h, child); err != nil {
			return err
		}
	}
	return h.EndElement()
}

func TestEventHandlerUndefinedCategory(t *testing.T) {
	h := NewEventHandler(New())
	tree := el("transfer", nil,
		el("section-rules", nil,
			el("rule", nil,
				el("pattern", nil,
					el("pattern-item", map[string]string{"n": "missing"}),
				),
			),
		),
	)
	err := walkErr(h, tree)
	if err == nil || !strings.Contains(err.Error(), "undefined category") {
		t.Errorf("pattern-item with unknown category: error = %v, want undefined-category", err)
	}
}

func TestEventHandlerInterchunkClipKind(t *testing.T) {
	g := New()
	h := NewEventHandler(g)
	tree := el("interchunk", nil,
		el("section-rules", nil,
			el("rule", nil,
				el("action", nil,
					el("out", nil,
						el("lu", nil,
							el("clip", map[string]string{"pos": "1", "part": "whole"})),
					),
				),
			),
		),
	)
	walk(t, h, tree)
	code := g.WritableCode()
	if !strings.Contains(code, "\nclip\n") || strings.Contains(code, "clipsl") {
		t.Errorf("interchunk clips must compile to the plain clip mnemonic; got:\n%s", code)
	}
}

func TestTagsToPattern(t *testing.T) {
	cases := []struct{ in, want string }{
		{"det.def", "<det><def>"},
		{"n.*", "<n><*>"},
		{"det", "<det>"},
		{"", ""},
	}
	for _, c := range cases {
		if got := tagsToPattern(c.in); got != c.want {
			t.Errorf("tagsToPattern(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
