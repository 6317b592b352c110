// Manifest parsing for the transferc driver: a YAML sidecar that lists
// the rule and macro fragment files making up one compiled program,
// plus the stage header and variable defaults. Grounded on
// apertium_compiler.cc's driver (which reads one input file and one
// debug file) expanded per SPEC_FULL.md §11 into a multi-file manifest,
// parsed the way a pongo2 TemplateSet loader config would be: a single
// yaml.Unmarshal call into a plain struct, no custom grammar.
package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// VarDef is one entry of a manifest's "variables" list: a name and the
// default value GenDefVar should emit a storev for at load time.
type VarDef struct {
	Name    string `yaml:"name"`
	Default string `yaml:"default"`
}

// RuleFragment names a YAML file describing a single rule: its
// pattern (an ordered list of word-position alternative sets) and its
// action body, already expressed as assembly mnemonics.
type RuleFragment struct {
	Number  int        `yaml:"number"`
	Pattern [][]string `yaml:"pattern"`
	Action  string     `yaml:"action"`
}

// MacroFragment names a YAML file describing a single macro body.
type MacroFragment struct {
	Name string `yaml:"name"`
	Body string `yaml:"body"`
}

// EventNode is one element of a rule file expressed as a YAML tree:
// the same name/attributes/children shape the markup parser's events
// carry, so a whole rules file can be authored directly in the
// manifest and fed through codegen's EventHandler.
type EventNode struct {
	Name     string            `yaml:"name"`
	Attrs    map[string]string `yaml:"attrs,omitempty"`
	Children []*EventNode      `yaml:"children,omitempty"`
}

// Manifest is transferc's top-level input: either a full rules file as
// an event tree (Events), or the stage header attributes, variable
// defaults, and rule/macro fragment files to assemble into one
// compiled program. Grounded on SPEC_FULL.md §11's "rule manifest
// sidecar file" domain-stack entry for gopkg.in/yaml.v2.
type Manifest struct {
	Events    *EventNode `yaml:"events,omitempty"`
	Stage     string     `yaml:"stage,omitempty"`
	Default   string     `yaml:"default,omitempty"`
	Variables []VarDef   `yaml:"variables,omitempty"`
	Rules     []string   `yaml:"rules,omitempty"`
	Macros    []string   `yaml:"macros,omitempty"`
}

// loadManifest reads and parses a manifest file.
func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %q: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %q: %w", path, err)
	}
	if m.Events == nil && m.Stage == "" {
		return nil, fmt.Errorf("manifest %q: either \"events\" or \"stage\" is required", path)
	}
	return &m, nil
}

// loadRuleFragment reads and parses one rule's YAML fragment file.
func loadRuleFragment(path string) (*RuleFragment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule fragment %q: %w", path, err)
	}
	var f RuleFragment
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rule fragment %q: %w", path, err)
	}
	return &f, nil
}

// loadMacroFragment reads and parses one macro's YAML fragment file.
func loadMacroFragment(path string) (*MacroFragment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading macro fragment %q: %w", path, err)
	}
	var f MacroFragment
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing macro fragment %q: %w", path, err)
	}
	if f.Name == "" {
		return nil, fmt.Errorf("macro fragment %q: \"name\" is required", path)
	}
	return &f, nil
}
