package transfer

import "testing"

func TestChunkLexicalUnitParse(t *testing.T) {
	whole := "hold<vblex><pri>{^the<det><def>$ ^cat<n><sg>$}"
	c := NewChunkLexicalUnit(whole)
	if got := c.GetPart(ChunkLem); got != "hold" {
		t.Errorf("lem = %q, want %q", got, "hold")
	}
	if got := c.GetPart(ChunkTags); got != "<vblex><pri>" {
		t.Errorf("tags = %q, want %q", got, "<vblex><pri>")
	}
	want := "{^the<det><def>$ ^cat<n><sg>$}"
	if got := c.GetPart(ChunkContent); got != want {
		t.Errorf("chcontent = %q, want %q", got, want)
	}
	wantInner := "^the<det><def>$ ^cat<n><sg>$"
	if got := c.GetPart(ChunkInner); got != wantInner {
		t.Errorf("content = %q, want %q", got, wantInner)
	}
	if got := c.GetWhole(); got != whole {
		t.Errorf("GetWhole() = %q, want %q", got, whole)
	}
}

func TestChunkLexicalUnitSetContentRewrapsInBraces(t *testing.T) {
	c := NewChunkLexicalUnit("NP<SN>{^el<det>$ ^gato<n>$}")
	c.GetPart(ChunkLem) // force parse
	c.SetNamedPart("content", "^new<n>$")
	if got := c.GetPart(ChunkContent); got != "{^new<n>$}" {
		t.Errorf("chcontent after content rewrite = %q, want %q", got, "{^new<n>$}")
	}
}

func TestChunkWordParseContentAndCaseAA(t *testing.T) {
	cw := NewChunkWord(NewChunkLexicalUnit("NP<SN>{^el<det>$ ^gat<n>$}"))
	cw.Chunk.ChangePart(ChunkLem, "NP") // pseudolemma already all-uppercase
	cw.parseChunkContent()

	if got := cw.LuCount(); got != 2 {
		t.Fatalf("LuCount() = %d, want 2", got)
	}
	if got := cw.ContentLexicalUnit(0).GetPart(PartLem); got != "EL" {
		t.Errorf("first inner lemma = %q, want %q (AA propagates to every lemma)", got, "EL")
	}
	if got := cw.ContentLexicalUnit(1).GetPart(PartLem); got != "GAT" {
		t.Errorf("second inner lemma = %q, want %q", got, "GAT")
	}
}

func TestChunkWordParseContentCaseAaOnlyFirst(t *testing.T) {
	cw := NewChunkWord(NewChunkLexicalUnit("NP<SN>{^el<det>$ ^gat<n>$}"))
	cw.Chunk.ChangePart(ChunkLem, "Np")
	cw.parseChunkContent()

	if got := cw.ContentLexicalUnit(0).GetPart(PartLem); got != "El" {
		t.Errorf("first inner lemma = %q, want %q (Aa capitalizes only the first)", got, "El")
	}
	if got := cw.ContentLexicalUnit(1).GetPart(PartLem); got != "gat" {
		t.Errorf("second inner lemma = %q, want unchanged %q", got, "gat")
	}
	// chcontent must have been spliced to match the mutated first lemma.
	wantContent := "{^El<det>$ ^gat<n>$}"
	if got := cw.Chunk.GetPart(ChunkContent); got != wantContent {
		t.Errorf("chcontent after case propagation = %q, want %q", got, wantContent)
	}
}

func TestChunkWordParseContentCaseAaLeavesLowercaseAlone(t *testing.T) {
	cw := NewChunkWord(NewChunkLexicalUnit("np<SN>{^el<det>$}"))
	cw.parseChunkContent()
	if got := cw.ContentLexicalUnit(0).GetPart(PartLem); got != "el" {
		t.Errorf("inner lemma = %q, want unchanged %q", got, "el")
	}
}

func TestChunkWordSolveReferencesInRange(t *testing.T) {
	cw := NewChunkWord(NewChunkLexicalUnit("NP<SN><nom>{^the<det>+<1>$}"))
	cw.solveReferences()
	want := "{^the<det>+<SN>$}"
	if got := cw.Chunk.GetPart(ChunkContent); got != want {
		t.Errorf("chcontent after solveReferences = %q, want %q", got, want)
	}
}

func TestChunkWordSolveReferencesOutOfRange(t *testing.T) {
	cw := NewChunkWord(NewChunkLexicalUnit("NP<SN>{^the<det>+<5>$}"))
	cw.solveReferences()
	want := "{^the<det>+$}"
	if got := cw.Chunk.GetPart(ChunkContent); got != want {
		t.Errorf("chcontent with out-of-range reference = %q, want %q (blanked, per original_source)", got, want)
	}
}

func TestChunkWordBlanksSurroundInnerUnits(t *testing.T) {
	cw := NewChunkWord(NewChunkLexicalUnit("NP<SN>{^el<det>$  ^gat<n>$}"))
	cw.parseChunkContent()
	if got := cw.Blank(1); got != "  " {
		t.Errorf("blank between inner lus = %q, want %q", got, "  ")
	}
	if got := cw.Blank(0); got != "" {
		t.Errorf("leading inner blank = %q, want empty", got)
	}
}
