package transfer

import (
	"strings"
	"testing"
)

func TestTokenizeBilingualBasic(t *testing.T) {
	in := "before ^the<det>/el<det>$ middle ^cat<n>/gat<n>$ after"
	words, blanks, err := TokenizeBilingual(strings.NewReader(in))
	if err != nil {
		t.Fatalf("TokenizeBilingual() error = %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("len(words) = %d, want 2", len(words))
	}
	if got := words[0].Source.GetWhole(); got != "the<det>" {
		t.Errorf("word 0 source = %q, want %q", got, "the<det>")
	}
	if got := words[0].Target.GetWhole(); got != "el<det>" {
		t.Errorf("word 0 target = %q, want %q", got, "el<det>")
	}
	if got := words[1].Target.GetWhole(); got != "gat<n>" {
		t.Errorf("word 1 target = %q, want %q", got, "gat<n>")
	}
	// blanks.size() must equal words.size() + 1.
	if len(blanks) != len(words)+1 {
		t.Fatalf("len(blanks) = %d, want %d", len(blanks), len(words)+1)
	}
	if blanks[0] != "before " {
		t.Errorf("leading blank = %q, want %q", blanks[0], "before ")
	}
	if blanks[1] != " middle " {
		t.Errorf("middle blank = %q, want %q", blanks[1], " middle ")
	}
}

func TestTokenizeBilingualDiscardsExtraTargets(t *testing.T) {
	in := "^foo<n>/bar<n>/baz<n>/qux<n>$"
	words, _, err := TokenizeBilingual(strings.NewReader(in))
	if err != nil {
		t.Fatalf("TokenizeBilingual() error = %v", err)
	}
	if len(words) != 1 {
		t.Fatalf("len(words) = %d, want 1", len(words))
	}
	if got := words[0].Target.GetWhole(); got != "bar<n>" {
		t.Errorf("target = %q, want only the first alternative %q", got, "bar<n>")
	}
}

func TestTokenizeBilingualEscapedChar(t *testing.T) {
	in := `^foo<n>/ba\$r<n>$`
	words, _, err := TokenizeBilingual(strings.NewReader(in))
	if err != nil {
		t.Fatalf("TokenizeBilingual() error = %v", err)
	}
	if got := words[0].Target.GetWhole(); got != "ba$r<n>" {
		t.Errorf("target = %q, want escaped %q", got, "ba$r<n>")
	}
}

func TestTokenizeBilingualBracketedSuperblank(t *testing.T) {
	in := "^a<n>/b<n>$[foo]^c<n>/d<n>$"
	_, blanks, err := TokenizeBilingual(strings.NewReader(in))
	if err != nil {
		t.Fatalf("TokenizeBilingual() error = %v", err)
	}
	if blanks[1] != "[foo]" {
		t.Errorf("bracketed blank = %q, want %q preserved verbatim", blanks[1], "[foo]")
	}
}

func TestTokenizeChunksBasic(t *testing.T) {
	in := "^NP<SN>{^el<det>$ ^gat<n>$}$ ^VP<SV>{^correr<vblex>$}$"
	words, blanks, err := TokenizeChunks(strings.NewReader(in), false, false)
	if err != nil {
		t.Fatalf("TokenizeChunks() error = %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("len(words) = %d, want 2", len(words))
	}
	if len(blanks) != len(words)+1 {
		t.Fatalf("len(blanks) = %d, want %d", len(blanks), len(words)+1)
	}
	if got := words[0].Chunk.GetPart(ChunkLem); got != "NP" {
		t.Errorf("first chunk lem = %q, want %q", got, "NP")
	}
	if got := words[1].Chunk.GetPart(ChunkLem); got != "VP" {
		t.Errorf("second chunk lem = %q, want %q", got, "VP")
	}
	if blanks[1] != " " {
		t.Errorf("inter-chunk blank = %q, want %q", blanks[1], " ")
	}
}

func TestTokenizeChunksWithSolveRefsAndParseContent(t *testing.T) {
	in := "^NP<SN><nom>{^the<det>+<1>$}$"
	words, _, err := TokenizeChunks(strings.NewReader(in), true, true)
	if err != nil {
		t.Fatalf("TokenizeChunks() error = %v", err)
	}
	if len(words) != 1 {
		t.Fatalf("len(words) = %d, want 1", len(words))
	}
	if got := words[0].Chunk.GetPart(ChunkContent); !strings.Contains(got, "<SN>") {
		t.Errorf("chcontent = %q, want the <1> reference resolved to <SN>", got)
	}
	if got := words[0].LuCount(); got != 1 {
		t.Errorf("LuCount() = %d, want 1 (parseContent eagerly applied)", got)
	}
}
