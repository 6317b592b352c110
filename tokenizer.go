package transfer

import (
	"io"
	"strings"
)

// BilingualWord is a transfer-stage token: a source lexical unit and
// its aligned target lexical unit, as produced by "^source/target$".
// Grounded on bilingual_word.{h,cc}.
type BilingualWord struct {
	Source *LexicalUnit
	Target *LexicalUnit
}

// TokenizeBilingual splits a transfer-stage input stream into words
// and the superblanks between them. Escaped characters ('\X') are
// copied verbatim; a word with more than one '/'-separated target
// keeps only the first alternative and discards the rest up to the
// closing '$', matching the original tokenizer's
// ignoreMultipleTargets behavior. The final superblank is truncated at
// the last ']' in the remaining input, same as the original.
func TokenizeBilingual(input io.Reader) ([]*BilingualWord, []string, error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return nil, nil, wrapError("tokenizer", err, "reading bilingual input")
	}
	src := string(data)

	var words []*BilingualWord
	var blanks []string

	var token strings.Builder
	escape := false
	ignoreMultipleTargets := false
	sourceSet := false
	var word *BilingualWord

	for i := 0; i < len(src); i++ {
		ch := src[i]
		switch {
		case ignoreMultipleTargets && ch != '$':
			// discarded: extra target alternative
		case escape:
			token.WriteByte(ch)
			escape = false
		case ch == '\\':
			escape = true
		case ch == '^':
			word = &BilingualWord{}
			blanks = append(blanks, token.String())
			token.Reset()
		case ch == '$':
			if word == nil {
				return nil, nil, newError("tokenizer", "unmatched '$' with no open word")
			}
			word.Target = NewLexicalUnit(token.String())
			words = append(words, word)
			token.Reset()
			ignoreMultipleTargets = false
			sourceSet = false
			word = nil
		case ch == '/':
			if !sourceSet {
				if word == nil {
					return nil, nil, newError("tokenizer", "unmatched '/' with no open word")
				}
				word.Source = NewLexicalUnit(token.String())
				token.Reset()
				sourceSet = true
			} else {
				ignoreMultipleTargets = true
			}
		default:
			token.WriteByte(ch)
		}
	}

	tail := token.String()
	if idx := strings.LastIndexByte(tail, ']'); idx >= 0 {
		blanks = append(blanks, tail[:idx+1])
	} else {
		blanks = append(blanks, tail)
	}

	return words, blanks, nil
}

// TokenizeChunks splits an interchunk/postchunk-stage input stream
// ("^name<tags>{^inner$ ^inner$}") into ChunkWords and the superblanks
// between chunks. solveRefs resolves <1>..<9> tag references against
// the chunk's own tags; parseContent eagerly splits chcontent into
// inner lexical units (otherwise that happens lazily on first access).
// Grounded on chunk_word.cc's static tokenizeInput.
func TokenizeChunks(input io.Reader, solveRefs, parseContent bool) ([]*ChunkWord, []string, error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return nil, nil, wrapError("tokenizer", err, "reading chunk input")
	}
	src := string(data)

	var words []*ChunkWord
	var blanks []string

	var token strings.Builder
	chunkStart := true
	escape := false
	word := &ChunkWord{}

	for i := 0; i < len(src); i++ {
		ch := src[i]
		switch {
		case escape:
			token.WriteByte(ch)
			escape = false
		case ch == '\\':
			escape = true
		case ch == '^':
			if chunkStart {
				blanks = append(blanks, token.String())
				token.Reset()
				chunkStart = false
			} else {
				token.WriteByte(ch)
			}
		case ch == '$':
			if !chunkStart {
				// closes an inner lu inside chcontent; kept verbatim
				token.WriteByte(ch)
			}
			// a '$' encountered between chunks (chunkStart == true) is
			// a stray boundary character and is dropped, matching the
			// original tokenizer's handling of that state.
		case ch == '}':
			token.WriteByte(ch)
			word.Chunk = NewChunkLexicalUnit(token.String())
			if solveRefs {
				word.solveReferences()
			}
			if parseContent {
				word.parseChunkContent()
			}
			words = append(words, word)
			chunkStart = true
			token.Reset()
			word = &ChunkWord{}
		default:
			token.WriteByte(ch)
		}
	}

	blanks = append(blanks, token.String())
	return words, blanks, nil
}
