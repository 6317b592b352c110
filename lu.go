package transfer

import "strings"

// LUPart names a component of a monolingual lexical unit that clip
// instructions can read or write.
type LUPart int

const (
	PartWhole LUPart = iota
	PartLem
	PartLemh
	PartLemq
	PartTags
)

// LexicalUnit is a single analyzed word as seen by the transfer stage
// (each half of a bilingual word) and the postchunk stage (a chunk's
// inner words): a lemma, an optional multiword queue ('#'
// continuation), and a run of tags ('<pos><num>...'). Parsing is
// deferred until a caller asks for anything but the whole string, the
// same laziness the original VM used to avoid splitting words a rule
// never inspects.
type LexicalUnit struct {
	whole          string
	lem            string
	lemh           string
	lemq           string
	tags           []string
	parsed         bool
	lemqBeforeTags bool
}

// NewLexicalUnit wraps an unparsed whole-form lexical unit, e.g.
// "cat<n><sg>" or "take#n<vblex><pri>".
func NewLexicalUnit(whole string) *LexicalUnit {
	return &LexicalUnit{whole: whole}
}

// parse splits whole into lem/lemh/lemq/tags. The '#' marking a
// multiword queue can appear before or after the tag run; lemqBeforeTags
// records which so GetWhole can reassemble the original ordering.
func (lu *LexicalUnit) parse() {
	tagIdx := strings.IndexByte(lu.whole, '<')
	headIdx := strings.IndexByte(lu.whole, '#')

	if tagIdx >= 0 {
		if headIdx < 0 || headIdx < tagIdx {
			lu.lemqBeforeTags = true
			lu.lem = lu.whole[:tagIdx]
			lu.tags = splitTags(lu.whole[tagIdx:])
		} else {
			lu.lemqBeforeTags = false
			lu.lem = lu.whole[:tagIdx] + lu.whole[headIdx:]
			lu.tags = splitTags(lu.whole[tagIdx:headIdx])
		}
	} else {
		lu.lem = lu.whole
		lu.tags = nil
	}

	if headIdx >= 0 {
		switch {
		case tagIdx < 0:
			lu.lemh = lu.whole[:headIdx]
			lu.lemq = lu.whole[headIdx:]
		case headIdx < tagIdx:
			lu.lemh = lu.whole[:headIdx]
			lu.lemq = lu.whole[headIdx:tagIdx]
		default:
			lu.lemh = lu.whole[:tagIdx]
			lu.lemq = lu.whole[headIdx:]
		}
	} else {
		lu.lemh = lu.lem
		lu.lemq = ""
	}

	lu.parsed = true
}

// splitTags turns "<pos><sg>" into ["pos", "sg"].
func splitTags(s string) []string {
	var tags []string
	for len(s) > 0 {
		if s[0] != '<' {
			break
		}
		end := strings.IndexByte(s, '>')
		if end < 0 {
			break
		}
		tags = append(tags, s[1:end])
		s = s[end+1:]
	}
	return tags
}

func joinTags(tags []string) string {
	var b strings.Builder
	for _, t := range tags {
		b.WriteByte('<')
		b.WriteString(t)
		b.WriteByte('>')
	}
	return b.String()
}

func (lu *LexicalUnit) ensureParsed() {
	if !lu.parsed {
		lu.parse()
	}
}

// GetWhole returns the whole lexical unit, reassembling it from parts
// if the lu has been parsed and mutated, or returning the raw whole
// string unchanged otherwise.
func (lu *LexicalUnit) GetWhole() string {
	if !lu.parsed {
		return lu.whole
	}
	if lu.lemqBeforeTags {
		return lu.lemh + lu.lemq + joinTags(lu.tags)
	}
	return lu.lemh + joinTags(lu.tags) + lu.lemq
}

// GetPart returns the requested component, parsing lazily on demand.
func (lu *LexicalUnit) GetPart(part LUPart) string {
	if part != PartWhole {
		lu.ensureParsed()
	}
	switch part {
	case PartWhole:
		return lu.GetWhole()
	case PartLem:
		return lu.lem
	case PartLemh:
		return lu.lemh
	case PartLemq:
		return lu.lemq
	case PartTags:
		return joinTags(lu.tags)
	default:
		return lu.whole
	}
}

// GetTag returns the n'th tag (0-based), or "" if out of range.
func (lu *LexicalUnit) GetTag(n int) string {
	lu.ensureParsed()
	if n < 0 || n >= len(lu.tags) {
		return ""
	}
	return lu.tags[n]
}

// TagCount reports how many tags this lexical unit carries.
func (lu *LexicalUnit) TagCount() int {
	lu.ensureParsed()
	return len(lu.tags)
}

// ChangePart overwrites a component. Changing PartWhole invalidates
// the parsed cache, same as the original: the next read re-derives
// lem/lemh/lemq/tags from the new whole string.
func (lu *LexicalUnit) ChangePart(part LUPart, value string) {
	if part != PartWhole {
		lu.ensureParsed()
	}
	switch part {
	case PartWhole:
		lu.whole = value
		lu.parsed = false
	case PartLem:
		lu.lem = value
	case PartLemh:
		lu.lemh = value
	case PartLemq:
		lu.lemq = value
	case PartTags:
		lu.tags = splitTags(value)
	}
}

// ModifyTag replaces the first occurrence of a tag (or "<a><b>"-style
// tag run) with a new value inside the tags component.
func (lu *LexicalUnit) ModifyTag(tag, value string) {
	lu.ensureParsed()
	joined := joinTags(lu.tags)
	idx := strings.Index(joined, tag)
	if idx < 0 {
		return
	}
	joined = joined[:idx] + value + joined[idx+len(tag):]
	lu.tags = splitTags(joined)
}

func (lu *LexicalUnit) String() string {
	lu.ensureParsed()
	return "{lem: '" + lu.lem + "', lemh: '" + lu.lemh + "', lemq: '" + lu.lemq + "', tags: '" + joinTags(lu.tags) + "'}"
}

// clipTarget is what clip/clipsl/cliptl/storecl/storesl/storetl read and
// write: a named-part accessor shared by monolingual lexical units and
// chunk lexical units, so the interpreter's clip handlers don't need a
// separate code path per stage. Grounded on lexical_unit.h/chunk_lexical_unit.h
// sharing the same getPart(LU_PART)/setPart(LU_PART, wstring) surface.
type clipTarget interface {
	GetNamedPart(part string) string
	SetNamedPart(part string, value string)
	ModifyTag(tag, value string)
	GetWhole() string
}

// GetNamedPart maps a clip instruction's textual part operand to this
// unit's LUPart. "content" and "chcontent" have no monolingual
// equivalent and always read as "".
func (lu *LexicalUnit) GetNamedPart(part string) string {
	switch part {
	case "whole":
		return lu.GetPart(PartWhole)
	case "lem":
		return lu.GetPart(PartLem)
	case "lemh":
		return lu.GetPart(PartLemh)
	case "lemq":
		return lu.GetPart(PartLemq)
	case "tags":
		return lu.GetPart(PartTags)
	default:
		return ""
	}
}

func (lu *LexicalUnit) SetNamedPart(part string, value string) {
	switch part {
	case "whole":
		lu.ChangePart(PartWhole, value)
	case "lem":
		lu.ChangePart(PartLem, value)
	case "lemh":
		lu.ChangePart(PartLemh, value)
	case "lemq":
		lu.ChangePart(PartLemq, value)
	case "tags":
		lu.ChangePart(PartTags, value)
	}
}
