package transfer

// NaRuleNumber marks a trie node that does not terminate any rule.
const NaRuleNumber = -1

// TrieNode is one state of the pattern trie: an optional terminal
// rule number, a self-looping lemma wildcard ('*') transition, a
// self-looping tag wildcard ('<*>') transition, and exact transitions
// keyed by the literal lemma or tag token that leads to them.
// Grounded on system_trie.{h,cc}.
type TrieNode struct {
	ruleNumber int
	star       *TrieNode // '*' lemma wildcard, matches any lemma
	starTag    *TrieNode // '<*>' tag wildcard, matches any single tag
	links      map[string]*TrieNode
}

func newTrieNode() *TrieNode {
	return &TrieNode{ruleNumber: NaRuleNumber}
}

func (n *TrieNode) getOrCreateStar() *TrieNode {
	if n.star == nil {
		n.star = newTrieNode()
		n.star.star = n.star
	}
	return n.star
}

func (n *TrieNode) getOrCreateStarTag() *TrieNode {
	if n.starTag == nil {
		n.starTag = newTrieNode()
		n.starTag.starTag = n.starTag
	}
	return n.starTag
}

// firstTokenLength returns the length, in bytes, of the first token of
// pattern: a full "<tag>" run if it starts with '<', otherwise the
// lemma run up to (not including) the next '<' or end of string.
func firstTokenLength(pattern string) int {
	if len(pattern) == 0 {
		return 0
	}
	if pattern[0] == '<' {
		for i := 1; i < len(pattern); i++ {
			if pattern[i] == '>' {
				return i + 1
			}
		}
		return len(pattern)
	}
	for i := 1; i < len(pattern); i++ {
		if pattern[i] == '<' {
			return i
		}
	}
	return len(pattern)
}

// insertPattern inserts a lowercased (lemma-only) single pattern token
// chain into the trie rooted at n, assigning ruleNumber to the
// terminal node. Conflicting rule numbers along the same path keep the
// smaller (earlier-declared) one, with a warning.
func (n *TrieNode) insertPattern(pattern string, ruleNumber int) *TrieNode {
	return n.insertRaw(lemmaToLower(pattern), ruleNumber)
}

func (n *TrieNode) insertRaw(pattern string, ruleNumber int) *TrieNode {
	tokenLen := firstTokenLength(pattern)
	if tokenLen == 0 {
		if ruleNumber != NaRuleNumber {
			if n.ruleNumber == NaRuleNumber {
				n.ruleNumber = ruleNumber
			} else {
				if n.ruleNumber != ruleNumber {
					logf("paths to rule %d blocked by rule %d", ruleNumber, n.ruleNumber)
				}
				if ruleNumber < n.ruleNumber {
					n.ruleNumber = ruleNumber
				}
			}
		}
		return n
	}

	token := pattern[:tokenLen]
	var next *TrieNode
	if token == "<*>" {
		next = n.getOrCreateStarTag()
	} else {
		if n.links == nil {
			n.links = make(map[string]*TrieNode)
		}
		existing, ok := n.links[token]
		if !ok {
			existing = newTrieNode()
			n.links[token] = existing
		}
		next = existing
	}
	return next.insertRaw(pattern[tokenLen:], ruleNumber)
}

// pushNextNodes appends, to out, the nodes reachable from n by
// consuming the query token tok: the exact link for tok if one
// exists, plus the matching wildcard transition (lemma '*' for a
// lemma token, tag '<*>' for a tag token) if present. A literal '*'
// query token matches nothing, mirroring the original.
func (n *TrieNode) pushNextNodes(tok string, out *[]*TrieNode) {
	if len(tok) > 0 && tok[0] == '*' {
		return
	}
	if next, ok := n.links[tok]; ok {
		*out = append(*out, next)
	}
	which := n.star
	if len(tok) > 0 && tok[0] == '<' {
		which = n.starTag
	}
	if which != nil {
		*out = append(*out, which)
	}
}

// SystemTrie indexes the rule patterns loaded from a preprocess
// section and answers LRLM pattern-node queries during rule selection.
type SystemTrie struct {
	root *TrieNode
}

// NewSystemTrie returns an empty trie.
func NewSystemTrie() *SystemTrie {
	return &SystemTrie{root: newTrieNode()}
}

// AddPattern inserts a full rule pattern: a sequence of parts (each
// part is one word-position's lemma/tag text, possibly a
// '|'-separated set of alternatives). Only the last part's terminal
// nodes receive ruleNumber; earlier parts are structural only. An
// alternative beginning with '<' is routed through the lemma wildcard
// first, since a bare tag run can't be reached from the root without
// first consuming a lemma position. Grounded on SystemTrie::addPattern.
func (t *SystemTrie) AddPattern(parts []string, ruleNumber int) {
	rule := NaRuleNumber
	curNodes := []*TrieNode{t.root}

	for i, part := range parts {
		var lastNodes []*TrieNode
		if i == len(parts)-1 {
			rule = ruleNumber
		}

		for _, node := range curNodes {
			option := ""
			for _, ch := range part {
				if ch == '|' {
					lastNodes = append(lastNodes, insertOption(node, option, rule))
					option = ""
				} else {
					option += string(ch)
				}
			}
			lastNodes = append(lastNodes, insertOption(node, option, rule))
		}

		curNodes = lastNodes
	}
}

func insertOption(node *TrieNode, option string, rule int) *TrieNode {
	if len(option) > 0 && option[0] == '<' {
		star := node.getOrCreateStar()
		return star.insertPattern(option, rule)
	}
	return node.insertPattern(option, rule)
}

// GetPatternNodes walks startNode through pattern token by token,
// returning every node the query could be at once the whole pattern
// has been consumed (or nil if any step has no continuation).
func (t *SystemTrie) GetPatternNodes(pattern string, startNode *TrieNode) []*TrieNode {
	if len(pattern) == 0 {
		return nil
	}
	lowered := lemmaToLower(pattern)
	curNodes := []*TrieNode{startNode}

	for len(lowered) > 0 {
		tokenLen := firstTokenLength(lowered)
		token := lowered[:tokenLen]
		lowered = lowered[tokenLen:]

		var next []*TrieNode
		for _, node := range curNodes {
			node.pushNextNodes(token, &next)
		}
		curNodes = next
		if len(curNodes) == 0 {
			return nil
		}
	}

	return curNodes
}

// GetPatternNodesFromRoot is GetPatternNodes starting at the trie root.
func (t *SystemTrie) GetPatternNodesFromRoot(pattern string) []*TrieNode {
	return t.GetPatternNodes(pattern, t.root)
}

// GetRuleNumber resolves a full pattern to the lowest-numbered rule
// among the terminal nodes it reaches (earlier-declared rules win
// ties), or NaRuleNumber if the pattern doesn't match anything.
func (t *SystemTrie) GetRuleNumber(pattern string) int {
	return ruleNumberOf(t.GetPatternNodesFromRoot(pattern))
}

func ruleNumberOf(nodes []*TrieNode) int {
	rule := NaRuleNumber
	for _, node := range nodes {
		if node.ruleNumber == NaRuleNumber {
			continue
		}
		if rule == NaRuleNumber || node.ruleNumber < rule {
			rule = node.ruleNumber
		}
	}
	return rule
}
