package transfer

import (
	"testing"

	. "gopkg.in/check.v1"
)

// Hook up gocheck into the "go test" runner.

func TestTrieSuite(t *testing.T) { TestingT(t) }

type TrieCheckSuite struct{}

var _ = Suite(&TrieCheckSuite{})

func (s *TrieCheckSuite) TestExactPatternMatch(c *C) {
	trie := NewSystemTrie()
	trie.AddPattern([]string{"the<det>"}, 4)

	c.Check(trie.GetRuleNumber("the<det>"), Equals, 4)
	c.Check(trie.GetRuleNumber("a<det>"), Equals, NaRuleNumber)
}

func (s *TrieCheckSuite) TestLemmaWildcardMatchesAnyLemma(c *C) {
	trie := NewSystemTrie()
	trie.AddPattern([]string{"<n>"}, 1)

	c.Check(trie.GetRuleNumber("house<n>"), Equals, 1)
	c.Check(trie.GetRuleNumber("tree<n>"), Equals, 1)
	c.Check(trie.GetRuleNumber("house<adj>"), Equals, NaRuleNumber)
}

func (s *TrieCheckSuite) TestTagWildcardMatchesAnyTagRun(c *C) {
	trie := NewSystemTrie()
	trie.AddPattern([]string{"dog<*>"}, 2)

	c.Check(trie.GetRuleNumber("dog<n>"), Equals, 2)
	c.Check(trie.GetRuleNumber("dog<n><pl>"), Equals, 2)
	c.Check(trie.GetRuleNumber("cat<n>"), Equals, NaRuleNumber)
}

func (s *TrieCheckSuite) TestUnknownWordMarkerNeverMatches(c *C) {
	trie := NewSystemTrie()
	trie.AddPattern([]string{"*<n>"}, 3)

	c.Check(trie.GetRuleNumber("*<n>"), Equals, NaRuleNumber)
	c.Check(trie.GetRuleNumber("dog<n>"), Equals, NaRuleNumber)
}

func (s *TrieCheckSuite) TestConflictingInsertsKeepSmallerRuleNumber(c *C) {
	trie := NewSystemTrie()
	trie.AddPattern([]string{"x<n>"}, 9)
	trie.AddPattern([]string{"x<n>"}, 1)
	trie.AddPattern([]string{"x<n>"}, 5)

	c.Check(trie.GetRuleNumber("x<n>"), Equals, 1)
}

func (s *TrieCheckSuite) TestAlternationMatchesEitherOption(c *C) {
	trie := NewSystemTrie()
	trie.AddPattern([]string{"the<det>|a<det>"}, 6)

	c.Check(trie.GetRuleNumber("the<det>"), Equals, 6)
	c.Check(trie.GetRuleNumber("a<det>"), Equals, 6)
	c.Check(trie.GetRuleNumber("an<det>"), Equals, NaRuleNumber)
}

// TestLongestMatchWinsOverShortest exercises the same multi-word LRLM
// walk selectLoopLRLM performs: a one-word pattern and a two-word
// pattern sharing a prefix, where the longer continuation must win
// when present and the shorter must still be reachable when it isn't.
func (s *TrieCheckSuite) TestLongestMatchWinsOverShortest(c *C) {
	trie := NewSystemTrie()
	trie.AddPattern([]string{"big<adj>"}, 10)
	trie.AddPattern([]string{"big<adj>", "dog<n>"}, 20)

	firstWord := trie.GetPatternNodesFromRoot("big<adj>")
	c.Check(ruleNumberOf(firstWord), Equals, 10)

	var afterSecond []*TrieNode
	for _, n := range firstWord {
		afterSecond = append(afterSecond, trie.GetPatternNodes("dog<n>", n)...)
	}
	c.Check(ruleNumberOf(afterSecond), Equals, 20)
}
