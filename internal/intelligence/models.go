package intelligence

import (
	"regexp"

	"github.com/a3tai/mcp-casefile-import/internal/casefile"
)

// Rule maps a page pattern to a document type. Patterns are matched
// case-insensitively in multi-line mode against the whole page text.
type Rule struct {
	Name     string            `json:"name"`
	Pattern  string            `json:"pattern"`
	Type     string            `json:"type"`
	Category casefile.Category `json:"category"`
}

// RuleSet is the on-disk form of an ordered rule table
type RuleSet struct {
	Version string `json:"version"`
	Rules   []Rule `json:"rules"`
}

// Match is the rule that classified a page
type Match struct {
	Index    int               `json:"index"`
	Rule     string            `json:"rule"`
	Type     string            `json:"type"`
	Category casefile.Category `json:"category"`
}

type compiledRule struct {
	Rule
	re *regexp.Regexp
}
