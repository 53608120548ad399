package intelligence

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// Classifier assigns a document type to page text using an ordered rule
// table. The first rule in table order whose pattern occurs anywhere in the
// text wins, regardless of where in the text the match is. A Classifier is
// immutable and safe for concurrent use.
type Classifier struct {
	rules   []compiledRule
	version string
}

// NewClassifier compiles the given rules in order. Every rule needs a
// pattern, a type and a known category.
func NewClassifier(rules []Rule) (*Classifier, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("rule table is empty")
	}

	compiled := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		if r.Pattern == "" || r.Type == "" {
			return nil, fmt.Errorf("rule %d (%s): pattern and type are required", i, r.Name)
		}
		if !r.Category.Valid() {
			return nil, fmt.Errorf("rule %d (%s): unknown category %q", i, r.Name, r.Category)
		}
		re, err := regexp.Compile("(?im)" + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, r.Name, err)
		}
		compiled = append(compiled, compiledRule{Rule: r, re: re})
	}

	return &Classifier{rules: compiled, version: "1.0.0"}, nil
}

// MustDefault returns a classifier over DefaultRules and panics if the
// built-in table does not compile.
func MustDefault() *Classifier {
	c, err := NewClassifier(DefaultRules())
	if err != nil {
		panic(fmt.Sprintf("default rule table: %v", err))
	}
	return c
}

// LoadRules reads an ordered rule table from a JSON file and builds a
// classifier from it. The loaded table replaces the built-in one.
func LoadRules(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var set RuleSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	c, err := NewClassifier(set.Rules)
	if err != nil {
		return nil, err
	}
	if set.Version != "" {
		c.version = set.Version
	}
	return c, nil
}

// Classify returns the first matching rule for the text
func (c *Classifier) Classify(text string) (Match, bool) {
	for i, r := range c.rules {
		if r.re.MatchString(text) {
			return Match{Index: i, Rule: r.Name, Type: r.Type, Category: r.Category}, true
		}
	}
	return Match{}, false
}

// CountMatches returns how many rules of the table match the text
func (c *Classifier) CountMatches(text string) int {
	n := 0
	for _, r := range c.rules {
		if r.re.MatchString(text) {
			n++
		}
	}
	return n
}

// Rules returns a copy of the rule table in priority order
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.Rule
	}
	return out
}

// GetVersion returns the rule table version
func (c *Classifier) GetVersion() string {
	return c.version
}
