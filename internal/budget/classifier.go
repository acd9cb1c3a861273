// Package budget aggregates spending by budget class and category and
// classifies transactions into the 50/30/20 classes.
package budget

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// Classifier assigns a budget class to a transaction from its free text.
type Classifier interface {
	Classify(note, category string) model.BudgetClass
}

// ClassifierFunc adapts a plain function to the Classifier interface.
type ClassifierFunc func(note, category string) model.BudgetClass

// Classify implements Classifier.
func (f ClassifierFunc) Classify(note, category string) model.BudgetClass {
	return f(note, category)
}

// Rule maps a case-insensitive pattern to a budget class.
type Rule struct {
	Name     string
	Class    model.BudgetClass
	Regex    string
	Priority int // Higher priority rules are checked first
}

type compiledRule struct {
	re *regexp.Regexp
	Rule
}

// RuleClassifier matches note and category against an ordered rule table.
// Text that matches no rule is classified as Fallback.
type RuleClassifier struct {
	Fallback model.BudgetClass
	rules    []compiledRule
}

// NewRuleClassifier compiles rules and orders them by priority.
func NewRuleClassifier(rules []Rule) (*RuleClassifier, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if !r.Class.Valid() {
			return nil, fmt.Errorf("rule %s has unknown class %q", r.Name, r.Class)
		}

		expr := r.Regex
		if !strings.HasPrefix(expr, "(?i)") {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile rule %s: %w", r.Name, err)
		}
		compiled = append(compiled, compiledRule{Rule: r, re: re})
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})

	return &RuleClassifier{rules: compiled, Fallback: model.ClassWant}, nil
}

// MustDefaultClassifier returns a RuleClassifier over DefaultRules.
func MustDefaultClassifier() *RuleClassifier {
	c, err := NewRuleClassifier(DefaultRules())
	if err != nil {
		panic(err)
	}
	return c
}

// Classify implements Classifier.
func (c *RuleClassifier) Classify(note, category string) model.BudgetClass {
	if _, class, ok := c.Match(note, category); ok {
		return class
	}
	return c.Fallback
}

// Match returns the name and class of the first rule matching the text.
func (c *RuleClassifier) Match(note, category string) (string, model.BudgetClass, bool) {
	text := strings.TrimSpace(note + " " + category)
	if text == "" {
		return "", "", false
	}
	for _, r := range c.rules {
		if r.re.MatchString(text) {
			return r.Name, r.Class, true
		}
	}
	return "", "", false
}

// RuleCount returns the number of loaded rules.
func (c *RuleClassifier) RuleCount() int {
	return len(c.rules)
}
