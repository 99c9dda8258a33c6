// Package cleaner removes page furniture from extracted article text:
// photo credits, captions, bylines, reading-time badges, bare dates, agency
// names and repetitions of the headline.
package cleaner

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// Rule is a named noise pattern.
type Rule struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	re      *regexp.Regexp
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// Cleaner applies an ordered list of rules line by line.
// It is safe for concurrent use.
type Cleaner struct {
	rules []Rule
}

// New parses a YAML rule document and compiles every pattern case-insensitively.
func New(doc []byte) (*Cleaner, error) {
	var f ruleFile
	if err := yaml.Unmarshal(doc, &f); err != nil {
		return nil, fmt.Errorf("parse cleaner rules: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("parse cleaner rules: no rules defined")
	}
	for i := range f.Rules {
		r := &f.Rules[i]
		if r.Name == "" {
			return nil, fmt.Errorf("cleaner rule %d: name is required", i)
		}
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("cleaner rule %q: %w", r.Name, err)
		}
		r.re = re
	}
	return &Cleaner{rules: f.Rules}, nil
}

var defaultCleaner = sync.OnceValues(func() (*Cleaner, error) {
	return New(defaultRules)
})

// Default returns the cleaner built from the embedded rule file.
func Default() *Cleaner {
	c, err := defaultCleaner()
	if err != nil {
		// the embedded file is part of the binary
		panic(err)
	}
	return c
}

// Rules returns the names of the configured rules in evaluation order.
func (c *Cleaner) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.Name
	}
	return names
}

// Match reports the first rule matching the trimmed line.
func (c *Cleaner) Match(line string) (string, bool) {
	line = strings.TrimSpace(line)
	for _, r := range c.rules {
		if r.re.MatchString(line) {
			return r.Name, true
		}
	}
	return "", false
}

// Clean drops noise lines and lines that repeat the title. Blank lines are
// kept as paragraph separators and the result is trimmed.
func (c *Cleaner) Clean(text, title string) string {
	normTitle := normalizeLine(title)

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			kept = append(kept, "")
			continue
		}
		if _, noise := c.Match(stripped); noise {
			continue
		}
		if normTitle != "" && repeatsTitle(normalizeLine(stripped), normTitle) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func repeatsTitle(line, title string) bool {
	return line == title || strings.Contains(line, title) || strings.Contains(title, line)
}

// normalizeLine lowercases with Turkish rules and collapses whitespace.
func normalizeLine(s string) string {
	return strings.Join(strings.Fields(cases.Lower(language.Turkish).String(s)), " ")
}
