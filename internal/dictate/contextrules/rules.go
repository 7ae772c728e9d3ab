// Package contextrules selects cleanup context based on the active window.
//
// Rules are evaluated first-match in file order against the window title.
// Resolution is pure: the title is injected by the caller, so matching is
// testable without any window-system dependency.
package contextrules

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Rule is one user-configured context entry.
type Rule struct {
	WindowPattern string `yaml:"window_pattern"`
	ExtraContext  string `yaml:"extra_context,omitempty"`
	PasteKey      string `yaml:"paste_key,omitempty"`
	Description   string `yaml:"description,omitempty"`

	re *regexp.Regexp
}

// Match is the outcome of resolving a window title.
type Match struct {
	// ExtraContext is appended to the cleanup system prompt; empty when no
	// rule matched.
	ExtraContext string
	// PasteKey is the matched rule's paste shortcut override. Empty when
	// the rule sets none or nothing matched; the caller applies its
	// configured default.
	PasteKey string
	// Description names the matched rule, for status output and logs.
	Description string
	// Matched reports whether any rule applied.
	Matched bool
}

// Rules is an ordered, immutable rule set.
type Rules struct {
	rules []Rule
}

type rulesFile struct {
	ContextRules []Rule `yaml:"context_rules"`
}

// Load reads rules from a YAML file. A missing file yields an empty rule
// set and no error; a malformed file or invalid pattern yields an empty
// rule set plus the error so the caller can log and degrade to defaults.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Rules{}, nil
		}
		return &Rules{}, fmt.Errorf("read context rules: %w", err)
	}

	return Parse(data)
}

// Parse builds a rule set from YAML content, compiling every pattern.
func Parse(data []byte) (*Rules, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return &Rules{}, fmt.Errorf("parse context rules: %w", err)
	}

	rules := make([]Rule, 0, len(file.ContextRules))
	for i, rule := range file.ContextRules {
		if rule.WindowPattern == "" {
			return &Rules{}, fmt.Errorf("context rule %d: window_pattern is required", i)
		}
		re, err := regexp.Compile(rule.WindowPattern)
		if err != nil {
			return &Rules{}, fmt.Errorf("context rule %d: %w", i, err)
		}
		rule.re = re
		rules = append(rules, rule)
	}

	return &Rules{rules: rules}, nil
}

// Len returns the number of loaded rules.
func (r *Rules) Len() int {
	return len(r.rules)
}

// Resolve returns the first rule matching the window title. Matching is
// unanchored and case-sensitive. An empty title or no match returns the
// zero Match: no extra context, no paste key override.
func (r *Rules) Resolve(windowTitle string) Match {
	if windowTitle != "" {
		for _, rule := range r.rules {
			if rule.re.MatchString(windowTitle) {
				return Match{
					ExtraContext: rule.ExtraContext,
					PasteKey:     rule.PasteKey,
					Description:  rule.Description,
					Matched:      true,
				}
			}
		}
	}

	return Match{}
}
