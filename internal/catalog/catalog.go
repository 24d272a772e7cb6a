// Package catalog holds the built-in benchmark prompts, grouped by language
// and suite, plus loading of ad hoc test banks from YAML or JSON files.
package catalog

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

// Language selects the prompt and rubric language.
type Language string

const (
	English Language = "english"
	Polish  Language = "polish"
)

// Kind names a suite.
type Kind string

const (
	Comprehensive Kind = "comprehensive"
	Quick         Kind = "quick"
	Custom        Kind = "custom"
)

// ErrEmptyPrompt is returned by CustomSuite for a blank prompt.
var ErrEmptyPrompt = errors.New("prompt must not be empty")

// Test is one prompt definition. Options are Ollama sampling options plus an
// optional "timeout" in seconds.
type Test struct {
	Name     string         `yaml:"name" json:"name"`
	Prompt   string         `yaml:"prompt" json:"prompt"`
	Category string         `yaml:"category,omitempty" json:"category,omitempty"`
	Options  map[string]any `yaml:"options,omitempty" json:"options,omitempty"`
}

// Languages returns the supported languages in menu order.
func Languages() []Language { return []Language{English, Polish} }

// Kinds returns the built-in suites in menu order.
func Kinds() []Kind { return []Kind{Comprehensive, Quick} }

// DisplayName is the label shown in menus.
func (l Language) DisplayName() string {
	switch l {
	case English:
		return "English / Angielski"
	case Polish:
		return "Polish / Polski"
	}
	return string(l)
}

// ParseLanguage accepts a language name in any case.
func ParseLanguage(s string) (Language, error) {
	switch l := Language(strings.ToLower(strings.TrimSpace(s))); l {
	case English, Polish:
		return l, nil
	}
	return "", fmt.Errorf("unknown language %q (want english or polish)", s)
}

// ParseKind accepts a built-in suite name in any case.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Comprehensive, Quick:
		return k, nil
	}
	return "", fmt.Errorf("unknown suite %q (want comprehensive or quick)", s)
}

// Suite returns a copy of the built-in tests for lang and kind.
func Suite(lang Language, kind Kind) ([]Test, error) {
	byKind, ok := suites[lang]
	if !ok {
		return nil, fmt.Errorf("unknown language %q", lang)
	}
	tests, ok := byKind[kind]
	if !ok {
		return nil, fmt.Errorf("unknown suite %q", kind)
	}
	return clone(tests), nil
}

// CustomSuite wraps a single user prompt as a one-test suite, sent to every
// model with default options.
func CustomSuite(prompt string) ([]Test, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	return []Test{{Name: "Custom prompt", Prompt: prompt, Category: "custom"}}, nil
}

func clone(tests []Test) []Test {
	out := make([]Test, len(tests))
	for i, t := range tests {
		t.Options = maps.Clone(t.Options)
		out[i] = t
	}
	return out
}
