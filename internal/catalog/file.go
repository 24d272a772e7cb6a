// internal/catalog/file.go
// Package: catalog
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type testBank struct {
	Tests []Test `yaml:"tests"`
}

// LoadFile reads a test bank. YAML and JSON are both accepted, either as a
// top-level list of tests or as a mapping with a "tests" key. Every test needs
// a prompt; a missing name defaults to "Test N".
func LoadFile(path string) ([]Test, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read test file: %w", err)
	}
	tests, err := parseBank(data)
	if err != nil {
		return nil, fmt.Errorf("could not parse test file %s: %w", path, err)
	}
	return tests, nil
}

func parseBank(data []byte) ([]Test, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, errors.New("file is empty")
	}

	var tests []Test
	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		if err := root.Decode(&tests); err != nil {
			return nil, err
		}
	} else {
		var bank testBank
		if err := root.Decode(&bank); err != nil {
			return nil, err
		}
		tests = bank.Tests
	}

	if len(tests) == 0 {
		return nil, errors.New("no tests defined")
	}
	for i := range tests {
		if strings.TrimSpace(tests[i].Prompt) == "" {
			return nil, fmt.Errorf("test %d has no prompt", i+1)
		}
		if strings.TrimSpace(tests[i].Name) == "" {
			tests[i].Name = fmt.Sprintf("Test %d", i+1)
		}
	}
	return tests, nil
}
