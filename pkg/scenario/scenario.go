// Package scenario replays scripted conversations against a bot and checks
// that the expected intents and checkpoints were reached. Scenarios are the
// regression-test format for bot definitions: they assert on message names,
// never on response text, so rewording a prompt does not break them.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one scripted conversation.
type Scenario struct {
	Name  string `yaml:"name"`
	Turns []Turn `yaml:"turns"`
}

// Turn is one user input plus its expectations. Exactly one of Say or Intent
// must be set; Intent injects a resolved intent with optional slot context,
// bypassing recognition.
type Turn struct {
	Say    string            `yaml:"say,omitempty"`
	Intent string            `yaml:"intent,omitempty"`
	Slots  map[string]string `yaml:"slots,omitempty"`

	// ExpectIntent asserts on the recognized intent for the turn.
	ExpectIntent string `yaml:"expect_intent,omitempty"`

	// ExpectCheckpoints asserts that each named checkpoint was reached. A
	// checkpoint matches a message name or any colon-separated prefix of it.
	ExpectCheckpoints []string `yaml:"expect_checkpoints,omitempty"`

	// ExpectEnded, when set, asserts the session's terminal flag after the
	// turn.
	ExpectEnded *bool `yaml:"expect_ended,omitempty"`
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *Scenario) validate() error {
	if len(s.Turns) == 0 {
		return fmt.Errorf("scenario %q has no turns", s.Name)
	}
	for i, t := range s.Turns {
		if t.Say == "" && t.Intent == "" {
			return fmt.Errorf("scenario %q turn %d: either say or intent is required", s.Name, i+1)
		}
		if t.Say != "" && t.Intent != "" {
			return fmt.Errorf("scenario %q turn %d: say and intent are mutually exclusive", s.Name, i+1)
		}
	}
	return nil
}
