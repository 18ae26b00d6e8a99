package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// Scenario defines one reasoner test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Problem is a .cue or .txt problem file, relative to the scenario
	// file. Mutually exclusive with Hypotheses.
	Problem string `yaml:"problem,omitempty"`

	// ProblemName selects one problem from a file that defines several.
	ProblemName string `yaml:"problem_name,omitempty"`

	// Hypotheses are inline predicates such as "coll(A,B,C)".
	Hypotheses []string `yaml:"hypotheses,omitempty"`

	// Steps are further hypothesis batches, each saturated incrementally
	// on the same database after the first run.
	Steps [][]string `yaml:"steps,omitempty"`

	// MaxIterations bounds each run; zero keeps the driver default.
	MaxIterations int `yaml:"max_iterations,omitempty"`

	// Golden compares the increased facts against testdata/golden.
	Golden bool `yaml:"golden,omitempty"`

	// Assertions are checked after the last run.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion checks the saturated database.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Predicate is used by proves and not_proves.
	Predicate string `yaml:"predicate,omitempty"`

	// Kind and AtLeast are used by count.
	Kind    string `yaml:"kind,omitempty"`
	AtLeast int    `yaml:"at_least,omitempty"`

	// Code is the expected runtime error code, used by fails.
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertProves    = "proves"
	AssertNotProves = "not_proves"
	AssertCount     = "count"
	AssertGoals     = "goals"
	AssertStable    = "stable"
	AssertFails     = "fails"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields. The problem path
// is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Problem != "" && !filepath.IsAbs(scenario.Problem) {
		scenario.Problem = filepath.Join(filepath.Dir(path), scenario.Problem)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Problem != "" && len(s.Hypotheses) > 0:
		return fmt.Errorf("problem and hypotheses are mutually exclusive")
	case s.Problem == "" && len(s.Hypotheses) == 0:
		return fmt.Errorf("either problem or hypotheses is required")
	case s.Problem != "":
		if _, err := os.Stat(s.Problem); os.IsNotExist(err) {
			return fmt.Errorf("problem file not found: %s", s.Problem)
		}
	case s.ProblemName != "":
		return fmt.Errorf("problem_name requires problem")
	}

	if s.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must be non-negative")
	}

	for i, h := range s.Hypotheses {
		if _, err := ir.ParsePredicate(h); err != nil {
			return fmt.Errorf("hypotheses[%d]: %w", i, err)
		}
	}
	for i, step := range s.Steps {
		for j, h := range step {
			if _, err := ir.ParsePredicate(h); err != nil {
				return fmt.Errorf("steps[%d][%d]: %w", i, j, err)
			}
		}
	}

	if len(s.Assertions) == 0 && !s.Golden {
		return fmt.Errorf("assertions list is required unless golden is set")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], s); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, s *Scenario) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertProves, AssertNotProves:
		if a.Predicate == "" {
			return fmt.Errorf("assertions[%d]: predicate is required for %s", index, a.Type)
		}
		if _, err := ir.ParsePredicate(a.Predicate); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertCount:
		if _, err := ir.ParseKind(a.Kind); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.AtLeast < 1 {
			return fmt.Errorf("assertions[%d]: at_least must be positive for count", index)
		}
	case AssertGoals:
		if s.Problem == "" {
			return fmt.Errorf("assertions[%d]: goals requires a problem file", index)
		}
	case AssertStable:
	case AssertFails:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for fails", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
