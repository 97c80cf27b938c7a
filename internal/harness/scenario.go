package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/jgrey4296/instal-stable-sub001/internal/check"
	"github.com/jgrey4296/instal-stable-sub001/internal/checks"
	"github.com/jgrey4296/instal-stable-sub001/internal/store"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists paths to CUE spec files to compile together.
	// Paths are relative to the scenario file location.
	Specs []string `yaml:"specs"`

	// Checks narrows the checks that run. Empty means all.
	Checks CheckSelection `yaml:"checks,omitempty"`

	// Assertions validate the run's reports and outcome.
	// Supported types: report_contains, report_absent, report_count, outcome
	Assertions []Assertion `yaml:"assertions"`
}

// CheckSelection mirrors the checks section of the config file.
type CheckSelection struct {
	Enable  []string `yaml:"enable,omitempty"`
	Disable []string `yaml:"disable,omitempty"`
}

// Assertion validates the reports or outcome of a run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "report_contains": at least one report matches
	// - "report_absent": no report matches
	// - "report_count": exactly Count reports match
	// - "outcome": the run ended with Outcome
	Type string `yaml:"type"`

	// Checker, Severity and Message filter reports. Empty fields match
	// anything; Message must match exactly.
	Checker  string `yaml:"checker,omitempty"`
	Severity string `yaml:"severity,omitempty"`
	Message  string `yaml:"message,omitempty"`

	// Count is the expected number of matches (used by report_count).
	Count int `yaml:"count,omitempty"`

	// Outcome is one of ok, failed, fatal, error (used by outcome).
	Outcome string `yaml:"outcome,omitempty"`
}

// Assertion type constants.
const (
	AssertReportContains = "report_contains"
	AssertReportAbsent   = "report_absent"
	AssertReportCount    = "report_count"
	AssertOutcome        = "outcome"
)

// LoadScenario reads and parses a scenario YAML file, resolving spec paths
// relative to the scenario file.
//
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) {
			scenario.Specs[i] = filepath.Join(base, specPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	var scenarios []*Scenario
	seen := make(map[string]string)
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", path, s.Name, prev)
		}
		seen[s.Name] = path
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec file not found: %s", specPath)
		}
	}

	for _, name := range append(append([]string(nil), s.Checks.Enable...), s.Checks.Disable...) {
		if _, ok := checks.Lookup(name); !ok {
			return fmt.Errorf("checks: unknown check %q", name)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	if a.Severity != "" {
		if _, err := check.ParseSeverity(a.Severity); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	}

	switch a.Type {
	case AssertReportContains, AssertReportAbsent:
		if a.Checker == "" && a.Severity == "" && a.Message == "" {
			return fmt.Errorf("assertions[%d]: %s needs checker, severity or message", index, a.Type)
		}
	case AssertReportCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for report_count", index)
		}
	case AssertOutcome:
		switch store.Outcome(a.Outcome) {
		case store.OutcomeOK, store.OutcomeFailed, store.OutcomeFatal, store.OutcomeError:
		default:
			return fmt.Errorf("assertions[%d]: unknown outcome %q", index, a.Outcome)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
