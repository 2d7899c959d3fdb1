package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultNow is the clock start for scenarios that do not set one.
var DefaultNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Scenario is one recruiter message replay test.
type Scenario struct {
	// Name identifies the scenario and its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Now is the RFC 3339 clock start used for messages without a Date
	// header.
	Now string `yaml:"now,omitempty"`

	// Actor overrides the audit actor.
	Actor string `yaml:"actor,omitempty"`

	// Timezones overrides entries of the fixed abbreviation table.
	Timezones map[string]int `yaml:"timezones,omitempty"`

	// Message is the raw message text.
	Message string `yaml:"message"`

	// Replays is how many more times the message is ingested after the
	// first.
	Replays int `yaml:"replays,omitempty"`

	Assertions []Assertion `yaml:"assertions"`
}

// Assertion checks one aspect of the trace.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Expect holds field values for opportunity and schedule assertions.
	// Only listed fields are compared; a null value expects the field to
	// be absent.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Events is the expected event type order (event_order).
	Events []string `yaml:"events,omitempty"`

	// Event restricts event_count to one event type.
	Event string `yaml:"event,omitempty"`

	// Count is the expected number of rows (event_count, audit_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion types.
const (
	AssertOpportunity = "opportunity"
	AssertSchedule    = "schedule"
	AssertNoSchedule  = "no_schedule"
	AssertEventOrder  = "event_order"
	AssertEventCount  = "event_count"
	AssertAuditCount  = "audit_count"
)

// StartTime returns the parsed clock start.
func (s *Scenario) StartTime() (time.Time, error) {
	if s.Now == "" {
		return DefaultNow, nil
	}
	t, err := time.Parse(time.RFC3339, s.Now)
	if err != nil {
		return time.Time{}, fmt.Errorf("now: %w", err)
	}
	return t.UTC(), nil
}

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected so typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// FindScenarios lists the .yaml and .yml files under dir whose base name
// matches filter (a filepath.Match pattern, empty for all), sorted.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if strings.TrimSpace(s.Message) == "" {
		return fmt.Errorf("message is required")
	}
	if s.Replays < 0 {
		return fmt.Errorf("replays must be non-negative")
	}
	if _, err := s.StartTime(); err != nil {
		return err
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertOpportunity, AssertSchedule:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
		fields := opportunityFields
		if a.Type == AssertSchedule {
			fields = scheduleFields
		}
		for key := range a.Expect {
			if !fields[key] {
				return fmt.Errorf("assertions[%d]: unknown %s field %q", index, a.Type, key)
			}
		}
	case AssertNoSchedule:
	case AssertEventOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for event_order", index)
		}
	case AssertEventCount, AssertAuditCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
