// internal/dataset/dataset.go

// Package dataset loads benchmark suites from JSON or YAML files, validates
// them against an embedded schema, and applies the data-model defaults. YAML
// input is converted to JSON before validation so both formats flow through
// a single decoding path.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/mwiater/gauntlet/benchmark"
	"github.com/mwiater/gauntlet/evaluate"
)

// Suite is one loaded dataset: an optional shared system prompt plus the
// ordered list of test cases, already normalized.
type Suite struct {
	SystemPrompt string               `json:"system_prompt,omitempty"`
	Tests        []benchmark.TestCase `json:"tests"`
}

// suiteSchema is the structural contract every dataset must meet before the
// semantic checks run. Match modes and cross-field rules are validated in Go
// so their error messages can name the offending test.
const suiteSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["tests"],
  "properties": {
    "system_prompt": {"type": "string"},
    "tests": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "prompt"],
        "properties": {
          "id": {"type": ["string", "number"]},
          "prompt": {"type": "string", "minLength": 1},
          "acceptableAnswers": {"type": "array", "items": {"type": "string"}},
          "category": {"type": "string"},
          "matchMode": {"type": "string"},
          "caseSensitive": {"type": "boolean"},
          "judgeCriteria": {"type": "array", "items": {"type": "string"}},
          "passThreshold": {"type": "number", "minimum": 0, "maximum": 10}
        }
      }
    }
  }
}`

// Load reads, validates, and normalizes the dataset at path. Files ending in
// .yaml or .yml are parsed as YAML; everything else is treated as JSON.
func Load(path string) (*Suite, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}

	data := raw
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if data, err = yamlToJSON(raw); err != nil {
			return nil, fmt.Errorf("parse dataset %s: %w", path, err)
		}
	}

	return Parse(data)
}

// Parse validates a JSON dataset document and returns the normalized suite.
func Parse(data []byte) (*Suite, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var suite Suite
	if err := json.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if err := checkTests(&suite); err != nil {
		return nil, err
	}
	for i, test := range suite.Tests {
		suite.Tests[i] = test.Normalized()
	}
	return &suite, nil
}

func yamlToJSON(raw []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func validateSchema(data []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(suiteSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate dataset: %w", err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, issue := range result.Errors() {
			issues = append(issues, issue.String())
		}
		return fmt.Errorf("dataset failed schema validation: %s", strings.Join(issues, "; "))
	}
	return nil
}

// checkTests enforces the rules the schema cannot express: unique ids, known
// match modes, and acceptable answers on every string-matched test. Match
// mode aliases are rewritten to their canonical form so downstream code only
// ever sees canonical modes.
func checkTests(suite *Suite) error {
	if len(suite.Tests) == 0 {
		return fmt.Errorf("dataset contains no tests")
	}
	seen := make(map[benchmark.ID]struct{}, len(suite.Tests))
	for i, test := range suite.Tests {
		if _, dup := seen[test.ID]; dup {
			return fmt.Errorf("duplicate test id %q", test.ID)
		}
		seen[test.ID] = struct{}{}

		mode, err := evaluate.ParseMode(string(test.MatchMode))
		if err != nil {
			return fmt.Errorf("test %q: %w", test.ID, err)
		}
		if mode != evaluate.ModeJudge && len(test.AcceptableAnswers) == 0 {
			return fmt.Errorf("test %q: acceptableAnswers is required for match mode %q", test.ID, mode)
		}
		suite.Tests[i].MatchMode = mode
	}
	return nil
}
