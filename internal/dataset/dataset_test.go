// internal/dataset/dataset_test.go
package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwiater/gauntlet/evaluate"
)

func writeDataset(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const validJSON = `{
  "system_prompt": "You translate requests into shell commands.",
  "tests": [
    {"id": 1, "prompt": "list files", "acceptableAnswers": ["ls", "ls -la"], "category": "basic"},
    {"id": "open-1", "prompt": "summarize the notes", "matchMode": "judge", "judgeCriteria": ["helpful"], "passThreshold": 8}
  ]
}`

func TestLoadJSON(t *testing.T) {
	t.Parallel()

	suite, err := Load(writeDataset(t, "suite.json", validJSON))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if suite.SystemPrompt != "You translate requests into shell commands." {
		t.Fatalf("SystemPrompt = %q", suite.SystemPrompt)
	}
	if len(suite.Tests) != 2 {
		t.Fatalf("test count = %d", len(suite.Tests))
	}

	first := suite.Tests[0]
	if first.ID != "1" || first.MatchMode != evaluate.ModeSemantic || *first.PassThreshold != 7 {
		t.Fatalf("defaults not applied: %+v", first)
	}
	second := suite.Tests[1]
	if second.MatchMode != evaluate.ModeJudge || second.Category != "uncategorized" || *second.PassThreshold != 8 {
		t.Fatalf("judge test = %+v", second)
	}
}

func TestLoadKeepsExplicitZeroThreshold(t *testing.T) {
	t.Parallel()

	const doc = `{
  "tests": [
    {"id": 1, "prompt": "say anything", "matchMode": "judge", "passThreshold": 0}
  ]
}`
	suite, err := Load(writeDataset(t, "zero.json", doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	threshold := suite.Tests[0].PassThreshold
	if threshold == nil || *threshold != 0 {
		t.Fatalf("PassThreshold = %v, want explicit 0 preserved", threshold)
	}
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	const doc = `system_prompt: shell helper
tests:
  - id: 1
    prompt: list files
    acceptableAnswers: ["ls"]
    matchMode: starts_with
  - id: two
    prompt: print working directory
    acceptableAnswers: ["pwd"]
`
	suite, err := Load(writeDataset(t, "suite.yaml", doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(suite.Tests) != 2 {
		t.Fatalf("test count = %d", len(suite.Tests))
	}
	if suite.Tests[0].MatchMode != evaluate.ModeStartsWith {
		t.Fatalf("alias not canonicalized: %q", suite.Tests[0].MatchMode)
	}
	if suite.Tests[0].ID != "1" || suite.Tests[1].ID != "two" {
		t.Fatalf("ids = %q, %q", suite.Tests[0].ID, suite.Tests[1].ID)
	}
}

func TestLoadRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{
			name:    "empty tests",
			file:    "empty.json",
			content: `{"tests": []}`,
			wantErr: "no tests",
		},
		{
			name:    "missing prompt",
			file:    "noprompt.json",
			content: `{"tests": [{"id": 1}]}`,
			wantErr: "schema validation",
		},
		{
			name:    "duplicate ids across types",
			file:    "dups.json",
			content: `{"tests": [{"id": 1, "prompt": "a", "acceptableAnswers": ["x"]}, {"id": "1", "prompt": "b", "acceptableAnswers": ["y"]}]}`,
			wantErr: "duplicate test id",
		},
		{
			name:    "unknown match mode",
			file:    "mode.json",
			content: `{"tests": [{"id": 1, "prompt": "a", "acceptableAnswers": ["x"], "matchMode": "fuzzy"}]}`,
			wantErr: "match mode",
		},
		{
			name:    "string match without answers",
			file:    "noanswers.json",
			content: `{"tests": [{"id": 1, "prompt": "a", "matchMode": "exact"}]}`,
			wantErr: "acceptableAnswers is required",
		},
		{
			name:    "threshold out of range",
			file:    "threshold.json",
			content: `{"tests": [{"id": 1, "prompt": "a", "acceptableAnswers": ["x"], "passThreshold": 11}]}`,
			wantErr: "schema validation",
		},
		{
			name:    "not json at all",
			file:    "garbage.json",
			content: `not a dataset`,
			wantErr: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeDataset(t, tt.file, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
