package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testSchema = `
simulation?: {
	vessel_id?:        string
	start_lat?:        >=-90 & <=90
	initial_speed_kn?: >=0
	scenario?:         "normal" | "collision" | "spoofing" | "anomaly"
}
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestValidateWithCueAccepts(t *testing.T) {
	yamlPath := writeTemp(t, "ok.yaml", `
simulation:
  vessel_id: "vessel-01"
  start_lat: 51.5074
  initial_speed_kn: 12.0
  scenario: "normal"
`)
	cuePath := writeTemp(t, "schema.cue", testSchema)

	if err := ValidateWithCue(yamlPath, cuePath); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateWithCueRejectsOutOfRange(t *testing.T) {
	yamlPath := writeTemp(t, "bad.yaml", `
simulation:
  start_lat: 123.4
`)
	cuePath := writeTemp(t, "schema.cue", testSchema)

	if err := ValidateWithCue(yamlPath, cuePath); err == nil {
		t.Fatal("out-of-range latitude accepted")
	}
}

func TestValidateWithCueRejectsUnknownScenario(t *testing.T) {
	yamlPath := writeTemp(t, "bad.yaml", `
simulation:
  scenario: "chaos"
`)
	cuePath := writeTemp(t, "schema.cue", testSchema)

	if err := ValidateWithCue(yamlPath, cuePath); err == nil {
		t.Fatal("unknown scenario accepted")
	}
}
