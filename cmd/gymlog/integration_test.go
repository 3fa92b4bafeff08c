// ABOUTME: Integration tests for the gymlog binary.
// ABOUTME: Builds the CLI and drives a full workout session through it.
package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var idLine = regexp.MustCompile(`ID: ([0-9a-f]{8})`)

func TestFullWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping binary build in short mode")
	}

	tmpDir := t.TempDir()
	binary := filepath.Join(t.TempDir(), "gymlog")

	buildCmd := exec.Command("go", "build", "-o", binary, ".")
	if output, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build: %v\n%s", err, output)
	}

	dbPath := filepath.Join(tmpDir, "test.db")
	run := func(args ...string) (string, error) {
		fullArgs := append([]string{"--db", dbPath}, args...)
		cmd := exec.Command(binary, fullArgs...)
		cmd.Env = append(os.Environ(), "XDG_CONFIG_HOME="+tmpDir, "NO_COLOR=1")
		output, err := cmd.CombinedOutput()
		return string(output), err
	}
	idFrom := func(output string) string {
		m := idLine.FindStringSubmatch(output)
		if m == nil {
			t.Fatalf("no ID in output: %s", output)
		}
		return m[1]
	}

	output, err := run("workout", "add", "Leg Day", "--date", "2024-01-01")
	if err != nil {
		t.Fatalf("Failed to add workout: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Added workout Leg Day") {
		t.Errorf("Expected 'Added workout Leg Day' in output, got: %s", output)
	}
	workoutID := idFrom(output)

	output, err = run("workout", "exercise", workoutID, "Squat")
	if err != nil {
		t.Fatalf("Failed to add exercise: %v\n%s", err, output)
	}
	entryID := idFrom(output)

	output, err = run("set", "add", entryID, "--weight", "100", "--reps", "5")
	if err != nil {
		t.Fatalf("Failed to add set: %v\n%s", err, output)
	}
	if !strings.Contains(output, "100.00 x 5") {
		t.Errorf("Expected '100.00 x 5' in output, got: %s", output)
	}

	output, err = run("workout", "show", workoutID)
	if err != nil {
		t.Fatalf("Failed to show workout: %v\n%s", err, output)
	}
	for _, want := range []string{"Leg Day", "Squat", "Volume: 500.00"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in workout show, got: %s", want, output)
		}
	}

	output, err = run("workout", "list")
	if err != nil {
		t.Fatalf("Failed to list workouts: %v\n%s", err, output)
	}
	if !strings.Contains(output, "2024-01-01") {
		t.Errorf("Expected '2024-01-01' in workout list, got: %s", output)
	}

	output, err = run("user", "list")
	if err != nil {
		t.Fatalf("Failed to list users: %v\n%s", err, output)
	}
	if !strings.Contains(output, "local") {
		t.Errorf("Expected the default 'local' user, got: %s", output)
	}

	output, err = run("workout", "show", "ffffffff")
	if err == nil {
		t.Errorf("Expected failure for a missing workout, got: %s", output)
	}
	if !strings.Contains(output, "Error:") {
		t.Errorf("Expected cobra error output, got: %s", output)
	}
}
