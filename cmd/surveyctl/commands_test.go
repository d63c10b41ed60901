package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI executes surveyctl against a fresh CSV store in dir.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func newStoreDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := "store:\n  data_dir: " + filepath.Join(dir, "data") + "\nlog:\n  level: error\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestAddThenEntries(t *testing.T) {
	dir := newStoreDir(t)

	out, err := runCLI(t, dir, "add", "--date", "2024-01-01", "--steps", "5000", "--energy", "7", "--notes", "felt good")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "saved 2024-01-01 steps=5000 energy=7") {
		t.Errorf("add output = %q", out)
	}

	out, err = runCLI(t, dir, "entries")
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if !strings.Contains(out, "2024-01-01") || !strings.Contains(out, "felt good") {
		t.Errorf("entries output = %q", out)
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	dir := newStoreDir(t)
	_, err := runCLI(t, dir, "add", "--date", "2024-01-01", "--steps", "lots", "--energy", "7")
	if err == nil || !strings.Contains(err.Error(), "steps must be a whole number") {
		t.Fatalf("err = %v, want steps validation failure", err)
	}
	out, err := runCLI(t, dir, "entries")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "no entries stored yet") {
		t.Errorf("entries after rejected add = %q", out)
	}
}

func TestSummary(t *testing.T) {
	dir := newStoreDir(t)
	if out, err := runCLI(t, dir, "summary"); err != nil || !strings.Contains(out, "no survey data found yet") {
		t.Fatalf("summary on empty store = %q, %v", out, err)
	}

	for _, args := range [][]string{
		{"add", "--date", "2024-01-01", "--steps", "3000", "--energy", "2", "--notes", "tired"},
		{"add", "--date", "2024-01-02", "--steps", "7000", "--energy", "9"},
	} {
		if _, err := runCLI(t, dir, args...); err != nil {
			t.Fatal(err)
		}
	}

	out, err := runCLI(t, dir, "summary", "--keyword", "TIRED")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"rows", "1", `keyword`, "Low Energy"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output missing %q:\n%s", want, out)
		}
	}

	if _, err := runCLI(t, dir, "summary", "--from", "01/01/2024"); err == nil {
		t.Error("summary accepted a malformed --from date")
	}
}
