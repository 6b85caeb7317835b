package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHandlerDemo(t *testing.T) {
	status := Handler(nil, map[string]string{"demo": "true"})
	if status != 0 {
		t.Fatalf("expected exit status 0 compiling the demo, got %d", status)
	}
}

func TestHandlerTypecheckOnly(t *testing.T) {
	status := Handler(nil, map[string]string{"demo": "true", "typecheck": "true"})
	if status != 0 {
		t.Fatalf("expected exit status 0 type-checking the demo, got %d", status)
	}
}

func TestHandlerMissingSource(t *testing.T) {
	status := Handler(nil, map[string]string{})
	if status == 0 {
		t.Fatal("expected a non-zero exit status when neither an input file nor --demo is given")
	}
}

func TestHandlerFileAndOut(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "main.lang")
	if err := os.WriteFile(input, []byte(`function main() { return 2 + 3 * 4; }`), 0o644); err != nil {
		t.Fatalf("unable to write fixture source: %v", err)
	}
	output := filepath.Join(dir, "main.s")

	status := Handler([]string{input}, map[string]string{"out": output})
	if status != 0 {
		t.Fatalf("expected exit status 0, got %d", status)
	}

	content, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("expected an output file to have been written: %v", err)
	}
	if len(content) == 0 {
		t.Fatal("expected the output file to contain emitted assembly")
	}
}

func TestHandlerRejectsBadSource(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "main.lang")
	if err := os.WriteFile(input, []byte(`function main() { return 1 + ; }`), 0o644); err != nil {
		t.Fatalf("unable to write fixture source: %v", err)
	}

	status := Handler([]string{input}, map[string]string{})
	if status == 0 {
		t.Fatal("expected a non-zero exit status for a source file with a parse error")
	}
}
