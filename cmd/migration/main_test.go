package main

import "testing"

func TestParseSteps(t *testing.T) {
	if got, err := parseSteps(nil); err != nil || got != 1 {
		t.Fatalf("expected default of 1 step, got %d err=%v", got, err)
	}
	if got, err := parseSteps([]string{" 3 "}); err != nil || got != 3 {
		t.Fatalf("expected 3 steps, got %d err=%v", got, err)
	}
	if _, err := parseSteps([]string{"0"}); err == nil {
		t.Fatalf("expected error for zero steps")
	}
}

func TestParseVersionAndTarget(t *testing.T) {
	if _, err := parseVersion("-1"); err == nil {
		t.Fatalf("expected error for negative version")
	}
	if got, err := parseTarget("20250101000000"); err != nil || got != 20250101000000 {
		t.Fatalf("unexpected target %d err=%v", got, err)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("MIGRATION_FLAG", "")
	if !envBool("MIGRATION_FLAG", true) {
		t.Fatalf("expected fallback for empty value")
	}
	t.Setenv("MIGRATION_FLAG", "off")
	if envBool("MIGRATION_FLAG", true) {
		t.Fatalf("expected false for off")
	}
}
