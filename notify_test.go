package main

import (
	"strings"
	"testing"
)

func TestFormatRunSummary(t *testing.T) {
	set := DefaultCategories()
	out := &RunOutput{
		Summary: BuildSummary(set, []string{"No Use", "No Use", "Other"}),
		Model:   defaultAnthropicModel,
	}

	msg := FormatRunSummary(out)

	if !strings.Contains(msg, "Classified 3 responses") {
		t.Fatalf("expected total in message, got %q", msg)
	}
	lines := strings.Split(msg, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 ranked lines (zero counts omitted), got %d: %q", len(lines), msg)
	}
	if !strings.HasPrefix(lines[1], "- No Use: 2") {
		t.Fatalf("expected highest count ranked first, got %q", lines[1])
	}
	if !strings.Contains(lines[1], "66.67%") {
		t.Fatalf("expected percent in line, got %q", lines[1])
	}
	if strings.Contains(msg, "Cheating Concerns") {
		t.Fatalf("zero-count categories should be omitted, got %q", msg)
	}
}

func TestFormatRunSummaryTiesBreakAlphabetically(t *testing.T) {
	set := DefaultCategories()
	out := &RunOutput{
		Summary: BuildSummary(set, []string{"Trust Issues", "No Use"}),
		Model:   defaultAnthropicModel,
	}

	msg := FormatRunSummary(out)
	noUse := strings.Index(msg, "No Use")
	trust := strings.Index(msg, "Trust Issues")
	if noUse == -1 || trust == -1 || noUse > trust {
		t.Fatalf("expected alphabetical tie-break, got %q", msg)
	}
}
