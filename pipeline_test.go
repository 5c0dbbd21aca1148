package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"
)

func pipelineFixtureCSV(t *testing.T) string {
	t.Helper()
	return writeFixture(t, "answers.csv",
		"AI helps me study\n"+
			"I never use it\n"+
			"teachers banned it\n")
}

func stubReplies() []stubReply {
	return []stubReply{
		{text: `{"category": "Positive Learning Use", "reason": "studying"}`},
		{err: &ServiceError{Status: 400, Msg: "bad request"}},
		{text: `{"category": "Policy/School Rules", "reason": "bans"}`},
	}
}

func newTestPipeline(cfg Config, clf Classifier) (*Pipeline, *[]time.Duration) {
	p := NewPipeline(cfg, DefaultCategories(), clf)
	var delays []time.Duration
	p.sleep = recordingSleep(&delays)
	p.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return p, &delays
}

func TestPipelineOneOutputPerInput(t *testing.T) {
	cfg := Config{
		InputPath:   pipelineFixtureCSV(t),
		MaxRetries:  2,
		PauseMillis: 100,
	}
	clf := &stubClassifier{replies: []stubReply{
		stubReplies()[0],
		stubReplies()[1], stubReplies()[1], // consumes the 2-attempt budget
		stubReplies()[2],
	}}
	p, delays := newTestPipeline(cfg, clf)

	out, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(out.Results) != 3 {
		t.Fatalf("expected one output per input, got %d", len(out.Results))
	}
	if out.Results[0].Category != "Positive Learning Use" {
		t.Fatalf("unexpected first category: %q", out.Results[0].Category)
	}
	if out.Results[1].Category != SentinelCategory {
		t.Fatalf("expected degraded middle record, got %q", out.Results[1].Category)
	}
	if out.Results[1].Reason == "" {
		t.Fatal("degraded record must carry a diagnostic")
	}
	if out.Results[2].Category != "Policy/School Rules" {
		t.Fatalf("run must continue past failures, got %q", out.Results[2].Category)
	}
	if out.Results[0].Record.Text != "AI helps me study" {
		t.Fatalf("output order must match input order, got %q", out.Results[0].Record.Text)
	}

	if out.Summary.TotalInputs != 3 {
		t.Fatalf("unexpected summary total: %d", out.Summary.TotalInputs)
	}
	if out.Summary.CategoryCounts[SentinelCategory] != 1 {
		t.Fatalf("expected 1 sentinel in summary, got %d", out.Summary.CategoryCounts[SentinelCategory])
	}

	// Two courtesy pauses between three records; fatal errors add no backoff.
	pauses := 0
	for _, d := range *delays {
		if d == 100*time.Millisecond {
			pauses++
		}
	}
	if pauses != 2 {
		t.Fatalf("expected 2 courtesy pauses, got %d (delays %v)", pauses, *delays)
	}
}

func TestPipelineIdempotentWithStubbedClient(t *testing.T) {
	cfg := Config{
		InputPath:   pipelineFixtureCSV(t),
		MaxRetries:  2,
		PauseMillis: 0,
	}

	run := func() []byte {
		clf := &stubClassifier{replies: []stubReply{
			stubReplies()[0],
			stubReplies()[1], stubReplies()[1],
			stubReplies()[2],
		}}
		p, _ := newTestPipeline(cfg, clf)
		out, err := p.Run(context.Background())
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		data, err := json.Marshal(out.Summary)
		if err != nil {
			t.Fatalf("marshal summary: %v", err)
		}
		return data
	}

	first := run()
	second := run()
	if !bytes.Equal(first, second) {
		t.Fatalf("summaries differ across identical runs:\n%s\n%s", first, second)
	}
}

func TestPipelineUnreadableInputAborts(t *testing.T) {
	cfg := Config{
		InputPath:  "/nonexistent/answers.csv",
		MaxRetries: 1,
	}
	p, _ := newTestPipeline(cfg, &stubClassifier{replies: stubReplies()})

	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("expected error for unreadable input")
	}
}

func TestPipelineUsageAccumulates(t *testing.T) {
	cfg := Config{
		InputPath:   pipelineFixtureCSV(t),
		MaxRetries:  1,
		PauseMillis: 0,
	}
	clf := &stubClassifier{replies: []stubReply{
		{text: `{"category": "No Use", "reason": "n/a"}`},
	}}
	p, _ := newTestPipeline(cfg, clf)

	out, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	// Stub reports 10 in / 5 out per call, one call per record.
	if out.Usage.InputTokens != 30 || out.Usage.OutputTokens != 15 {
		t.Fatalf("unexpected usage: %+v", out.Usage)
	}
}
