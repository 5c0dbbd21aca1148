package main

import (
	"context"
	"fmt"
	"log"
	"time"
)

// RecordResult pairs a loaded input with its terminal classification.
type RecordResult struct {
	Record Record
	ClassificationResult
}

type RunOutput struct {
	Summary  Summary
	Results  []RecordResult
	Usage    LLMUsage
	Model    string
	Provider string
	Started  time.Time
	Finished time.Time
}

// Pipeline runs the whole batch: load, classify each record in order with
// retry, aggregate. Strictly sequential with a courtesy pause between
// external calls so the service's rate limits are respected and output
// order trivially matches input order.
type Pipeline struct {
	cfg   Config
	set   *CategorySet
	clf   Classifier
	sleep func(time.Duration)
	now   func() time.Time
}

func NewPipeline(cfg Config, set *CategorySet, clf Classifier) *Pipeline {
	return &Pipeline{cfg: cfg, set: set, clf: clf, sleep: time.Sleep, now: time.Now}
}

// Run processes every record even when earlier ones degraded to the
// sentinel; per-record failures never fail the batch. It returns an error
// only for whole-run problems (unreadable input, bad schema).
func (p *Pipeline) Run(ctx context.Context) (*RunOutput, error) {
	records, err := LoadRecords(p.cfg.InputPath, p.cfg.InputColumn)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	log.Printf("run start input=%s records=%d provider=%s model=%s", p.cfg.InputPath, len(records), p.cfg.LLMProvider, p.modelName())

	policy := defaultRetryPolicy(p.cfg.MaxRetries)
	policy.sleep = p.sleep
	pause := time.Duration(p.cfg.PauseMillis) * time.Millisecond

	out := &RunOutput{
		Model:    p.modelName(),
		Provider: p.cfg.LLMProvider,
		Started:  p.now(),
		Results:  make([]RecordResult, 0, len(records)),
	}
	categories := make([]string, 0, len(records))

	for i, rec := range records {
		if i > 0 && pause > 0 {
			p.sleep(pause)
		}
		prompt := BuildPrompt(p.set, rec.Text)
		result, usage := classifyWithRetry(ctx, p.clf, p.set, prompt, policy)
		out.Usage.Add(usage)
		out.Results = append(out.Results, RecordResult{Record: rec, ClassificationResult: result})
		categories = append(categories, result.Category)
		log.Printf("classified record=%d/%d category=%q tokens=%d", i+1, len(records), result.Category, usage.TotalTokens())
	}

	out.Summary = BuildSummary(p.set, categories)
	out.Finished = p.now()
	log.Printf("run done records=%d tokens_in=%d tokens_out=%d elapsed=%s",
		len(out.Results), out.Usage.InputTokens, out.Usage.OutputTokens, out.Finished.Sub(out.Started).Round(time.Millisecond))
	return out, nil
}

func (p *Pipeline) modelName() string {
	if p.cfg.LLMModel != "" {
		return p.cfg.LLMModel
	}
	if p.cfg.LLMProvider == "openai" {
		return defaultOpenAIModel
	}
	return defaultAnthropicModel
}
