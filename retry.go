package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

const (
	defaultMaxRetries = 5
	backoffBase       = 1 * time.Second
	backoffCap        = 16 * time.Second
)

// ClassificationResult is the terminal outcome for one record. Category is
// always a member of the allowed set; on fallback it is the sentinel and
// Reason carries a diagnostic identifying the cause.
type ClassificationResult struct {
	Category string
	Reason   string
	Raw      string
}

type retryPolicy struct {
	maxRetries int
	sleep      func(time.Duration)
}

func defaultRetryPolicy(maxRetries int) retryPolicy {
	if maxRetries < 1 {
		maxRetries = defaultMaxRetries
	}
	return retryPolicy{maxRetries: maxRetries, sleep: time.Sleep}
}

// classifyWithRetry drives one record through the client, parser and
// normalizer under the retry budget. Transient service errors and transport
// failures back off before the next attempt (1s doubling to a 16s cap, no
// sleep after the final attempt); parse failures and non-retryable service
// errors consume an attempt immediately. The budget exhausting never
// propagates an error: the record degrades to a sentinel result so the batch
// always produces one output per input.
func classifyWithRetry(ctx context.Context, clf Classifier, set *CategorySet, prompt string, policy retryPolicy) (ClassificationResult, LLMUsage) {
	totalUsage := LLMUsage{}
	delay := backoffBase

	for attempt := 0; attempt < policy.maxRetries; attempt++ {
		last := attempt == policy.maxRetries-1

		raw, usage, err := clf.Complete(ctx, systemMessage, prompt)
		totalUsage.Add(usage)

		if err != nil {
			var svcErr *ServiceError
			switch {
			case errors.As(err, &svcErr) && svcErr.Transient():
				log.Printf("classify attempt=%d transient status=%d", attempt+1, svcErr.Status)
				if last {
					return fallbackResult(fmt.Sprintf("API error: %v", svcErr), ""), totalUsage
				}
				policy.sleep(delay)
				delay = nextDelay(delay)
			case errors.As(err, &svcErr):
				log.Printf("classify attempt=%d fatal status=%d", attempt+1, svcErr.Status)
				if last {
					return fallbackResult(fmt.Sprintf("API error: %v", svcErr), ""), totalUsage
				}
			default:
				log.Printf("classify attempt=%d error: %v", attempt+1, err)
				if last {
					return fallbackResult(fmt.Sprintf("unexpected error: %v", err), ""), totalUsage
				}
				policy.sleep(delay)
				delay = nextDelay(delay)
			}
			continue
		}

		category, reason, perr := parseClassification(raw)
		if perr != nil {
			log.Printf("classify attempt=%d parse error: %v", attempt+1, perr)
			if last {
				return fallbackResult(fmt.Sprintf("could not parse model output: %v", perr), raw), totalUsage
			}
			continue
		}

		return ClassificationResult{
			Category: set.Normalize(category),
			Reason:   reason,
			Raw:      raw,
		}, totalUsage
	}

	return fallbackResult("unknown error", ""), totalUsage
}

func nextDelay(delay time.Duration) time.Duration {
	delay *= 2
	if delay > backoffCap {
		delay = backoffCap
	}
	return delay
}

func fallbackResult(diagnostic, raw string) ClassificationResult {
	return ClassificationResult{
		Category: SentinelCategory,
		Reason:   diagnostic,
		Raw:      raw,
	}
}
