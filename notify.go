package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/slack-go/slack"
)

// FormatRunSummary renders the finished run for a notification message:
// totals plus categories ranked by count, zero-count ones omitted.
func FormatRunSummary(out *RunOutput) string {
	type entry struct {
		label string
		count int
		pct   float64
	}
	var entries []entry
	for label, count := range out.Summary.CategoryCounts {
		if count == 0 {
			continue
		}
		entries = append(entries, entry{label, count, out.Summary.CategoryPercents[label]})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].label < entries[j].label
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Classified %d responses (model: %s):\n", out.Summary.TotalInputs, out.Model)
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s: %d (%.2f%%)\n", e.label, e.count, e.pct)
	}
	return strings.TrimRight(b.String(), "\n")
}

// PostRunSummary posts the summary to the configured Slack channel. Best
// effort: callers log the error and keep the run's output regardless.
func PostRunSummary(api *slack.Client, channelID string, out *RunOutput) error {
	_, _, err := api.PostMessage(channelID, slack.MsgOptionText(FormatRunSummary(out), false))
	return err
}
