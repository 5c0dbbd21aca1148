package main

import (
	"fmt"
	"strings"
)

// systemMessage establishes the labeling role and the output contract.
const systemMessage = "You are a strict data labeling assistant. Your task is to classify a single free-text response " +
	"about AI in education into exactly ONE category from a fixed label set. Return only valid JSON."

const promptHeader = "Classify the following free-text response into exactly ONE of the categories below.\n\n" +
	"Categories (use exact strings):\n"

const promptInstructions = `
Instructions:
- Choose exactly one category that best fits overall.
- If multiple categories seem present, pick the single category that is most apparent overall.
- If none clearly fit, use "Other".
- Output JSON only in this schema:
  {
    "category": "<one of the allowed categories>",
    "reason": "<short rationale>"
  }

Response:
`

// BuildPrompt renders the classification prompt for one response. Pure and
// deterministic: identical text and category set always produce the same
// prompt, so stubbed-client runs are reproducible byte for byte.
func BuildPrompt(set *CategorySet, text string) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	for _, c := range set.List() {
		b.WriteString(fmt.Sprintf("- %s: %s\n", c.Label, c.Description))
	}
	b.WriteString(promptInstructions)
	b.WriteString(`"""` + text + `"""`)
	return b.String()
}
