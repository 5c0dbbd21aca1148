package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

type modelAnswer struct {
	Category json.RawMessage `json:"category"`
	Reason   string          `json:"reason"`
}

// parseClassification extracts {category, reason} from raw model output.
// Models wrap the JSON payload in prose or markdown fences often enough that
// the parser carves from the first '{' to the last '}' before decoding; when
// no brace pair exists the whole text is tried as-is. A missing reason
// defaults to empty; a missing or non-string category comes back empty and is
// mapped to the sentinel by the normalizer.
func parseClassification(raw string) (category, reason string, err error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		text = text[start : end+1]
	}

	var answer modelAnswer
	if err := json.Unmarshal([]byte(text), &answer); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrParse, err)
	}

	if len(answer.Category) > 0 {
		// Accept only a JSON string; numbers, arrays etc. fall through to "".
		_ = json.Unmarshal(answer.Category, &category)
	}
	return category, strings.TrimSpace(answer.Reason), nil
}
