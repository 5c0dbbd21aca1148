package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SentinelCategory is the fallback label for anything that cannot be
// classified: unmatched model output, malformed responses, exhausted retries.
const SentinelCategory = "Other"

type Category struct {
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
}

// CategorySet is the closed, ordered label set every classification is
// normalized against. The sentinel "Other" is always a member.
type CategorySet struct {
	categories []Category
	byToken    map[string]string
}

func NewCategorySet(categories []Category) *CategorySet {
	set := &CategorySet{byToken: make(map[string]string)}
	for _, c := range categories {
		label := strings.TrimSpace(c.Label)
		if label == "" {
			continue
		}
		token := normalizeTextToken(label)
		if _, exists := set.byToken[token]; exists {
			continue
		}
		set.byToken[token] = label
		set.categories = append(set.categories, Category{Label: label, Description: strings.TrimSpace(c.Description)})
	}
	if _, ok := set.byToken[normalizeTextToken(SentinelCategory)]; !ok {
		set.byToken[normalizeTextToken(SentinelCategory)] = SentinelCategory
		set.categories = append(set.categories, Category{
			Label:       SentinelCategory,
			Description: "Doesn't fit above or is off-topic",
		})
	}
	return set
}

// DefaultCategories is the AI-in-education survey label set.
func DefaultCategories() *CategorySet {
	return NewCategorySet([]Category{
		{Label: "Cheating Concerns", Description: "Mentions of academic dishonesty, misuse"},
		{Label: "Positive Learning Use", Description: "Says AI helped them understand/study"},
		{Label: "Negative Experiences", Description: "Confusing, inaccurate, unhelpful"},
		{Label: "Overreliance", Description: "Worries about becoming lazy or dependent"},
		{Label: "Trust Issues", Description: "Doesn't trust responses; always double-checks"},
		{Label: "Policy/School Rules", Description: "Mentions bans, restrictions, teacher feedback"},
		{Label: "Mixed Views", Description: "Likes AI but has concerns"},
		{Label: "Ethical/Privacy Concerns", Description: "Worries about AI's effect on society/privacy"},
		{Label: "No Use", Description: "\"I don't use AI\" or \"never used it\""},
		{Label: "Other", Description: "Doesn't fit above or is off-topic"},
	})
}

// LoadCategories reads a label set from a YAML file:
//
//	categories:
//	  - label: "No Use"
//	    description: "Never used it"
func LoadCategories(path string) (*CategorySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	var doc struct {
		Categories []Category `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse categories yaml: %w", err)
	}
	if len(doc.Categories) == 0 {
		return nil, fmt.Errorf("%w: no categories defined in %s", ErrConfig, path)
	}
	return NewCategorySet(doc.Categories), nil
}

// Normalize maps a raw category value onto the closed set: case-insensitive,
// whitespace-trimmed exact match, sentinel for everything else. Total —
// never fails, whatever the model returned.
func (s *CategorySet) Normalize(raw string) string {
	if label, ok := s.byToken[normalizeTextToken(raw)]; ok {
		return label
	}
	return SentinelCategory
}

func (s *CategorySet) List() []Category {
	return s.categories
}

func (s *CategorySet) Labels() []string {
	labels := make([]string, 0, len(s.categories))
	for _, c := range s.categories {
		labels = append(labels, c.Label)
	}
	return labels
}

func (s *CategorySet) Len() int {
	return len(s.categories)
}

func normalizeTextToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
