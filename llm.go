package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// maxAnswerTokens bounds the completion; a category plus a short rationale
// never needs more.
const maxAnswerTokens = 200

const defaultAnthropicModel = "claude-3-5-sonnet-latest"
const defaultOpenAIModel = "gpt-4o-mini"

// Classifier sends one classification prompt to a text-generation service
// and returns the raw response text. Implementations must request the most
// deterministic decoding the service offers (temperature 0). Failures are
// reported as *ServiceError where an HTTP status is known.
type Classifier interface {
	Complete(ctx context.Context, system, prompt string) (string, LLMUsage, error)
}

type LLMUsage struct {
	InputTokens  int64
	OutputTokens int64
}

func (u LLMUsage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

func (u *LLMUsage) Add(other LLMUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// NewClassifier builds the provider selected by the config. Config is
// validated before this runs, so the provider switch is exhaustive.
func NewClassifier(cfg Config) Classifier {
	switch cfg.LLMProvider {
	case "openai":
		model := cfg.LLMModel
		if model == "" {
			model = defaultOpenAIModel
		}
		return &openAIClassifier{apiKey: cfg.OpenAIAPIKey, model: model}
	default:
		model := cfg.LLMModel
		if model == "" {
			model = defaultAnthropicModel
		}
		return newAnthropicClassifier(cfg.AnthropicAPIKey, model)
	}
}

// --- Anthropic ---

type anthropicClassifier struct {
	client anthropic.Client
	model  string
}

func newAnthropicClassifier(apiKey, model string) *anthropicClassifier {
	return &anthropicClassifier{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (c *anthropicClassifier) Complete(ctx context.Context, system, prompt string) (string, LLMUsage, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   maxAnswerTokens,
		Temperature: anthropic.Float(0),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apierr *anthropic.Error
		if errors.As(err, &apierr) {
			return "", LLMUsage{}, &ServiceError{Status: apierr.StatusCode, Msg: apierr.Error()}
		}
		return "", LLMUsage{}, &ServiceError{Msg: err.Error()}
	}
	usage := LLMUsage{
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}

	// The response arrives as typed content blocks; concatenate every text
	// block into one string at this boundary.
	var parts []string
	for _, block := range message.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	combined := strings.TrimSpace(strings.Join(parts, ""))
	if combined == "" {
		return "", usage, &ServiceError{Msg: "no text content in response"}
	}
	log.Printf("llm anthropic response size=%d tokens_in=%d tokens_out=%d", len(combined), usage.InputTokens, usage.OutputTokens)
	return combined, usage, nil
}

// --- OpenAI-compatible chat completions ---

type openAIClassifier struct {
	apiKey string
	model  string
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
	Messages    []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *openAIClassifier) Complete(ctx context.Context, system, prompt string) (string, LLMUsage, error) {
	reqBody := openAIRequest{
		Model:       c.model,
		Temperature: 0,
		MaxTokens:   maxAnswerTokens,
		Messages: []openAIMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", LLMUsage{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", LLMUsage{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := externalHTTPClient.Do(req)
	if err != nil {
		return "", LLMUsage{}, &ServiceError{Msg: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", LLMUsage{}, &ServiceError{Msg: fmt.Sprintf("reading response: %v", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", LLMUsage{}, &ServiceError{Status: resp.StatusCode, Msg: strings.TrimSpace(string(respBody))}
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", LLMUsage{}, &ServiceError{Msg: fmt.Sprintf("parsing response: %v", err)}
	}
	if parsed.Error != nil {
		return "", LLMUsage{}, &ServiceError{Status: resp.StatusCode, Msg: parsed.Error.Message}
	}
	if len(parsed.Choices) == 0 {
		return "", LLMUsage{}, &ServiceError{Msg: "no choices in response"}
	}

	usage := LLMUsage{}
	if parsed.Usage != nil {
		usage.InputTokens = parsed.Usage.PromptTokens
		usage.OutputTokens = parsed.Usage.CompletionTokens
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	log.Printf("llm openai response size=%d tokens_in=%d tokens_out=%d", len(content), usage.InputTokens, usage.OutputTokens)
	return content, usage, nil
}
