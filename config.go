package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Output modes.
const (
	// ModeSummary writes one JSON document: {"summary": ..., "data": [...]},
	// where each data row retains the raw model output.
	ModeSummary = "summary"
	// ModeRecords writes the original rows with category/reason appended,
	// as a JSON array or CSV.
	ModeRecords = "records"
)

type Config struct {
	InputPath   string `yaml:"input_path"`
	InputColumn string `yaml:"input_column"`
	OutputPath  string `yaml:"output_path"`
	OutputMode  string `yaml:"output_mode"`

	LLMProvider     string `yaml:"llm_provider"`
	LLMModel        string `yaml:"llm_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`

	CategoriesPath string `yaml:"categories_path"`
	MaxRetries     int    `yaml:"max_retries"`
	PauseMillis    int    `yaml:"pause_ms"`

	DBPath         string `yaml:"db_path"`
	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`
	RunSchedule    string `yaml:"run_schedule"`
}

// LoadConfig reads config.yaml (or CONFIG_PATH), applies env var overrides
// and defaults. Validation is separate so main can fold in CLI flags first.
func LoadConfig() Config {
	var cfg Config

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.InputPath, "INPUT_PATH")
	envOverride(&cfg.InputColumn, "INPUT_COLUMN")
	envOverride(&cfg.OutputPath, "OUTPUT_PATH")
	envOverride(&cfg.OutputMode, "OUTPUT_MODE")
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.CategoriesPath, "CATEGORIES_PATH")
	envOverrideInt(&cfg.MaxRetries, "MAX_RETRIES")
	envOverrideInt(&cfg.PauseMillis, "PAUSE_MS")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverride(&cfg.RunSchedule, "RUN_SCHEDULE")

	// Defaults
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "anthropic"
	}
	if cfg.OutputMode == "" {
		cfg.OutputMode = ModeSummary
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.PauseMillis == 0 {
		cfg.PauseMillis = 100
	}

	return cfg
}

// Validate reports the first configuration problem that would make the run
// meaningless. All of these abort before any record is processed.
func (c Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("%w: input_path is required", ErrConfig)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("%w: output_path is required", ErrConfig)
	}

	outExt := strings.ToLower(filepath.Ext(c.OutputPath))
	switch c.OutputMode {
	case ModeSummary:
		if outExt != ".json" {
			return fmt.Errorf("%w: summary output must be .json, got %q", ErrConfig, outExt)
		}
	case ModeRecords:
		if outExt != ".json" && outExt != ".csv" {
			return fmt.Errorf("%w: records output must be .json or .csv, got %q", ErrConfig, outExt)
		}
		if c.InputColumn == "" {
			return fmt.Errorf("%w: records output requires input_column", ErrConfig)
		}
	default:
		return fmt.Errorf("%w: output_mode must be %q or %q, got %q", ErrConfig, ModeSummary, ModeRecords, c.OutputMode)
	}

	switch c.LLMProvider {
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("%w: anthropic_api_key is required when llm_provider=anthropic", ErrConfig)
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: openai_api_key is required when llm_provider=openai", ErrConfig)
		}
	default:
		return fmt.Errorf("%w: llm_provider must be 'anthropic' or 'openai', got %q", ErrConfig, c.LLMProvider)
	}

	if c.MaxRetries < 1 {
		return fmt.Errorf("%w: max_retries must be >= 1, got %d", ErrConfig, c.MaxRetries)
	}
	if c.PauseMillis < 0 {
		return fmt.Errorf("%w: pause_ms must be >= 0, got %d", ErrConfig, c.PauseMillis)
	}
	if c.SlackChannelID != "" && c.SlackBotToken == "" {
		return fmt.Errorf("%w: slack_channel_id requires slack_bot_token", ErrConfig)
	}
	if c.RunSchedule != "" {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(c.RunSchedule); err != nil {
			return fmt.Errorf("%w: invalid run_schedule %q: %v", ErrConfig, c.RunSchedule, err)
		}
	}
	return nil
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}
