package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DBPath    string `yaml:"db_path"`
	RulesPath string `yaml:"rules_path"`
	ModelPath string `yaml:"model_path"`

	OracleProvider  string `yaml:"oracle_provider"`
	OracleModel     string `yaml:"oracle_model"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`

	SlackBotToken  string `yaml:"slack_bot_token"`
	AlertChannelID string `yaml:"alert_channel_id"`

	PendingSchedule string `yaml:"pending_schedule"`
	ResweepSchedule string `yaml:"resweep_schedule"`
	BatchSize       int    `yaml:"batch_size"`

	ExternalHTTPTimeoutSeconds int    `yaml:"external_http_timeout_seconds"`
	Timezone                   string `yaml:"timezone"`

	Location *time.Location `yaml:"-"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
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
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.RulesPath, "RULES_PATH")
	envOverride(&cfg.ModelPath, "MODEL_PATH")
	envOverride(&cfg.OracleProvider, "ORACLE_PROVIDER")
	envOverride(&cfg.OracleModel, "ORACLE_MODEL")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.AlertChannelID, "ALERT_CHANNEL_ID")
	envOverride(&cfg.PendingSchedule, "PENDING_SCHEDULE")
	envOverride(&cfg.ResweepSchedule, "RESWEEP_SCHEDULE")
	envOverrideInt(&cfg.BatchSize, "BATCH_SIZE")
	envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")
	envOverride(&cfg.Timezone, "TIMEZONE")

	// Defaults
	if cfg.DBPath == "" {
		cfg.DBPath = "./triagebot.db"
	}
	if cfg.ModelPath == "" {
		cfg.ModelPath = "./models/classifier.json"
	}
	if cfg.PendingSchedule == "" {
		cfg.PendingSchedule = "*/5 * * * *"
	}
	if cfg.ResweepSchedule == "" {
		cfg.ResweepSchedule = "0 3 * * *"
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	// Validate. A missing oracle credential or model artifact is a
	// steady state, not a config error; the pipeline degrades to its
	// rule-based paths.
	switch cfg.OracleProvider {
	case "", "openai", "gemini", "anthropic":
	default:
		log.Fatalf("oracle_provider must be 'openai', 'gemini', 'anthropic' or empty, got '%s'", cfg.OracleProvider)
	}
	if cfg.BatchSize < 1 {
		log.Fatalf("invalid batch_size '%d': must be >= 1", cfg.BatchSize)
	}
	if cfg.AlertChannelID != "" && cfg.SlackBotToken == "" {
		log.Fatalf("alert_channel_id is set but slack_bot_token is not")
	}

	if cfg.Timezone == "Local" {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	return cfg
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
