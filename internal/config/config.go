package config

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr     string         `mapstructure:"http_addr"`
	DataDir      string         `mapstructure:"data_dir"`
	TokenTTL     time.Duration  `mapstructure:"token_ttl"`
	AIProvider   string         `mapstructure:"ai_provider"`
	SystemPrompt string         `mapstructure:"system_prompt"`
	DeepSeek     DeepSeekConfig `mapstructure:"deepseek"`
}

type DeepSeekConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

const defaultSystemPrompt = `You are a customer-service assistant. Stay polite and professional, ` +
	`give concise and accurate answers, admit it when you are not sure, never invent facts, ` +
	`break complex answers into steps, avoid jargon, and focus on resolving the user's core ` +
	`question before offering extra information.`

// Load reads config.yaml when present and lets environment variables override
// every key. Missing files are fine; all settings have defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("data_dir", "data")
	v.SetDefault("token_ttl", "168h")
	v.SetDefault("ai_provider", "deepseek")
	v.SetDefault("system_prompt", defaultSystemPrompt)
	v.SetDefault("deepseek.base_url", "https://api.deepseek.com")
	v.SetDefault("deepseek.model", "deepseek-chat")

	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if key := v.GetString("DEEPSEEK_API_KEY"); key != "" {
		cfg.DeepSeek.APIKey = key
	}
	if url := v.GetString("DEEPSEEK_BASE_URL"); url != "" {
		cfg.DeepSeek.BaseURL = url
	}
	if model := v.GetString("DEEPSEEK_MODEL"); model != "" {
		cfg.DeepSeek.Model = model
	}
	if addr := v.GetString("HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}
	if dir := v.GetString("DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}

	return &cfg, nil
}
