package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fortio.org/log"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Mapstructure tags are used to map environment variables and config file keys.
type Config struct {
	// Server Configuration
	ServerAddress   string        `mapstructure:"SERVER_ADDRESS"`   // e.g., ":8080"
	AppEnv          string        `mapstructure:"APP_ENV"`          // "production" switches gin to release mode
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"` // e.g., "10s"
	LogLevel        string        `mapstructure:"LOG_LEVEL"`        // debug, verbose, info, warning, error

	// Model Configuration
	LLMProvider    string  `mapstructure:"LLM_PROVIDER"` // "openai" or "gemini"
	LLMTemperature float32 `mapstructure:"LLM_TEMPERATURE"`

	OpenAIKey       string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel     string `mapstructure:"OPENAI_MODEL"`      // e.g., "gpt-4o"
	OpenAIBaseURL   string `mapstructure:"OPENAI_BASE_URL"`   // optional, for compatible endpoints
	OpenAIMaxTokens int    `mapstructure:"OPENAI_MAX_TOKENS"` // 0 leaves it to the API

	GeminiKey   string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel string `mapstructure:"GEMINI_MODEL"` // e.g., "gemini-2.5-flash"
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var keys = []string{
	"SERVER_ADDRESS", "APP_ENV", "SHUTDOWN_TIMEOUT", "LOG_LEVEL",
	"LLM_PROVIDER", "LLM_TEMPERATURE",
	"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "OPENAI_MAX_TOKENS",
	"GEMINI_API_KEY", "GEMINI_MODEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_ADDRESS", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LLM_PROVIDER", ProviderOpenAI)
	v.SetDefault("LLM_TEMPERATURE", 0.7)
	v.SetDefault("OPENAI_MODEL", "gpt-4o")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
}

// LoadConfig reads configuration from config.yaml under path (when present)
// and from environment variables, which take precedence.
func LoadConfig(v *viper.Viper, path string) (config Config, err error) {
	v.AddConfigPath(path)     // Path to look for the config file in
	v.SetConfigName("config") // Name of config file (without extension)
	v.SetConfigType("yaml")
	setDefaults(v)

	v.AutomaticEnv()
	// Unmarshal only sees keys viper knows about; bind the ones without defaults.
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return Config{}, fmt.Errorf("binding %s: %w", k, err)
		}
	}

	err = v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
		log.Infof("Config file ('config.yaml') not found in %s, relying solely on environment variables.", path)
	} else {
		log.Infof("Using configuration file: %s", v.ConfigFileUsed())
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err = config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks that the selected provider is known and has a key.
func (c *Config) Validate() error {
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIKey == "" {
			return errors.New("OPENAI_API_KEY is required when LLM_PROVIDER is openai")
		}
	case ProviderGemini:
		if c.GeminiKey == "" {
			return errors.New("GEMINI_API_KEY is required when LLM_PROVIDER is gemini")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q, want %q or %q", c.LLMProvider, ProviderOpenAI, ProviderGemini)
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE %v out of range [0, 2]", c.LLMTemperature)
	}
	if c.ShutdownTimeout <= 0 {
		log.Warnf("SHUTDOWN_TIMEOUT %v is not positive, using 10s", c.ShutdownTimeout)
		c.ShutdownTimeout = 10 * time.Second
	}
	return nil
}
