package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

const (
	ProviderDashScope = "dashscope"
	ProviderGemini    = "gemini"
)

type Config struct {
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	Debug      bool   `env:"DEBUG" envDefault:"false"`
	PreferIPv4 bool   `env:"PREFER_IPV4" envDefault:"true"`

	// HTTP listen address for cmd/web, e.g. ":8080"
	WebAddr string `env:"WEB_ADDR" envDefault:":8080"`

	HTTPTimeoutSeconds    int `env:"HTTP_TIMEOUT_SECONDS" envDefault:"180"`
	RequestTimeoutSeconds int `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"300"`

	TextProvider       string `env:"TEXT_PROVIDER" envDefault:"dashscope"`
	DashScopeAPIKey    string `env:"DASHSCOPE_API_KEY"`
	DashScopeBaseURL   string `env:"DASHSCOPE_BASE_URL" envDefault:"https://dashscope.aliyuncs.com"`
	DashScopeTextModel string `env:"DASHSCOPE_TEXT_MODEL" envDefault:"qwen-turbo"`
	GeminiAPIKey       string `env:"GEMINI_API_KEY"`
	GeminiTextModel    string `env:"GEMINI_TEXT_MODEL" envDefault:"gemini-2.5-flash"`
	TextTimeoutSeconds int    `env:"TEXT_TIMEOUT_SECONDS" envDefault:"60"`
	MaxAttempts        int    `env:"MAX_ATTEMPTS" envDefault:"3"`

	DiversityRejectRate float64 `env:"DIVERSITY_REJECT_RATE" envDefault:"0"`

	// Empty means render in process through the DashScope image API.
	ImageCommand        string   `env:"IMAGE_COMMAND"`
	ImageViews          []string `env:"IMAGE_VIEWS" envSeparator:"," envDefault:"front,side,back"`
	ImageTimeoutSeconds int      `env:"IMAGE_TIMEOUT_SECONDS" envDefault:"120"`
	ImageConcurrency    int      `env:"IMAGE_CONCURRENCY" envDefault:"3"`
	ImageMinViews       int      `env:"IMAGE_MIN_VIEWS" envDefault:"1"`
	ImageRateIntervalMS int      `env:"IMAGE_RATE_INTERVAL_MS" envDefault:"0"`

	TelegramToken string `env:"TELEGRAM_BOT_TOKEN"`
	MaxConcurrent int    `env:"MAX_CONCURRENT" envDefault:"4"`
}

// Load reads .env when present, parses the environment and clamps values
// into their usable ranges.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.TextProvider = strings.ToLower(strings.TrimSpace(c.TextProvider))
	c.DashScopeAPIKey = strings.TrimSpace(c.DashScopeAPIKey)
	c.GeminiAPIKey = strings.TrimSpace(c.GeminiAPIKey)
	c.TelegramToken = strings.TrimSpace(c.TelegramToken)
	c.ImageCommand = strings.TrimSpace(c.ImageCommand)

	switch c.TextProvider {
	case ProviderDashScope:
		if c.DashScopeAPIKey == "" {
			return errors.New("DASHSCOPE_API_KEY is required")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required")
		}
	default:
		return fmt.Errorf("TEXT_PROVIDER %q is not supported", c.TextProvider)
	}

	if c.ImageCommand == "" && c.DashScopeAPIKey == "" {
		return errors.New("DASHSCOPE_API_KEY is required when IMAGE_COMMAND is not set")
	}

	views := c.ImageViews[:0]
	for _, v := range c.ImageViews {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			views = append(views, v)
		}
	}
	c.ImageViews = views

	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.MaxAttempts > 5 {
		c.MaxAttempts = 5
	}
	if c.ImageConcurrency < 1 {
		c.ImageConcurrency = 1
	}
	if c.ImageMinViews < 1 {
		c.ImageMinViews = 1
	}
	if c.ImageRateIntervalMS < 0 {
		c.ImageRateIntervalMS = 0
	}
	if c.MaxConcurrent < 1 {
		c.MaxConcurrent = 1
	}
	if c.DiversityRejectRate < 0 {
		c.DiversityRejectRate = 0
	}
	if c.DiversityRejectRate > 1 {
		c.DiversityRejectRate = 1
	}
	return nil
}

// RequireTelegram reports a missing bot token; only cmd/bot needs one.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}

func (c Config) HTTPTimeout() time.Duration {
	return seconds(c.HTTPTimeoutSeconds, 180)
}

func (c Config) RequestTimeout() time.Duration {
	return seconds(c.RequestTimeoutSeconds, 300)
}

func (c Config) TextTimeout() time.Duration {
	return seconds(c.TextTimeoutSeconds, 60)
}

func (c Config) ImageTimeout() time.Duration {
	return seconds(c.ImageTimeoutSeconds, 120)
}

func (c Config) ImageRateInterval() time.Duration {
	return time.Duration(c.ImageRateIntervalMS) * time.Millisecond
}

func seconds(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Second
}
