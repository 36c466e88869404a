package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

type globalConfig struct {
	InterfaceLanguage string `koanf:"interface_language"`
}

type HTTPConfig struct {
	proxy   *string  `koanf:"proxy"`
	noProxy []string `koanf:"no_proxy"`
}

func (c HTTPConfig) GetProxy() string {
	if c.proxy != nil && *c.proxy != "" {
		return *c.proxy
	}
	if proxyURL := os.Getenv("HTTPS_PROXY"); proxyURL != "" {
		return proxyURL
	}
	if proxyURL := os.Getenv("https_proxy"); proxyURL != "" {
		return proxyURL
	}
	if proxyURL := os.Getenv("HTTP_PROXY"); proxyURL != "" {
		return proxyURL
	}
	if proxyURL := os.Getenv("http_proxy"); proxyURL != "" {
		return proxyURL
	}
	return ""
}

func (c HTTPConfig) NoProxy() []string {
	if len(c.noProxy) > 0 {
		return c.noProxy
	}
	if v := os.Getenv("NO_PROXY"); v != "" {
		return strings.Split(v, ",")
	}
	return nil
}

type LoggingConfig struct {
	LogLevel    string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic TRACE DEBUG INFO WARN ERROR"`
	Format      string `koanf:"format" validate:"omitempty,oneof=text json"`
	WriteInFile bool   `koanf:"write_in_file"`
	FilePath    string `koanf:"file_path" validate:"required_if=WriteInFile true"`
}

func (c LoggingConfig) Level() string {
	return strings.ToLower(c.LogLevel)
}

func (c LoggingConfig) IsDebug() bool {
	return c.Level() == "debug" || c.Level() == "trace"
}

type TelegramConfig struct {
	Token        string  `koanf:"token"`
	AllowedChats []int64 `koanf:"allowed_chats"`
}

func (c TelegramConfig) IsChatAllowed(chatID int64) bool {
	if len(c.AllowedChats) == 0 {
		return true
	}
	return slices.Contains(c.AllowedChats, chatID)
}

type BotConfig struct {
	OwnerID       string   `validate:"required"`
	OwnerName     string   `validate:"required"`
	OwnerAlias    string
	Admins        []string
	WakeWords     []string `validate:"min=1,dive,required"`
	CommandPrefix string   `validate:"required"`
}

// IsAdmin reports whether the user may run privileged commands. The owner
// always can.
func (c BotConfig) IsAdmin(userID string) bool {
	return userID == c.OwnerID || slices.Contains(c.Admins, userID)
}

const (
	StorageMemory = "memory"
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
	StorageBadger = "badger"
)

type StorageConfig struct {
	Driver          string `validate:"required,oneof=memory json sqlite badger"`
	JSONDirectory   string `validate:"required_if=Driver json"`
	SQLiteDSN       string
	BadgerDirectory string
	BadgerInMemory  bool
}

type ChatConfig struct {
	Chain        []string      `validate:"min=1,dive,required"`
	HistoryLimit int           `validate:"gt=0"`
	ContextTurns int           `validate:"gt=0"`
	ReplyTTL     time.Duration `validate:"gt=0"`
	Timeout      time.Duration `validate:"gt=0"`
	Temperature  float32       `validate:"gte=0,lte=2"`
	TopP         float32       `validate:"gte=0,lte=1"`
	MaxTokens    int           `validate:"gt=0"`
}

type AssistantConfig struct {
	Enabled      bool
	Trigger      string        `validate:"required_if=Enabled true"`
	Chain        []string      `validate:"required_if=Enabled true,dive,required"`
	HistoryLimit int           `validate:"gt=0"`
	Timeout      time.Duration `validate:"gt=0"`
	Temperature  float32       `validate:"gte=0,lte=2"`
	MaxTokens    int           `validate:"gt=0"`
	SystemPrompt string
}

type MediaProfile struct {
	Format       string   `validate:"required"`
	QualityField string   `validate:"required"`
	Qualities    []string `validate:"min=1,dive,required"`
}

type MediaConfig struct {
	APIURL        string `validate:"required,url"`
	APIKey        string
	MaxSize       string `validate:"required"`
	Results       int    `validate:"gt=0,lte=20"`
	TempDirectory string
	CleanupDelay  time.Duration
	SendAttempts  int `validate:"gt=0"`
	SendDelay     time.Duration
	SelectionTTL  time.Duration `validate:"gt=0"`
	SearchTimeout time.Duration `validate:"gt=0"`
	Video         MediaProfile
	Audio         MediaProfile

	// Thumbnails attaches result thumbnails to the search list.
	Thumbnails            bool
	ThumbnailCleanupDelay time.Duration
}

// MaxBytes parses MaxSize ("40MiB", "25MB").
func (c MediaConfig) MaxBytes() (int64, error) {
	n, err := humanize.ParseBytes(c.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("invalid media.max_size %q: %w", c.MaxSize, err)
	}
	return int64(n), nil
}

func (c MediaConfig) GetTempDirectory() string {
	if c.TempDirectory != "" {
		return c.TempDirectory
	}
	return os.TempDir()
}

type PendingConfig struct {
	SweepInterval time.Duration `validate:"gt=0"`
}

type AIProviderConfig struct {
	Type      string            `koanf:"type" validate:"required,oneof=openai-compatible openrouter gemini"`
	Name      string            `koanf:"name" validate:"required"`
	BaseURL   string            `koanf:"base_url" validate:"omitempty,url"`
	APIKey    string            `koanf:"api_key"`
	EnvAPIKey string            `koanf:"api_key_env"`
	Referer   string            `koanf:"referer"`
	Title     string            `koanf:"title"`
	Headers   map[string]string `koanf:"headers"`
}

func (c *AIProviderConfig) GetAPIKey() string {
	if key := c.APIKey; key != "" {
		return key
	}
	if c.EnvAPIKey == "" {
		return ""
	}
	return os.Getenv(c.EnvAPIKey)
}

type aiConfig struct {
	Providers []AIProviderConfig `koanf:"providers"`
}

func (c aiConfig) GetProvider(name string) *AIProviderConfig {
	for _, p := range c.Providers {
		if p.Name == name {
			return &p
		}
	}
	return nil
}

type queueThrottleOptions struct {
	Concurrency int `koanf:"concurrency"`
}

type queueOptions struct {
	Throttle queueThrottleOptions `koanf:"throttle"`
}

type commandConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Cooldown time.Duration `koanf:"cooldown"`
	Timeout  time.Duration `koanf:"timeout"`
	Queue    queueOptions  `koanf:"queue"`
}
