package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
)

const (
	GLOBAL_LANGUAGE           = "global.interface_language"
	BOT_OWNER_ID              = "bot.owner_id"
	BOT_OWNER_NAME            = "bot.owner_name"
	BOT_OWNER_ALIAS           = "bot.owner_alias"
	BOT_ADMINS                = "bot.admins"
	BOT_WAKE_WORDS            = "bot.wake_words"
	BOT_COMMAND_PREFIX        = "bot.command_prefix"
	HTTP_PROXY                = "http.proxy"
	HTTP_NO_PROXY             = "http.no_proxy"
	TELEGRAM_TOKEN            = "telegram.token"
	TELEGRAM_ALLOWED_CHATS    = "telegram.allowed_chats"
	STORAGE_DRIVER            = "storage.driver"
	STORAGE_JSON_DIRECTORY    = "storage.json_directory"
	STORAGE_SQLITE_DSN        = "storage.sqlite_dsn"
	STORAGE_BADGER_DIRECTORY  = "storage.badger_directory"
	STORAGE_BADGER_IN_MEMORY  = "storage.badger_in_memory"
	CHAT_CHAIN                = "chat.chain"
	CHAT_HISTORY_LIMIT        = "chat.history_limit"
	CHAT_CONTEXT_TURNS        = "chat.context_turns"
	CHAT_REPLY_TTL            = "chat.reply_ttl"
	CHAT_TIMEOUT              = "chat.timeout"
	CHAT_TEMPERATURE          = "chat.temperature"
	CHAT_TOP_P                = "chat.top_p"
	CHAT_MAX_TOKENS           = "chat.max_tokens"
	ASSISTANT_ENABLED         = "assistant.enabled"
	ASSISTANT_TRIGGER         = "assistant.trigger"
	ASSISTANT_CHAIN           = "assistant.chain"
	ASSISTANT_HISTORY_LIMIT   = "assistant.history_limit"
	ASSISTANT_TIMEOUT         = "assistant.timeout"
	ASSISTANT_TEMPERATURE     = "assistant.temperature"
	ASSISTANT_MAX_TOKENS      = "assistant.max_tokens"
	ASSISTANT_SYSTEM_PROMPT   = "assistant.system_prompt"
	AI_PROVIDERS              = "ai.providers"
	MEDIA_API_URL             = "media.api_url"
	MEDIA_API_KEY             = "media.api_key"
	MEDIA_MAX_SIZE            = "media.max_size"
	MEDIA_RESULTS             = "media.results"
	MEDIA_TEMP_DIRECTORY      = "media.temp_directory"
	MEDIA_CLEANUP_DELAY       = "media.cleanup_delay"
	MEDIA_SEND_ATTEMPTS       = "media.send_attempts"
	MEDIA_SEND_DELAY          = "media.send_delay"
	MEDIA_SELECTION_TTL       = "media.selection_ttl"
	MEDIA_SEARCH_TIMEOUT      = "media.search_timeout"
	MEDIA_THUMBNAILS          = "media.thumbnails"
	MEDIA_THUMBNAIL_CLEANUP   = "media.thumbnail_cleanup_delay"
	MEDIA_VIDEO_FORMAT        = "media.video.format"
	MEDIA_VIDEO_QUALITY_FIELD = "media.video.quality_field"
	MEDIA_VIDEO_QUALITIES     = "media.video.qualities"
	MEDIA_AUDIO_FORMAT        = "media.audio.format"
	MEDIA_AUDIO_QUALITY_FIELD = "media.audio.quality_field"
	MEDIA_AUDIO_QUALITIES     = "media.audio.qualities"
	PENDING_SWEEP_INTERVAL    = "pending.sweep_interval"
	LOGGING_LEVEL             = "logging.level"
	LOGGING_FORMAT            = "logging.format"
	LOGGING_WRITE_IN_FILE     = "logging.write_in_file"
	LOGGING_FILE_PATH         = "logging.file_path"
)

const envPrefix = "MANOBOT_"

var defaultSQLiteParams = map[string]string{
	"_pragma":       "busy_timeout(10000)",
	"_journal_mode": "WAL",
	"_txlock":       "immediate",
}

type Config struct {
	k *koanf.Koanf
}

// Load reads defaults, the first config file found and MANOBOT_* environment
// variables, in that order, then validates the result.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	for _, path := range getConfigPaths(configPath) {
		if _, err := os.Stat(path); err == nil {
			parser := koanf.Parser(toml.Parser())
			if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
				parser = yaml.Parser()
			}
			if err := k.Load(file.Provider(path), parser); err != nil {
				return nil, fmt.Errorf("error loading config %s: %v", path, err)
			}
			break
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(
			strings.ToLower(strings.TrimPrefix(s, envPrefix)),
			"_", ".", 1,
		)
	}), nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	cfg := &Config{k: k}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromMap builds a config from defaults overridden by values. Used by tests
// and by the offline CLI commands that need no platform token.
func FromMap(values map[string]any) *Config {
	k := koanf.New(".")
	_ = k.Load(confmap.Provider(defaults(), "."), nil)
	_ = k.Load(confmap.Provider(values, "."), nil)
	return &Config{k: k}
}

func defaults() map[string]any {
	return map[string]any{
		GLOBAL_LANGUAGE:          "en",
		BOT_OWNER_ID:             "100002392368552",
		BOT_OWNER_NAME:           "Attaullah",
		BOT_OWNER_ALIAS:          "Sindhi",
		BOT_ADMINS:               []string{},
		BOT_WAKE_WORDS:           []string{"mano", "bot"},
		BOT_COMMAND_PREFIX:       "/",
		HTTP_PROXY:               nil,
		HTTP_NO_PROXY:            []string{},
		TELEGRAM_TOKEN:           "",
		STORAGE_DRIVER:           "json",
		STORAGE_JSON_DIRECTORY:   "cache",
		STORAGE_SQLITE_DSN:       "manobot.db",
		STORAGE_BADGER_DIRECTORY: "data/badger",
		STORAGE_BADGER_IN_MEMORY: false,
		AI_PROVIDERS: []map[string]any{
			{
				"name":        "cerebras",
				"type":        "openai-compatible",
				"base_url":    "https://api.cerebras.ai/v1",
				"api_key_env": "CEREBRAS_API_KEY",
			},
			{
				"name":        "openrouter",
				"type":        "openrouter",
				"base_url":    "https://openrouter.ai/api/v1",
				"api_key_env": "OPENROUTER_API_KEY",
				"referer":     "https://openrouter.ai/",
				"title":       "Mano Bot",
			},
		},
		CHAT_CHAIN:              []string{"cerebras:llama-3.3-70b"},
		CHAT_HISTORY_LIMIT:      15,
		CHAT_CONTEXT_TURNS:      10,
		CHAT_REPLY_TTL:          5 * time.Minute,
		CHAT_TIMEOUT:            15 * time.Second,
		CHAT_TEMPERATURE:        0.9,
		CHAT_TOP_P:              0.95,
		CHAT_MAX_TOKENS:         150,
		ASSISTANT_ENABLED:       true,
		ASSISTANT_TRIGGER:       "ak",
		ASSISTANT_HISTORY_LIMIT: 6,
		ASSISTANT_TIMEOUT:       20 * time.Second,
		ASSISTANT_TEMPERATURE:   0.7,
		ASSISTANT_MAX_TOKENS:    120,
		ASSISTANT_CHAIN: []string{
			"openrouter:mistralai/mistral-7b-instruct:free",
			"openrouter:meta-llama/llama-3-8b-instruct:free",
			"openrouter:google/gemma-7b-it:free",
		},
		ASSISTANT_SYSTEM_PROMPT: "Tum {{owner}} ke personal AI ho.\n" +
			"User jis language me baat kare, usi language me reply do.\n" +
			"Reply hamesha EXACTLY 2 LINES ka hona chahiye.\n" +
			"Tone friendly, caring aur fun rakho.\n" +
			"{{owner}} ki burai bilkul mat sunna.\n" +
			"Brackets ka use mat karo.",
		MEDIA_API_URL:             "https://priyanshuapi.xyz/api/runner/youtube-downloader-v2/download",
		MEDIA_API_KEY:             "",
		MEDIA_MAX_SIZE:            "40MiB",
		MEDIA_RESULTS:             6,
		MEDIA_TEMP_DIRECTORY:      "",
		MEDIA_CLEANUP_DELAY:       30 * time.Second,
		MEDIA_SEND_ATTEMPTS:       3,
		MEDIA_SEND_DELAY:          2 * time.Second,
		MEDIA_SELECTION_TTL:       5 * time.Minute,
		MEDIA_SEARCH_TIMEOUT:      60 * time.Second,
		MEDIA_THUMBNAILS:          true,
		MEDIA_THUMBNAIL_CLEANUP:   60 * time.Second,
		MEDIA_VIDEO_FORMAT:        "mp4",
		MEDIA_VIDEO_QUALITY_FIELD: "videoQuality",
		MEDIA_VIDEO_QUALITIES:     []string{"360", "240", "144"},
		MEDIA_AUDIO_FORMAT:        "mp3",
		MEDIA_AUDIO_QUALITY_FIELD: "audioQuality",
		MEDIA_AUDIO_QUALITIES:     []string{"128"},
		PENDING_SWEEP_INTERVAL:    5 * time.Second,
		LOGGING_LEVEL:             "info",
		LOGGING_FORMAT:            "text",
		LOGGING_WRITE_IN_FILE:     false,
		LOGGING_FILE_PATH:         "manobot.log",

		"commands.goibot.enabled":                     true,
		"commands.assistant.enabled":                  true,
		"commands.assistant.cooldown":                 2 * time.Second,
		"commands.video.enabled":                      true,
		"commands.video.cooldown":                     5 * time.Second,
		"commands.video.timeout":                      10 * time.Minute,
		"commands.video.queue.throttle.concurrency":   3,
		"commands.music.enabled":                      true,
		"commands.music.cooldown":                     5 * time.Second,
		"commands.music.timeout":                      10 * time.Minute,
		"commands.music.queue.throttle.concurrency":   3,
		"commands.help.enabled":                       true,
		"commands.kick.enabled":                       true,
		"commands.ban.enabled":                        true,
		"commands.restart.enabled":                    true,

		"commands.goibot.queue.throttle.concurrency":    8,
		"commands.assistant.queue.throttle.concurrency": 4,
	}
}

// Validate checks every typed section with struct tags.
func (c *Config) Validate() error {
	v := validator.New()
	sections := []any{
		c.Bot(),
		c.Telegram(),
		c.Storage(),
		c.Chat(),
		c.Assistant(),
		c.Media(),
		c.Log(),
		c.Pending(),
	}
	for _, p := range c.AI().Providers {
		sections = append(sections, p)
	}
	for _, s := range sections {
		if err := v.Struct(s); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}
	if _, err := c.Media().MaxBytes(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) GetCommandConfig(name string) *commandConfig {
	concurrency := c.k.Int(fmt.Sprintf("commands.%s.queue.throttle.concurrency", name))
	if concurrency == 0 {
		concurrency = 1
	}
	return &commandConfig{
		Enabled:  c.k.Bool(fmt.Sprintf("commands.%s.enabled", name)),
		Cooldown: c.k.Duration(fmt.Sprintf("commands.%s.cooldown", name)),
		Timeout:  c.k.Duration(fmt.Sprintf("commands.%s.timeout", name)),
		Queue: queueOptions{
			Throttle: queueThrottleOptions{
				Concurrency: concurrency,
			},
		},
	}
}

func (c *Config) Bot() BotConfig {
	return BotConfig{
		OwnerID:       c.k.String(BOT_OWNER_ID),
		OwnerName:     c.k.String(BOT_OWNER_NAME),
		OwnerAlias:    c.k.String(BOT_OWNER_ALIAS),
		Admins:        c.k.Strings(BOT_ADMINS),
		WakeWords:     c.k.Strings(BOT_WAKE_WORDS),
		CommandPrefix: c.k.String(BOT_COMMAND_PREFIX),
	}
}

func (c *Config) Telegram() TelegramConfig {
	var cfg TelegramConfig
	if err := c.k.Unmarshal("telegram", &cfg); err != nil {
		log.Fatalf("telegramConfig unmarshal error: %v", err)
		return TelegramConfig{}
	}
	return cfg
}

func (c *Config) Storage() StorageConfig {
	return StorageConfig{
		Driver:          c.k.String(STORAGE_DRIVER),
		JSONDirectory:   c.k.String(STORAGE_JSON_DIRECTORY),
		SQLiteDSN:       c.GetDatabaseDSN(),
		BadgerDirectory: c.k.String(STORAGE_BADGER_DIRECTORY),
		BadgerInMemory:  c.k.Bool(STORAGE_BADGER_IN_MEMORY),
	}
}

func (c *Config) Chat() ChatConfig {
	return ChatConfig{
		Chain:        c.k.Strings(CHAT_CHAIN),
		HistoryLimit: c.k.Int(CHAT_HISTORY_LIMIT),
		ContextTurns: c.k.Int(CHAT_CONTEXT_TURNS),
		ReplyTTL:     c.k.Duration(CHAT_REPLY_TTL),
		Timeout:      c.k.Duration(CHAT_TIMEOUT),
		Temperature:  float32(c.k.Float64(CHAT_TEMPERATURE)),
		TopP:         float32(c.k.Float64(CHAT_TOP_P)),
		MaxTokens:    c.k.Int(CHAT_MAX_TOKENS),
	}
}

func (c *Config) Assistant() AssistantConfig {
	return AssistantConfig{
		Enabled:      c.k.Bool(ASSISTANT_ENABLED),
		Trigger:      c.k.String(ASSISTANT_TRIGGER),
		Chain:        c.k.Strings(ASSISTANT_CHAIN),
		HistoryLimit: c.k.Int(ASSISTANT_HISTORY_LIMIT),
		Timeout:      c.k.Duration(ASSISTANT_TIMEOUT),
		Temperature:  float32(c.k.Float64(ASSISTANT_TEMPERATURE)),
		MaxTokens:    c.k.Int(ASSISTANT_MAX_TOKENS),
		SystemPrompt: strings.ReplaceAll(c.k.String(ASSISTANT_SYSTEM_PROMPT), "{{owner}}", strings.ToUpper(c.k.String(BOT_OWNER_NAME))),
	}
}

func (c *Config) Media() MediaConfig {
	return MediaConfig{
		APIURL:                c.k.String(MEDIA_API_URL),
		APIKey:                c.k.String(MEDIA_API_KEY),
		MaxSize:               c.k.String(MEDIA_MAX_SIZE),
		Results:               c.k.Int(MEDIA_RESULTS),
		TempDirectory:         c.k.String(MEDIA_TEMP_DIRECTORY),
		CleanupDelay:          c.k.Duration(MEDIA_CLEANUP_DELAY),
		SendAttempts:          c.k.Int(MEDIA_SEND_ATTEMPTS),
		SendDelay:             c.k.Duration(MEDIA_SEND_DELAY),
		SelectionTTL:          c.k.Duration(MEDIA_SELECTION_TTL),
		SearchTimeout:         c.k.Duration(MEDIA_SEARCH_TIMEOUT),
		Thumbnails:            c.k.Bool(MEDIA_THUMBNAILS),
		ThumbnailCleanupDelay: c.k.Duration(MEDIA_THUMBNAIL_CLEANUP),
		Video: MediaProfile{
			Format:       c.k.String(MEDIA_VIDEO_FORMAT),
			QualityField: c.k.String(MEDIA_VIDEO_QUALITY_FIELD),
			Qualities:    c.k.Strings(MEDIA_VIDEO_QUALITIES),
		},
		Audio: MediaProfile{
			Format:       c.k.String(MEDIA_AUDIO_FORMAT),
			QualityField: c.k.String(MEDIA_AUDIO_QUALITY_FIELD),
			Qualities:    c.k.Strings(MEDIA_AUDIO_QUALITIES),
		},
	}
}

func (c *Config) Pending() PendingConfig {
	return PendingConfig{
		SweepInterval: c.k.Duration(PENDING_SWEEP_INTERVAL),
	}
}

func (c *Config) Log() LoggingConfig {
	return LoggingConfig{
		LogLevel:    c.k.String(LOGGING_LEVEL),
		Format:      c.k.String(LOGGING_FORMAT),
		WriteInFile: c.k.Bool(LOGGING_WRITE_IN_FILE),
		FilePath:    c.k.String(LOGGING_FILE_PATH),
	}
}

func (c *Config) Global() globalConfig {
	return globalConfig{
		InterfaceLanguage: c.k.String(GLOBAL_LANGUAGE),
	}
}

func (c *Config) HTTP() HTTPConfig {
	var proxy string
	if proxyValue := c.k.Get(HTTP_PROXY); proxyValue != nil {
		proxy, _ = proxyValue.(string)
	}

	return HTTPConfig{
		proxy:   &proxy,
		noProxy: c.k.Strings(HTTP_NO_PROXY),
	}
}

func (c *Config) AI() aiConfig {
	var cfg aiConfig
	if err := c.k.Unmarshal("ai", &cfg); err != nil {
		log.Fatalf("aiConfig unmarshal error: %v", err)
		return aiConfig{}
	}
	return cfg
}

// GetDatabaseDSN appends the default SQLite pragmas the DSN does not set.
func (c *Config) GetDatabaseDSN() string {
	dsn := c.k.String(STORAGE_SQLITE_DSN)
	parts := strings.SplitN(dsn, "?", 2)
	path := parts[0]

	params := make(map[string]string)
	if len(parts) > 1 {
		for param := range strings.SplitSeq(parts[1], "&") {
			if kv := strings.SplitN(param, "=", 2); len(kv) == 2 {
				params[kv[0]] = kv[1]
			}
		}
	}

	for k, v := range defaultSQLiteParams {
		if _, exists := params[k]; !exists {
			params[k] = v
		}
	}

	var queryParams []string
	for k, v := range params {
		queryParams = append(queryParams, k+"="+v)
	}
	sort.Strings(queryParams)

	return path + "?" + strings.Join(queryParams, "&")
}

func getConfigPaths(configPath string) []string {
	if configPath != "" {
		return []string{configPath}
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		home, _ := os.UserHomeDir()
		xdgConfig = filepath.Join(home, ".config")
	}

	return []string{
		"manobot.toml",
		"config.toml",
		"config.yaml",
		filepath.Join(xdgConfig, "manobot", "config.toml"),
		"/etc/manobot/config.toml",
	}
}
