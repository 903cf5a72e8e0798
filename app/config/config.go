package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log      Log      `yaml:"log"`
	DB       DB       `yaml:"db"`
	Telegram Telegram `yaml:"telegram"`
	OpenAI   OpenAI   `yaml:"openai"`
	Calendar Calendar `yaml:"calendar"`
	Session  Session  `yaml:"session"`
	Web      Web      `yaml:"web"`
}

type Telegram struct {
	// Bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789" validate:"required"`
	// Chat ID of the bot owner; messages from anyone else are ignored
	OwnerChatID int64 `yaml:"owner_chat_id" example:"123456789" validate:"required"`
	// Inbound poll interval in seconds
	PollIntervalSeconds int `yaml:"poll_interval_seconds" example:"3"`
	// Max updates fetched per poll
	PollLimit int `yaml:"poll_limit" example:"10"`
}

type OpenAI struct {
	// OpenAI base url; leave the whole section empty to disable topic sentences
	BaseURL string `yaml:"base_url" example:"https://openrouter.ai/api/v1"`
	// OpenAI token
	Token string `yaml:"token" example:"sk-proj-abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX"`
	// OpenAI model
	Model string `yaml:"model" example:"deepseek/deepseek-chat-v3-0324:free"`
}

type Calendar struct {
	// How many days ahead to look for free slots
	DaysAhead int `yaml:"days_ahead" example:"3"`
	// Slot duration in minutes
	SlotMinutes int `yaml:"slot_minutes" example:"30"`
	// Start of the working day, HH:MM
	DayStart string `yaml:"day_start" example:"09:00"`
	// End of the working day, HH:MM
	DayEnd string `yaml:"day_end" example:"18:00"`
	// Path to the busy-intervals file
	BusyFile string `yaml:"busy_file" example:"data/busy.json"`
}

type Session struct {
	// How long a pending interaction waits for a scheduling reply
	TTLMinutes int `yaml:"ttl_minutes" example:"10"`
}

type Web struct {
	// Listen address of the status server; empty disables it
	Addr string `yaml:"addr" example:":8099"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

type DB struct {
	// Path to the sqlite database file
	Path string `yaml:"path" example:"data/metbot.db"`
}

func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	if result.DB.Path == "" {
		result.DB.Path = "data/metbot.db"
	}
	if result.Telegram.PollIntervalSeconds == 0 {
		result.Telegram.PollIntervalSeconds = 3
	}
	if result.Telegram.PollLimit == 0 {
		result.Telegram.PollLimit = 10
	}
	if result.Calendar.DaysAhead == 0 {
		result.Calendar.DaysAhead = 3
	}
	if result.Calendar.SlotMinutes == 0 {
		result.Calendar.SlotMinutes = 30
	}
	if result.Calendar.DayStart == "" {
		result.Calendar.DayStart = "09:00"
	}
	if result.Calendar.DayEnd == "" {
		result.Calendar.DayEnd = "18:00"
	}
	if result.Calendar.BusyFile == "" {
		result.Calendar.BusyFile = "data/busy.json"
	}
	if result.Session.TTLMinutes == 0 {
		result.Session.TTLMinutes = 10
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Telegram.PollIntervalSeconds) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}
