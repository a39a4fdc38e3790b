package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log     Log     `yaml:"log"`
	Backend Backend `yaml:"backend"`
	UI      UI      `yaml:"ui"`
	// Directory for local state (cached conversation list)
	DataDir string `yaml:"data_dir" example:"data"`
}

type Backend struct {
	// Base URL of the assistant backend
	BaseURL string `yaml:"base_url" example:"http://localhost:8000" validate:"required,url"`
	// Name of the session cookie attached to every request
	SessionCookie string `yaml:"session_cookie" example:"session"`
	// Value of the session cookie (obtained after the /login redirect)
	SessionToken string `yaml:"session_token"`
	// Per-request timeout in seconds
	TimeoutSeconds int `yaml:"timeout_seconds" example:"30" validate:"gte=0"`
}

func (b Backend) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

type UI struct {
	// Glamour style used to render answers ("auto", "dark", "light", "notty")
	AnswerStyle string `yaml:"answer_style" example:"auto"`
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

func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	if result.Backend.BaseURL == "" {
		result.Backend.BaseURL = "http://localhost:8000"
	}
	if result.Backend.SessionCookie == "" {
		result.Backend.SessionCookie = "session"
	}
	if result.Backend.TimeoutSeconds == 0 {
		result.Backend.TimeoutSeconds = 30
	}
	if result.UI.AnswerStyle == "" {
		result.UI.AnswerStyle = "auto"
	}
	if result.DataDir == "" {
		result.DataDir = "data"
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}
