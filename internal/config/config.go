package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	OpenAI struct {
		APIKey    string `yaml:"api_key"`
		BaseURL   string `yaml:"base_url"`
		ChatModel string `yaml:"chat_model"`
		QuizModel string `yaml:"quiz_model"`
	} `yaml:"openai"`
	Chat struct {
		HistoryWindow int    `yaml:"history_window"`
		SessionTTL    string `yaml:"session_ttl"`
		SystemPrompt  string `yaml:"system_prompt"`
	} `yaml:"chat"`
	Quiz struct {
		BankTTL string `yaml:"bank_ttl"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path. The OpenAI key falls back to the
// OPENAI_API_KEY environment variable when not set in the file.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
