package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path, loads a .env file from
// the working directory into the environment if one exists, applies the
// environment overlay, then validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("config: .env overlay not loaded", "error", err)
	}
	Overlay(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r without the env overlay or
// validation, for tests that build configs from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultServerConfig()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	return &cfg, nil
}

// Overlay fills any blank ProviderEntry.APIKey from the environment,
// keeping secrets out of the checked-in YAML file: STT_API_KEY,
// LLM_API_KEY, TTS_API_KEY.
func Overlay(cfg *Config) {
	if cfg.Providers.STT.APIKey == "" {
		cfg.Providers.STT.APIKey = os.Getenv("STT_API_KEY")
	}
	if cfg.Providers.LLM.APIKey == "" {
		cfg.Providers.LLM.APIKey = os.Getenv("LLM_API_KEY")
	}
	if cfg.Providers.TTS.APIKey == "" {
		cfg.Providers.TTS.APIKey = os.Getenv("TTS_API_KEY")
	}
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks that listen_addr is set, that log_level (if set) is a
// known level, and that each provider name is non-empty; it logs a warning
// for each empty API key. Whether a provider name is one the server can
// construct, and the ranges of timeouts and sizes, are not checked here.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.ListenAddr == "" {
		errs = append(errs, fmt.Errorf("server.listen_addr is required"))
	}
	if cfg.Server.LogLevel != "" && !validLogLevels[cfg.Server.LogLevel] {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Providers.STT.Name == "" {
		errs = append(errs, fmt.Errorf("providers.stt.name is required"))
	}
	if cfg.Providers.LLM.Name == "" {
		errs = append(errs, fmt.Errorf("providers.llm.name is required"))
	}
	if cfg.Providers.TTS.Name == "" {
		errs = append(errs, fmt.Errorf("providers.tts.name is required"))
	}

	if cfg.Providers.STT.Name != "whisper-local" && cfg.Providers.STT.APIKey == "" {
		slog.Warn("providers.stt.api_key is empty; set it or STT_API_KEY", "provider", cfg.Providers.STT.Name)
	}
	if cfg.Providers.LLM.APIKey == "" {
		slog.Warn("providers.llm.api_key is empty; set it or LLM_API_KEY", "provider", cfg.Providers.LLM.Name)
	}
	if cfg.Providers.TTS.APIKey == "" {
		slog.Warn("providers.tts.api_key is empty; set it or TTS_API_KEY", "provider", cfg.Providers.TTS.Name)
	}

	return errors.Join(errs...)
}
