// Package config provides the server's YAML configuration schema and
// loader, with an environment overlay for secrets that shouldn't live in
// a checked-in file.
package config

import (
	"time"

	"github.com/chicogong/realtime-duplex/pkg/orchestrator"
)

// Config is the root configuration for cmd/server, typically loaded from
// a YAML file via Load.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the WebSocket server listens on.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls slog verbosity. One of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// MetricsAddr is the TCP address the Prometheus /metrics handler
	// listens on; empty disables it.
	MetricsAddr string `yaml:"metrics_addr"`
}

// ProvidersConfig selects which adapter implementation backs each
// capability set and supplies its connection details.
type ProvidersConfig struct {
	STT ProviderEntry `yaml:"stt"`
	LLM ProviderEntry `yaml:"llm"`
	TTS ProviderEntry `yaml:"tts"`
}

// ProviderEntry is the common configuration block shared by all adapters.
type ProviderEntry struct {
	// Name selects the concrete provider ("openai", "anthropic", "google",
	// "groq", "deepgram", "deepgram-stream", "whisper-local",
	// "assemblyai", "lokutor").
	Name string `yaml:"name"`

	// APIKey authenticates against the provider's API. Usually left empty
	// in the file and supplied via the matching *_API_KEY environment
	// variable instead (see Overlay).
	APIKey string `yaml:"api_key"`

	// Model selects a specific model within the provider.
	Model string `yaml:"model"`

	// ModelPath points at a local model file (whisper-local's ggml
	// weights). Ignored by remote providers.
	ModelPath string `yaml:"model_path"`
}

// PipelineConfig holds the timing and barge-in knobs from §5 and §4.7,
// mapped directly onto orchestrator.Config.
type PipelineConfig struct {
	SampleRate          int           `yaml:"sample_rate"`
	MaxContextMessages  int           `yaml:"max_context_messages"`
	MinWordsToInterrupt int           `yaml:"min_words_to_interrupt"`
	FirstTokenDeadline  time.Duration `yaml:"first_token_deadline"`
	FirstChunkDeadline  time.Duration `yaml:"first_chunk_deadline"`
	TurnDeadline        time.Duration `yaml:"turn_deadline"`
	IdleSessionTimeout  time.Duration `yaml:"idle_session_timeout"`
	OutboundQueueSize   int           `yaml:"outbound_queue_size"`
	OutboundDrainBound  time.Duration `yaml:"outbound_drain_bound"`
	SegmentMaxChars     int           `yaml:"segment_max_chars"`
}

// ToOrchestratorConfig merges the pipeline block onto orchestrator's
// own defaults so a YAML file only needs to override what it cares about.
func (p PipelineConfig) ToOrchestratorConfig() orchestrator.Config {
	cfg := orchestrator.DefaultConfig()
	if p.SampleRate > 0 {
		cfg.SampleRate = p.SampleRate
	}
	if p.MaxContextMessages > 0 {
		cfg.MaxContextMessages = p.MaxContextMessages
	}
	if p.MinWordsToInterrupt > 0 {
		cfg.MinWordsToInterrupt = p.MinWordsToInterrupt
	}
	if p.FirstTokenDeadline > 0 {
		cfg.FirstTokenDeadline = p.FirstTokenDeadline
	}
	if p.FirstChunkDeadline > 0 {
		cfg.FirstChunkDeadline = p.FirstChunkDeadline
	}
	if p.TurnDeadline > 0 {
		cfg.TurnDeadline = p.TurnDeadline
	}
	if p.IdleSessionTimeout > 0 {
		cfg.IdleSessionTimeout = p.IdleSessionTimeout
	}
	if p.OutboundQueueSize > 0 {
		cfg.OutboundQueueSize = p.OutboundQueueSize
	}
	if p.OutboundDrainBound > 0 {
		cfg.OutboundDrainBound = p.OutboundDrainBound
	}
	if p.SegmentMaxChars > 0 {
		cfg.SegmentMaxChars = p.SegmentMaxChars
	}
	return cfg
}

// DefaultServerConfig returns a Config with sensible defaults for local
// development; Load overrides these from the YAML file it reads.
func DefaultServerConfig() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr:  ":8080",
			LogLevel:    "info",
			MetricsAddr: ":9090",
		},
	}
}
