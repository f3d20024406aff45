package config

import (
	"strings"
	"testing"
)

const sampleYAML = `
server:
  listen_addr: ":8080"
  log_level: info

providers:
  llm:
    name: openai
    api_key: sk-test
    model: gpt-4o
  stt:
    name: deepgram
    api_key: dg-test
  tts:
    name: lokutor
    api_key: lk-test

pipeline:
  sample_rate: 16000
  segment_max_chars: 120
`

func TestLoadFromReader(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("unexpected listen_addr %q", cfg.Server.ListenAddr)
	}
	if cfg.Providers.LLM.Name != "openai" {
		t.Errorf("unexpected llm provider %q", cfg.Providers.LLM.Name)
	}
	if cfg.Pipeline.SegmentMaxChars != 120 {
		t.Errorf("unexpected segment_max_chars %d", cfg.Pipeline.SegmentMaxChars)
	}
}

func TestLoadFromReader_DefaultsApplyWhenUnset(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(`providers:
  llm:
    name: openai
  stt:
    name: deepgram
  tts:
    name: lokutor
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("expected default listen_addr, got %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.MetricsAddr != ":9090" {
		t.Errorf("expected default metrics_addr, got %q", cfg.Server.MetricsAddr)
	}
}

func TestValidate_RequiresProviderNames(t *testing.T) {
	cfg := DefaultServerConfig()
	if err := Validate(&cfg); err == nil {
		t.Error("expected an error when no providers are configured")
	}
}

func TestValidate_RejectsUnknownLogLevel(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Server.LogLevel = "verbose"
	cfg.Providers.STT.Name = "deepgram"
	cfg.Providers.LLM.Name = "openai"
	cfg.Providers.TTS.Name = "lokutor"
	if err := Validate(&cfg); err == nil {
		t.Error("expected an error for an invalid log_level")
	}
}

func TestOverlay_FillsBlankAPIKeysFromEnv(t *testing.T) {
	t.Setenv("LLM_API_KEY", "from-env")

	cfg := DefaultServerConfig()
	cfg.Providers.LLM.Name = "openai"
	Overlay(&cfg)

	if cfg.Providers.LLM.APIKey != "from-env" {
		t.Errorf("expected api_key filled from LLM_API_KEY, got %q", cfg.Providers.LLM.APIKey)
	}
}

func TestOverlay_DoesNotClobberExplicitAPIKey(t *testing.T) {
	t.Setenv("LLM_API_KEY", "from-env")

	cfg := DefaultServerConfig()
	cfg.Providers.LLM.APIKey = "from-yaml"
	Overlay(&cfg)

	if cfg.Providers.LLM.APIKey != "from-yaml" {
		t.Errorf("expected explicit api_key to survive overlay, got %q", cfg.Providers.LLM.APIKey)
	}
}

func TestPipelineConfig_ToOrchestratorConfig_MergesOntoDefaults(t *testing.T) {
	var p PipelineConfig
	p.SegmentMaxChars = 90

	oc := p.ToOrchestratorConfig()
	if oc.SegmentMaxChars != 90 {
		t.Errorf("expected override to apply, got %d", oc.SegmentMaxChars)
	}
	if oc.SampleRate != 16000 {
		t.Errorf("expected default sample rate to survive, got %d", oc.SampleRate)
	}
}
