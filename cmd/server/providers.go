package main

import (
	"context"
	"fmt"

	"github.com/chicogong/realtime-duplex/pkg/config"
	"github.com/chicogong/realtime-duplex/pkg/orchestrator"
	llmProvider "github.com/chicogong/realtime-duplex/pkg/providers/llm"
	sttProvider "github.com/chicogong/realtime-duplex/pkg/providers/stt"
	ttsProvider "github.com/chicogong/realtime-duplex/pkg/providers/tts"
)

// buildSTT constructs the configured StreamingSTTProvider, wrapping a
// batch-only provider in BatchSTTStream when the chosen adapter doesn't
// implement streaming natively.
func buildSTT(ctx context.Context, cfg config.ProviderEntry) (orchestrator.StreamingSTTProvider, error) {
	switch cfg.Name {
	case "deepgram-stream":
		return sttProvider.NewDeepgramStreamSTT(cfg.APIKey, cfg.Model), nil
	case "whisper-local":
		provider, err := sttProvider.NewWhisperLocalSTT(cfg.ModelPath)
		if err != nil {
			return nil, fmt.Errorf("whisper-local: %w", err)
		}
		return sttProvider.NewBatchSTTStream(provider), nil
	case "deepgram":
		return sttProvider.NewBatchSTTStream(sttProvider.NewDeepgramSTT(cfg.APIKey)), nil
	case "assemblyai":
		return sttProvider.NewBatchSTTStream(sttProvider.NewAssemblyAISTT(cfg.APIKey)), nil
	case "openai":
		model := cfg.Model
		if model == "" {
			model = "whisper-1"
		}
		return sttProvider.NewBatchSTTStream(sttProvider.NewOpenAISTT(cfg.APIKey, model)), nil
	case "groq", "":
		model := cfg.Model
		if model == "" {
			model = "whisper-large-v3-turbo"
		}
		return sttProvider.NewBatchSTTStream(sttProvider.NewGroqSTT(cfg.APIKey, model)), nil
	default:
		return nil, fmt.Errorf("unknown stt provider %q", cfg.Name)
	}
}

// buildLLM constructs the configured LLMProvider, preferring the
// StreamingLLMProvider variant so the Sentence Segmenter has fragments to
// work with rather than one final blob.
func buildLLM(ctx context.Context, cfg config.ProviderEntry) (orchestrator.LLMProvider, error) {
	switch cfg.Name {
	case "openai":
		model := cfg.Model
		if model == "" {
			model = "gpt-4o"
		}
		return llmProvider.NewOpenAILLM(cfg.APIKey, model), nil
	case "anthropic":
		model := cfg.Model
		if model == "" {
			model = "claude-3-5-sonnet-20241022"
		}
		return llmProvider.NewAnthropicLLM(cfg.APIKey, model), nil
	case "google":
		model := cfg.Model
		if model == "" {
			model = "gemini-1.5-flash"
		}
		google, err := llmProvider.NewGoogleLLM(ctx, cfg.APIKey, model)
		if err != nil {
			return nil, fmt.Errorf("google: %w", err)
		}
		return google, nil
	case "groq", "":
		model := cfg.Model
		if model == "" {
			model = "llama-3.3-70b-versatile"
		}
		return llmProvider.NewBatchLLMStream(llmProvider.NewGroqLLM(cfg.APIKey, model)), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Name)
	}
}

// buildTTS constructs the configured TTSProvider.
func buildTTS(cfg config.ProviderEntry) (orchestrator.TTSProvider, error) {
	switch cfg.Name {
	case "lokutor", "":
		return ttsProvider.NewLokutorTTS(cfg.APIKey), nil
	default:
		return nil, fmt.Errorf("unknown tts provider %q", cfg.Name)
	}
}
