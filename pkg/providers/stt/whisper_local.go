package stt

import (
	"context"
	"fmt"
	"sync"

	"github.com/chicogong/realtime-duplex/pkg/orchestrator"
	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// WhisperLocalSTT is a batch STTProvider running entirely offline against a
// GGML whisper.cpp model file, for deployments that cannot ship raw audio to
// a third party. It takes int16 PCM at 16kHz mono, matching the wire
// protocol's InboundAudioFrame body, and converts to the float32 samples
// whisper.cpp expects.
type WhisperLocalSTT struct {
	mu    sync.Mutex
	model whisper.Model
}

func NewWhisperLocalSTT(modelPath string) (*WhisperLocalSTT, error) {
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load whisper model %q: %w", modelPath, err)
	}
	return &WhisperLocalSTT{model: model}, nil
}

func (w *WhisperLocalSTT) Name() string { return "whisper-local-stt" }

func (w *WhisperLocalSTT) Close() error {
	return w.model.Close()
}

func (w *WhisperLocalSTT) Transcribe(ctx context.Context, audio []byte, lang orchestrator.Language) (string, error) {
	samples := pcm16ToFloat32(audio)

	w.mu.Lock()
	defer w.mu.Unlock()

	wctx, err := w.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("whisper context: %w", err)
	}
	if lang != "" {
		if err := wctx.SetLanguage(string(lang)); err != nil {
			return "", fmt.Errorf("whisper set language: %w", err)
		}
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper process: %w", err)
	}

	var text string
	for {
		segment, err := wctx.NextSegment()
		if err != nil {
			break
		}
		text += segment.Text
	}
	return text, nil
}

func pcm16ToFloat32(pcm []byte) []float32 {
	n := len(pcm) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		sample := int16(pcm[2*i]) | int16(pcm[2*i+1])<<8
		out[i] = float32(sample) / 32768.0
	}
	return out
}
