package stt

import (
	"context"
	"sync"

	"github.com/chicogong/realtime-duplex/pkg/orchestrator"
)

// BatchSTTStream wraps any batch orchestrator.STTProvider so it satisfies
// orchestrator.StreamingSTTProvider. It accumulates every chunk fed to the
// returned channel and transcribes the whole utterance once the caller
// closes the channel, then delivers a single Final callback. There is no
// interim Partial — callers that need true incremental transcripts should
// use a real streaming provider (e.g. deepgram_stream.go) instead.
type BatchSTTStream struct {
	orchestrator.STTProvider
}

func NewBatchSTTStream(p orchestrator.STTProvider) *BatchSTTStream {
	return &BatchSTTStream{STTProvider: p}
}

func (b *BatchSTTStream) StreamTranscribe(ctx context.Context, lang orchestrator.Language, onTranscript func(transcript string, isFinal bool) error) (chan<- []byte, error) {
	in := make(chan []byte, 32)

	go func() {
		var (
			mu  sync.Mutex
			buf []byte
		)
		for chunk := range in {
			mu.Lock()
			buf = append(buf, chunk...)
			mu.Unlock()
		}

		if ctx.Err() != nil {
			return
		}

		mu.Lock()
		audio := make([]byte, len(buf))
		copy(audio, buf)
		mu.Unlock()

		if len(audio) == 0 {
			onTranscript("", true)
			return
		}

		text, err := b.Transcribe(ctx, audio, lang)
		if err != nil {
			onTranscript("", true)
			return
		}
		onTranscript(text, true)
	}()

	return in, nil
}
