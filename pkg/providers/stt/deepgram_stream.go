package stt

import (
	"context"
	"fmt"

	"github.com/chicogong/realtime-duplex/pkg/orchestrator"
	client "github.com/deepgram/deepgram-go-sdk/pkg/client/live"
	interfaces "github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces"
	msginterfaces "github.com/deepgram/deepgram-go-sdk/pkg/client/live/v1/interfaces"
)

// DeepgramStreamSTT is a genuine StreamingSTTProvider: it opens one
// websocket per StreamTranscribe call and forwards PCM chunks as they
// arrive, surfacing Deepgram's own interim/final results instead of
// replaying a single batch Transcribe like BatchSTTStream does.
type DeepgramStreamSTT struct {
	apiKey string
	model  string
}

func NewDeepgramStreamSTT(apiKey, model string) *DeepgramStreamSTT {
	if model == "" {
		model = "nova-2"
	}
	return &DeepgramStreamSTT{apiKey: apiKey, model: model}
}

func (d *DeepgramStreamSTT) Name() string { return "deepgram-stream-stt" }

// Transcribe satisfies orchestrator.STTProvider for callers that only need
// batch semantics; it opens a stream, feeds the whole utterance, and waits
// for the final transcript.
func (d *DeepgramStreamSTT) Transcribe(ctx context.Context, audio []byte, lang orchestrator.Language) (string, error) {
	resultCh := make(chan string, 1)
	errCh := make(chan error, 1)

	send, err := d.StreamTranscribe(ctx, lang, func(transcript string, isFinal bool) error {
		if isFinal {
			select {
			case resultCh <- transcript:
			default:
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	const chunkSize = 3200 // 100ms @ 16kHz/16-bit mono
	for i := 0; i < len(audio); i += chunkSize {
		end := i + chunkSize
		if end > len(audio) {
			end = len(audio)
		}
		send <- audio[i:end]
	}
	close(send)

	select {
	case text := <-resultCh:
		return text, nil
	case err := <-errCh:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type dgCallbacks struct {
	onTranscript func(transcript string, isFinal bool) error
}

func (c dgCallbacks) Message(mr *msginterfaces.MessageResponse) error {
	if len(mr.Channel.Alternatives) == 0 {
		return nil
	}
	transcript := mr.Channel.Alternatives[0].Transcript
	if transcript == "" {
		return nil
	}
	return c.onTranscript(transcript, mr.IsFinal)
}

func (c dgCallbacks) Open(*msginterfaces.OpenResponse) error             { return nil }
func (c dgCallbacks) Metadata(*msginterfaces.MetadataResponse) error     { return nil }
func (c dgCallbacks) SpeechStarted(*msginterfaces.SpeechStartedResponse) error {
	return nil
}
func (c dgCallbacks) UtteranceEnd(*msginterfaces.UtteranceEndResponse) error {
	return nil
}
func (c dgCallbacks) Close(*msginterfaces.CloseResponse) error { return nil }
func (c dgCallbacks) Error(er *msginterfaces.ErrorResponse) error {
	return fmt.Errorf("deepgram stream error: %s", er.Description)
}
func (c dgCallbacks) UnhandledEvent(byData []byte) error { return nil }

func (d *DeepgramStreamSTT) StreamTranscribe(ctx context.Context, lang orchestrator.Language, onTranscript func(transcript string, isFinal bool) error) (chan<- []byte, error) {
	transcriptOpts := &interfaces.LiveTranscriptionOptions{
		Model:       d.model,
		Language:    string(lang),
		Encoding:    "linear16",
		SampleRate:  16000,
		Channels:    1,
		SmartFormat: true,
		InterimResults: true,
	}

	dgClient, err := client.New(ctx, d.apiKey, &interfaces.ClientOptions{}, transcriptOpts, dgCallbacks{onTranscript: onTranscript})
	if err != nil {
		return nil, fmt.Errorf("deepgram connect: %w", err)
	}
	if ok := dgClient.Connect(); !ok {
		return nil, fmt.Errorf("deepgram connect: handshake failed")
	}

	in := make(chan []byte, 64)

	go func() {
		defer dgClient.Stop()
		for {
			select {
			case chunk, ok := <-in:
				if !ok {
					return
				}
				if _, err := dgClient.Write(chunk); err != nil {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return in, nil
}
