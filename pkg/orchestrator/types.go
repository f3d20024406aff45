package orchestrator

import (
	"context"
	"sync"
	"time"
)

// Logger is the seam every component logs through. cmd/server wires a
// slog/otelslog-backed implementation; tests and embedders get NoOpLogger.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, args ...interface{}) {}
func (n *NoOpLogger) Info(msg string, args ...interface{})  {}
func (n *NoOpLogger) Warn(msg string, args ...interface{})  {}
func (n *NoOpLogger) Error(msg string, args ...interface{}) {}

// STTProvider is the batch ASR capability: a whole utterance in, text out.
type STTProvider interface {
	Transcribe(ctx context.Context, audio []byte, lang Language) (string, error)
	Name() string
}

// StreamingSTTProvider is the §4.2 ASR capability set: open a handle, feed
// PCM, receive a lazy Partial(text)...Final(text) sequence on the handle.
type StreamingSTTProvider interface {
	STTProvider
	StreamTranscribe(ctx context.Context, lang Language, onTranscript func(transcript string, isFinal bool) error) (chan<- []byte, error)
}

// LLMProvider is the batch completion capability: full history in, one
// response string out.
type LLMProvider interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	Name() string
}

// StreamingLLMProvider is the §4.3 capability set: full history in, a lazy
// sequence of token fragments out, each delivered to onToken. The final
// call to onToken carries isComplete=true and the full accumulated text.
type StreamingLLMProvider interface {
	LLMProvider
	CompleteStream(ctx context.Context, messages []Message, onToken func(fragment string, accumulated string, isComplete bool) error) error
}

// TTSProvider is the §4.3-sibling TTS capability set: a text segment in, a
// cancellable PCM chunk stream out.
type TTSProvider interface {
	Synthesize(ctx context.Context, text string, voice Voice, lang Language) ([]byte, error)
	StreamSynthesize(ctx context.Context, text string, voice Voice, lang Language, onChunk func([]byte) error) error
	// Abort forcibly stops any in-flight synthesis this provider is driving.
	// Called by ManagedStream's interrupt path on cancellation/barge-in so a slow
	// provider-side stream doesn't keep pushing chunks into a stale turn.
	Abort() error
	Name() string
}

// VADProvider is the §4.7 voice-activity capability: feed it audio, get
// speech-start/speech-end/silence events back.
type VADProvider interface {
	Process(chunk []byte) (*VADEvent, error)
	Reset()
	Clone() VADProvider
	Name() string
}

type VADEventType string

const (
	VADSpeechStart VADEventType = "SPEECH_START"
	VADSpeechEnd   VADEventType = "SPEECH_END"
	VADSilence     VADEventType = "SILENCE"
)

type VADEvent struct {
	Type      VADEventType
	Timestamp int64
}

// EventType enumerates the internal events a ManagedStream emits on its
// Events() channel. These are a superset of the wire frame catalog (§6.1)
// — code that embeds a ManagedStream or Session consumes the internal
// events directly; the WebSocket front door (cmd/server) maps them onto
// wire.Frame values via pkg/wire.
type EventType string

const (
	UserSpeaking      EventType = "USER_SPEAKING"
	UserStopped       EventType = "USER_STOPPED"
	TranscriptPartial EventType = "TRANSCRIPT_PARTIAL"
	TranscriptFinal   EventType = "TRANSCRIPT_FINAL"
	BotThinking       EventType = "BOT_THINKING"
	BotResponse       EventType = "BOT_RESPONSE"
	BotSpeaking       EventType = "BOT_SPEAKING"
	TTSSegmentStart   EventType = "TTS_SEGMENT_START"
	TTSSegmentEnd     EventType = "TTS_SEGMENT_END"
	Interrupted       EventType = "INTERRUPTED"
	StopAcknowledged  EventType = "STOP_ACKNOWLEDGED"
	AudioChunk        EventType = "AUDIO_CHUNK"
	ErrorEvent        EventType = "ERROR"

	// ReadyForInput marks the turn's return to LISTENING after a recovered
	// failure (e.g. a §5 timeout) that isn't itself a new user utterance —
	// see runLLMAndTTS's deadline handling.
	ReadyForInput EventType = "READY_FOR_INPUT"
)

// BotResponseChunk is a BotResponse event's payload: the LLM's accumulated
// text so far plus whether this is the turn's final chunk. Streaming LLM
// providers emit one per token (IsComplete=false, ..., then exactly one
// IsComplete=true); batch providers emit one IsComplete=false chunk with the
// whole response, then the IsComplete=true chunk.
type BotResponseChunk struct {
	Text       string
	IsComplete bool
}

// OrchestratorEvent carries a turn/epoch tag alongside its payload so a
// consumer sitting downstream of the Outbound Scheduler can independently
// verify (or, in tests, assert) that stale-turn events never reach it.
type OrchestratorEvent struct {
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id"`
	TurnID    uint64      `json:"turn_id,omitempty"`
	Epoch     uint64      `json:"-"`
	Data      interface{} `json:"data,omitempty"`
}

type Voice string

const (
	VoiceF1 Voice = "F1"
	VoiceF2 Voice = "F2"
	VoiceF3 Voice = "F3"
	VoiceF4 Voice = "F4"
	VoiceF5 Voice = "F5"
	VoiceM1 Voice = "M1"
	VoiceM2 Voice = "M2"
	VoiceM3 Voice = "M3"
	VoiceM4 Voice = "M4"
	VoiceM5 Voice = "M5"
)

type Language string

const (
	LanguageEn Language = "en"
	LanguageEs Language = "es"
	LanguageFr Language = "fr"
	LanguageDe Language = "de"
	LanguageIt Language = "it"
	LanguagePt Language = "pt"
	LanguageJa Language = "ja"
	LanguageZh Language = "zh"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Config covers the ambient knobs of spec.md §5 (timeouts, backpressure)
// and §6.1 (wire sample rate) plus the teacher's original provider knobs.
type Config struct {
	SampleRate         int
	Channels           int
	BytesPerSamp       int
	MaxContextMessages int
	VoiceStyle         Voice
	Language           Language
	STTTimeout         uint
	LLMTimeout         uint
	TTSTimeout         uint

	// MinWordsToInterrupt suppresses short backchannel utterances
	// ("uh-huh", "yeah") from barge-in while the assistant is speaking;
	// see the streaming-STT callback in managed_stream.go (startStreamingSTT).
	MinWordsToInterrupt int

	// FirstTokenDeadline / FirstChunkDeadline / TurnDeadline implement the
	// §5 "Timeouts" requirements.
	FirstTokenDeadline time.Duration
	FirstChunkDeadline time.Duration
	TurnDeadline       time.Duration

	// IdleSessionTimeout implements §4.9's "no inbound frames for T,
	// default 10 min" teardown rule.
	IdleSessionTimeout time.Duration

	// OutboundQueueSize / OutboundDrainBound implement §5's bounded
	// outbound-audio backpressure policy.
	OutboundQueueSize  int
	OutboundDrainBound time.Duration

	// SegmentMaxChars bounds the Sentence Segmenter's hard length flush
	// (§4.6).
	SegmentMaxChars int
}

// DefaultConfig matches the wire protocol's fixed sample rates (§6.1:
// 16kHz inbound) rather than the teacher's local-device 44.1kHz default —
// see DESIGN.md's Open Question decisions.
func DefaultConfig() Config {
	return Config{
		SampleRate:          16000,
		Channels:            1,
		BytesPerSamp:        2,
		MaxContextMessages:  20,
		VoiceStyle:          VoiceF1,
		Language:            LanguageEn,
		STTTimeout:          30,
		LLMTimeout:          60,
		TTSTimeout:          30,
		MinWordsToInterrupt: 1,
		FirstTokenDeadline:  5 * time.Second,
		FirstChunkDeadline:  3 * time.Second,
		TurnDeadline:        60 * time.Second,
		IdleSessionTimeout:  10 * time.Minute,
		OutboundQueueSize:   1024,
		OutboundDrainBound:  200 * time.Millisecond,
		SegmentMaxChars:     180,
	}
}

// ConversationSession holds a session's conversation history (§3 "ordered
// sequence of {role, text}") plus its voice/language settings. A
// ManagedStream holds one; the turn phase and epoch live in the Session's
// TurnTracker (turn.go), and creation/last-activity times in the
// registry's RegistryEntry (registry.go).
type ConversationSession struct {
	mu              sync.RWMutex
	ID              string
	Context         []Message
	LastUser        string
	LastAssistant   string
	MaxMessages     int
	CurrentVoice    Voice
	CurrentLanguage Language
}

func NewConversationSession(userID string) *ConversationSession {
	return &ConversationSession{
		ID:              userID,
		Context:         []Message{},
		MaxMessages:     20,
		CurrentVoice:    VoiceF1,
		CurrentLanguage: LanguageEn,
	}
}

func (s *ConversationSession) AddMessage(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Context = append(s.Context, Message{Role: role, Content: content})
	if len(s.Context) > s.MaxMessages {
		s.Context = s.Context[len(s.Context)-s.MaxMessages:]
	}
	if role == "user" {
		s.LastUser = content
	} else if role == "assistant" {
		s.LastAssistant = content
	}
}

func (s *ConversationSession) ClearContext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Context = []Message{}
	s.LastUser = ""
	s.LastAssistant = ""
}

func (s *ConversationSession) GetContextCopy() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contextCopy := make([]Message, len(s.Context))
	copy(contextCopy, s.Context)
	return contextCopy
}

func (s *ConversationSession) GetCurrentVoice() Voice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CurrentVoice
}

func (s *ConversationSession) GetCurrentLanguage() Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CurrentLanguage
}

func (s *ConversationSession) GetLastUserMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUser
}

func (s *ConversationSession) GetLastAssistantMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastAssistant
}
