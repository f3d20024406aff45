package orchestrator

import (
	"context"
	"sync"
	"time"
)

// Session is the wire-protocol-aware wrapper around a ManagedStream: it
// owns the session id, the TurnTracker that the Outbound Scheduler reads
// its epoch from, and the scheduler itself. cmd/server constructs one per
// accepted WebSocket connection and registers it with a SessionRegistry;
// embedders that don't need multi-session serving (Conversation, the
// teacher's original use case) can use ManagedStream directly and skip
// this type entirely.
type Session struct {
	ID      string
	Stream  *ManagedStream
	started time.Time

	mu      sync.Mutex
	tracker *TurnTracker

	scheduler *OutboundScheduler
	schedCtx  context.Context
	schedStop context.CancelFunc

	sink func(OrchestratorEvent)
}

// NewSession wires a fresh ManagedStream to a TurnTracker and an
// OutboundScheduler that delivers to sink. sink is called from the
// scheduler's own goroutine only, so it never races with Stream's
// producers. teardown (may be nil) is invoked by the scheduler if an
// outbound PCM chunk is still blocked after the configured drain bound
// (§5); callers that own the connection's root context (cmd/server) pass
// its cancel func so a stuck client socket gets torn down instead of
// backing up forever.
func NewSession(ctx context.Context, o *Orchestrator, id string, sink func(OrchestratorEvent), teardown func()) *Session {
	session := NewConversationSession(id)
	stream := NewManagedStream(ctx, o, session)

	cfg := o.GetConfig()
	tracker := NewTurnTracker()

	s := &Session{
		ID:      id,
		Stream:  stream,
		started: time.Now(),
		tracker: tracker,
		sink:    sink,
	}
	s.schedCtx, s.schedStop = context.WithCancel(ctx)
	s.scheduler = NewOutboundScheduler(tracker, &s.mu, cfg.OutboundQueueSize, cfg.OutboundDrainBound, sink, teardown)

	go s.scheduler.Run(s.schedCtx)
	go s.pump()

	return s
}

// pump forwards the ManagedStream's events onto the scheduler, tagging
// each with the tracker's epoch at enqueue time (not at delivery time) so
// a turn cancelled after an item is queued but before it drains still
// gets dropped at deliver().
func (s *Session) pump() {
	for event := range s.Stream.Events() {
		s.mu.Lock()
		switch event.Type {
		case UserSpeaking:
			s.tracker.BeginTurn()
		case TranscriptFinal:
			s.tracker.Transition(PhaseTranscribed)
		case BotThinking:
			s.tracker.Transition(PhaseThinking)
		case BotSpeaking:
			s.tracker.Transition(PhaseSpeaking)
		case Interrupted:
			s.tracker.Cancel()
		case ErrorEvent:
			s.tracker.Transition(PhaseError)
		case ReadyForInput:
			s.tracker.Transition(PhaseListening)
		case StopAcknowledged:
			s.tracker.Transition(PhaseIdle)
		}
		epoch := s.tracker.Epoch()
		s.mu.Unlock()

		if event.Type == Interrupted {
			s.scheduler.Drain()
		}
		s.scheduler.Enqueue(event, epoch)
	}
	s.scheduler.Close()
}

// PushAudio feeds one inbound PCM chunk into the underlying ManagedStream
// with no client-reported energy/silence hint (used by embedders that
// don't speak the wire protocol's InboundAudioFrame format).
func (s *Session) PushAudio(chunk []byte) error {
	return s.Stream.Write(chunk)
}

// PushAudioFrame feeds one inbound PCM chunk into the underlying
// ManagedStream along with the energy/silence_hint bits decoded from its
// wire InboundAudioFrame, so the Barge-in Gate (§4.7) sees them.
func (s *Session) PushAudioFrame(chunk []byte, energy uint8, silenceHint bool) error {
	return s.Stream.WriteFrame(chunk, energy, silenceHint)
}

// Stop performs an explicit client-initiated interrupt (the wire
// protocol's "stop" command, §6.1), distinct from VAD-detected barge-in.
func (s *Session) Stop() {
	s.Stream.Interrupt()
}

// Phase reports the current turn phase as tracked by the session's own
// TurnTracker (kept separate from ManagedStream's internal
// isSpeaking/isThinking booleans, which remain the source of truth for
// the pipeline itself).
func (s *Session) Phase() TurnPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Phase()
}

func (s *Session) StartedAt() time.Time {
	return s.started
}

func (s *Session) Close() {
	s.Stream.Close()
	s.schedStop()
}
