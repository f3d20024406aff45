package orchestrator

import "time"

// TurnPhase is the Turn State Machine's current phase for one session.
// TurnTracker keeps it as its own field, separate from ManagedStream's
// isSpeaking/isThinking booleans and sttGeneration counter; Session.pump
// moves it in response to the ManagedStream's events.
type TurnPhase string

const (
	PhaseIdle         TurnPhase = "IDLE"
	PhaseListening    TurnPhase = "LISTENING"
	PhaseTranscribed  TurnPhase = "TRANSCRIBED"
	PhaseThinking     TurnPhase = "THINKING"
	PhaseSpeaking     TurnPhase = "SPEAKING"
	PhaseInterrupted  TurnPhase = "INTERRUPTED"
	PhaseError        TurnPhase = "ERROR"
)

// validTransitions enumerates the Turn State Machine's allowed edges. A
// transition not listed here is rejected by TurnTracker.Transition.
var validTransitions = map[TurnPhase][]TurnPhase{
	PhaseIdle:        {PhaseListening},
	PhaseListening:   {PhaseTranscribed, PhaseInterrupted, PhaseIdle},
	PhaseTranscribed: {PhaseThinking, PhaseInterrupted},
	PhaseThinking:    {PhaseSpeaking, PhaseInterrupted, PhaseError},
	PhaseSpeaking:    {PhaseIdle, PhaseInterrupted, PhaseError},
	PhaseInterrupted: {PhaseListening, PhaseIdle},
	PhaseError:       {PhaseIdle, PhaseListening},
}

func (p TurnPhase) canTransitionTo(next TurnPhase) bool {
	for _, allowed := range validTransitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TurnContext tags one user-turn's lifetime: a monotonic TurnID identifying
// the turn itself, and an Epoch that every outbound item enqueued during
// this turn carries. Cancelling a turn (barge-in, explicit stop/interrupt)
// bumps Epoch so the Outbound Scheduler can drop anything already queued
// under the old epoch without needing to track individual item identity.
type TurnContext struct {
	TurnID    uint64
	Epoch     uint64
	Phase     TurnPhase
	StartedAt time.Time
}

// TurnTracker owns the current phase/epoch/turn-id triple for one session.
// It replaces the ad-hoc isSpeaking/isThinking/sttGeneration trio with an
// explicit state machine while keeping the same cheap, lock-friendly shape
// (a handful of fields a caller reads/writes under its own mutex).
type TurnTracker struct {
	phase  TurnPhase
	turnID uint64
	epoch  uint64
}

func NewTurnTracker() *TurnTracker {
	return &TurnTracker{phase: PhaseIdle}
}

func (t *TurnTracker) Phase() TurnPhase { return t.phase }
func (t *TurnTracker) Epoch() uint64    { return t.epoch }
func (t *TurnTracker) TurnID() uint64   { return t.turnID }

// Transition moves the tracker to next if the edge is legal, returning false
// (no-op) otherwise. Callers hold their own mutex around this call.
func (t *TurnTracker) Transition(next TurnPhase) bool {
	if !t.phase.canTransitionTo(next) {
		return false
	}
	t.phase = next
	return true
}

// BeginTurn starts a fresh turn: bumps TurnID and transitions to LISTENING.
// Called when VAD reports genuine (non-echo, non-stale) speech start.
func (t *TurnTracker) BeginTurn() TurnContext {
	t.turnID++
	t.phase = PhaseListening
	return TurnContext{TurnID: t.turnID, Epoch: t.epoch, Phase: t.phase, StartedAt: time.Now()}
}

// Cancel bumps Epoch and moves to INTERRUPTED, invalidating every in-flight
// async callback and queued outbound item tagged with the prior epoch.
func (t *TurnTracker) Cancel() TurnContext {
	t.epoch++
	t.phase = PhaseInterrupted
	return TurnContext{TurnID: t.turnID, Epoch: t.epoch, Phase: t.phase, StartedAt: time.Now()}
}

// Snapshot returns the current TurnContext without mutating state.
func (t *TurnTracker) Snapshot() TurnContext {
	return TurnContext{TurnID: t.turnID, Epoch: t.epoch, Phase: t.phase}
}
