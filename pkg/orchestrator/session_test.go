package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSession_PushAudioDeliversUserSpeaking(t *testing.T) {
	stt := &MockSTTProvider{transcribeResult: "hello"}
	llm := &MockLLMProvider{completeResult: "world"}
	tts := &MockTTSProvider{synthesizeResult: []byte{1, 2, 3}}
	vad := NewRMSVAD(0.1, 100*time.Millisecond)

	orch := NewWithVAD(stt, llm, tts, vad, DefaultConfig())

	var mu sync.Mutex
	var received []OrchestratorEvent
	done := make(chan struct{}, 1)

	session := NewSession(context.Background(), orch, NewSessionID(), func(ev OrchestratorEvent) {
		mu.Lock()
		received = append(received, ev)
		mu.Unlock()
		if ev.Type == UserSpeaking {
			select {
			case done <- struct{}{}:
			default:
			}
		}
	}, nil)
	defer session.Close()

	loudChunk := make([]byte, 100)
	for i := 0; i < 100; i += 2 {
		loudChunk[i] = 0xFF
		loudChunk[i+1] = 0x7F
	}

	for i := 0; i < 20; i++ {
		if err := session.PushAudio(loudChunk); err != nil {
			t.Fatalf("PushAudio: %v", err)
		}
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for USER_SPEAKING to reach sink")
	}

	if session.Phase() != PhaseListening {
		t.Errorf("expected LISTENING phase after USER_SPEAKING, got %s", session.Phase())
	}
}

func TestSession_StopInterruptsAndBumpsEpoch(t *testing.T) {
	stt := &MockSTTProvider{transcribeResult: "hello"}
	llm := &MockLLMProvider{completeResult: "world"}
	tts := &MockTTSProvider{synthesizeResult: []byte{1, 2, 3}}

	orch := New(stt, llm, tts, DefaultConfig())

	sink := func(OrchestratorEvent) {}
	session := NewSession(context.Background(), orch, NewSessionID(), sink, nil)
	defer session.Close()

	before := session.tracker.Epoch()
	session.Stop()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		session.mu.Lock()
		epoch := session.tracker.Epoch()
		session.mu.Unlock()
		if epoch > before {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("epoch never advanced after Stop")
}
