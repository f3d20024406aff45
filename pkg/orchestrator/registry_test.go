package orchestrator

import (
	"context"
	"testing"
	"time"
)

func newTestStream() *ManagedStream {
	stt := &MockSTTProvider{transcribeResult: "hello"}
	llm := &MockLLMProvider{completeResult: "world"}
	tts := &MockTTSProvider{synthesizeResult: []byte{1, 2, 3}}
	orch := New(stt, llm, tts, DefaultConfig())
	session := NewConversationSession("test")
	return orch.NewManagedStream(context.Background(), session)
}

func TestSessionRegistry_RegisterGetUnregister(t *testing.T) {
	reg := NewSessionRegistry(time.Minute)
	stream := newTestStream()
	defer stream.Close()

	id := NewSessionID()
	if id == "" {
		t.Fatal("expected a non-empty session id")
	}

	reg.Register(id, stream, nil)
	if reg.Count() != 1 {
		t.Fatalf("expected 1 registered session, got %d", reg.Count())
	}

	entry, ok := reg.Get(id)
	if !ok {
		t.Fatal("expected to find the registered session")
	}
	if entry.Stream != stream {
		t.Error("registry entry does not reference the registered stream")
	}

	reg.Unregister(id)
	if reg.Count() != 0 {
		t.Errorf("expected 0 sessions after unregister, got %d", reg.Count())
	}
	if _, ok := reg.Get(id); ok {
		t.Error("expected Get to fail after Unregister")
	}
}

func TestSessionRegistry_Snapshot(t *testing.T) {
	reg := NewSessionRegistry(time.Minute)
	stream := newTestStream()
	defer stream.Close()

	id := NewSessionID()
	reg.Register(id, stream, nil)

	snaps := reg.Snapshot()
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	if snaps[0].ID != id {
		t.Errorf("expected snapshot id %s, got %s", id, snaps[0].ID)
	}
}

func TestSessionRegistry_IdleSweepExpiresStaleSessions(t *testing.T) {
	reg := NewSessionRegistry(20 * time.Millisecond)
	stream := newTestStream()

	id := NewSessionID()
	reg.Register(id, stream, nil)

	reg.StartIdleSweep(10 * time.Millisecond)
	defer reg.StopSweep()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if reg.Count() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("idle session was never swept")
}

func TestSessionRegistry_TouchDelaysSweep(t *testing.T) {
	reg := NewSessionRegistry(50 * time.Millisecond)
	stream := newTestStream()
	defer stream.Close()

	id := NewSessionID()
	reg.Register(id, stream, nil)

	reg.StartIdleSweep(10 * time.Millisecond)
	defer reg.StopSweep()

	refresh := time.NewTicker(15 * time.Millisecond)
	defer refresh.Stop()
	stop := time.After(120 * time.Millisecond)
loop:
	for {
		select {
		case <-refresh.C:
			reg.Touch(id)
		case <-stop:
			break loop
		}
	}

	if reg.Count() != 1 {
		t.Errorf("expected the touched session to survive the sweep window, got count %d", reg.Count())
	}
}

func TestSessionRegistry_LookupHoldsEntryOpenAcrossRetire(t *testing.T) {
	reg := NewSessionRegistry(time.Minute)
	stream := newTestStream()

	id := NewSessionID()
	canceled := false
	reg.Register(id, stream, func() { canceled = true })

	entry, release, ok := reg.Lookup(id)
	if !ok {
		t.Fatal("expected Lookup to find the registered session")
	}

	reg.Retire(id)
	if _, ok := reg.Get(id); ok {
		t.Error("expected Retire to remove the entry from the live map immediately")
	}
	if canceled {
		t.Error("expected Retire not to close the entry while a Lookup still holds it")
	}

	release()
	if !canceled {
		t.Error("expected releasing the last Lookup reference to cancel the session's context")
	}
	_ = entry
}

func TestSessionRegistry_SweepCancelsSessionContext(t *testing.T) {
	reg := NewSessionRegistry(20 * time.Millisecond)
	stream := newTestStream()

	id := NewSessionID()
	canceled := make(chan struct{})
	reg.Register(id, stream, func() { close(canceled) })

	reg.StartIdleSweep(10 * time.Millisecond)
	defer reg.StopSweep()

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("idle sweep never cancelled the session's context")
	}
}
