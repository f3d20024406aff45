package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestOutboundScheduler_DeliversInOrder(t *testing.T) {
	tracker := NewTurnTracker()
	var trackMu sync.Mutex

	var mu sync.Mutex
	var got []EventType

	sched := NewOutboundScheduler(tracker, &trackMu, 16, 100*time.Millisecond, func(ev OrchestratorEvent) {
		mu.Lock()
		got = append(got, ev.Type)
		mu.Unlock()
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(ctx)

	epoch := tracker.Epoch()
	sched.Enqueue(OrchestratorEvent{Type: TTSSegmentStart}, epoch)
	sched.Enqueue(OrchestratorEvent{Type: AudioChunk}, epoch)
	sched.Enqueue(OrchestratorEvent{Type: TTSSegmentEnd}, epoch)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n == 3 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []EventType{TTSSegmentStart, AudioChunk, TTSSegmentEnd}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestOutboundScheduler_DropsStaleEpochItems(t *testing.T) {
	tracker := NewTurnTracker()
	var trackMu sync.Mutex

	var mu sync.Mutex
	var got []EventType

	sched := NewOutboundScheduler(tracker, &trackMu, 16, 100*time.Millisecond, func(ev OrchestratorEvent) {
		mu.Lock()
		got = append(got, ev.Type)
		mu.Unlock()
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(ctx)

	staleEpoch := tracker.Epoch()
	tracker.Cancel() // bumps epoch, invalidating staleEpoch

	sched.Enqueue(OrchestratorEvent{Type: AudioChunk}, staleEpoch)
	sched.Enqueue(OrchestratorEvent{Type: Interrupted}, tracker.Epoch())

	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != Interrupted {
		t.Fatalf("expected only the current-epoch Interrupted event to be delivered, got %v", got)
	}
}

func TestOutboundScheduler_DrainEmptiesQueue(t *testing.T) {
	tracker := NewTurnTracker()
	var trackMu sync.Mutex

	sched := NewOutboundScheduler(tracker, &trackMu, 16, 50*time.Millisecond, func(OrchestratorEvent) {}, nil)

	for i := 0; i < 5; i++ {
		sched.Enqueue(OrchestratorEvent{Type: AudioChunk}, tracker.Epoch())
	}
	sched.Drain()

	select {
	case item := <-sched.queue:
		t.Errorf("expected queue to be empty after Drain, found %+v", item)
	default:
	}
}
