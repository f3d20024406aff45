package orchestrator

import (
	"context"
	"sync"
	"time"
)

// OutboundItem is one unit of work destined for the client over the single
// ordered channel: an event plus the epoch it was enqueued under. The
// scheduler is the only goroutine allowed to send on the session's outbound
// sink, so ordering across frame types (e.g. a segment's tts_start must not
// overtake the previous segment's tts_end) is a property of enqueue order,
// not of per-type channels racing each other.
type OutboundItem struct {
	Event OrchestratorEvent
	Epoch uint64
}

// OutboundScheduler is the §4.8 single-writer ordered queue. Producers
// (STT/LLM/TTS callbacks) call Enqueue, which blocks while the queue is
// full (see Enqueue for the AudioChunk bound); one drain goroutine
// delivers items to Sink in FIFO order, dropping anything whose Epoch is
// behind the tracker's current epoch at drain time so a cancelled turn's
// late-arriving audio never reaches the client.
type OutboundScheduler struct {
	tracker *TurnTracker
	trackMu *sync.Mutex // the same mutex the owner locks around tracker reads

	queue chan OutboundItem
	sink  func(OrchestratorEvent)

	drainBound time.Duration
	teardown   func()

	closeOnce sync.Once
	done      chan struct{}
}

// NewOutboundScheduler wires a scheduler to a shared TurnTracker. trackMu
// must be the mutex the caller already uses to guard tracker; the scheduler
// takes it only for the instant needed to read the current epoch. teardown
// is invoked (at most once per caller) when an AudioChunk enqueue is still
// blocked after drainBound — may be nil.
func NewOutboundScheduler(tracker *TurnTracker, trackMu *sync.Mutex, queueSize int, drainBound time.Duration, sink func(OrchestratorEvent), teardown func()) *OutboundScheduler {
	if queueSize <= 0 {
		queueSize = 1024
	}
	s := &OutboundScheduler{
		tracker:    tracker,
		trackMu:    trackMu,
		queue:      make(chan OutboundItem, queueSize),
		sink:       sink,
		drainBound: drainBound,
		teardown:   teardown,
		done:       make(chan struct{}),
	}
	return s
}

// Run drains the queue until ctx is cancelled or Close is called. Intended
// to be launched once per session as its own goroutine.
func (s *OutboundScheduler) Run(ctx context.Context) {
	for {
		select {
		case item, ok := <-s.queue:
			if !ok {
				return
			}
			s.deliver(item)
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}

func (s *OutboundScheduler) deliver(item OutboundItem) {
	s.trackMu.Lock()
	currentEpoch := s.tracker.Epoch()
	s.trackMu.Unlock()

	if item.Epoch != currentEpoch {
		return
	}
	s.sink(item.Event)
}

// Enqueue is the producer side of §5's backpressure policy: only the
// outbound PCM stream (AudioChunk) may ever be dropped, and only after
// blocking for up to drainBound first — every other frame type (status,
// transcripts, llm_response, tts_start/end, errors, ...) blocks until the
// drain goroutine makes room, so ordering/delivery guarantees hold for the
// whole catalog. A PCM enqueue that is still blocked once drainBound
// elapses tears the session down (via teardown) rather than silently
// dropping audio forever.
func (s *OutboundScheduler) Enqueue(event OrchestratorEvent, epoch uint64) {
	item := OutboundItem{Event: event, Epoch: epoch}

	if event.Type != AudioChunk {
		select {
		case s.queue <- item:
		case <-s.done:
		}
		return
	}

	timer := time.NewTimer(s.drainBound)
	defer timer.Stop()
	select {
	case s.queue <- item:
	case <-s.done:
	case <-timer.C:
		if s.teardown != nil {
			s.teardown()
		}
	}
}

// Drain empties the queue immediately without delivering anything, used on
// interrupt so stale-epoch items queued before the cancel don't linger
// (deliver's epoch check at delivery time would drop them anyway, but
// draining eagerly bounds memory and matches §4.8's "bounded outbound
// backpressure" requirement).
func (s *OutboundScheduler) Drain() {
	deadline := time.Now().Add(s.drainBound)
	for {
		select {
		case <-s.queue:
		default:
			return
		}
		if time.Now().After(deadline) {
			return
		}
	}
}

func (s *OutboundScheduler) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}
