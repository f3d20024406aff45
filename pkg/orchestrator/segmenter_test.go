package orchestrator

import "testing"

func TestSegmenter_FlushesOnSentenceTerminator(t *testing.T) {
	s := NewSegmenter(180)
	segs := s.Feed("Hello there. ")
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d (%v)", len(segs), segs)
	}
	if segs[0].Text != "Hello there." {
		t.Errorf("unexpected text %q", segs[0].Text)
	}
	if segs[0].Index != 0 {
		t.Errorf("expected index 0, got %d", segs[0].Index)
	}
	if segs[0].Final {
		t.Error("mid-stream flush should not be marked Final")
	}
}

func TestSegmenter_FlushesOnCJKTerminator(t *testing.T) {
	s := NewSegmenter(180)
	segs := s.Feed("你好世界。 ")
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if segs[0].Text != "你好世界。" {
		t.Errorf("unexpected text %q", segs[0].Text)
	}
}

func TestSegmenter_FlushesOnHardBound(t *testing.T) {
	s := NewSegmenter(10)
	segs := s.Feed("0123456789no terminator here")
	if len(segs) == 0 {
		t.Fatal("expected at least one segment from the hard bound")
	}
	if len(segs[0].Text) > 10+1 {
		t.Errorf("expected segment bounded near 10 chars, got %d: %q", len(segs[0].Text), segs[0].Text)
	}
}

func TestSegmenter_EndFlushesTrailingTextAsFinal(t *testing.T) {
	s := NewSegmenter(180)
	s.Feed("no terminator yet")
	seg, ok := s.End()
	if !ok {
		t.Fatal("expected End to flush the trailing buffer")
	}
	if !seg.Final {
		t.Error("expected End's segment to be marked Final")
	}
	if seg.Text != "no terminator yet" {
		t.Errorf("unexpected text %q", seg.Text)
	}
}

func TestSegmenter_TerminatorAtFragmentEndDefersToEnd(t *testing.T) {
	s := NewSegmenter(180)
	segs := s.Feed("done.")
	if len(segs) != 0 {
		t.Fatalf("a terminator with no lookahead rune yet should not flush mid-stream, got %v", segs)
	}
	seg, ok := s.End()
	if !ok {
		t.Fatal("expected End to flush the deferred terminator as end-of-stream")
	}
	if !seg.Final || seg.Text != "done." {
		t.Errorf("unexpected segment %+v", seg)
	}
}

func TestSegmenter_EndOnEmptyBufferReturnsFalse(t *testing.T) {
	s := NewSegmenter(180)
	s.Feed("done. ")
	if _, ok := s.End(); ok {
		t.Error("expected End to report nothing left to flush after a terminator already drained the buffer")
	}
}

func TestSegmenter_DoesNotFlushOnDecimalPoint(t *testing.T) {
	s := NewSegmenter(180)
	segs := s.Feed("The value is 3.14 today. ")
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d (%v)", len(segs), segs)
	}
	if segs[0].Text != "The value is 3.14 today." {
		t.Errorf("unexpected text %q", segs[0].Text)
	}
}

func TestSegmenter_IndicesIncreaseMonotonically(t *testing.T) {
	s := NewSegmenter(180)
	segs := s.Feed("One. Two. Three. ")
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}
	for i, seg := range segs {
		if seg.Index != i {
			t.Errorf("segment %d has index %d", i, seg.Index)
		}
	}
}
