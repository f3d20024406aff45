package wire

import (
	"bytes"
	"testing"
)

func TestDecodeClientMessage(t *testing.T) {
	msg, err := DecodeClientMessage([]byte(`{"command":"interrupt"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Command != CommandInterrupt {
		t.Errorf("expected %s, got %s", CommandInterrupt, msg.Command)
	}
}

func TestDecodeClientMessage_MissingCommand(t *testing.T) {
	if _, err := DecodeClientMessage([]byte(`{}`)); err == nil {
		t.Error("expected an error for a missing command field")
	}
}

func TestFrame_RoundTrip(t *testing.T) {
	cases := []Frame{
		StatusFrame("sess-1", StatusListening, ""),
		PartialTranscriptFrame("sess-1", "hel"),
		FinalTranscriptFrame("sess-1", "hello"),
		LLMStatusFrame("sess-1"),
		LLMResponseFrame("sess-1", "hi there", true),
		TTSStartFrame("sess-1"),
		TTSEndFrame("sess-1"),
		TTSStopFrame("sess-1"),
		InterruptAcknowledgedFrame("sess-1"),
		StopAcknowledgedFrame("sess-1"),
		ErrorFrame("sess-1", "boom"),
	}

	for _, want := range cases {
		encoded, err := EncodeFrame(want)
		if err != nil {
			t.Fatalf("encode %s: %v", want.Type, err)
		}
		got, err := DecodeFrame(encoded)
		if err != nil {
			t.Fatalf("decode %s: %v", want.Type, err)
		}
		if !framesEqual(got, want) {
			t.Errorf("round trip mismatch for %s: want %+v, got %+v", want.Type, want, got)
		}
	}
}

func framesEqual(a, b Frame) bool {
	if a.Type != b.Type || a.SessionID != b.SessionID || a.Status != b.Status ||
		a.Message != b.Message || a.Content != b.Content || a.Format != b.Format {
		return false
	}
	if (a.IsComplete == nil) != (b.IsComplete == nil) {
		return false
	}
	if a.IsComplete != nil && *a.IsComplete != *b.IsComplete {
		return false
	}
	if (a.QueuesCleared == nil) != (b.QueuesCleared == nil) {
		return false
	}
	if a.QueuesCleared != nil && *a.QueuesCleared != *b.QueuesCleared {
		return false
	}
	return true
}

func TestStopAcknowledgedFrame_QueuesCleared(t *testing.T) {
	f := StopAcknowledgedFrame("sess-1")
	if f.QueuesCleared == nil || !*f.QueuesCleared {
		t.Error("expected queues_cleared=true")
	}
}

func samplePCM(n int) []byte {
	pcm := make([]byte, n*2)
	for i := 0; i < n; i++ {
		pcm[i*2] = byte(i)
		pcm[i*2+1] = byte(i >> 8)
	}
	return pcm
}

func TestInboundAudioFrame_RoundTrip(t *testing.T) {
	want := InboundAudioFrame{
		TimestampMS: 123456,
		Energy:      200,
		SilenceHint: true,
		FirstChunk:  true,
		PCM:         samplePCM(8),
	}

	encoded, err := EncodeInboundAudioFrame(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(encoded) != inboundHeaderSize+len(want.PCM) {
		t.Fatalf("unexpected encoded length %d", len(encoded))
	}

	got, err := DecodeInboundAudioFrame(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TimestampMS != want.TimestampMS {
		t.Errorf("timestamp: want %d, got %d", want.TimestampMS, got.TimestampMS)
	}
	if got.Energy != want.Energy {
		t.Errorf("energy: want %d, got %d", want.Energy, got.Energy)
	}
	if got.SilenceHint != want.SilenceHint || got.FirstChunk != want.FirstChunk {
		t.Errorf("flags mismatch: got silence=%v first=%v", got.SilenceHint, got.FirstChunk)
	}
	if !bytes.Equal(got.PCM, want.PCM) {
		t.Errorf("PCM body mismatch: want %v, got %v", want.PCM, got.PCM)
	}
}

func TestEncodeInboundAudioFrame_RejectsOddPCMLength(t *testing.T) {
	_, err := EncodeInboundAudioFrame(InboundAudioFrame{PCM: []byte{0x01, 0x02, 0x03}})
	if err == nil {
		t.Error("expected an error for an odd-length PCM body")
	}
}

func TestDecodeInboundAudioFrame_RejectsShortFrame(t *testing.T) {
	if _, err := DecodeInboundAudioFrame([]byte{0x00, 0x01, 0x02}); err == nil {
		t.Error("expected an error for a frame shorter than the header")
	}
}

func TestDecodeInboundAudioFrame_RejectsOddPCMLength(t *testing.T) {
	frame := append(make([]byte, inboundHeaderSize), 0x01, 0x02, 0x03)
	if _, err := DecodeInboundAudioFrame(frame); err == nil {
		t.Error("expected an error for an odd-length PCM body")
	}
}

func TestDecodeInboundAudioFrame_RejectsReservedBits(t *testing.T) {
	frame := make([]byte, inboundHeaderSize)
	frame[4], frame[5], frame[6], frame[7] = 0x00, 0x00, 0x04, 0x00 // sets a bit above bit 9
	if _, err := DecodeInboundAudioFrame(frame); err == nil {
		t.Error("expected an error when reserved status_flags bits are set")
	}
}
