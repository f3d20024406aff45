// Package wire implements the client-channel framing described in
// SPEC_FULL.md §4.1/§6.1: JSON command/status frames and the binary
// InboundAudioFrame layout. cmd/server decodes incoming frames with this
// package and encodes each orchestrator.OrchestratorEvent that has a wire
// frame back onto the same shape; cmd/devclient is the other end of the
// same codec.
package wire

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// Command is a client -> server text frame's command field.
type Command string

const (
	CommandStart       Command = "start"
	CommandStop        Command = "stop"
	CommandReset       Command = "reset"
	CommandInterrupt   Command = "interrupt"
	CommandClearQueues Command = "clear_queues"
)

// ClientMessage is the decoded shape of any client -> server text frame.
type ClientMessage struct {
	Command Command `json:"command"`
}

// DecodeClientMessage parses a client -> server JSON text frame.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("decode client message: %w", err)
	}
	if msg.Command == "" {
		return ClientMessage{}, fmt.Errorf("decode client message: missing command field")
	}
	return msg, nil
}

// FrameType is a server -> client text frame's type field.
type FrameType string

const (
	FrameStatus                FrameType = "status"
	FramePartialTranscript     FrameType = "partial_transcript"
	FrameFinalTranscript       FrameType = "final_transcript"
	FrameLLMStatus             FrameType = "llm_status"
	FrameLLMResponse           FrameType = "llm_response"
	FrameTTSStart              FrameType = "tts_start"
	FrameTTSEnd                FrameType = "tts_end"
	FrameTTSStop               FrameType = "tts_stop"
	FrameInterruptAcknowledged FrameType = "interrupt_acknowledged"
	FrameStopAcknowledged      FrameType = "stop_acknowledged"
	FrameError                 FrameType = "error"
)

// Status is the status frame's status field.
type Status string

const (
	StatusListening Status = "listening"
	StatusStopped   Status = "stopped"
	StatusIdle      Status = "idle"
	StatusError     Status = "error"
)

// Frame is the full server -> client text frame catalog from §6.1's table,
// one struct covering every type with json:"omitempty" hiding fields that
// don't apply. Marshaled directly; callers build one field set per
// FrameType and never set fields outside that type's row.
type Frame struct {
	Type      FrameType `json:"type"`
	SessionID string    `json:"session_id"`

	Status  Status `json:"status,omitempty"`
	Message string `json:"message,omitempty"`

	Content string `json:"content,omitempty"`

	IsComplete *bool `json:"is_complete,omitempty"`

	Format string `json:"format,omitempty"`

	QueuesCleared *bool `json:"queues_cleared,omitempty"`
}

func EncodeFrame(f Frame) ([]byte, error) {
	return json.Marshal(f)
}

func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}

func boolPtr(b bool) *bool { return &b }

func StatusFrame(sessionID string, status Status, message string) Frame {
	return Frame{Type: FrameStatus, SessionID: sessionID, Status: status, Message: message}
}

func PartialTranscriptFrame(sessionID, content string) Frame {
	return Frame{Type: FramePartialTranscript, SessionID: sessionID, Content: content}
}

func FinalTranscriptFrame(sessionID, content string) Frame {
	return Frame{Type: FrameFinalTranscript, SessionID: sessionID, Content: content}
}

func LLMStatusFrame(sessionID string) Frame {
	return Frame{Type: FrameLLMStatus, SessionID: sessionID, Status: "processing"}
}

func LLMResponseFrame(sessionID, content string, isComplete bool) Frame {
	return Frame{Type: FrameLLMResponse, SessionID: sessionID, Content: content, IsComplete: boolPtr(isComplete)}
}

func TTSStartFrame(sessionID string) Frame {
	return Frame{Type: FrameTTSStart, SessionID: sessionID, Format: "pcm"}
}

func TTSEndFrame(sessionID string) Frame {
	return Frame{Type: FrameTTSEnd, SessionID: sessionID}
}

func TTSStopFrame(sessionID string) Frame {
	return Frame{Type: FrameTTSStop, SessionID: sessionID}
}

func InterruptAcknowledgedFrame(sessionID string) Frame {
	return Frame{Type: FrameInterruptAcknowledged, SessionID: sessionID}
}

func StopAcknowledgedFrame(sessionID string) Frame {
	return Frame{Type: FrameStopAcknowledged, SessionID: sessionID, QueuesCleared: boolPtr(true)}
}

func ErrorFrame(sessionID, message string) Frame {
	return Frame{Type: FrameError, SessionID: sessionID, Message: message}
}

// inboundHeaderSize is the InboundAudioFrame's fixed 8-byte header:
// timestamp_ms (uint32 LE) + status_flags (uint32 LE), per §6.1.
const inboundHeaderSize = 8

// Status flag bit layout within InboundAudioFrame's status_flags word.
const (
	energyMask       uint32 = 0xFF
	silenceHintBit   uint32 = 1 << 8
	firstChunkBit    uint32 = 1 << 9
	reservedBitsMask uint32 = 0xFFFFFC00 // bits 10..31
)

// InboundAudioFrame is the decoded client -> server binary frame: a
// millisecond timestamp, status flags, and the 16-bit PCM body.
type InboundAudioFrame struct {
	TimestampMS uint32
	Energy      uint8
	SilenceHint bool
	FirstChunk  bool
	PCM         []byte // raw int16 LE samples, body only
}

// EncodeInboundAudioFrame lays out the 8-byte header followed by pcm, which
// must have even length (whole int16 samples).
func EncodeInboundAudioFrame(f InboundAudioFrame) ([]byte, error) {
	if len(f.PCM)%2 != 0 {
		return nil, fmt.Errorf("encode inbound audio frame: PCM length %d is not a multiple of 2", len(f.PCM))
	}
	flags := uint32(f.Energy) & energyMask
	if f.SilenceHint {
		flags |= silenceHintBit
	}
	if f.FirstChunk {
		flags |= firstChunkBit
	}

	buf := make([]byte, inboundHeaderSize+len(f.PCM))
	binary.LittleEndian.PutUint32(buf[0:4], f.TimestampMS)
	binary.LittleEndian.PutUint32(buf[4:8], flags)
	copy(buf[8:], f.PCM)
	return buf, nil
}

// DecodeInboundAudioFrame parses a client -> server binary frame. Rejects
// frames shorter than the header or whose PCM body is not a whole number
// of int16 samples (the "audio alignment violation" ClientProtocolError
// from §7).
func DecodeInboundAudioFrame(data []byte) (InboundAudioFrame, error) {
	if len(data) < inboundHeaderSize {
		return InboundAudioFrame{}, fmt.Errorf("decode inbound audio frame: %d bytes shorter than %d-byte header", len(data), inboundHeaderSize)
	}
	pcm := data[inboundHeaderSize:]
	if len(pcm)%2 != 0 {
		return InboundAudioFrame{}, fmt.Errorf("decode inbound audio frame: PCM length %d is not a multiple of 2", len(pcm))
	}

	flags := binary.LittleEndian.Uint32(data[4:8])
	if flags&reservedBitsMask != 0 {
		return InboundAudioFrame{}, fmt.Errorf("decode inbound audio frame: reserved bits set in status_flags")
	}

	body := make([]byte, len(pcm))
	copy(body, pcm)

	return InboundAudioFrame{
		TimestampMS: binary.LittleEndian.Uint32(data[0:4]),
		Energy:      uint8(flags & energyMask),
		SilenceHint: flags&silenceHintBit != 0,
		FirstChunk:  flags&firstChunkBit != 0,
		PCM:         body,
	}, nil
}
