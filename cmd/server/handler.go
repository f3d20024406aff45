package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/chicogong/realtime-duplex/pkg/metrics"
	"github.com/chicogong/realtime-duplex/pkg/orchestrator"
	"github.com/chicogong/realtime-duplex/pkg/telemetry"
	"github.com/chicogong/realtime-duplex/pkg/wire"
)

// wsHandler serves the §6.1 wire protocol over one WebSocket connection
// per session.
type wsHandler struct {
	orch     *orchestrator.Orchestrator
	registry *orchestrator.SessionRegistry
}

func (h *wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		telemetry.Logger().Error("websocket accept failed", "error", err)
		return
	}

	sessionID := orchestrator.NewSessionID()
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sess := orchestrator.NewSession(ctx, h.orch, sessionID, func(event orchestrator.OrchestratorEvent) {
		if event.Type == orchestrator.AudioChunk {
			if chunk, ok := event.Data.([]byte); ok {
				if err := conn.Write(ctx, websocket.MessageBinary, chunk); err != nil {
					telemetry.Logger().Warn("audio chunk write failed", "session", sessionID, "error", err)
				}
			}
			return
		}

		frame, ok := translateEvent(sessionID, event)
		if !ok {
			return
		}
		encoded, err := wire.EncodeFrame(frame)
		if err != nil {
			telemetry.Logger().Error("frame encode failed", "session", sessionID, "error", err)
			return
		}
		if err := conn.Write(ctx, websocket.MessageText, encoded); err != nil {
			telemetry.Logger().Warn("frame write failed", "session", sessionID, "error", err)
		}
	}, cancel)

	h.registry.Register(sessionID, sess.Stream, cancel)
	metrics.SessionsActive.Inc()
	metrics.SessionsTotal.Inc()
	defer func() {
		h.registry.Unregister(sessionID)
		metrics.SessionsActive.Dec()
		sess.Close()
		conn.Close(websocket.StatusNormalClosure, "session closed")
	}()

	telemetry.Logger().Info("session started", "session", sessionID)

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			telemetry.Logger().Info("session ended", "session", sessionID, "error", err)
			return
		}
		h.registry.Touch(sessionID)

		switch msgType {
		case websocket.MessageBinary:
			metrics.InboundAudioFrames.Inc()
			frame, err := wire.DecodeInboundAudioFrame(data)
			if err != nil {
				metrics.ClientProtocolErrors.Inc()
				h.sendError(ctx, conn, sessionID, fmt.Sprintf("malformed audio frame: %v", err))
				continue
			}
			if err := sess.PushAudioFrame(frame.PCM, frame.Energy, frame.SilenceHint); err != nil {
				telemetry.Logger().Warn("push audio failed", "session", sessionID, "error", err)
			}
		case websocket.MessageText:
			msg, err := wire.DecodeClientMessage(data)
			if err != nil {
				metrics.ClientProtocolErrors.Inc()
				h.sendError(ctx, conn, sessionID, fmt.Sprintf("malformed command: %v", err))
				continue
			}
			h.handleCommand(ctx, conn, sess, sessionID, msg.Command)
		}
	}
}

func (h *wsHandler) handleCommand(ctx context.Context, conn *websocket.Conn, sess *orchestrator.Session, sessionID string, cmd wire.Command) {
	switch cmd {
	case wire.CommandStop:
		sess.Stop()
		h.sendFrame(ctx, conn, sessionID, wire.StopAcknowledgedFrame(sessionID))
	case wire.CommandInterrupt:
		sess.Stop()
		h.sendFrame(ctx, conn, sessionID, wire.InterruptAcknowledgedFrame(sessionID))
	case wire.CommandReset, wire.CommandClearQueues:
		sess.Stop()
	case wire.CommandStart:
		h.sendFrame(ctx, conn, sessionID, wire.StatusFrame(sessionID, wire.StatusListening, ""))
	default:
		metrics.ClientProtocolErrors.Inc()
		h.sendError(ctx, conn, sessionID, fmt.Sprintf("unknown command %q", cmd))
	}
}

func (h *wsHandler) sendFrame(ctx context.Context, conn *websocket.Conn, sessionID string, frame wire.Frame) {
	encoded, err := wire.EncodeFrame(frame)
	if err != nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_ = conn.Write(writeCtx, websocket.MessageText, encoded)
}

func (h *wsHandler) sendError(ctx context.Context, conn *websocket.Conn, sessionID, message string) {
	h.sendFrame(ctx, conn, sessionID, wire.ErrorFrame(sessionID, message))
}

// translateEvent maps an internal OrchestratorEvent onto the §6.1 frame
// catalog. UserSpeaking and ReadyForInput both become status{listening},
// Interrupted becomes tts_stop; ok is false for events with no wire
// representation (UserStopped, BotSpeaking, AudioChunk).
func translateEvent(sessionID string, event orchestrator.OrchestratorEvent) (wire.Frame, bool) {
	switch event.Type {
	case orchestrator.UserSpeaking:
		return wire.StatusFrame(sessionID, wire.StatusListening, ""), true
	case orchestrator.TranscriptPartial:
		text, _ := event.Data.(string)
		return wire.PartialTranscriptFrame(sessionID, text), true
	case orchestrator.TranscriptFinal:
		text, _ := event.Data.(string)
		return wire.FinalTranscriptFrame(sessionID, text), true
	case orchestrator.BotThinking:
		return wire.LLMStatusFrame(sessionID), true
	case orchestrator.BotResponse:
		chunk, _ := event.Data.(orchestrator.BotResponseChunk)
		return wire.LLMResponseFrame(sessionID, chunk.Text, chunk.IsComplete), true
	case orchestrator.ReadyForInput:
		return wire.StatusFrame(sessionID, wire.StatusListening, ""), true
	case orchestrator.TTSSegmentStart:
		return wire.TTSStartFrame(sessionID), true
	case orchestrator.TTSSegmentEnd:
		return wire.TTSEndFrame(sessionID), true
	case orchestrator.Interrupted:
		return wire.TTSStopFrame(sessionID), true
	case orchestrator.StopAcknowledged:
		return wire.StopAcknowledgedFrame(sessionID), true
	case orchestrator.ErrorEvent:
		message, _ := event.Data.(string)
		return wire.ErrorFrame(sessionID, message), true
	default:
		return wire.Frame{}, false
	}
}
